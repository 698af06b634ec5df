package evaluator

import (
	"github.com/hirelens/assessment-backend/internal/model"
)

// Recommendation thresholds over the overall score.
const (
	strongHireScore = 85
	hireScore       = 70
	borderlineScore = 55
)

// QuestionSummary is the per-question slice of the final report.
type QuestionSummary struct {
	QuestionID  string `json:"question_id"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	TestsPassed int    `json:"tests_passed"`
	TestsTotal  int    `json:"tests_total"`
	Feedback    string `json:"feedback"`
}

// Report aggregates every question evaluation into a hiring-style summary.
type Report struct {
	AssessmentID   string            `json:"assessment_id"`
	OverallScore   int               `json:"overall_score"`
	PassRate       float64           `json:"pass_rate"`
	Questions      []QuestionSummary `json:"questions"`
	Strengths      []string          `json:"strengths"`
	Weaknesses     []string          `json:"weaknesses"`
	Recommendation string            `json:"recommendation"`
	SuggestedLevel string            `json:"suggested_level"`
	Forced         bool              `json:"forced"`
	TimeRemaining  string            `json:"time_remaining"`
}

// BuildReport evaluates the submission and rolls the results up into a
// single Report.
func (e *Evaluator) BuildReport(rec *model.SubmissionRecord) *Report {
	evaluations := e.EvaluateSubmission(rec)

	report := &Report{
		AssessmentID:  rec.AssessmentID.String(),
		Questions:     make([]QuestionSummary, 0, len(evaluations)),
		Forced:        rec.Forced,
		TimeRemaining: rec.TimeRemaining,
	}

	totalScore := 0
	passed, total := 0, 0
	attempted := 0
	fullPasses := 0

	for _, ev := range evaluations {
		report.Questions = append(report.Questions, QuestionSummary{
			QuestionID:  ev.QuestionID,
			Title:       ev.Title,
			Score:       ev.Score,
			TestsPassed: ev.TestsPassed,
			TestsTotal:  ev.TestsTotal,
			Feedback:    ev.Feedback,
		})
		totalScore += ev.Score
		passed += ev.TestsPassed
		total += ev.TestsTotal
		if ev.SyntaxValid {
			attempted++
		}
		if ev.TestsTotal > 0 && ev.TestsPassed == ev.TestsTotal {
			fullPasses++
		}
	}

	if len(evaluations) > 0 {
		report.OverallScore = totalScore / len(evaluations)
	}
	if total > 0 {
		report.PassRate = float64(passed) / float64(total)
	}

	report.Strengths = strengths(evaluations, fullPasses, attempted)
	report.Weaknesses = weaknesses(evaluations, attempted)
	report.Recommendation, report.SuggestedLevel = recommend(report.OverallScore)
	return report
}

func strengths(evaluations []QuestionEvaluation, fullPasses, attempted int) []string {
	var out []string
	if fullPasses > 0 {
		out = append(out, "Produces complete, passing solutions under time pressure")
	}
	if attempted == len(evaluations) && len(evaluations) > 0 {
		out = append(out, "Attempted every question")
	}
	for _, ev := range evaluations {
		if ev.Quality.Readability >= 85 {
			out = append(out, "Writes readable, well-structured code")
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "Engaged with the assessment")
	}
	return out
}

func weaknesses(evaluations []QuestionEvaluation, attempted int) []string {
	var out []string
	if attempted < len(evaluations) {
		out = append(out, "Left questions unattempted")
	}
	for _, ev := range evaluations {
		if ev.SyntaxValid && ev.TestsTotal > 0 && ev.TestsPassed == 0 {
			out = append(out, "Some solutions fail every test case")
			break
		}
	}
	for _, ev := range evaluations {
		if ev.SyntaxValid && ev.Quality.Efficiency > 0 && ev.Quality.Efficiency < 75 {
			out = append(out, "Efficiency of some solutions could improve")
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "No significant weaknesses observed")
	}
	return out
}

func recommend(overall int) (recommendation, level string) {
	switch {
	case overall >= strongHireScore:
		return "strong_hire", "senior"
	case overall >= hireScore:
		return "hire", "mid"
	case overall >= borderlineScore:
		return "borderline", "junior"
	default:
		return "no_hire", "entry"
	}
}
