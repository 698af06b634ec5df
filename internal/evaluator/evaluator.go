package evaluator

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/hirelens/assessment-backend/internal/session"
	"github.com/rs/zerolog"
)

// Score weighting across the three evaluation axes.
const (
	testWeight    = 0.5
	qualityWeight = 0.3
	syntaxWeight  = 0.2

	qualityBase = 70
	qualityCap  = 100

	// Probability a single test case passes for syntactically valid code.
	passChance = 0.75
)

// TestResult is the simulated outcome of running one test case.
type TestResult struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Passed   bool   `json:"passed"`
}

// QualityScores holds the heuristic code-quality axes, each on 0-100.
type QualityScores struct {
	Readability int `json:"readability"`
	Efficiency  int `json:"efficiency"`
	Style       int `json:"style"`
}

// QuestionEvaluation is the per-question verdict.
type QuestionEvaluation struct {
	QuestionID  string        `json:"question_id"`
	Title       string        `json:"title"`
	SyntaxValid bool          `json:"syntax_valid"`
	TestsPassed int           `json:"tests_passed"`
	TestsTotal  int           `json:"tests_total"`
	TestResults []TestResult  `json:"test_results"`
	Quality     QualityScores `json:"quality"`
	Score       int           `json:"score"`
	Feedback    string        `json:"feedback"`
}

// Evaluator produces simulated evaluations of submitted code. No code is
// ever executed; test outcomes are drawn from a seeded source so results
// are reproducible in tests and plausible in demos.
type Evaluator struct {
	mu  sync.Mutex
	rng *rand.Rand
	log zerolog.Logger
}

// New creates an Evaluator with the given seed.
func New(seed int64, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		rng: rand.New(rand.NewSource(seed)),
		log: log.With().Str("component", "evaluator").Logger(),
	}
}

// EvaluateSubmission scores every question in the record. An answer that is
// absent, blank, or still the untouched starter template is treated as not
// attempted: syntax invalid, every test failed.
func (e *Evaluator) EvaluateSubmission(rec *model.SubmissionRecord) []QuestionEvaluation {
	e.mu.Lock()
	defer e.mu.Unlock()

	evaluations := make([]QuestionEvaluation, 0, len(rec.Questions))
	for i, q := range rec.Questions {
		code := rec.Answers[i]
		evaluations = append(evaluations, e.evaluateQuestion(q, code, rec.Language))
	}

	e.log.Info().
		Str("assessment_id", rec.AssessmentID.String()).
		Int("questions", len(evaluations)).
		Msg("Submission evaluated")
	return evaluations
}

func (e *Evaluator) evaluateQuestion(q model.Question, code string, lang model.Language) QuestionEvaluation {
	ev := QuestionEvaluation{
		QuestionID: q.ID,
		Title:      q.Title,
		TestsTotal: len(q.TestCases),
	}

	attempted := strings.TrimSpace(code) != "" && code != session.Template(lang, q.FunctionName)
	ev.SyntaxValid = attempted

	ev.TestResults = make([]TestResult, 0, len(q.TestCases))
	for _, tc := range q.TestCases {
		passed := attempted && e.rng.Float64() < passChance
		if passed {
			ev.TestsPassed++
		}
		ev.TestResults = append(ev.TestResults, TestResult{
			Input:    tc.Input,
			Expected: tc.Output,
			Passed:   passed,
		})
	}

	ev.Quality = e.qualityScores(code, attempted)
	ev.Score = composite(ev)
	ev.Feedback = feedback(ev)
	return ev
}

// qualityScores starts each axis at a base level and nudges it by simple
// surface heuristics of the submitted text, capped at 100.
func (e *Evaluator) qualityScores(code string, attempted bool) QualityScores {
	if !attempted {
		return QualityScores{}
	}

	readability := qualityBase
	efficiency := qualityBase
	style := qualityBase

	lines := strings.Split(code, "\n")
	if len(lines) > 3 {
		readability += 10
	}
	if strings.Contains(code, "#") || strings.Contains(code, "//") {
		readability += 10
	}
	if !strings.Contains(code, "while True") && !strings.Contains(code, "while (true)") {
		efficiency += 10
	}
	if len(code) > 80 {
		style += 10
	}

	// Small jitter keeps repeated runs from looking mechanical.
	readability += e.rng.Intn(11)
	efficiency += e.rng.Intn(11)
	style += e.rng.Intn(11)

	return QualityScores{
		Readability: clamp(readability),
		Efficiency:  clamp(efficiency),
		Style:       clamp(style),
	}
}

func composite(ev QuestionEvaluation) int {
	testScore := 0.0
	if ev.TestsTotal > 0 {
		testScore = float64(ev.TestsPassed) / float64(ev.TestsTotal) * 100
	} else if ev.SyntaxValid {
		testScore = float64(qualityBase)
	}

	quality := float64(ev.Quality.Readability+ev.Quality.Efficiency+ev.Quality.Style) / 3
	syntax := 0.0
	if ev.SyntaxValid {
		syntax = 100
	}

	return clamp(int(testScore*testWeight + quality*qualityWeight + syntax*syntaxWeight))
}

func feedback(ev QuestionEvaluation) string {
	switch {
	case !ev.SyntaxValid:
		return "No attempt was made on this question."
	case ev.TestsTotal > 0 && ev.TestsPassed == ev.TestsTotal:
		return "All test cases pass. Solid solution."
	case ev.Score >= 70:
		return fmt.Sprintf("Good work overall; %d of %d test cases pass.", ev.TestsPassed, ev.TestsTotal)
	default:
		return fmt.Sprintf("Only %d of %d test cases pass; revisit the core logic.", ev.TestsPassed, ev.TestsTotal)
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > qualityCap {
		return qualityCap
	}
	return v
}
