package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/hirelens/assessment-backend/internal/config"
	"github.com/hirelens/assessment-backend/internal/evaluator"
	"github.com/hirelens/assessment-backend/internal/gateway"
	"github.com/hirelens/assessment-backend/internal/handler"
	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/hirelens/assessment-backend/internal/repository"
	"github.com/hirelens/assessment-backend/internal/router"
	"github.com/hirelens/assessment-backend/internal/service"
	"github.com/hirelens/assessment-backend/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

func newTestRouter(t *testing.T, analyzeStatus int) *gin.Engine {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analyze":
			if analyzeStatus != 0 {
				w.WriteHeader(analyzeStatus)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "success",
				"questions": []model.Question{
					{ID: "twoSum", Title: "Two Sum", FunctionName: "twoSum"},
					{ID: "validParentheses", Title: "Valid Parentheses", FunctionName: "validParentheses"},
					{ID: "binarySearch", Title: "Binary Search", FunctionName: "binarySearch"},
				},
			})
		case "/submit":
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		GinMode:         gin.TestMode,
		AnalyzeURL:      upstream.URL + "/analyze",
		SubmitURL:       upstream.URL + "/submit",
		GatewayTimeout:  5 * time.Second,
		SessionDuration: time.Hour,
		DefaultLanguage: "python",
		MaxUploadBytes:  1 << 20,
	}

	validator.Setup()
	repo := repository.NewAssessmentRepository(rdb)
	gw := gateway.NewClient(cfg, zerolog.Nop())
	eval := evaluator.New(1, zerolog.Nop())
	svc := service.NewAssessmentService(cfg, gw, repo, eval, zerolog.Nop())

	handlers := &router.Handlers{
		Analyze:    handler.NewAnalyzeHandler(svc, cfg, zerolog.Nop()),
		Assessment: handler.NewAssessmentHandler(svc, zerolog.Nop()),
		WS:         handler.NewWSHandler(svc, zerolog.Nop(), nil),
	}
	return router.SetupRouter(handlers, cfg)
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range fields {
		part, err := mw.CreateFormFile(name, name+".txt")
		if err != nil {
			t.Fatalf("create part %s: %v", name, err)
		}
		part.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %s %s: %v (%s)", method, path, err, w.Body.String())
	}
	return w, env
}

func startAssessment(t *testing.T, r *gin.Engine) string {
	t.Helper()
	body, contentType := multipartUpload(t, map[string]string{"resume": "resume text", "jd": "jd text"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("analyze returned %d: %s", w.Code, w.Body.String())
	}
	var env apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode analyze envelope: %v", err)
	}
	var data struct {
		AssessmentID string           `json:"assessment_id"`
		Questions    []model.Question `json:"questions"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode analyze data: %v", err)
	}
	if len(data.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(data.Questions))
	}
	return data.AssessmentID
}

func TestAnalyzeRequiresBothFiles(t *testing.T) {
	r := newTestRouter(t, 0)

	body, contentType := multipartUpload(t, map[string]string{"resume": "resume only"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var env apiEnvelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if env.Error == nil || env.Error.Code != "INPUT_MISSING" {
		t.Fatalf("expected INPUT_MISSING, got %+v", env.Error)
	}
}

func TestAnalyzeRejectsOversizedUploads(t *testing.T) {
	r := newTestRouter(t, 0) // MaxUploadBytes is 1 MiB

	cases := []struct {
		name       string
		resumeSize int
	}{
		// Body fits under the request cap but the file exceeds the
		// per-file limit.
		{"file over limit", 1<<20 + 512},
		// Body blows past the request cap and must be cut off during
		// the multipart parse, not buffered first.
		{"body over cap", 3 << 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, map[string]string{
				"resume": strings.Repeat("a", tc.resumeSize),
				"jd":     "jd text",
			})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/analyze", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("expected 413, got %d", w.Code)
			}
			var env apiEnvelope
			json.Unmarshal(w.Body.Bytes(), &env)
			if env.Error == nil || env.Error.Code != "FILE_TOO_LARGE" {
				t.Fatalf("expected FILE_TOO_LARGE, got %+v", env.Error)
			}
		})
	}
}

func TestAnalyzeUpstreamFailureIs502(t *testing.T) {
	r := newTestRouter(t, http.StatusServiceUnavailable)

	body, contentType := multipartUpload(t, map[string]string{"resume": "r", "jd": "j"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var env apiEnvelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if env.Error == nil || env.Error.Code != "UPSTREAM_UNAVAILABLE" {
		t.Fatalf("expected UPSTREAM_UNAVAILABLE, got %+v", env.Error)
	}
}

func TestStateAndSwitchRoundTrip(t *testing.T) {
	r := newTestRouter(t, 0)
	id := startAssessment(t, r)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/assessments/"+id+"/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state returned %d", w.Code)
	}
	if env.Metadata.RequestID == "" {
		t.Fatal("metadata must carry a request id")
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/assessments/"+id+"/switch",
		model.SwitchRequest{Index: 1, Draft: "def twoSum(): return [0, 1]"})
	if w.Code != http.StatusOK {
		t.Fatalf("switch returned %d", w.Code)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/assessments/"+id+"/switch",
		model.SwitchRequest{Index: 99, Draft: "wip"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range switch returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "INDEX_OUT_OF_RANGE" {
		t.Fatalf("expected INDEX_OUT_OF_RANGE, got %+v", env.Error)
	}

	// The rejected switch still saved the draft on the active question.
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/assessments/"+id+"/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state returned %d", w.Code)
	}
	var st struct {
		ActiveIndex  int    `json:"active_index"`
		ActiveAnswer string `json:"active_answer"`
	}
	json.Unmarshal(env.Data, &st)
	if st.ActiveIndex != 1 || st.ActiveAnswer != "wip" {
		t.Fatalf("draft lost after rejected switch: %+v", st)
	}
}

func TestLanguageChangeNeedsConfirmation(t *testing.T) {
	r := newTestRouter(t, 0)
	id := startAssessment(t, r)

	w, env := doJSON(t, r, http.MethodPut, "/api/v1/assessments/"+id+"/language",
		model.LanguageRequest{Language: "javascript"})
	if w.Code != http.StatusConflict {
		t.Fatalf("unconfirmed language change returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "CONFIRMATION_REQUIRED" {
		t.Fatalf("expected CONFIRMATION_REQUIRED, got %+v", env.Error)
	}

	w, env = doJSON(t, r, http.MethodPut, "/api/v1/assessments/"+id+"/language",
		model.LanguageRequest{Language: "javascript", Confirm: true})
	if w.Code != http.StatusOK {
		t.Fatalf("confirmed language change returned %d: %s", w.Code, w.Body.String())
	}
	var st struct {
		Language string `json:"language"`
	}
	json.Unmarshal(env.Data, &st)
	if st.Language != "javascript" {
		t.Fatalf("language not switched: %+v", st)
	}

	w, env = doJSON(t, r, http.MethodPut, "/api/v1/assessments/"+id+"/language",
		model.LanguageRequest{Language: "rust", Confirm: true})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unsupported language returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestSubmitFlow(t *testing.T) {
	r := newTestRouter(t, 0)
	id := startAssessment(t, r)

	// Incomplete submit is rejected with the unanswered set.
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/assessments/"+id+"/submit",
		model.SubmitRequest{Draft: "def twoSum(): return [0, 1]"})
	if w.Code != http.StatusConflict {
		t.Fatalf("incomplete submit returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "SUBMISSION_NOT_CONFIRMED" {
		t.Fatalf("expected SUBMISSION_NOT_CONFIRMED, got %+v", env.Error)
	}
	var detail struct {
		Unanswered []int `json:"unanswered"`
	}
	json.Unmarshal(env.Data, &detail)
	if len(detail.Unanswered) != 2 {
		t.Fatalf("expected 2 unanswered questions, got %v", detail.Unanswered)
	}

	// Report before any submission conflicts.
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/assessments/"+id+"/report", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("premature report returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "NO_SUBMISSION" {
		t.Fatalf("expected NO_SUBMISSION, got %+v", env.Error)
	}

	// Confirmed incomplete submit succeeds.
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/assessments/"+id+"/submit",
		model.SubmitRequest{Draft: "def twoSum(): return [0, 1]", ConfirmIncomplete: true})
	if w.Code != http.StatusOK {
		t.Fatalf("confirmed submit returned %d: %s", w.Code, w.Body.String())
	}
	var rec struct {
		Forced        bool   `json:"forced"`
		TimeRemaining string `json:"time_remaining"`
	}
	json.Unmarshal(env.Data, &rec)
	if rec.Forced {
		t.Fatal("manual submit must not be forced")
	}
	if rec.TimeRemaining == "" {
		t.Fatal("record must capture the remaining time")
	}

	// Session is closed for further edits.
	w, env = doJSON(t, r, http.MethodPut, "/api/v1/assessments/"+id+"/answer",
		model.AnswerRequest{Draft: "late edit"})
	if w.Code != http.StatusConflict {
		t.Fatalf("post-submit edit returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "SESSION_CLOSED" {
		t.Fatalf("expected SESSION_CLOSED, got %+v", env.Error)
	}

	// Report is now available.
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/assessments/"+id+"/report", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report returned %d: %s", w.Code, w.Body.String())
	}
	var report struct {
		OverallScore   int    `json:"overall_score"`
		Recommendation string `json:"recommendation"`
	}
	json.Unmarshal(env.Data, &report)
	if report.Recommendation == "" {
		t.Fatalf("report missing recommendation: %s", string(env.Data))
	}
}

func TestResetAndUnknownID(t *testing.T) {
	r := newTestRouter(t, 0)
	id := startAssessment(t, r)

	w, _ := doJSON(t, r, http.MethodDelete, "/api/v1/assessments/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset returned %d", w.Code)
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/assessments/"+id+"/state", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("state after reset returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %+v", env.Error)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/assessments/not-a-uuid/state", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id returned %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_ID" {
		t.Fatalf("expected INVALID_ID, got %+v", env.Error)
	}
}
