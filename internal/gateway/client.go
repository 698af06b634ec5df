package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/hirelens/assessment-backend/internal/config"
	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrUpstream marks a failed exchange with the external assessment backend.
// Never retried automatically; the triggering action is simply retryable.
var ErrUpstream = errors.New("assessment backend exchange failed")

// analyzeResponse is the question-generation backend's reply envelope.
type analyzeResponse struct {
	Status    string           `json:"status"`
	Questions []model.Question `json:"questions"`
	Message   string           `json:"message"`
}

// Client talks to the external assessment backend: the question-generation
// exchange and the best-effort submission sink. Its internals (retries,
// model selection) are the backend's business, not ours.
type Client struct {
	httpClient *http.Client
	analyzeURL string
	submitURL  string
	log        zerolog.Logger
}

// NewClient creates a gateway Client from configuration.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GatewayTimeout},
		analyzeURL: cfg.AnalyzeURL,
		submitURL:  cfg.SubmitURL,
		log:        log.With().Str("component", "gateway").Logger(),
	}
}

// AnalyzeApplication uploads the resume and job-description files as a
// multipart request and returns the generated question set. Any non-2xx
// status or malformed body is an ErrUpstream: fatal for the analyze action,
// surfaced once, state unchanged so the caller may retry.
func (c *Client) AnalyzeApplication(ctx context.Context, resume io.Reader, resumeName string, jd io.Reader, jdName string) ([]model.Question, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	resumePart, err := mw.CreateFormFile("resume", resumeName)
	if err != nil {
		return nil, fmt.Errorf("build resume part: %w", err)
	}
	if _, err := io.Copy(resumePart, resume); err != nil {
		return nil, fmt.Errorf("copy resume: %w", err)
	}

	jdPart, err := mw.CreateFormFile("jd", jdName)
	if err != nil {
		return nil, fmt.Errorf("build jd part: %w", err)
	}
	if _, err := io.Copy(jdPart, jd); err != nil {
		return nil, fmt.Errorf("copy jd: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analyzeURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}
	if len(body.Questions) == 0 {
		return nil, fmt.Errorf("%w: response carried no questions", ErrUpstream)
	}

	c.log.Info().
		Int("questions", len(body.Questions)).
		Str("resume", resumeName).
		Str("jd", jdName).
		Msg("Questions generated")

	return body.Questions, nil
}

// SubmitAssessment hands the submission record to the backend. Best-effort:
// the response is logged only, and a failure here never invalidates the
// already-persisted local record.
func (c *Client) SubmitAssessment(ctx context.Context, rec *model.SubmissionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.submitURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	c.log.Info().
		Str("assessment_id", rec.AssessmentID.String()).
		Int("status", resp.StatusCode).
		Msg("Submission forwarded")
	return nil
}
