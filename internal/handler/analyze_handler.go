package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hirelens/assessment-backend/internal/config"
	"github.com/hirelens/assessment-backend/internal/gateway"
	"github.com/hirelens/assessment-backend/internal/response"
	"github.com/hirelens/assessment-backend/internal/service"
	"github.com/rs/zerolog"
)

// AnalyzeHandler handles the assessment bootstrap endpoint.
type AnalyzeHandler struct {
	svc *service.AssessmentService
	cfg *config.Config
	log zerolog.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(svc *service.AssessmentService, cfg *config.Config, log zerolog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		svc: svc,
		cfg: cfg,
		log: log.With().Str("component", "analyze_handler").Logger(),
	}
}

// AnalyzeApplication godoc
// POST /api/v1/assessments/analyze
// Uploads a resume and a job description, generates the question set, and
// starts a timed session. Both files are required; a missing file fails
// before anything is sent upstream.
func (h *AnalyzeHandler) AnalyzeApplication(c *gin.Context) {
	// Cap the body before the multipart parse so an oversized upload is
	// cut off mid-read instead of being buffered and rejected afterwards.
	// Two files plus headroom for part boundaries and headers.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.cfg.MaxUploadBytes+64<<10)

	resume, resumeHeader, err := c.Request.FormFile("resume")
	if err != nil {
		failUpload(c, err)
		return
	}
	defer resume.Close()

	jd, jdHeader, err := c.Request.FormFile("jd")
	if err != nil {
		failUpload(c, err)
		return
	}
	defer jd.Close()

	if resumeHeader.Size > h.cfg.MaxUploadBytes || jdHeader.Size > h.cfg.MaxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	id, questions, err := h.svc.Analyze(c.Request.Context(), resume, resumeHeader.Filename, jd, jdHeader.Filename)
	if err != nil {
		if errors.Is(err, gateway.ErrUpstream) {
			h.log.Error().Err(err).Msg("Question generation failed")
			response.Fail(c, http.StatusBadGateway, response.ErrUpstreamUnavailable)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"assessment_id": id,
		"questions":     questions,
	})
}

// failUpload maps a multipart parse failure to the right client error:
// a tripped body cap is 413, anything else means the part is missing.
func failUpload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}
	response.Fail(c, http.StatusBadRequest, response.ErrInputMissing)
}
