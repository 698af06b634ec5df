package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/hirelens/assessment-backend/internal/response"
	"github.com/hirelens/assessment-backend/internal/service"
	"github.com/hirelens/assessment-backend/internal/session"
	"github.com/hirelens/assessment-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AssessmentHandler handles all endpoints of a live assessment session.
type AssessmentHandler struct {
	svc *service.AssessmentService
	log zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(svc *service.AssessmentService, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		svc: svc,
		log: log.With().Str("component", "assessment_handler").Logger(),
	}
}

func parseAssessmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failSession maps session-layer errors onto the API error taxonomy.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, session.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	case errors.Is(err, session.ErrConfirmationRequired):
		response.Fail(c, http.StatusConflict, response.ErrConfirmationRequired)
	case errors.Is(err, session.ErrSessionClosed):
		response.Fail(c, http.StatusConflict, response.ErrSessionClosed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GetState godoc
// GET /api/v1/assessments/:id/state
// Returns the full session snapshot for rendering or reload recovery.
func (h *AssessmentHandler) GetState(c *gin.Context) {
	id, ok := parseAssessmentID(c)
	if !ok {
		return
	}

	st, err := h.svc.State(id)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// SwitchQuestion godoc
// POST /api/v1/assessments/:id/switch
// Saves the active draft, then navigates to the requested question. The
// draft survives even when the target index is rejected.
func (h *AssessmentHandler) SwitchQuestion(c *gin.Context) {
	id, ok := parseAssessmentID(c)
	if !ok {
		return
	}

	var req model.SwitchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.svc.SwitchTo(id, req.Index, req.Draft)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// SaveAnswer godoc
// PUT /api/v1/assessments/:id/answer
// Autosaves the active question's editor content.
func (h *AssessmentHandler) SaveAnswer(c *gin.Context) {
	id, ok := parseAssessmentID(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.svc.SaveDraft(id, req.Draft); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// ChangeLanguage godoc
// PUT /api/v1/assessments/:id/language
// Switches the editor language. Destructive for the active question's
// draft, so the request must carry confirm=true.
func (h *AssessmentHandler) ChangeLanguage(c *gin.Context) {
	id, ok := parseAssessmentID(c)
	if !ok {
		return
	}

	var req model.LanguageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.svc.ChangeLanguage(id, model.ParseLanguage(req.Language), req.Confirm)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// Submit godoc
// POST /api/v1/assessments/:id/submit
// Finalizes the assessment. An incomplete submission is rejected with the
// unanswered indices until the client confirms.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	id, ok := parseAssessmentID(c)
	if !ok {
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, unanswered, err := h.svc.Submit(id, req.Draft, req.ConfirmIncomplete)
	if err != nil {
		if errors.Is(err, session.ErrSubmissionAborted) {
			response.FailWithDetail(c, http.StatusConflict, response.ErrSubmissionAborted, gin.H{
				"unanswered": unanswered,
			})
			return
		}
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// GetReport godoc
// GET /api/v1/assessments/:id/report
// Evaluates the submission and returns the hiring report.
func (h *AssessmentHandler) GetReport(c *gin.Context) {
	id, ok := parseAssessmentID(c)
	if !ok {
		return
	}

	report, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNoSubmission) {
			response.Fail(c, http.StatusConflict, response.ErrNoSubmission)
			return
		}
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// ResetAssessment godoc
// DELETE /api/v1/assessments/:id
// Tears down the session and deletes its stored blobs.
func (h *AssessmentHandler) ResetAssessment(c *gin.Context) {
	id, ok := parseAssessmentID(c)
	if !ok {
		return
	}

	if err := h.svc.Reset(c.Request.Context(), id); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
