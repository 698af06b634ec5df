package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Input files ───────────────────────────────────────────────────
	ErrInputMissing ErrCode = "INPUT_MISSING"
	ErrFileTooLarge ErrCode = "FILE_TOO_LARGE"

	// ─── Assessment lifecycle ──────────────────────────────────────────
	ErrNotFound             ErrCode = "NOT_FOUND"
	ErrIndexOutOfRange      ErrCode = "INDEX_OUT_OF_RANGE"
	ErrConfirmationRequired ErrCode = "CONFIRMATION_REQUIRED"
	ErrSubmissionAborted    ErrCode = "SUBMISSION_NOT_CONFIRMED"
	ErrSessionClosed        ErrCode = "SESSION_CLOSED"
	ErrNoSubmission         ErrCode = "NO_SUBMISSION"
	ErrUpstreamUnavailable  ErrCode = "UPSTREAM_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Input files ───────────────────────────────────────────────────
	case ErrInputMissing:
		return "Both a resume and a job description file are required."
	case ErrFileTooLarge:
		return "Uploaded file exceeds the size limit."

	// ─── Assessment lifecycle ──────────────────────────────────────────
	case ErrNotFound:
		return "Assessment not found."
	case ErrIndexOutOfRange:
		return "Question index is out of range."
	case ErrConfirmationRequired:
		return "This action discards work and must be confirmed."
	case ErrSubmissionAborted:
		return "Some questions are unanswered. Confirm to submit anyway."
	case ErrSessionClosed:
		return "This assessment has already been submitted."
	case ErrNoSubmission:
		return "No submission exists for this assessment yet."
	case ErrUpstreamUnavailable:
		return "Question generation is temporarily unavailable. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
