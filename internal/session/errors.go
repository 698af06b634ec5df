package session

import "errors"

// Sentinel errors for session operations. None of these are retried
// automatically; every failure leaves the session state unchanged so the
// caller may retry the triggering action.
var (
	// ErrInvalidData means the question-generation backend returned an
	// empty or unusable question set.
	ErrInvalidData = errors.New("invalid question data")

	// ErrIndexOutOfRange is an invariant violation: a question index that
	// no UI action should be able to produce.
	ErrIndexOutOfRange = errors.New("question index out of range")

	// ErrSubmissionAborted means the candidate declined the
	// incomplete-submission confirmation. Not a failure state: no-op, try again.
	ErrSubmissionAborted = errors.New("submission aborted: confirmation declined")

	// ErrConfirmationRequired means a destructive action (language change)
	// was requested without explicit confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrSessionClosed means the session has already been submitted.
	ErrSessionClosed = errors.New("session already submitted")
)
