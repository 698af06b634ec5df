package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionRecord is the write-once snapshot produced at submit time.
// The locally persisted copy is authoritative; the network hand-off to the
// submission backend is best-effort and never mutates it.
type SubmissionRecord struct {
	AssessmentID  uuid.UUID      `json:"assessment_id"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	Questions     []Question     `json:"questions"`
	Answers       map[int]string `json:"answers"`
	Language      Language       `json:"language"`
	TimeRemaining string         `json:"time_remaining"`
	// Forced marks a timer-expiry auto-submit, which skips the
	// incomplete-answers confirmation gate.
	Forced bool `json:"forced"`
}
