package model

// SwitchRequest moves the session to another question. Draft carries the
// editor content for the question being left, flushed before the move.
type SwitchRequest struct {
	Index int    `json:"index" binding:"min=0"`
	Draft string `json:"draft"`
}

// AnswerRequest autosaves the editor content for the active question.
type AnswerRequest struct {
	Draft string `json:"draft"`
}

// LanguageRequest changes the editor language. The change discards the active
// question's in-progress code, so it must be explicitly confirmed.
type LanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=python javascript java cpp c"`
	Confirm  bool   `json:"confirm"`
}

// SubmitRequest finishes the assessment. ConfirmIncomplete acknowledges the
// unanswered-questions warning; without it an incomplete submit is aborted.
type SubmitRequest struct {
	Draft             string `json:"draft"`
	ConfirmIncomplete bool   `json:"confirm_incomplete"`
}
