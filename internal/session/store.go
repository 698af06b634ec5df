package session

import (
	"sort"
	"strings"

	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/rs/zerolog"
)

// MinQuestionCount is the number of questions the generation backend is
// expected to produce. Receiving fewer is logged, not rejected.
const MinQuestionCount = 3

// Store holds the ordered question list and the per-question draft answers
// of one assessment session. Absence of an answer is distinct from an empty
// string: an entry appears only once the candidate visits or edits the
// question.
//
// Store carries no lock of its own. It is touched only by the Controller,
// which serializes every access — the single-actor model of the session.
type Store struct {
	questions []model.Question
	answers   map[int]string
	language  model.Language
	log       zerolog.Logger
}

// NewStore creates an empty Store using lang for untouched-answer templates.
func NewStore(lang model.Language, log zerolog.Logger) *Store {
	return &Store{
		answers:  make(map[int]string),
		language: lang,
		log:      log.With().Str("component", "session_store").Logger(),
	}
}

// SetQuestions installs the question list. Called exactly once per session,
// on receipt from the generation backend; the list is never mutated after.
// An empty list is rejected; fewer than MinQuestionCount only warns.
func (s *Store) SetQuestions(qs []model.Question) error {
	if len(qs) == 0 {
		return ErrInvalidData
	}
	if len(qs) < MinQuestionCount {
		s.log.Warn().
			Int("count", len(qs)).
			Int("expected", MinQuestionCount).
			Msg("Backend returned fewer questions than expected")
	}
	s.questions = make([]model.Question, len(qs))
	copy(s.questions, qs)
	return nil
}

// Questions returns the immutable question list.
func (s *Store) Questions() []model.Question {
	return s.questions
}

// Len returns the number of questions.
func (s *Store) Len() int {
	return len(s.questions)
}

// Question returns the question at index.
func (s *Store) Question(index int) (model.Question, error) {
	if index < 0 || index >= len(s.questions) {
		return model.Question{}, ErrIndexOutOfRange
	}
	return s.questions[index], nil
}

// SaveAnswer stores the draft code for the question at index.
func (s *Store) SaveAnswer(index int, code string) error {
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}
	s.answers[index] = code
	return nil
}

// Answer returns the stored draft for index, or the language-appropriate
// starter template when the question has not been visited.
func (s *Store) Answer(index int) (string, error) {
	if index < 0 || index >= len(s.questions) {
		return "", ErrIndexOutOfRange
	}
	if code, ok := s.answers[index]; ok {
		return code, nil
	}
	return Template(s.language, s.questions[index].FunctionName), nil
}

// ClearAnswer drops the stored draft for index so the template shows again.
// Used by the destructive language change for the active question.
func (s *Store) ClearAnswer(index int) {
	delete(s.answers, index)
}

// Unanswered returns the sorted indices whose answer is absent, empty after
// trimming, or still equal to the unmodified starter template.
func (s *Store) Unanswered() []int {
	var indices []int
	for i, q := range s.questions {
		code, ok := s.answers[i]
		if !ok ||
			strings.TrimSpace(code) == "" ||
			code == Template(s.language, q.FunctionName) {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices
}

// Snapshot returns a copy of the answer map for a submission record.
func (s *Store) Snapshot() map[int]string {
	out := make(map[int]string, len(s.answers))
	for i, code := range s.answers {
		out[i] = code
	}
	return out
}

// Language returns the current editor language.
func (s *Store) Language() model.Language {
	return s.language
}

// SetLanguage switches the editor language. The confirmation gate lives in
// the Controller; by this point the change is committed.
func (s *Store) SetLanguage(lang model.Language) {
	s.language = lang
}
