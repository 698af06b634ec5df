package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hirelens/assessment-backend/internal/config"
	"github.com/hirelens/assessment-backend/internal/evaluator"
	"github.com/hirelens/assessment-backend/internal/gateway"
	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/hirelens/assessment-backend/internal/repository"
	"github.com/hirelens/assessment-backend/internal/session"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound reports an assessment ID with no live session behind it.
var ErrSessionNotFound = errors.New("assessment session not found")

// ErrNoSubmission reports a report request for an assessment that has not
// been submitted.
var ErrNoSubmission = errors.New("assessment has no submission")

// AssessmentService owns the live sessions and orchestrates the full flow:
// analyze → answer → submit → report. One Controller per assessment; the
// map lock only guards lookup, never session state.
type AssessmentService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.Controller

	cfg  *config.Config
	gw   *gateway.Client
	repo repository.AssessmentRepository
	eval *evaluator.Evaluator
	log  zerolog.Logger
}

// NewAssessmentService creates the service.
func NewAssessmentService(cfg *config.Config, gw *gateway.Client, repo repository.AssessmentRepository, eval *evaluator.Evaluator, log zerolog.Logger) *AssessmentService {
	return &AssessmentService{
		sessions: make(map[uuid.UUID]*session.Controller),
		cfg:      cfg,
		gw:       gw,
		repo:     repo,
		eval:     eval,
		log:      log.With().Str("component", "assessment_service").Logger(),
	}
}

// Analyze runs the question-generation exchange and, on success, boots a
// fresh session with a running timer. A gateway failure leaves no trace: no
// session, no stored blob, and the caller may simply retry.
func (s *AssessmentService) Analyze(ctx context.Context, resume io.Reader, resumeName string, jd io.Reader, jdName string) (uuid.UUID, []model.Question, error) {
	questions, err := s.gw.AnalyzeApplication(ctx, resume, resumeName, jd, jdName)
	if err != nil {
		return uuid.Nil, nil, err
	}

	id := uuid.New()
	store := session.NewStore(model.ParseLanguage(s.cfg.DefaultLanguage), s.log)
	if err := store.SetQuestions(questions); err != nil {
		return uuid.Nil, nil, err
	}

	timer := session.NewTimer(s.cfg.SessionDuration)
	ctrl := session.NewController(id, store, timer, s.log)
	ctrl.OnSubmit(func(rec *model.SubmissionRecord, forced bool) {
		s.persistAndForward(rec, forced)
	})

	// The question blob must survive a client reload, so persist before the
	// session is reachable. A write failure is logged but not fatal: the
	// in-memory session still works for this run.
	if err := s.repo.SaveQuestions(ctx, id, questions); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", id.String()).Msg("Failed to persist question set")
	}

	s.mu.Lock()
	s.sessions[id] = ctrl
	s.mu.Unlock()

	ctrl.Start()
	s.log.Info().
		Str("assessment_id", id.String()).
		Int("questions", len(questions)).
		Msg("Assessment session started")
	return id, questions, nil
}

// persistAndForward runs inside the controller's submit path. The local
// record is authoritative, so the Redis write happens synchronously; the
// upstream forward is best-effort in the background.
func (s *AssessmentService) persistAndForward(rec *model.SubmissionRecord, forced bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.SaveSubmission(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("assessment_id", rec.AssessmentID.String()).Msg("Failed to persist submission record")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.GatewayTimeout)
		defer cancel()
		if err := s.gw.SubmitAssessment(ctx, rec); err != nil {
			s.log.Warn().Err(err).
				Str("assessment_id", rec.AssessmentID.String()).
				Bool("forced", forced).
				Msg("Upstream submission failed; local record remains authoritative")
		}
	}()
}

func (s *AssessmentService) controller(id uuid.UUID) (*session.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

// State returns the current session snapshot.
func (s *AssessmentService) State(id uuid.UUID) (session.State, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return session.State{}, err
	}
	return ctrl.State(), nil
}

// SwitchTo saves the active draft and navigates to another question.
func (s *AssessmentService) SwitchTo(id uuid.UUID, index int, draft string) (session.State, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return session.State{}, err
	}
	if err := ctrl.SwitchTo(index, draft); err != nil {
		return session.State{}, err
	}
	return ctrl.State(), nil
}

// SaveDraft autosaves the active question's editor content.
func (s *AssessmentService) SaveDraft(id uuid.UUID, draft string) error {
	ctrl, err := s.controller(id)
	if err != nil {
		return err
	}
	return ctrl.SaveDraft(draft)
}

// ChangeLanguage switches the editor language, gated on confirmation.
func (s *AssessmentService) ChangeLanguage(id uuid.UUID, lang model.Language, confirmed bool) (session.State, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return session.State{}, err
	}
	if err := ctrl.ChangeLanguage(lang, confirmed); err != nil {
		return session.State{}, err
	}
	return ctrl.State(), nil
}

// Record returns the submission record of a live session, if one exists.
func (s *AssessmentService) Record(id uuid.UUID) (*model.SubmissionRecord, bool, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return nil, false, err
	}
	rec, ok := ctrl.Record()
	return rec, ok, nil
}

// Submit finalizes the assessment. On an incomplete, unconfirmed attempt it
// returns session.ErrSubmissionAborted plus the unanswered indices.
func (s *AssessmentService) Submit(id uuid.UUID, draft string, confirmed bool) (*model.SubmissionRecord, []int, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return nil, nil, err
	}
	return ctrl.Submit(draft, confirmed)
}

// Report evaluates the submission and builds the hiring report. It prefers
// the live controller's record and falls back to the persisted blob, so
// reports survive a process restart.
func (s *AssessmentService) Report(ctx context.Context, id uuid.UUID) (*evaluator.Report, error) {
	if ctrl, err := s.controller(id); err == nil {
		if rec, ok := ctrl.Record(); ok {
			return s.eval.BuildReport(rec), nil
		}
		return nil, ErrNoSubmission
	}

	rec, err := s.repo.LoadSubmission(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.eval.BuildReport(rec), nil
}

// Reset tears down a live session and deletes its persisted blobs.
func (s *AssessmentService) Reset(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	ctrl, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if ok {
		ctrl.Close()
	}
	removed, err := s.repo.DeleteAssessment(ctx, id)
	if err != nil {
		return err
	}
	// A swept session leaves only the persisted blobs behind; deleting
	// those is still a successful reset.
	if !ok && removed == 0 {
		return ErrSessionNotFound
	}
	s.log.Info().Str("assessment_id", id.String()).Msg("Assessment session reset")
	return nil
}

// Sweep drops finished sessions whose submission is older than retention.
// Their persisted records stay in Redis; only the in-memory session goes.
func (s *AssessmentService) Sweep(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ctrl := range s.sessions {
		submittedAt, done := ctrl.Submitted()
		if done && submittedAt.Before(cutoff) {
			ctrl.Close()
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Info().Int("sessions", removed).Msg("Swept finished sessions")
	}
	return removed
}
