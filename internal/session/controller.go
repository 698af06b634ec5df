package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/rs/zerolog"
)

// SubmitHook receives the finished SubmissionRecord. The Controller invokes
// it exactly once, while still holding the session lock, so callers observe
// the record before any later session action.
type SubmitHook func(rec *model.SubmissionRecord, forced bool)

// State is a point-in-time snapshot of the session for a view layer.
type State struct {
	AssessmentID     uuid.UUID        `json:"assessment_id"`
	Questions        []model.Question `json:"questions"`
	ActiveIndex      int              `json:"active_index"`
	ActiveAnswer     string           `json:"active_answer"`
	Answers          map[int]string   `json:"answers"`
	Language         model.Language   `json:"language"`
	RemainingSeconds int              `json:"remaining_seconds"`
	RemainingDisplay string           `json:"remaining_display"`
	Urgent           bool             `json:"urgent"`
	Running          bool             `json:"running"`
	Submitted        bool             `json:"submitted"`
}

// Controller mediates every transition of one assessment session: question
// navigation, draft autosave, language change, and the submit workflow.
//
// A single mutex serializes user-initiated actions and the timer expiry
// callback, so no session state is ever touched by two actors at once.
// Timer ticks decrement only the timer's own counter; they never reach
// session state directly.
type Controller struct {
	mu sync.Mutex

	id    uuid.UUID
	store *Store
	timer *Timer
	log   zerolog.Logger

	activeIndex int
	submitted   bool
	submittedAt time.Time
	record      *model.SubmissionRecord
	onSubmit    SubmitHook
}

// NewController wires a Controller to its store and timer and registers the
// expiry auto-submit. The timer is not started here; callers start it once
// the session is fully persisted.
func NewController(id uuid.UUID, store *Store, timer *Timer, log zerolog.Logger) *Controller {
	c := &Controller{
		id:    id,
		store: store,
		timer: timer,
		log:   log.With().Str("component", "session_controller").Str("assessment_id", id.String()).Logger(),
	}
	timer.OnExpire(c.expire)
	return c
}

// OnSubmit registers the hook that persists and forwards submission records.
func (c *Controller) OnSubmit(hook SubmitHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSubmit = hook
}

// ID returns the assessment identifier.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Start begins the countdown.
func (c *Controller) Start() {
	c.timer.Start()
}

// SwitchTo flushes the active draft into the store, then moves to index.
// The flush happens unconditionally — losing unsaved edits is the one bug
// this design must not reproduce — so even a rejected index keeps the draft.
func (c *Controller) SwitchTo(index int, draft string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrSessionClosed
	}
	if err := c.store.SaveAnswer(c.activeIndex, draft); err != nil {
		return err
	}
	if index < 0 || index >= c.store.Len() {
		return ErrIndexOutOfRange
	}
	c.activeIndex = index
	return nil
}

// SaveDraft autosaves the active question's editor content.
func (c *Controller) SaveDraft(draft string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrSessionClosed
	}
	return c.store.SaveAnswer(c.activeIndex, draft)
}

// ChangeLanguage switches the editor language. The active question's
// in-progress code is discarded so the new language's template shows; saved
// answers for other questions are untouched. Declined confirmation leaves
// everything unchanged.
func (c *Controller) ChangeLanguage(lang model.Language, confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrSessionClosed
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	c.store.SetLanguage(lang)
	c.store.ClearAnswer(c.activeIndex)
	return nil
}

// Submit flushes the active draft and finishes the session. When unanswered
// questions remain the submit must carry explicit confirmation, unless it is
// forced (timer expiry). A declined confirmation aborts with no state change
// beyond the flushed draft; the returned indices tell the caller what is
// still open.
func (c *Controller) Submit(draft string, confirmed bool) (*model.SubmissionRecord, []int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return nil, nil, ErrSessionClosed
	}
	if err := c.store.SaveAnswer(c.activeIndex, draft); err != nil {
		return nil, nil, err
	}

	unanswered := c.store.Unanswered()
	if len(unanswered) > 0 && !confirmed {
		return nil, unanswered, ErrSubmissionAborted
	}

	rec := c.finishLocked(false)
	return rec, unanswered, nil
}

// expire is the timer's expiry callback: submit as if user-triggered but
// with the confirmation gate skipped. Exactly once per session — a session
// already submitted manually ignores a late expiry.
func (c *Controller) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return
	}
	c.log.Info().Msg("Timer expired, forcing submission")
	c.finishLocked(true)
}

// finishLocked stops the timer, builds the write-once SubmissionRecord and
// hands it to the submit hook. Caller holds c.mu.
func (c *Controller) finishLocked(forced bool) *model.SubmissionRecord {
	c.timer.Stop()

	rec := &model.SubmissionRecord{
		AssessmentID:  c.id,
		SubmittedAt:   time.Now().UTC(),
		Questions:     c.store.Questions(),
		Answers:       c.store.Snapshot(),
		Language:      c.store.Language(),
		TimeRemaining: FormatRemaining(c.timer.Remaining()),
		Forced:        forced,
	}

	c.submitted = true
	c.submittedAt = time.Now()
	c.record = rec

	if c.onSubmit != nil {
		c.onSubmit(rec, forced)
	}
	return rec
}

// Record returns the submission record, if the session has finished.
func (c *Controller) Record() (*model.SubmissionRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record, c.submitted
}

// Submitted reports whether the session has finished, and when.
func (c *Controller) Submitted() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submittedAt, c.submitted
}

// State snapshots the session for rendering.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	active, _ := c.store.Answer(c.activeIndex)
	remaining := c.timer.Remaining()

	return State{
		AssessmentID:     c.id,
		Questions:        c.store.Questions(),
		ActiveIndex:      c.activeIndex,
		ActiveAnswer:     active,
		Answers:          c.store.Snapshot(),
		Language:         c.store.Language(),
		RemainingSeconds: remaining,
		RemainingDisplay: FormatRemaining(remaining),
		Urgent:           remaining < UrgentThresholdSeconds,
		Running:          c.timer.Running(),
		Submitted:        c.submitted,
	}
}

// Close stops the timer without submitting. Used when a session is torn down
// (reset or reaped) rather than finished.
func (c *Controller) Close() {
	c.timer.Stop()
}
