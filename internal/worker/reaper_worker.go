package worker

import (
	"context"
	"time"

	"github.com/hirelens/assessment-backend/internal/service"
	"github.com/rs/zerolog"
)

// SweepInterval is how often the reaper scans for finished sessions.
const SweepInterval = time.Minute

// ReaperWorker drops finished in-memory sessions once their submission is
// older than the configured retention. Persisted Redis blobs are left
// untouched so reports stay available after the session is gone.
type ReaperWorker struct {
	svc       *service.AssessmentService
	retention time.Duration
	log       zerolog.Logger
}

// NewReaperWorker creates a new ReaperWorker.
func NewReaperWorker(svc *service.AssessmentService, retention time.Duration, log zerolog.Logger) *ReaperWorker {
	return &ReaperWorker{
		svc:       svc,
		retention: retention,
		log:       log.With().Str("component", "reaper_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ReaperWorker) Start(ctx context.Context) {
	w.log.Info().Dur("retention", w.retention).Msg("Worker started")

	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// One final sweep so a clean shutdown releases every finished session.
			w.svc.Sweep(w.retention)
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.svc.Sweep(w.retention)
		}
	}
}
