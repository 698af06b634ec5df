package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hirelens/assessment-backend/internal/config"
	"github.com/hirelens/assessment-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound reports that no blob exists under the requested key.
var ErrNotFound = errors.New("assessment data not found")

// AssessmentRepository keeps the two reload-surviving blobs per assessment:
// the generated question set and the final submission record. Both are
// stored as opaque JSON values without expiry; the reaper worker handles
// cleanup of finished assessments.
type AssessmentRepository interface {
	SaveQuestions(ctx context.Context, id uuid.UUID, questions []model.Question) error
	LoadQuestions(ctx context.Context, id uuid.UUID) ([]model.Question, error)
	SaveSubmission(ctx context.Context, rec *model.SubmissionRecord) error
	LoadSubmission(ctx context.Context, id uuid.UUID) (*model.SubmissionRecord, error)
	DeleteAssessment(ctx context.Context, id uuid.UUID) (int64, error)
}

type assessmentRepository struct {
	rdb *redis.Client
}

// NewAssessmentRepository creates a Redis-backed AssessmentRepository.
func NewAssessmentRepository(rdb *redis.Client) AssessmentRepository {
	return &assessmentRepository{rdb: rdb}
}

func (r *assessmentRepository) SaveQuestions(ctx context.Context, id uuid.UUID, questions []model.Question) error {
	payload, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	key := config.CacheKey.AssessmentQuestionsKey(id.String())
	if err := r.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("store questions: %w", err)
	}
	return nil
}

func (r *assessmentRepository) LoadQuestions(ctx context.Context, id uuid.UUID) ([]model.Question, error) {
	key := config.CacheKey.AssessmentQuestionsKey(id.String())
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

func (r *assessmentRepository) SaveSubmission(ctx context.Context, rec *model.SubmissionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	key := config.CacheKey.AssessmentSubmissionKey(rec.AssessmentID.String())
	if err := r.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("store submission: %w", err)
	}
	return nil
}

func (r *assessmentRepository) LoadSubmission(ctx context.Context, id uuid.UUID) (*model.SubmissionRecord, error) {
	key := config.CacheKey.AssessmentSubmissionKey(id.String())
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	var rec model.SubmissionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &rec, nil
}

// DeleteAssessment removes both blobs and reports how many keys existed,
// so callers can tell a real teardown from a no-op on an unknown ID.
func (r *assessmentRepository) DeleteAssessment(ctx context.Context, id uuid.UUID) (int64, error) {
	keys := []string{
		config.CacheKey.AssessmentQuestionsKey(id.String()),
		config.CacheKey.AssessmentSubmissionKey(id.String()),
	}
	removed, err := r.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete assessment keys: %w", err)
	}
	return removed, nil
}
