package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"podcast-generator/internal/models"
)

// ErrJobNotProcessing is returned when a success transition is attempted on a
// job that already reached a terminal state.
var ErrJobNotProcessing = errors.New("job is not in processing state")

const jobColumns = `id, user_id, status, request, result_episode_id, error_message, created_at, updated_at`

// CreateJob inserts a ledger row in the processing state.
func (s *Store) CreateJob(ctx context.Context, userID string, req models.PodcastRequest) (models.GenerationJob, error) {
	job := models.GenerationJob{}
	err := s.DB.GetContext(ctx, &job, `
		INSERT INTO generation_jobs (id, user_id, status, request)
		VALUES ($1, $2, $3, $4)
		RETURNING `+jobColumns,
		uuid.NewString(), userID, models.JobStatusProcessing, req)
	if err != nil {
		return job, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (models.GenerationJob, error) {
	job := models.GenerationJob{}
	err := s.DB.GetContext(ctx, &job, `SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1`, id)
	return job, err
}

func (s *Store) GetJobForUser(ctx context.Context, id, userID string) (models.GenerationJob, error) {
	job := models.GenerationJob{}
	err := s.DB.GetContext(ctx, &job, `SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1 AND user_id = $2`, id, userID)
	return job, err
}

// FailJob marks the job failed. It is unconditional so the most recent
// failure message always wins.
func (s *Store) FailJob(ctx context.Context, id string, message string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE generation_jobs
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3`,
		models.JobStatusFailed, message, id)
	if err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}

// FailStaleJobs fails every job still processing that was created before
// cutoff and returns how many rows were updated.
func (s *Store) FailStaleJobs(ctx context.Context, cutoff time.Time, message string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE generation_jobs
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE status = $3 AND created_at < $4`,
		models.JobStatusFailed, message, models.JobStatusProcessing, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to reap stale jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Warn().Int64("count", n).Time("cutoff", cutoff).Msg("Marked stale jobs as failed")
	}
	return n, nil
}
