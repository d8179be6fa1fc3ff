package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"podcast-generator/internal/models"
	"podcast-generator/internal/pipeline"
	"podcast-generator/pkg/tasks"
)

// StaleJobMessage is recorded on jobs the reaper fails.
const StaleJobMessage = "job abandoned: no progress before the stale deadline"

// JobStore is the ledger access the task handlers need.
type JobStore interface {
	GetJob(ctx context.Context, id string) (models.GenerationJob, error)
	FailStaleJobs(ctx context.Context, cutoff time.Time, message string) (int64, error)
}

// Executor runs the pipeline for an existing job.
type Executor interface {
	Execute(ctx context.Context, job models.GenerationJob) (*pipeline.Result, error)
}

type TaskHandler struct {
	store      JobStore
	executor   Executor
	staleAfter time.Duration
	now        func() time.Time
}

func NewTaskHandler(store JobStore, executor Executor, staleAfter time.Duration) *TaskHandler {
	return &TaskHandler{store: store, executor: executor, staleAfter: staleAfter, now: time.Now}
}

// HandleGeneratePodcastTask runs a queued job. A failed run has already been
// recorded on the job, so it is never retried.
func (h *TaskHandler) HandleGeneratePodcastTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.GeneratePodcastTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := log.With().Str("job_id", p.JobID).Logger()

	job, err := h.store.GetJob(ctx, p.JobID)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Warn().Msg("Job no longer exists, dropping task")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", p.JobID, err)
	}

	if job.Status != models.JobStatusProcessing {
		logger.Info().Str("status", string(job.Status)).Msg("Job already terminal, skipping")
		return nil
	}

	res, err := h.executor.Execute(ctx, job)
	if err != nil {
		return fmt.Errorf("job %s failed: %v: %w", job.ID, err, asynq.SkipRetry)
	}

	logger.Info().Str("episode_id", res.Episode.ID).Msg("Queued job completed")
	return nil
}

// HandleReapStaleJobsTask fails jobs left in processing past the stale
// deadline, e.g. after a worker crash.
func (h *TaskHandler) HandleReapStaleJobsTask(ctx context.Context, t *asynq.Task) error {
	cutoff := h.now().Add(-h.staleAfter)

	n, err := h.store.FailStaleJobs(ctx, cutoff, StaleJobMessage)
	if err != nil {
		return fmt.Errorf("failed to reap stale jobs: %w", err)
	}

	log.Debug().Int64("count", n).Time("cutoff", cutoff).Msg("Stale job sweep finished")
	return nil
}
