package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeGeneratePodcast = "podcast:generate"
	TypeReapStaleJobs   = "jobs:reap-stale"
)

type GeneratePodcastTaskPayload struct {
	JobID string
}

// NewGeneratePodcastTask builds a task for an existing ledger job. Generation
// is never retried, so the task carries MaxRetry(0).
func NewGeneratePodcastTask(jobID string) (*asynq.Task, error) {
	payload, err := json.Marshal(GeneratePodcastTaskPayload{JobID: jobID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGeneratePodcast, payload, asynq.MaxRetry(0)), nil
}

func NewReapStaleJobsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeReapStaleJobs, nil, asynq.MaxRetry(0)), nil
}
