package models

import "time"

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// GenerationJob is one row of the job ledger.
type GenerationJob struct {
	ID              string         `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"user_id"`
	Status          JobStatus      `db:"status" json:"status"`
	Request         PodcastRequest `db:"request" json:"request"`
	ResultEpisodeID *string        `db:"result_episode_id" json:"result,omitempty"`
	ErrorMessage    *string        `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
