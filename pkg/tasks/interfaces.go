package tasks

import "github.com/hibiken/asynq"

// TaskEnqueuer is the part of asynq.Client the HTTP handlers need. Tests
// substitute a recorder.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
