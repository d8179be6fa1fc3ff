package test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"podcast-generator/internal/db"
)

// MockTaskEnqueuer is a mock implementation of tasks.TaskEnqueuer for testing.
type MockTaskEnqueuer struct {
	EnqueuedTasks []*asynq.Task
	Err           error
}

func (m *MockTaskEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.EnqueuedTasks = append(m.EnqueuedTasks, task)
	return &asynq.TaskInfo{ID: "test-task-id", Queue: "default"}, nil
}

func NewMockDB(t *testing.T) (*db.Store, sqlmock.Sqlmock) {
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() {
		mockDb.Close()
	})

	return db.New(sqlx.NewDb(mockDb, "sqlmock")), mock
}
