package handlers

import (
	"context"
	"time"

	"podcast-generator/internal/models"
	"podcast-generator/internal/pipeline"
	"podcast-generator/pkg/tasks"
)

// Store is the persistence the handlers read from and write to.
type Store interface {
	pipeline.Ledger
	GetJobForUser(ctx context.Context, id, userID string) (models.GenerationJob, error)
	GetEpisodesByUserID(ctx context.Context, userID string) ([]models.Episode, error)
	GetEpisodeForUser(ctx context.Context, id, userID string) (models.Episode, error)
	Ping(ctx context.Context) error
}

type Handlers struct {
	store        Store
	pipeline     *pipeline.Pipeline
	blobs        pipeline.BlobStore
	asynqClient  tasks.TaskEnqueuer
	signedURLTTL time.Duration
	baseURL      string
}

func New(store Store, p *pipeline.Pipeline, blobs pipeline.BlobStore, asynqClient tasks.TaskEnqueuer, signedURLTTL time.Duration, baseURL string) *Handlers {
	return &Handlers{
		store:        store,
		pipeline:     p,
		blobs:        blobs,
		asynqClient:  asynqClient,
		signedURLTTL: signedURLTTL,
		baseURL:      baseURL,
	}
}
