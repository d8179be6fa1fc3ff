package main

import (
	"context"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"podcast-generator/internal/config"
	"podcast-generator/internal/db"
	"podcast-generator/internal/llm"
	"podcast-generator/internal/logger"
	"podcast-generator/internal/pipeline"
	"podcast-generator/internal/storage"
	"podcast-generator/internal/tts"
	"podcast-generator/internal/worker"
	"podcast-generator/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file loaded")
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Setup(conf.Server.LogLevel, conf.Server.LogPretty)

	store, err := db.InitDB(context.Background(), conf.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to database")
	}
	defer store.Close()

	s3Svc, err := storage.NewS3Client(conf.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create storage client")
	}

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	p := pipeline.New(
		llm.NewClient(httpClient, conf.LLM),
		tts.NewClient(httpClient, conf.TTS),
		storage.NewS3Store(s3Svc, conf.Storage.Bucket),
		store,
		conf.Storage.SignedURLTTL,
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: conf.Redis.Addr},
		asynq.Config{
			// Each generation holds several model calls and one synthesis open.
			Concurrency: 2,
			Queues: map[string]int{
				"high":    2,
				"default": 1,
			},
			Logger: asynqLogger{},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(store, p, conf.Server.StaleJobAfter)

	mux.HandleFunc(tasks.TypeGeneratePodcast, taskHandler.HandleGeneratePodcastTask)
	mux.HandleFunc(tasks.TypeReapStaleJobs, taskHandler.HandleReapStaleJobsTask)

	log.Info().Str("commit", CommitSHA).Msg("Worker starting")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("Could not run worker")
	}
}
