package main

import (
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"podcast-generator/internal/config"
	"podcast-generator/internal/logger"
	"podcast-generator/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file loaded")
	}

	server, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Setup(server.LogLevel, server.LogPretty)
	redis := config.GetRedisConfig()

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redis.Addr},
		&asynq.SchedulerOpts{},
	)

	task, err := tasks.NewReapStaleJobsTask()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create task")
	}

	if _, err = scheduler.Register("@every 10m", task); err != nil {
		log.Fatal().Err(err).Msg("Could not register task")
	}

	log.Info().Str("commit", CommitSHA).Msg("Scheduler starting")
	if err := scheduler.Run(); err != nil {
		log.Fatal().Err(err).Msg("Could not run scheduler")
	}
}
