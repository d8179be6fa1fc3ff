package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"podcast-generator/internal/auth"
	"podcast-generator/internal/config"
	"podcast-generator/internal/db"
	"podcast-generator/internal/handlers"
	"podcast-generator/internal/llm"
	"podcast-generator/internal/logger"
	"podcast-generator/internal/middleware"
	"podcast-generator/internal/pipeline"
	"podcast-generator/internal/storage"
	"podcast-generator/internal/tts"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.InitDB(ctx, conf.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to database")
	}
	defer store.Close()

	s3Svc, err := storage.NewS3Client(conf.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create storage client")
	}
	blobs := storage.NewS3Store(s3Svc, conf.Storage.Bucket)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: conf.Redis.Addr})
	defer asynqClient.Close()

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	p := pipeline.New(
		llm.NewClient(httpClient, conf.LLM),
		tts.NewClient(httpClient, conf.TTS),
		blobs,
		store,
		conf.Storage.SignedURLTTL,
	)

	h := handlers.New(store, p, blobs, asynqClient, conf.Storage.SignedURLTTL, conf.Server.BaseURL)
	authn := auth.New(conf.Auth, &http.Client{Timeout: 10 * time.Second})
	limiter := middleware.NewRateLimiterMiddleware(perMinute(conf.Server.RateLimitPerMinute), conf.Server.RateLimitBurst)

	srv := &http.Server{
		Addr:              ":" + conf.Server.Port,
		Handler:           newHTTPHandler(log.Logger, h, authn, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().Str("port", conf.Server.Port).Str("commit", CommitSHA).Msg("Starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

// newHTTPHandler wraps the router with request logging and CORS. Preflight
// requests are answered before authentication runs.
func newHTTPHandler(logger zerolog.Logger, h *handlers.Handlers, authn auth.Authenticator, limiter *middleware.RateLimiterMiddleware) http.Handler {
	router := h.Router(middleware.Auth(authn), limiter.Middleware)

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Authorization", "Content-Type", "Apikey", "X-Client-Info"},
		OptionsSuccessStatus: http.StatusOK,
	})

	var handler http.Handler = c.Handler(router)
	handler = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	})(handler)
	handler = hlog.RequestIDHandler("req_id", "Request-Id")(handler)
	handler = hlog.RemoteAddrHandler("ip")(handler)
	handler = hlog.NewHandler(logger)(handler)
	return handler
}
