// Package pipeline runs podcast generation: outline, segments, show notes,
// speech synthesis and artifact persistence, recorded in the job ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"podcast-generator/internal/models"
	"podcast-generator/internal/storage"
)

// Completer issues one chat completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Synthesizer turns narration into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, voiceID, text string) ([]byte, error)
}

// BlobStore persists audio artifacts and signs read URLs for them.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Ledger records job lifecycle. CompleteJobWithEpisode inserts the episode and
// performs the succeeded transition atomically.
type Ledger interface {
	CreateJob(ctx context.Context, userID string, req models.PodcastRequest) (models.GenerationJob, error)
	FailJob(ctx context.Context, id string, message string) error
	CompleteJobWithEpisode(ctx context.Context, jobID string, episode *models.Episode) error
}

// Result is the outcome of a successful run.
type Result struct {
	Job     models.GenerationJob
	Episode models.Episode
}

type Pipeline struct {
	llm          Completer
	tts          Synthesizer
	blobs        BlobStore
	ledger       Ledger
	signedURLTTL time.Duration
	objectKey    func(userID string) string
}

func New(completer Completer, synthesizer Synthesizer, blobs BlobStore, ledger Ledger, signedURLTTL time.Duration) *Pipeline {
	return &Pipeline{
		llm:          completer,
		tts:          synthesizer,
		blobs:        blobs,
		ledger:       ledger,
		signedURLTTL: signedURLTTL,
		objectKey:    storage.ObjectKey,
	}
}

// Run creates the job ledger entry for req and executes the pipeline. req
// must already be validated.
func (p *Pipeline) Run(ctx context.Context, userID string, req models.PodcastRequest) (*Result, error) {
	job, err := p.ledger.CreateJob(ctx, userID, req)
	if err != nil {
		return nil, &StorageError{Op: "create job", Err: err}
	}
	return p.Execute(ctx, job)
}

// Execute runs every stage for an existing processing job. Whatever happens,
// the job leaves Execute in a terminal state.
func (p *Pipeline) Execute(ctx context.Context, job models.GenerationJob) (res *Result, err error) {
	logger := log.With().Str("job_id", job.ID).Str("user_id", job.UserID).Logger()
	guard := &jobGuard{ledger: p.ledger, jobID: job.ID, logger: logger}
	defer guard.release(ctx, &err)

	req := job.Request
	started := time.Now()

	logger.Info().Str("stage", stageOutline).Msg("Generating outline")
	outline, err := p.generateOutline(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("stage", stageSegments).Int("sections", len(outline)).Msg("Generating segments")
	segments, err := p.generateSegments(ctx, req, outline)
	if err != nil {
		return nil, err
	}

	script := BuildNarration(segments)
	if script == "" {
		return nil, contractError(stageSegments, "segments contain no narration")
	}

	logger.Info().Str("stage", stageShowNotes).Int("segments", len(segments)).Msg("Generating show notes")
	showNotes, err := p.generateShowNotes(ctx, req, segments)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("stage", "synthesis").Int("characters", len(script)).Msg("Synthesizing audio")
	audio, err := p.tts.Synthesize(ctx, req.VoiceID, script)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	episode := models.Episode{
		UserID:          job.UserID,
		Title:           req.Title,
		Description:     req.Description,
		VoiceID:         req.VoiceID,
		Style:           req.Style,
		DurationSeconds: EstimateDurationSeconds(script),
		Script:          script,
		Outline:         outline,
		Segments:        segments,
		ShowNotes:       showNotes,
		AudioFormat:     models.AudioFormatMPEG,
		FileSize:        int64(len(audio)),
	}

	logger.Info().Str("stage", "store").Int64("bytes", episode.FileSize).Msg("Storing artifact")
	if err = p.store(ctx, job.ID, &episode, audio); err != nil {
		return nil, err
	}
	guard.succeeded()

	job.Status = models.JobStatusSucceeded
	job.ResultEpisodeID = &episode.ID
	logger.Info().
		Str("episode_id", episode.ID).
		Int("duration_seconds", episode.DurationSeconds).
		Dur("elapsed", time.Since(started)).
		Msg("Podcast generated")

	return &Result{Job: job, Episode: episode}, nil
}

// store uploads the audio, signs a read URL and records the episode. A failed
// insert leaves the uploaded object in place.
func (p *Pipeline) store(ctx context.Context, jobID string, episode *models.Episode, audio []byte) error {
	key := p.objectKey(episode.UserID)
	if err := p.blobs.Put(ctx, key, audio, episode.AudioFormat); err != nil {
		return &StorageError{Op: "upload", Err: err}
	}
	episode.AudioURL = key

	signed, err := p.blobs.SignedURL(ctx, key, p.signedURLTTL)
	if err != nil {
		return &StorageError{Op: "sign url", Err: err}
	}
	episode.AudioSignedURL = signed

	if err := p.ledger.CompleteJobWithEpisode(ctx, jobID, episode); err != nil {
		return &StorageError{Op: "insert episode", Err: err}
	}
	return nil
}

// jobGuard guarantees the failed transition on every exit path that did not
// reach success, including panics and cancellation.
type jobGuard struct {
	ledger Ledger
	jobID  string
	logger zerolog.Logger
	done   bool
}

func (g *jobGuard) succeeded() { g.done = true }

func (g *jobGuard) release(ctx context.Context, errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("pipeline panic: %v", r)
	}
	if g.done && *errp == nil {
		return
	}
	if *errp == nil {
		*errp = errors.New("pipeline ended without a result")
	}

	message := (*errp).Error()
	if ctx.Err() != nil {
		message = "canceled: " + message
	}

	g.logger.Error().Err(*errp).Msg("Podcast generation failed")
	if err := g.ledger.FailJob(context.WithoutCancel(ctx), g.jobID, message); err != nil {
		g.logger.Error().Err(err).Msg("Failed to record job failure")
	}
}
