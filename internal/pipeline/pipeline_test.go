package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"podcast-generator/internal/models"
	"podcast-generator/internal/test"
	"podcast-generator/internal/tts"
)

type harness struct {
	llm    *test.FakeCompleter
	tts    *test.FakeSynthesizer
	blobs  *test.FakeBlobStore
	ledger *test.FakeLedger
	p      *Pipeline
}

func newHarness() *harness {
	h := &harness{
		llm:    test.NewScriptedCompleter(),
		tts:    &test.FakeSynthesizer{Audio: []byte("fake mp3 payload")},
		blobs:  test.NewFakeBlobStore(),
		ledger: test.NewFakeLedger(),
	}
	h.p = New(h.llm, h.tts, h.blobs, h.ledger, 24*time.Hour)
	return h
}

func aiTrendsRequest() models.PodcastRequest {
	return models.PodcastRequest{
		Title:   "AI Trends",
		Script:  "Discuss 2025 AI trends",
		VoiceID: "voice_abc",
		Style:   models.StyleEducational,
	}
}

func onlyJob(t *testing.T, ledger *test.FakeLedger) *models.GenerationJob {
	require.Len(t, ledger.Jobs, 1)
	for _, job := range ledger.Jobs {
		return job
	}
	return nil
}

func TestRunSucceeds(t *testing.T) {
	h := newHarness()

	res, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())
	require.NoError(t, err)

	ep := res.Episode
	assert.Equal(t, models.JobStatusSucceeded, res.Job.Status)
	assert.Equal(t, models.StyleEducational, ep.Style)
	assert.Equal(t, "voice_abc", ep.VoiceID)
	assert.GreaterOrEqual(t, ep.DurationSeconds, 60)
	assert.Equal(t, models.AudioFormatMPEG, ep.AudioFormat)
	assert.Equal(t, int64(len("fake mp3 payload")), ep.FileSize)
	assert.Equal(t, test.ShowNotesReply, ep.ShowNotes)
	assert.Len(t, ep.Outline, 3)
	assert.Len(t, ep.Segments, 3)

	assert.True(t, strings.HasPrefix(ep.AudioURL, "user-1/"))
	assert.Contains(t, h.blobs.Objects, ep.AudioURL)
	assert.Contains(t, ep.AudioSignedURL, "expires=86400")

	job := onlyJob(t, h.ledger)
	assert.Equal(t, models.JobStatusSucceeded, job.Status)
	require.NotNil(t, job.ResultEpisodeID)
	assert.Equal(t, ep.ID, *job.ResultEpisodeID)
	assert.Len(t, h.ledger.Episodes, 1)
	assert.Equal(t, 0, h.ledger.FailCalls)

	assert.Equal(t, []string{"outline", "segments", "notes"}, h.llm.Calls)
	assert.Equal(t, "voice_abc", h.tts.VoiceID)
	assert.Equal(t, ep.Script, h.tts.Text)
}

func TestNarrationRoundTrip(t *testing.T) {
	h := newHarness()

	res, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())
	require.NoError(t, err)

	var scripts []string
	for _, seg := range res.Episode.Segments {
		scripts = append(scripts, seg.Script)
	}
	joined := strings.Join(scripts, "\n\n")
	assert.Equal(t, joined, res.Episode.Script)
	assert.Equal(t, EstimateDurationSeconds(joined), res.Episode.DurationSeconds)
}

func TestRunOutlineWithoutJSONFails(t *testing.T) {
	h := newHarness()
	h.llm.Replies["outline"] = "Sure! This episode will talk about agents and small models."

	res, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())
	assert.Nil(t, res)

	var cerr *GenerationContractError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), "outline generation failed")

	job := onlyJob(t, h.ledger)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "outline generation failed")

	assert.Equal(t, []string{"outline"}, h.llm.Calls)
	assert.Equal(t, 0, h.tts.Calls)
	assert.Empty(t, h.blobs.Objects)
	assert.Empty(t, h.ledger.Episodes)
}

func TestRunSynthesisFailure(t *testing.T) {
	h := newHarness()
	h.tts.Err = &tts.StatusError{StatusCode: 503, Body: `{"detail":"service unavailable"}`}

	_, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())

	var serr *SynthesisError
	require.True(t, errors.As(err, &serr))

	job := onlyJob(t, h.ledger)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "synthesis failed")
	assert.Contains(t, *job.ErrorMessage, "service unavailable")
	assert.Empty(t, h.blobs.Objects)
	assert.Empty(t, h.ledger.Episodes)
}

func TestRunEmptyNarrationFails(t *testing.T) {
	h := newHarness()
	h.llm.Replies["segments"] = `{"segments":[{"title":"A","summary":"a","script":"   "}]}`

	_, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())

	assert.ErrorIs(t, err, ErrContractViolated)
	assert.Equal(t, models.JobStatusFailed, onlyJob(t, h.ledger).Status)
	assert.Equal(t, 0, h.tts.Calls)
}

func TestRunUploadFailure(t *testing.T) {
	h := newHarness()
	h.blobs.PutErr = errors.New("bucket unreachable")

	_, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "upload", serr.Op)
	assert.Equal(t, models.JobStatusFailed, onlyJob(t, h.ledger).Status)
	assert.Empty(t, h.ledger.Episodes)
}

func TestRunInsertFailureLeavesBlob(t *testing.T) {
	h := newHarness()
	h.ledger.CompleteErr = errors.New("insert violates constraint")

	_, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "insert episode", serr.Op)

	job := onlyJob(t, h.ledger)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, *job.ErrorMessage, "insert violates constraint")
	assert.Len(t, h.blobs.Objects, 1)
	assert.Empty(t, h.ledger.Episodes)
}

func TestRunCreateJobFailure(t *testing.T) {
	h := newHarness()
	h.ledger.CreateErr = errors.New("connection refused")

	_, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Empty(t, h.llm.Calls)
	assert.Equal(t, 0, h.ledger.FailCalls)
}

func TestRunCanceled(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	h.llm.Errs["segments"] = context.Canceled
	cancel()

	_, err := h.p.Run(ctx, "user-1", aiTrendsRequest())
	require.Error(t, err)

	job := onlyJob(t, h.ledger)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.True(t, strings.HasPrefix(*job.ErrorMessage, "canceled: "))
}

type panickingSynthesizer struct{}

func (panickingSynthesizer) Synthesize(context.Context, string, string) ([]byte, error) {
	panic("codec exploded")
}

func TestRunRecoversPanic(t *testing.T) {
	h := newHarness()
	h.p = New(h.llm, panickingSynthesizer{}, h.blobs, h.ledger, time.Hour)

	_, err := h.p.Run(context.Background(), "user-1", aiTrendsRequest())
	assert.ErrorContains(t, err, "codec exploded")

	job := onlyJob(t, h.ledger)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, *job.ErrorMessage, "pipeline panic")
}

func TestExecuteExistingJob(t *testing.T) {
	h := newHarness()
	job, err := h.ledger.CreateJob(context.Background(), "user-9", aiTrendsRequest())
	require.NoError(t, err)

	res, err := h.p.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, job.ID, res.Job.ID)
	assert.Equal(t, models.JobStatusSucceeded, h.ledger.Jobs[job.ID].Status)
}
