package test

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"podcast-generator/internal/models"
)

// FakeCompleter answers completions by matching a keyword in the system prompt.
type FakeCompleter struct {
	mu      sync.Mutex
	Replies map[string]string
	Errs    map[string]error
	Calls   []string
}

func (f *FakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stage := StageOf(system)
	f.Calls = append(f.Calls, stage)
	if err, ok := f.Errs[stage]; ok {
		return "", err
	}
	reply, ok := f.Replies[stage]
	if !ok {
		return "", fmt.Errorf("no scripted reply for %s", stage)
	}
	return reply, nil
}

// StageOf maps a system prompt to "outline", "segments" or "notes".
func StageOf(system string) string {
	switch {
	case strings.Contains(system, `"sections"`):
		return "outline"
	case strings.Contains(system, `"segments"`):
		return "segments"
	default:
		return "notes"
	}
}

// FakeSynthesizer returns Audio or Err and records the text it was given.
type FakeSynthesizer struct {
	Audio   []byte
	Err     error
	VoiceID string
	Text    string
	Calls   int
}

func (f *FakeSynthesizer) Synthesize(_ context.Context, voiceID, text string) ([]byte, error) {
	f.Calls++
	f.VoiceID = voiceID
	f.Text = text
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Audio, nil
}

// FakeBlobStore keeps objects in memory and refuses overwrites.
type FakeBlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	PutErr  error
	SignErr error
}

func NewFakeBlobStore() *FakeBlobStore {
	return &FakeBlobStore{Objects: map[string][]byte{}}
}

func (f *FakeBlobStore) Put(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PutErr != nil {
		return f.PutErr
	}
	if _, exists := f.Objects[key]; exists {
		return fmt.Errorf("%s: object already exists", key)
	}
	f.Objects[key] = data
	return nil
}

func (f *FakeBlobStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.SignErr != nil {
		return "", f.SignErr
	}
	return fmt.Sprintf("https://storage.test/%s?expires=%d", key, int(ttl.Seconds())), nil
}

// FakeLedger is an in-memory job ledger and episode table.
type FakeLedger struct {
	mu          sync.Mutex
	Jobs        map[string]*models.GenerationJob
	Episodes    map[string]models.Episode
	CreateErr   error
	CompleteErr error
	FailCalls   int
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		Jobs:     map[string]*models.GenerationJob{},
		Episodes: map[string]models.Episode{},
	}
}

func (f *FakeLedger) CreateJob(_ context.Context, userID string, req models.PodcastRequest) (models.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return models.GenerationJob{}, f.CreateErr
	}
	now := time.Now()
	job := &models.GenerationJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    models.JobStatusProcessing,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.Jobs[job.ID] = job
	return *job, nil
}

func (f *FakeLedger) FailJob(_ context.Context, id string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailCalls++
	job, ok := f.Jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	job.Status = models.JobStatusFailed
	job.ErrorMessage = &message
	return nil
}

func (f *FakeLedger) CompleteJobWithEpisode(_ context.Context, jobID string, episode *models.Episode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CompleteErr != nil {
		return f.CompleteErr
	}
	job, ok := f.Jobs[jobID]
	if !ok || job.Status != models.JobStatusProcessing {
		return fmt.Errorf("job %s is not processing", jobID)
	}
	episode.ID = uuid.NewString()
	episode.CreatedAt = time.Now()
	stored := *episode
	stored.AudioSignedURL = ""
	f.Episodes[episode.ID] = stored
	job.Status = models.JobStatusSucceeded
	job.ResultEpisodeID = &stored.ID
	return nil
}

func (f *FakeLedger) GetJob(_ context.Context, id string) (models.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.Jobs[id]
	if !ok {
		return models.GenerationJob{}, sql.ErrNoRows
	}
	return *job, nil
}

func (f *FakeLedger) GetJobForUser(ctx context.Context, id, userID string) (models.GenerationJob, error) {
	job, err := f.GetJob(ctx, id)
	if err != nil || job.UserID != userID {
		return models.GenerationJob{}, sql.ErrNoRows
	}
	return job, nil
}

func (f *FakeLedger) GetEpisodesByUserID(_ context.Context, userID string) ([]models.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	episodes := []models.Episode{}
	for _, ep := range f.Episodes {
		if ep.UserID == userID {
			episodes = append(episodes, ep)
		}
	}
	sort.Slice(episodes, func(i, j int) bool { return episodes[i].CreatedAt.After(episodes[j].CreatedAt) })
	return episodes, nil
}

func (f *FakeLedger) GetEpisodeForUser(_ context.Context, id, userID string) (models.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ep, ok := f.Episodes[id]
	if !ok || ep.UserID != userID {
		return models.Episode{}, sql.ErrNoRows
	}
	return ep, nil
}

func (f *FakeLedger) FailStaleJobs(_ context.Context, cutoff time.Time, message string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, job := range f.Jobs {
		if job.Status == models.JobStatusProcessing && job.CreatedAt.Before(cutoff) {
			msg := message
			job.Status = models.JobStatusFailed
			job.ErrorMessage = &msg
			n++
		}
	}
	return n, nil
}

func (f *FakeLedger) Ping(context.Context) error { return nil }

// Canned model replies shared by pipeline, handler and worker tests.
const (
	OutlineReply = "```json\n" + `{"sections":[
		{"title":"Opening","description":"Set the scene","talkingPoints":["Why 2025 matters"," "]},
		{"title":"Big trends","talkingPoints":["Agents","Smaller models"]},
		{"title":"Wrap up","talkingPoints":["Recap"]}
	]}` + "\n```"

	SegmentsReply = `Here you go: {"segments":[
		{"title":" Opening ","summary":"Welcome","script":"  Welcome to the show. Today we look at AI in 2025.  "},
		{"title":"Big trends","summary":"Agents and models","script":"Agents are everywhere and models keep shrinking."},
		{"title":"Wrap up","summary":"Recap","script":"Thanks for listening."}
	]}`

	ShowNotesReply = "## AI Trends\n- Agents\n- Smaller models"
)

// NewScriptedCompleter returns a completer that succeeds on every stage.
func NewScriptedCompleter() *FakeCompleter {
	return &FakeCompleter{
		Replies: map[string]string{
			"outline":  OutlineReply,
			"segments": SegmentsReply,
			"notes":    ShowNotesReply,
		},
		Errs: map[string]error{},
	}
}
