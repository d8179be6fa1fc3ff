package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"
	"podcast-generator/internal/middleware"
	"podcast-generator/internal/models"
	"podcast-generator/internal/pipeline"
	"podcast-generator/pkg/tasks"
)

const maxRequestBytes = 1 << 20

// GenerateResponse is returned when a synchronous run succeeds.
type GenerateResponse struct {
	JobID       string           `json:"jobId"`
	Status      models.JobStatus `json:"status"`
	Podcast     *models.Episode  `json:"podcast"`
	AudioBase64 *string          `json:"audioBase64"`
}

// EnqueueResponse is returned when a job has been queued for the worker.
type EnqueueResponse struct {
	JobID  string           `json:"jobId"`
	Status models.JobStatus `json:"status"`
}

// GeneratePodcast runs the whole pipeline within the request.
func (h *Handlers) GeneratePodcast(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	res, err := h.pipeline.Run(r.Context(), userID, req)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("user_id", userID).Msg("Podcast generation failed")
		middleware.WriteFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, GenerateResponse{
		JobID:   res.Job.ID,
		Status:  models.JobStatusSucceeded,
		Podcast: &res.Episode,
	})
}

// EnqueuePodcast records the job and hands it to the worker.
func (h *Handlers) EnqueuePodcast(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := h.readRequest(w, r)
	if !ok {
		return
	}
	logger := hlog.FromRequest(r)

	job, err := h.store.CreateJob(r.Context(), userID, req)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating job")
		middleware.WriteFailure(w, http.StatusInternalServerError, (&pipeline.StorageError{Op: "create job", Err: err}).Error())
		return
	}

	task, err := tasks.NewGeneratePodcastTask(job.ID)
	if err == nil {
		_, err = h.asynqClient.Enqueue(task)
	}
	if err != nil {
		logger.Error().Err(err).Str("job_id", job.ID).Msg("Error enqueuing task")
		message := fmt.Sprintf("failed to enqueue job: %v", err)
		if ferr := h.store.FailJob(r.Context(), job.ID, message); ferr != nil {
			logger.Error().Err(ferr).Str("job_id", job.ID).Msg("Failed to record job failure")
		}
		middleware.WriteFailure(w, http.StatusInternalServerError, message)
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, EnqueueResponse{JobID: job.ID, Status: job.Status})
}

func (h *Handlers) ListPodcasts(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	episodes, err := h.signedEpisodes(r, userID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error listing episodes")
		middleware.WriteFailure(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"podcasts": episodes})
}

func (h *Handlers) GetPodcast(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	episode, err := h.store.GetEpisodeForUser(r.Context(), id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.WriteFailure(w, http.StatusNotFound, "Podcast not found")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("episode_id", id).Msg("Error getting episode")
		middleware.WriteFailure(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if episode.AudioSignedURL, err = h.blobs.SignedURL(r.Context(), episode.AudioURL, h.signedURLTTL); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("episode_id", id).Msg("Error signing audio url")
		middleware.WriteFailure(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"podcast": episode})
}

// readRequest authenticates and validates. Failures here never touch the ledger.
func (h *Handlers) readRequest(w http.ResponseWriter, r *http.Request) (string, models.PodcastRequest, bool) {
	var req models.PodcastRequest

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteFailure(w, http.StatusUnauthorized, (&pipeline.AuthenticationError{}).Error())
		return "", req, false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		middleware.WriteFailure(w, http.StatusBadRequest, "request body is too large or unreadable")
		return "", req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		middleware.WriteFailure(w, http.StatusBadRequest, "request body must be a JSON object")
		return "", req, false
	}
	if err := pipeline.ValidateRequest(&req); err != nil {
		middleware.WriteFailure(w, http.StatusBadRequest, err.Error())
		return "", req, false
	}

	return userID, req, true
}

// signedEpisodes loads the user's episodes and mints a fresh URL for each.
func (h *Handlers) signedEpisodes(r *http.Request, userID string) ([]models.Episode, error) {
	episodes, err := h.store.GetEpisodesByUserID(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	for i := range episodes {
		signed, err := h.blobs.SignedURL(r.Context(), episodes[i].AudioURL, h.signedURLTTL)
		if err != nil {
			return nil, err
		}
		episodes[i].AudioSignedURL = signed
	}
	return episodes, nil
}
