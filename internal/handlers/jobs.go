package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"
	"podcast-generator/internal/middleware"
)

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	job, err := h.store.GetJobForUser(r.Context(), id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.WriteFailure(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("job_id", id).Msg("Error getting job")
		middleware.WriteFailure(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}
