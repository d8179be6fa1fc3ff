package handlers

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
	"podcast-generator/internal/feed"
	"podcast-generator/internal/middleware"
)

func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	episodes, err := h.signedEpisodes(r, userID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error getting episodes")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rss, err := feed.GenerateRSS(episodes, feed.BaseURL(h.baseURL, r))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error generating RSS")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
