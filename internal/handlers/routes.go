package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router wires every endpoint. authMW guards everything except /health and
// limitMW is applied to the generation endpoints only.
func (h *Handlers) Router(authMW, limitMW mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(authMW)

	generate := api.NewRoute().Subrouter()
	generate.Use(limitMW)
	generate.HandleFunc("/podcasts", h.GeneratePodcast).Methods(http.MethodPost)
	generate.HandleFunc("/podcasts/jobs", h.EnqueuePodcast).Methods(http.MethodPost)

	api.HandleFunc("/podcasts", h.ListPodcasts).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/feed.xml", h.GetFeed).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/{id}", h.GetPodcast).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", h.GetJob).Methods(http.MethodGet)

	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status": "unavailable"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
