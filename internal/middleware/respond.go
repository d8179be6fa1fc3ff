package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// Failure is the body of every error response.
type Failure struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteFailure writes a failed-status payload with a human-readable message.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Failure{
		Status:    "failed",
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
