package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"podcast-generator/internal/auth"
	"podcast-generator/internal/handlers"
	"podcast-generator/internal/middleware"
	"podcast-generator/internal/pipeline"
	"podcast-generator/internal/test"
)

type staticAuthenticator struct{}

func (staticAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	if token == "good-token" {
		return "user-1", nil
	}
	return "", auth.ErrInvalidToken
}

func newTestHandler() http.Handler {
	ledger := test.NewFakeLedger()
	blobs := test.NewFakeBlobStore()
	p := pipeline.New(test.NewScriptedCompleter(), &test.FakeSynthesizer{Audio: []byte("mp3")}, blobs, ledger, time.Hour)
	h := handlers.New(ledger, p, blobs, &test.MockTaskEnqueuer{}, time.Hour, "")
	return newHTTPHandler(zerolog.New(io.Discard), h, staticAuthenticator{}, middleware.NewRateLimiterMiddleware(rate.Inf, 1))
}

func TestPreflightSkipsAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/podcasts", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type, apikey, x-client-info")
	rr := httptest.NewRecorder()

	newTestHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rr.Header().Get("Access-Control-Allow-Headers")), "authorization")
}

func TestResponsesCarryCORSAndRequestID(t *testing.T) {
	body := `{"title":"AI Trends","script":"Discuss 2025 AI trends","voiceId":"voice_abc"}`
	req := httptest.NewRequest(http.MethodPost, "/podcasts", strings.NewReader(body))
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	newTestHandler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get("Request-Id"))
}

func TestUnauthorizedResponseCarriesCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/podcasts", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()

	newTestHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestPerMinute(t *testing.T) {
	assert.Equal(t, rate.Inf, perMinute(0))
	assert.InDelta(t, 0.1, float64(perMinute(6)), 1e-9)
}
