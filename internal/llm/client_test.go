package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"podcast-generator/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(nil, &config.LLMConfig{
		APIURL:      url,
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.6,
		MaxTokens:   2000,
	})
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 0.6, req.Temperature)
		assert.Equal(t, 2000, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Complete(context.Background(), "be brief", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestCompleteNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "s", "u")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "rate limited")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyReply)
}
