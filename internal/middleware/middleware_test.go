package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"podcast-generator/internal/auth"
)

type stubAuthenticator struct {
	userID string
	err    error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if token != "good-token" {
		return "", auth.ErrInvalidToken
	}
	return s.userID, nil
}

func decodeFailure(t *testing.T, rr *httptest.ResponseRecorder) Failure {
	var body Failure
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestAuth(t *testing.T) {
	mw := Auth(stubAuthenticator{userID: "user-1"})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/podcasts", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()

		mockHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "user-1", userID)
			w.WriteHeader(http.StatusOK)
		})

		mw(mockHandler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("no authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/podcasts", nil)
		rr := httptest.NewRecorder()
		mw(nil).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		body := decodeFailure(t, rr)
		assert.Equal(t, "failed", body.Status)
		_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
		assert.NoError(t, err)
	})

	t.Run("invalid authorization header format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/podcasts", nil)
		req.Header.Set("Authorization", "tma sometoken")
		rr := httptest.NewRecorder()
		mw(nil).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/podcasts", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rr := httptest.NewRecorder()
		mw(nil).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("identity provider down", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/podcasts", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		Auth(stubAuthenticator{err: errors.New("dial tcp: refused")})(nil).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiterMiddleware(rate.Every(time.Hour), 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/podcasts", nil)
		if userID != "" {
			req = req.WithContext(WithUserID(req.Context(), userID))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("user-1"))
	assert.Equal(t, http.StatusOK, call("user-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("user-1"))
	assert.Equal(t, http.StatusOK, call("user-2"))
	assert.Equal(t, http.StatusUnauthorized, call(""))
}
