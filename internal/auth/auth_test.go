package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"podcast-generator/internal/config"
)

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthenticator(t *testing.T) {
	authn := NewJWTAuthenticator([]byte("secret"))
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, "secret", jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: future})
		userID, err := authn.Authenticate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other", jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: future})
		_, err := authn.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, "secret", jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))})
		_, err := authn.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := signToken(t, "secret", jwt.RegisteredClaims{ExpiresAt: future})
		_, err := authn.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := authn.Authenticate(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRemoteAuthenticator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"user-42","email":"host@example.com"}`))
	}))
	defer srv.Close()

	authn := New(&config.AuthConfig{IdentityURL: srv.URL, APIKey: "anon-key"}, nil)

	userID, err := authn.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)

	_, err = authn.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
