package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"podcast-generator/internal/config"
)

// ErrInvalidToken is returned for any credential the identity provider rejects.
var ErrInvalidToken = errors.New("invalid or expired token")

// Authenticator resolves a bearer token to the caller's user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// New picks local JWT verification when a signing secret is configured and
// falls back to the identity provider's user endpoint otherwise.
func New(conf *config.AuthConfig, httpClient *http.Client) Authenticator {
	if conf.JWTSecret != "" {
		return NewJWTAuthenticator([]byte(conf.JWTSecret))
	}
	return NewRemoteAuthenticator(httpClient, conf.IdentityURL, conf.APIKey)
}

type jwtAuthenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTAuthenticator(secret []byte) Authenticator {
	return &jwtAuthenticator{
		secret: secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (a *jwtAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := a.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

type remoteAuthenticator struct {
	httpClient *http.Client
	userURL    string
	apiKey     string
}

func NewRemoteAuthenticator(httpClient *http.Client, userURL, apiKey string) Authenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &remoteAuthenticator{httpClient: httpClient, userURL: userURL, apiKey: apiKey}
}

type identityUser struct {
	ID string `json:"id"`
}

func (a *remoteAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if a.apiKey != "" {
		req.Header.Set("apikey", a.apiKey)
	}

	res, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read identity response: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return "", ErrInvalidToken
	case res.StatusCode < 200 || res.StatusCode > 299:
		log.Error().Int("status", res.StatusCode).Str("body", string(body)).Msg("Identity provider returned non-OK status code")
		return "", fmt.Errorf("identity provider returned status %d", res.StatusCode)
	}

	var user identityUser
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("failed to decode identity response: %w", err)
	}
	if user.ID == "" {
		return "", ErrInvalidToken
	}
	return user.ID, nil
}
