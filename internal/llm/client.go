package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"podcast-generator/internal/config"
)

// ErrEmptyReply is returned when the provider answers without any message content.
var ErrEmptyReply = errors.New("language model returned no content")

// StatusError is returned when the completion endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Body)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat-completion endpoint.
type Client struct {
	httpClient *http.Client
	conf       *config.LLMConfig
}

func NewClient(httpClient *http.Client, conf *config.LLMConfig) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, conf: conf}
}

// Complete sends one system instruction and one user message and returns the
// text of the first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.conf.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.conf.Temperature,
		MaxTokens:   c.conf.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.conf.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.conf.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Error().
			Int("status", res.StatusCode).
			Str("body", string(body)).
			Str("model", c.conf.Model).
			Msg("Completion request returned non-OK status code")
		return "", &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}

	return parsed.Choices[0].Message.Content, nil
}
