package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"podcast-generator/internal/config"
)

// StatusError carries the provider's error body for a non-2xx synthesis response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("text-to-speech request failed with status %d: %s", e.StatusCode, e.Body)
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Client synthesizes speech with the ElevenLabs text-to-speech API.
type Client struct {
	httpClient *http.Client
	conf       *config.TTSConfig
}

func NewClient(httpClient *http.Client, conf *config.TTSConfig) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, conf: conf}
}

// Synthesize returns the full audio/mpeg payload for text spoken by voiceID.
func (c *Client) Synthesize(ctx context.Context, voiceID, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.conf.ModelID,
		VoiceSettings: VoiceSettings{
			Stability:       c.conf.Stability,
			SimilarityBoost: c.conf.SimilarityBoost,
			Style:           c.conf.Style,
			UseSpeakerBoost: c.conf.SpeakerBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.conf.APIURL, "/") + "/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.conf.APIKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Error().
			Int("status", res.StatusCode).
			Str("voice_id", voiceID).
			Str("body", string(body)).
			Msg("Synthesis request returned non-OK status code")
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}

	return body, nil
}
