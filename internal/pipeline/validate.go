package pipeline

import (
	"strings"

	"podcast-generator/internal/models"
)

// ValidateRequest checks the required fields and applies the default style.
func ValidateRequest(req *models.PodcastRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(req.Script) == "" {
		return &ValidationError{Field: "script", Message: "is required"}
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		return &ValidationError{Field: "voiceId", Message: "is required"}
	}
	if req.Style == "" {
		req.Style = models.StyleConversational
	}
	if !req.Style.Valid() {
		return &ValidationError{Field: "style", Message: "must be one of conversational, news, storytelling, educational"}
	}
	return nil
}
