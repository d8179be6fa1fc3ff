package pipeline

import (
	"math"
	"strings"

	"podcast-generator/internal/models"
)

const (
	WordsPerMinute     = 155
	MinDurationSeconds = 60
)

// EstimateDurationSeconds estimates the spoken length of script from its word
// count. It is an estimate only and never returns less than MinDurationSeconds.
func EstimateDurationSeconds(script string) int {
	words := len(strings.Fields(script))
	seconds := int(math.Round(float64(words) / WordsPerMinute * 60))
	if seconds < MinDurationSeconds {
		return MinDurationSeconds
	}
	return seconds
}

// BuildNarration joins segment scripts in model order with a blank line
// between them. Segments whose script is empty are kept in the episode but
// contribute nothing here.
func BuildNarration(segments models.Segments) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Script == "" {
			continue
		}
		parts = append(parts, seg.Script)
	}
	return strings.Join(parts, "\n\n")
}
