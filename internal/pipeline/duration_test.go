package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"podcast-generator/internal/models"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestEstimateDurationSeconds(t *testing.T) {
	assert.Equal(t, 60, EstimateDurationSeconds(""))
	assert.Equal(t, 60, EstimateDurationSeconds(words(10)))
	assert.Equal(t, 60, EstimateDurationSeconds(words(155)))
	assert.Equal(t, 600, EstimateDurationSeconds(words(1550)))
	assert.Equal(t, 600, EstimateDurationSeconds("  "+strings.ReplaceAll(words(1550), " ", "\n\t ")+"  "))
}

func TestEstimateDurationSecondsMonotonic(t *testing.T) {
	prev := 0
	for n := 0; n <= 2000; n += 7 {
		got := EstimateDurationSeconds(words(n))
		assert.GreaterOrEqual(t, got, prev, "word count %d", n)
		assert.GreaterOrEqual(t, got, MinDurationSeconds)
		prev = got
	}
}

func TestBuildNarration(t *testing.T) {
	segments := models.Segments{
		{Title: "One", Script: "First part."},
		{Title: "Empty", Script: ""},
		{Title: "Two", Script: "Second part."},
	}
	assert.Equal(t, "First part.\n\nSecond part.", BuildNarration(segments))
	assert.Equal(t, "", BuildNarration(nil))
}
