package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Style is the narration style requested for an episode.
type Style string

const (
	StyleConversational Style = "conversational"
	StyleNews           Style = "news"
	StyleStorytelling   Style = "storytelling"
	StyleEducational    Style = "educational"
)

// Valid reports whether s is one of the supported styles.
func (s Style) Valid() bool {
	switch s {
	case StyleConversational, StyleNews, StyleStorytelling, StyleEducational:
		return true
	}
	return false
}

// PodcastRequest is the caller-supplied generation request.
type PodcastRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Script      string `json:"script"`
	VoiceID     string `json:"voiceId"`
	Style       Style  `json:"style,omitempty"`
}

// Value stores the request verbatim as JSON.
func (r PodcastRequest) Value() (driver.Value, error) {
	return jsonValue(r)
}

func (r *PodcastRequest) Scan(src interface{}) error {
	return scanJSON(src, r)
}

type OutlineSection struct {
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	TalkingPoints []string `json:"talkingPoints"`
}

// Outline is stored as a JSONB column on the episode.
type Outline []OutlineSection

func (o Outline) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return jsonValue(o)
}

func (o *Outline) Scan(src interface{}) error {
	return scanJSON(src, o)
}

type PodcastSegment struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Script  string `json:"script"`
}

// Segments is stored as a JSONB column on the episode.
type Segments []PodcastSegment

func (s Segments) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue(s)
}

func (s *Segments) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported type %T for JSON column", src)
	}
}
