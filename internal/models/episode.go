package models

import "time"

// AudioFormatMPEG is the MIME type of every synthesized artifact.
const AudioFormatMPEG = "audio/mpeg"

// Episode is the persisted metadata of a generated podcast. AudioURL holds the
// storage key; AudioSignedURL is minted on read and never stored.
type Episode struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	AudioURL        string    `db:"audio_url" json:"audio_url"`
	AudioSignedURL  string    `db:"-" json:"audio_signed_url"`
	VoiceID         string    `db:"voice_id" json:"voice_id"`
	Style           Style     `db:"style" json:"style"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	Script          string    `db:"script" json:"script"`
	Outline         Outline   `db:"outline" json:"outline"`
	Segments        Segments  `db:"segments" json:"segments"`
	ShowNotes       string    `db:"show_notes" json:"show_notes"`
	AudioFormat     string    `db:"audio_format" json:"audio_format"`
	FileSize        int64     `db:"file_size" json:"file_size"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
