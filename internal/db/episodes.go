package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"podcast-generator/internal/models"
)

const episodeColumns = `id, user_id, title, description, audio_url, voice_id, style, duration_seconds,
	script, outline, segments, show_notes, audio_format, file_size, created_at`

// CompleteJobWithEpisode inserts the episode and moves the job to succeeded in
// one transaction, so a succeeded job always references exactly one episode.
func (s *Store) CompleteJobWithEpisode(ctx context.Context, jobID string, episode *models.Episode) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if episode.ID == "" {
		episode.ID = uuid.NewString()
	}

	err = tx.GetContext(ctx, &episode.CreatedAt, `
		INSERT INTO podcast_episodes (id, user_id, title, description, audio_url, voice_id, style,
			duration_seconds, script, outline, segments, show_notes, audio_format, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`,
		episode.ID, episode.UserID, episode.Title, episode.Description, episode.AudioURL,
		episode.VoiceID, episode.Style, episode.DurationSeconds, episode.Script,
		episode.Outline, episode.Segments, episode.ShowNotes, episode.AudioFormat, episode.FileSize)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE generation_jobs
		SET status = $1, result_episode_id = $2, error_message = NULL, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.JobStatusSucceeded, episode.ID, jobID, models.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", jobID, ErrJobNotProcessing)
	}

	return tx.Commit()
}

func (s *Store) GetEpisodesByUserID(ctx context.Context, userID string) ([]models.Episode, error) {
	episodes := []models.Episode{}
	err := s.DB.SelectContext(ctx, &episodes, `
		SELECT `+episodeColumns+`
		FROM podcast_episodes
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes for user %s: %w", userID, err)
	}
	return episodes, nil
}

func (s *Store) GetEpisodeForUser(ctx context.Context, id, userID string) (models.Episode, error) {
	episode := models.Episode{}
	err := s.DB.GetContext(ctx, &episode, `
		SELECT `+episodeColumns+`
		FROM podcast_episodes
		WHERE id = $1 AND user_id = $2`, id, userID)
	return episode, err
}
