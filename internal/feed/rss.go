package feed

import (
	"fmt"
	"net/http"
	"time"

	"github.com/eduncan911/podcast"
	"podcast-generator/internal/models"
)

// BaseURL prefers the configured public URL and otherwise derives one from r.
func BaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return configured
	}

	scheme := "https"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateRSS renders the user's episodes as a podcast feed. Enclosure URLs are
// the signed URLs already minted on each episode, so the feed expires with them.
func GenerateRSS(episodes []models.Episode, baseURL string) (string, error) {
	var lastBuild *time.Time
	if len(episodes) > 0 {
		lastBuild = &episodes[0].CreatedAt
	} else {
		now := time.Now()
		lastBuild = &now
	}

	p := podcast.New(
		"My generated podcasts",
		fmt.Sprintf("%s/podcasts/feed.xml", baseURL),
		"Episodes generated from your scripts.",
		lastBuild, lastBuild,
	)

	for _, episode := range episodes {
		description := episode.ShowNotes
		if description == "" {
			description = episode.Description
		}
		if description == "" {
			description = episode.Title
		}

		pubDate := episode.CreatedAt
		item := podcast.Item{
			GUID:        episode.ID,
			Title:       episode.Title,
			Description: description,
			PubDate:     &pubDate,
		}
		item.AddEnclosure(episode.AudioSignedURL, podcast.MP3, episode.FileSize)
		item.AddDuration(int64(episode.DurationSeconds))
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("failed to add episode %s to feed: %w", episode.ID, err)
		}
	}

	return p.String(), nil
}
