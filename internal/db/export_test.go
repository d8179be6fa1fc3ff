package db

var (
	JobColumns     = jobColumns
	EpisodeColumns = episodeColumns
)
