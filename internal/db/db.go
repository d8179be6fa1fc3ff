package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // The database driver
	"github.com/rs/zerolog/log"
)

// Store holds the database connection shared by the job ledger and the
// episode repository.
type Store struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

// InitDB opens and pings the Postgres connection.
func InitDB(ctx context.Context, dbURL string) (*Store, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	conn, err := sqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Database connection established")
	return New(conn), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.DB.Close()
}
