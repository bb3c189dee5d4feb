// internal/store/sqlite.go
//
// SQLite-backed implementation of the Store interface. The players table
// is created by the sql/ migrations at startup.
//
// Backend failures are wrapped in ErrUnavailable so callers can degrade
// instead of failing the whole request.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened *sql.DB (see openDB in the main package).
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, username string) (PlayerRecord, error) {
	var r PlayerRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT username, points, correct_guesses, total_games
		 FROM players WHERE username=?`, username,
	).Scan(&r.Username, &r.Points, &r.CorrectGuesses, &r.TotalGames)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerRecord{}, ErrNotFound
	}
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("%w: get %s: %v", ErrUnavailable, username, err)
	}
	return r, nil
}

func (s *sqliteStore) Upsert(ctx context.Context, record PlayerRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO players (username, points, correct_guesses, total_games)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(username) DO UPDATE SET
            points=excluded.points,
            correct_guesses=excluded.correct_guesses,
            total_games=excluded.total_games`,
		record.Username, record.Points, record.CorrectGuesses, record.TotalGames,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrUnavailable, record.Username, err)
	}
	return nil
}

func (s *sqliteStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT username, points
        FROM players
        ORDER BY points DESC, username ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: top: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Username, &e.Points); err != nil {
			return nil, fmt.Errorf("%w: top scan: %v", ErrUnavailable, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: top rows: %v", ErrUnavailable, err)
	}
	return out, nil
}
