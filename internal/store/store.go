// internal/store/store.go
//
// Player record persistence contract shared by the memory and sqlite
// backends. The scoring engine is the only writer; readers are the
// leaderboard and stats endpoints.

package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no record exists for the username.
	ErrNotFound = errors.New("player not found")
	// ErrUnavailable wraps backend failures. Callers degrade (unsaved score,
	// empty leaderboard) rather than abort the round.
	ErrUnavailable = errors.New("player store unavailable")
)

// PlayerRecord is the persisted cumulative stats for one username.
type PlayerRecord struct {
	Username       string `json:"username"`
	Points         int    `json:"points"`
	CorrectGuesses int    `json:"correctGuesses"`
	TotalGames     int    `json:"totalGames"`
}

// Validate enforces the record invariants before a write.
func (r PlayerRecord) Validate() error {
	if r.Username == "" {
		return errors.New("empty username")
	}
	if r.Points < 0 || r.CorrectGuesses < 0 || r.TotalGames < 0 {
		return fmt.Errorf("negative counters in record for %q", r.Username)
	}
	if r.CorrectGuesses > r.TotalGames {
		return fmt.Errorf("record for %q has %d correct guesses out of %d games", r.Username, r.CorrectGuesses, r.TotalGames)
	}
	return nil
}

// Entry is one leaderboard row.
type Entry struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// Store defines the persistence interface for player records.
// Implementations may be backed by memory (this package), SQLite, etc.
type Store interface {
	// Get retrieves the record for a username.
	// Returns ErrNotFound if the player has never been saved.
	Get(ctx context.Context, username string) (PlayerRecord, error)

	// Upsert creates or replaces the record keyed by record.Username.
	Upsert(ctx context.Context, record PlayerRecord) error

	// Top returns up to limit entries ordered by points descending.
	// Tie order is backend-defined.
	Top(ctx context.Context, limit int) ([]Entry, error)
}
