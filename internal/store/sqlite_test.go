package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`
        CREATE TABLE players (
            username        TEXT PRIMARY KEY,
            points          INTEGER NOT NULL DEFAULT 0,
            correct_guesses INTEGER NOT NULL DEFAULT 0,
            total_games     INTEGER NOT NULL DEFAULT 0
        )`); err != nil {
		t.Fatalf("create players: %v", err)
	}
	return db
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewSQLiteStore(newTestDB(t))

	if _, err := st.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := PlayerRecord{Username: "alice", Points: 25, CorrectGuesses: 1, TotalGames: 3}
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := st.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != rec {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, rec)
	}

	// Conflict path updates in place.
	rec.Points = 28
	rec.CorrectGuesses = 2
	rec.TotalGames = 4
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = st.Get(ctx, "alice")
	if got != rec {
		t.Fatalf("after update: got %+v, want %+v", got, rec)
	}
}

func TestSQLiteTopOrdering(t *testing.T) {
	ctx := context.Background()
	st := NewSQLiteStore(newTestDB(t))

	for _, rec := range []PlayerRecord{
		{Username: "carol", Points: 30, CorrectGuesses: 3, TotalGames: 4},
		{Username: "alice", Points: 50, CorrectGuesses: 5, TotalGames: 9},
		{Username: "bob", Points: 30, CorrectGuesses: 2, TotalGames: 8},
	} {
		if err := st.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert %s: %v", rec.Username, err)
		}
	}

	top, err := st.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []Entry{
		{Username: "alice", Points: 50},
		{Username: "bob", Points: 30},
		{Username: "carol", Points: 30},
	}
	if len(top) != len(want) {
		t.Fatalf("top returned %d entries, want %d", len(top), len(want))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}
}

func TestSQLiteUnavailable(t *testing.T) {
	db := newTestDB(t)
	_ = db.Close()
	st := NewSQLiteStore(db)
	ctx := context.Background()

	if _, err := st.Get(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("get on closed db: %v", err)
	}
	if err := st.Upsert(ctx, PlayerRecord{Username: "alice"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("upsert on closed db: %v", err)
	}
	if _, err := st.Top(ctx, 5); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("top on closed db: %v", err)
	}
}
