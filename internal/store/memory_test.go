package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if _, err := m.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for fresh store, got %v", err)
	}

	rec := PlayerRecord{Username: "alice", Points: 13, CorrectGuesses: 2, TotalGames: 5}
	if err := m.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != rec {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, rec)
	}

	// Upsert replaces, not merges.
	rec.Points = 16
	rec.TotalGames = 6
	if err := m.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, _ = m.Get(ctx, "alice")
	if got != rec {
		t.Fatalf("after replace: got %+v, want %+v", got, rec)
	}
}

func TestMemoryUpsertRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	bad := []PlayerRecord{
		{Username: "", Points: 1},
		{Username: "bob", Points: -1},
		{Username: "bob", CorrectGuesses: 3, TotalGames: 2},
	}
	for _, rec := range bad {
		if err := m.Upsert(ctx, rec); err == nil {
			t.Errorf("upsert accepted invalid record %+v", rec)
		}
	}
	if _, err := m.Get(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatal("rejected upsert must not write")
	}
}

func TestMemoryTopOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	for _, rec := range []PlayerRecord{
		{Username: "carol", Points: 30, CorrectGuesses: 3, TotalGames: 4},
		{Username: "alice", Points: 50, CorrectGuesses: 5, TotalGames: 9},
		{Username: "bob", Points: 30, CorrectGuesses: 2, TotalGames: 8},
		{Username: "dave", Points: 5, CorrectGuesses: 1, TotalGames: 1},
	} {
		if err := m.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert %s: %v", rec.Username, err)
		}
	}

	top, err := m.Top(ctx, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []Entry{
		{Username: "alice", Points: 50},
		{Username: "bob", Points: 30}, // username tiebreak
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
