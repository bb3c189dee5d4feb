// internal/score/engine.go
//
// Scoring & profile engine. Turns round outcomes into cumulative player
// stats and derives the cosmetic title from total points.
// Responsibilities:
//   - RecordOutcome: load-modify-save of the PlayerRecord, atomic per username.
//   - TitleFor: points → title, with the leaderboard-leader override.
//   - Leaderboard: top N by points, failing soft on store errors.

package score

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/game"
	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/store"
)

// Title is one rung of the title ladder.
type Title struct {
	Label     string
	Threshold int // Minimum points for the label.
}

// DefaultTitles is the standard ladder, ascending by threshold.
// Index 0 is the baseline every new player holds.
var DefaultTitles = []Title{
	{Label: "Newbie", Threshold: 0},
	{Label: "Apprentice", Threshold: 10},
	{Label: "Hunter", Threshold: 50},
	{Label: "Sharpshooter", Threshold: 150},
	{Label: "Mindreader", Threshold: 400},
	{Label: "Oracle", Threshold: 1000},
}

// TheOne is the display-only override for the current leaderboard leader.
// It is never persisted.
const TheOne = "THE ONE"

// Engine applies outcomes to player records.
type Engine struct {
	store  store.Store
	titles []Title

	// Per-username locks serialize the get+upsert read-modify-write so two
	// concurrent finishes for the same player cannot lose an update.
	// One mutex per username seen this process; entries are never evicted.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs an Engine over the given store using DefaultTitles.
func New(st store.Store) *Engine {
	return &Engine{store: st, titles: DefaultTitles, locks: make(map[string]*sync.Mutex)}
}

func (e *Engine) lockFor(username string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[username]
	if !ok {
		l = &sync.Mutex{}
		e.locks[username] = l
	}
	return l
}

// RecordOutcome applies a finished round to the player's cumulative record
// and persists it. Wins add the tier's points and a correct guess; losses
// only count the game. A player with no record starts from zero.
//
// On store failure the updated record is still returned (computed from a
// zero or last-known base) together with the wrapped store.ErrUnavailable,
// so the caller can render the round result and flag the score as unsaved.
func (e *Engine) RecordOutcome(ctx context.Context, username string, tier game.Tier, won bool) (store.PlayerRecord, error) {
	l := e.lockFor(username)
	l.Lock()
	defer l.Unlock()

	rec, err := e.store.Get(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// Base stats unknown: apply the outcome to a zero record so the
		// caller can render this round, but do not persist. An upsert
		// from a zero base would wipe whatever the store still holds.
		log.Warn().Err(err).Str("username", username).Msg("load player record")
		rec = applyOutcome(store.PlayerRecord{Username: username}, tier, won)
		return rec, err
	}
	if errors.Is(err, store.ErrNotFound) {
		rec = store.PlayerRecord{Username: username}
	}

	rec = applyOutcome(rec, tier, won)

	if err := e.store.Upsert(ctx, rec); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("save player record")
		return rec, err
	}
	return rec, nil
}

// applyOutcome folds one finished round into a record.
func applyOutcome(rec store.PlayerRecord, tier game.Tier, won bool) store.PlayerRecord {
	rec.TotalGames++
	if won {
		rec.Points += tier.Points
		rec.CorrectGuesses++
	}
	return rec
}

// ClaimRecord folds the stats accumulated under fromKey (a guest's anon
// record) into the record for username, then empties the source so the
// points are not counted twice. Called after signup/login.
func (e *Engine) ClaimRecord(ctx context.Context, fromKey, username string) error {
	if fromKey == "" || username == "" || fromKey == username {
		return nil
	}
	// Lock both keys in a fixed order so two concurrent claims cannot deadlock.
	first, second := fromKey, username
	if second < first {
		first, second = second, first
	}
	l1, l2 := e.lockFor(first), e.lockFor(second)
	l1.Lock()
	defer l1.Unlock()
	l2.Lock()
	defer l2.Unlock()

	guest, err := e.store.Get(ctx, fromKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if guest.Points == 0 && guest.CorrectGuesses == 0 && guest.TotalGames == 0 {
		return nil
	}

	rec, err := e.store.Get(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		rec = store.PlayerRecord{Username: username}
	} else if err != nil {
		return err
	}

	rec.Points += guest.Points
	rec.CorrectGuesses += guest.CorrectGuesses
	rec.TotalGames += guest.TotalGames
	if err := e.store.Upsert(ctx, rec); err != nil {
		return err
	}
	// The store never deletes; an emptied guest record stays behind.
	return e.store.Upsert(ctx, store.PlayerRecord{Username: fromKey})
}

// TitleFor returns the highest label whose threshold does not exceed
// points. When top is true (the player currently leads the leaderboard)
// the TheOne override is returned instead.
func (e *Engine) TitleFor(points int, top bool) string {
	if top {
		return TheOne
	}
	label := e.titles[0].Label
	for _, t := range e.titles {
		if points < t.Threshold {
			break
		}
		label = t.Label
	}
	return label
}

// Leaderboard returns up to limit entries ordered by points descending.
// Store failures degrade to an empty board.
func (e *Engine) Leaderboard(ctx context.Context, limit int) []store.Entry {
	entries, err := e.store.Top(ctx, limit)
	if err != nil {
		log.Warn().Err(err).Msg("load leaderboard")
		return []store.Entry{}
	}
	return entries
}

// Stats loads the player's record, treating an absent or unreachable
// record as zero stats for this request.
func (e *Engine) Stats(ctx context.Context, username string) store.PlayerRecord {
	rec, err := e.store.Get(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("username", username).Msg("load player stats")
		}
		return store.PlayerRecord{Username: username}
	}
	return rec
}

// IsLeader reports whether username currently holds the single top spot.
// A shared top score means no one is the leader.
func (e *Engine) IsLeader(ctx context.Context, username string) bool {
	top := e.Leaderboard(ctx, 2)
	if len(top) == 0 || top[0].Username != username {
		return false
	}
	return len(top) == 1 || top[1].Points < top[0].Points
}
