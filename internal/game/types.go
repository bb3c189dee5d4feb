// internal/game/types.go
//
// Core type definitions for the number-guessing engine.
// Defines:
//   - Tier: static parameters of one difficulty level.
//   - Session: per-user round state (secret, attempts, history).
//   - Outcome/Result: classification of a single guess.

package game

import (
	"errors"
	"time"
)

// Tier describes one difficulty level. Tiers are registered in a Catalog at
// startup and are read-only afterwards.
type Tier struct {
	ID          string `json:"id"`          // Stable identifier ("easy", "medium", ...).
	MaxNumber   int    `json:"maxNumber"`   // Secret is drawn from [1, MaxNumber].
	MaxAttempts int    `json:"maxAttempts"` // Guesses allowed per round.
	Points      int    `json:"points"`      // Awarded on a win; losses award nothing.
}

// Outcome classifies the result of a single guess.
// Possible values:
//   - "win":          guess matched the secret, round over.
//   - "loss":         attempt budget exhausted, round over.
//   - "continue":     wrong but attempts remain; Hint says which direction.
//   - "out_of_range": guess outside [1, MaxNumber]; no attempt consumed.
type Outcome string

const (
	OutcomeWin        Outcome = "win"
	OutcomeLoss       Outcome = "loss"
	OutcomeContinue   Outcome = "continue"
	OutcomeOutOfRange Outcome = "out_of_range"
)

// Hint directions returned alongside OutcomeContinue.
const (
	HintHigher = "higher"
	HintLower  = "lower"
)

var (
	// ErrUnknownDifficulty is returned for a tier id not present in the catalog.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrNotReady is returned when a guess arrives with no active round.
	ErrNotReady = errors.New("no active round")
	// ErrInvalidInput is returned when a guess cannot be parsed as an integer.
	ErrInvalidInput = errors.New("invalid guess input")
)

// Session holds the mutable game state for a single user. It is not
// concurrency-safe on its own; callers own one Session per user and
// serialize access to it.
type Session struct {
	Tier       Tier      // Current difficulty; defaults to the catalog default.
	Secret     int       // Active secret, valid only while Ready.
	Attempts   int       // Guesses made this round.
	Ready      bool      // True between Start and round resolution.
	History    []int     // In-range guesses made this round, in order.
	RoundStart time.Time // Set by Start, used for elapsed time on a win.

	rng func(n int) int // draws the secret; [0, n)
	now func() time.Time
}

// Result describes what happened to one guess.
type Result struct {
	Outcome   Outcome       // See Outcome values above.
	Hint      string        // "higher"/"lower" for OutcomeContinue, else "".
	Remaining int           // Attempts left after this guess (Continue only).
	Secret    int           // Revealed on win and loss.
	Elapsed   time.Duration // Time from Start to a winning guess.
}
