// internal/game/session.go
//
// State machine for a single user's number-guessing session.
// Responsibilities:
//   - Configure: pick a difficulty tier (resets any active round).
//   - Start: draw a secret in [1, MaxNumber] and open a round.
//   - Guess: validate, score and resolve guesses against the secret.
//
// Transitions: configured → active (Start) → back to configured on a win
// or when the attempt budget runs out. The machine can be re-entered
// indefinitely; there is no terminal state.
//
// Notes:
//   - The random draw and the clock are injected so rounds can be made
//     deterministic; production sessions use math/rand and time.Now.
//   - Out-of-range guesses are reported but consume no attempt.
package game

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// NewSession constructs a session on the given tier with the default
// random source and wall clock.
func NewSession(tier Tier) *Session {
	return NewSessionWith(tier, rand.Intn, time.Now)
}

// NewSessionWith constructs a session with an injected random draw
// (rng(n) must return a value in [0, n)) and clock.
func NewSessionWith(tier Tier, rng func(n int) int, now func() time.Time) *Session {
	return &Session{Tier: tier, rng: rng, now: now}
}

// ParseGuess converts raw user input into a guess value.
// Returns ErrInvalidInput for anything that is not an integer.
func ParseGuess(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidInput
	}
	return n, nil
}

// Configure switches the session to the tier named by id and discards any
// active round. Valid in every state.
func (s *Session) Configure(c *Catalog, id string) (Tier, error) {
	t, err := c.Lookup(id)
	if err != nil {
		return Tier{}, err
	}
	s.Tier = t
	s.reset()
	return t, nil
}

// Start opens a new round: draws a fresh secret and resets the attempt
// counter and history. Restarting mid-round discards the previous secret.
func (s *Session) Start() {
	s.reset()
	s.Secret = s.rng(s.Tier.MaxNumber) + 1
	s.Ready = true
	s.RoundStart = s.now()
}

// Guess evaluates one guess against the active round.
//
// Returns ErrNotReady if no round is active. An out-of-range value yields
// OutcomeOutOfRange without touching attempts or history. In-range guesses
// are recorded and resolve to win, loss or continue; win and loss close
// the round and reveal the secret.
func (s *Session) Guess(value int) (Result, error) {
	if !s.Ready {
		return Result{}, ErrNotReady
	}
	if value < 1 || value > s.Tier.MaxNumber {
		return Result{Outcome: OutcomeOutOfRange}, nil
	}

	s.History = append(s.History, value)
	s.Attempts++

	switch {
	case value == s.Secret:
		res := Result{
			Outcome: OutcomeWin,
			Secret:  s.Secret,
			Elapsed: s.now().Sub(s.RoundStart),
		}
		s.reset()
		return res, nil
	case s.Attempts >= s.Tier.MaxAttempts:
		res := Result{Outcome: OutcomeLoss, Secret: s.Secret}
		s.reset()
		return res, nil
	default:
		hint := HintHigher
		if value > s.Secret {
			hint = HintLower
		}
		return Result{
			Outcome:   OutcomeContinue,
			Hint:      hint,
			Remaining: s.Tier.MaxAttempts - s.Attempts,
		}, nil
	}
}

// reset returns the session to the configured state: no secret, no round.
func (s *Session) reset() {
	s.Secret = 0
	s.Attempts = 0
	s.Ready = false
	s.History = nil
	s.RoundStart = time.Time{}
}
