// internal/httpserver/routes_game.go
//
// HTTP routes for the guessing game itself.
// Exposes under optional auth:
//   - GET  /game/difficulties → available tiers
//   - POST /game/difficulty   → pick a tier (resets the round)
//   - POST /game/start        → draw a secret, open a round
//   - POST /game/guess        → submit a guess
//   - GET  /leaderboard       → top players by points
//
// Each user (or anonymous cookie holder) owns one in-memory game session.
// Sessions live for the life of the process; finished rounds of signed-in
// players are persisted through the scoring engine.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/game"
	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/store"
)

func sessionKeyUser(username string) string { return "user|" + username }
func sessionKeyAnon(anonID string) string   { return "anon|" + anonID }

// guestRecordKey is the player-store key for a guest's cumulative stats.
// On signup/login the record is folded into the account's (claimGuestRecord).
func guestRecordKey(anonID string) string { return "anon:" + anonID }

// mountGame registers the game and leaderboard routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Get("/difficulties", s.handleDifficulties)
		r.Post("/difficulty", s.handleSetDifficulty)
		r.Post("/start", s.handleStart)
		r.Post("/guess", s.handleGuess)
	})
	r.Get("/leaderboard", s.handleLeaderboard)
}

// sessionFor returns the caller's game session, creating one on first
// contact, along with the player-store key finished rounds are recorded
// under. Signed-in users are keyed by username, guests by anon cookie.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*game.Session, string) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	var key, recordKey string
	if me != nil {
		key = sessionKeyUser(me.Username)
		recordKey = me.Username
	} else {
		anon := s.ensureAnonID(w, r)
		key = sessionKeyAnon(anon)
		recordKey = guestRecordKey(anon)
	}

	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = game.NewSession(s.catalog.Default())
		s.sessions[key] = sess
	}
	return sess, recordKey
}

// claimGuestRecord transfers a guest's accumulated stats to a user account
// after signup/login.
func (s *Server) claimGuestRecord(ctx context.Context, anonID, username string) {
	if anonID == "" || username == "" {
		return
	}
	if err := s.engine.ClaimRecord(ctx, guestRecordKey(anonID), username); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("claim guest record")
	}
}

// dropSession removes a session from the registry (logout).
func (s *Server) dropSession(key string) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	delete(s.sessions, key)
}

// -----------------------------------------------------------------------------
// /game/difficulties

func (s *Server) handleDifficulties(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.catalog.Tiers())
}

// -----------------------------------------------------------------------------
// /game/difficulty

type difficultyReq struct {
	Difficulty string `json:"difficulty"`
}
type difficultyRes struct {
	Difficulty game.Tier `json:"difficulty"`
}

// handleSetDifficulty switches the caller's tier and discards any active round.
func (s *Server) handleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, _ := s.sessionFor(w, r)
	tier, err := sess.Configure(s.catalog, req.Difficulty)
	if err != nil {
		http.Error(w, `{"error":"unknown_difficulty"}`, http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(difficultyRes{Difficulty: tier})
}

// -----------------------------------------------------------------------------
// /game/start

type startRes struct {
	Difficulty  string `json:"difficulty"`
	MaxNumber   int    `json:"maxNumber"`
	MaxAttempts int    `json:"maxAttempts"`
}

// handleStart opens a new round on the caller's current tier.
// Restarting mid-round is allowed and discards the previous secret.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessionFor(w, r)
	sess.Start()
	_ = json.NewEncoder(w).Encode(startRes{
		Difficulty:  sess.Tier.ID,
		MaxNumber:   sess.Tier.MaxNumber,
		MaxAttempts: sess.Tier.MaxAttempts,
	})
}

// -----------------------------------------------------------------------------
// /game/guess

type guessReq struct {
	Guess string `json:"guess"`
}

// guessRes carries the outcome of one guess. Record/title/saved are only
// present on win/loss; guests accumulate under their anon-keyed record.
type guessRes struct {
	Outcome   game.Outcome        `json:"outcome"`
	Hint      string              `json:"hint,omitempty"`
	Remaining int                 `json:"remaining,omitempty"`
	Secret    int                 `json:"secret,omitempty"`
	ElapsedMs int64               `json:"elapsedMs,omitempty"`
	Record    *store.PlayerRecord `json:"record,omitempty"`
	Title     string              `json:"title,omitempty"`
	Saved     *bool               `json:"saved,omitempty"`
}

// handleGuess validates and applies one guess, persisting the outcome of
// finished rounds for signed-in players.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	value, err := game.ParseGuess(req.Guess)
	if err != nil {
		http.Error(w, `{"error":"invalid_guess"}`, http.StatusBadRequest)
		return
	}

	sess, recordKey := s.sessionFor(w, r)
	tier := sess.Tier
	res, err := sess.Guess(value)
	if errors.Is(err, game.ErrNotReady) {
		http.Error(w, `{"error":"no_active_round"}`, http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	out := guessRes{Outcome: res.Outcome, Hint: res.Hint, Remaining: res.Remaining}

	switch res.Outcome {
	case game.OutcomeWin, game.OutcomeLoss:
		out.Secret = res.Secret
		if res.Outcome == game.OutcomeWin {
			out.ElapsedMs = res.Elapsed.Milliseconds()
		}
		rec, err := s.engine.RecordOutcome(r.Context(), recordKey, tier, res.Outcome == game.OutcomeWin)
		saved := err == nil
		if err != nil {
			log.Warn().Err(err).Str("username", recordKey).Msg("score not saved")
		}
		out.Record = &rec
		out.Title = s.engine.TitleFor(rec.Points, saved && s.engine.IsLeader(r.Context(), recordKey))
		out.Saved = &saved
	}

	_ = json.NewEncoder(w).Encode(out)
}

// -----------------------------------------------------------------------------
// /leaderboard

type leaderboardRow struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Title    string `json:"title"`
}

// handleLeaderboard returns the top players. The outright leader carries
// the override title; a tie at the top suppresses it.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries := s.engine.Leaderboard(r.Context(), limit)
	soleLeader := len(entries) > 0 && (len(entries) == 1 || entries[1].Points < entries[0].Points)

	out := make([]leaderboardRow, 0, len(entries))
	for i, e := range entries {
		out = append(out, leaderboardRow{
			Rank:     i + 1,
			Username: e.Username,
			Points:   e.Points,
			Title:    s.engine.TitleFor(e.Points, i == 0 && soleLeader),
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// -----------------------------------------------------------------------------
// /stats/me

type statsRes struct {
	Username       string `json:"username"`
	Points         int    `json:"points"`
	CorrectGuesses int    `json:"correctGuesses"`
	TotalGames     int    `json:"totalGames"`
	Title          string `json:"title"`
}

// handleMyStats returns the caller's cumulative record and derived title.
func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	rec := s.engine.Stats(r.Context(), me.Username)
	_ = json.NewEncoder(w).Encode(statsRes{
		Username:       me.Username,
		Points:         rec.Points,
		CorrectGuesses: rec.CorrectGuesses,
		TotalGames:     rec.TotalGames,
		Title:          s.engine.TitleFor(rec.Points, s.engine.IsLeader(r.Context(), me.Username)),
	})
}
