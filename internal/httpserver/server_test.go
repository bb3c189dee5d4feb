package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/game"
	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/score"
	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/store"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *http.Client) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`
        CREATE TABLE users (
            id            TEXT PRIMARY KEY,
            username      TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            created_at    TEXT NOT NULL
        )`); err != nil {
		t.Fatalf("create users: %v", err)
	}

	s := New(db, game.DefaultCatalog(), score.New(store.NewMemoryStore()))
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return s, ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any, out any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func getJSON(t *testing.T, c *http.Client, url string, out any) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func signup(t *testing.T, c *http.Client, base, username string) {
	t.Helper()
	resp := postJSON(t, c, base+"/auth/signup", map[string]string{
		"username": username,
		"password": "hunter2hunter2",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup %s: status %d", username, resp.StatusCode)
	}
}

// plantSession installs a deterministic session for a signed-in user so
// the drawn secret is known to the test.
func plantSession(s *Server, username string, secret int) {
	tier := s.catalog.Default()
	s.sessMu.Lock()
	s.sessions[sessionKeyUser(username)] = game.NewSessionWith(
		tier, func(n int) int { return secret - 1 }, time.Now,
	)
	s.sessMu.Unlock()
}

func TestHealth(t *testing.T) {
	_, ts, c := newTestServer(t)
	var out map[string]bool
	resp := getJSON(t, c, ts.URL+"/health", &out)
	if resp.StatusCode != http.StatusOK || !out["ok"] {
		t.Fatalf("health: status %d body %v", resp.StatusCode, out)
	}
}

func TestDifficulties(t *testing.T) {
	_, ts, c := newTestServer(t)
	var tiers []game.Tier
	getJSON(t, c, ts.URL+"/game/difficulties", &tiers)
	if len(tiers) != 4 || tiers[0].ID != "easy" {
		t.Fatalf("difficulties: %+v", tiers)
	}
}

func TestSetDifficultyUnknown(t *testing.T) {
	_, ts, c := newTestServer(t)
	resp := postJSON(t, c, ts.URL+"/game/difficulty", map[string]string{"difficulty": "nightmare"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown difficulty: status %d", resp.StatusCode)
	}
}

func TestGuessBeforeStart(t *testing.T) {
	_, ts, c := newTestServer(t)
	resp := postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "5"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("guess without round: status %d", resp.StatusCode)
	}
}

func TestGuessInvalidInput(t *testing.T) {
	_, ts, c := newTestServer(t)
	postJSON(t, c, ts.URL+"/game/start", nil, nil)
	resp := postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "abc"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-integer guess: status %d", resp.StatusCode)
	}
}

// anonID digs the guest cookie out of the client jar.
func anonID(t *testing.T, ts *httptest.Server, c *http.Client) string {
	t.Helper()
	u, _ := url.Parse(ts.URL)
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == anonCookieName {
			return ck.Value
		}
	}
	t.Fatal("no anon cookie set")
	return ""
}

// Guests play via the anon cookie and accumulate an anon-keyed record.
func TestGuestRound(t *testing.T) {
	s, ts, c := newTestServer(t)

	var started startRes
	postJSON(t, c, ts.URL+"/game/start", nil, &started)
	if started.Difficulty != "easy" || started.MaxNumber != 10 || started.MaxAttempts != 3 {
		t.Fatalf("start: %+v", started)
	}

	var out guessRes
	postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "11"}, &out)
	if out.Outcome != game.OutcomeOutOfRange {
		t.Fatalf("out-of-range guess: %+v", out)
	}

	// Burn the attempt budget; the resolved round persists under the anon id.
	var last guessRes
	for _, g := range []string{"1", "2", "3"} {
		postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": g}, &last)
	}
	if last.Outcome != game.OutcomeWin && last.Outcome != game.OutcomeLoss {
		t.Fatalf("round should be resolved after three guesses, got %+v", last)
	}
	if last.Record == nil || last.Saved == nil || !*last.Saved {
		t.Fatalf("guest outcome must carry a saved record: %+v", last)
	}
	if last.Record.TotalGames != 1 {
		t.Fatalf("guest record: %+v", last.Record)
	}

	key := guestRecordKey(anonID(t, ts, c))
	if last.Record.Username != key {
		t.Fatalf("record keyed %q, want %q", last.Record.Username, key)
	}
	rec := s.engine.Stats(context.Background(), key)
	if rec.TotalGames != 1 {
		t.Fatalf("persisted guest record: %+v", rec)
	}
}

// Signing up folds the guest record into the new account.
func TestSignupClaimsGuestRecord(t *testing.T) {
	s, ts, c := newTestServer(t)

	// Establish the anon cookie, then make the guest's round deterministic.
	postJSON(t, c, ts.URL+"/game/start", nil, nil)
	anon := anonID(t, ts, c)
	tier := s.catalog.Default()
	s.sessMu.Lock()
	s.sessions[sessionKeyAnon(anon)] = game.NewSessionWith(
		tier, func(n int) int { return 6 }, time.Now,
	)
	s.sessMu.Unlock()

	postJSON(t, c, ts.URL+"/game/start", nil, nil)
	var out guessRes
	postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "7"}, &out)
	if out.Outcome != game.OutcomeWin {
		t.Fatalf("guest win: %+v", out)
	}

	signup(t, c, ts.URL, "dana")

	var stats statsRes
	getJSON(t, c, ts.URL+"/stats/me", &stats)
	if stats.Points != 3 || stats.CorrectGuesses != 1 || stats.TotalGames != 1 {
		t.Fatalf("claimed stats: %+v", stats)
	}

	guest := s.engine.Stats(context.Background(), guestRecordKey(anon))
	if guest.Points != 0 || guest.TotalGames != 0 {
		t.Fatalf("guest record not emptied after claim: %+v", guest)
	}
}

func TestSignupLoginMe(t *testing.T) {
	_, ts, c := newTestServer(t)
	signup(t, c, ts.URL, "alice")

	var me authUser
	resp := getJSON(t, c, ts.URL+"/auth/me", &me)
	if resp.StatusCode != http.StatusOK || me.Username != "alice" {
		t.Fatalf("me: status %d user %+v", resp.StatusCode, me)
	}

	var stats statsRes
	getJSON(t, c, ts.URL+"/stats/me", &stats)
	if stats.Points != 0 || stats.TotalGames != 0 || stats.Title != "Newbie" {
		t.Fatalf("fresh stats: %+v", stats)
	}
}

func TestStatsRequiresAuth(t *testing.T) {
	_, ts, c := newTestServer(t)
	resp := getJSON(t, c, ts.URL+"/stats/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stats without auth: status %d", resp.StatusCode)
	}
}

// Full scripted round for a signed-in player: hints, win, persisted score,
// leaderboard spot with the leader override title.
func TestWinPersistsScore(t *testing.T) {
	s, ts, c := newTestServer(t)
	signup(t, c, ts.URL, "alice")
	plantSession(s, "alice", 7)

	postJSON(t, c, ts.URL+"/game/start", nil, nil)

	var out guessRes
	postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "3"}, &out)
	if out.Outcome != game.OutcomeContinue || out.Hint != game.HintHigher || out.Remaining != 2 {
		t.Fatalf("guess 3: %+v", out)
	}
	postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "9"}, &out)
	if out.Outcome != game.OutcomeContinue || out.Hint != game.HintLower || out.Remaining != 1 {
		t.Fatalf("guess 9: %+v", out)
	}
	postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "7"}, &out)
	if out.Outcome != game.OutcomeWin || out.Secret != 7 {
		t.Fatalf("guess 7: %+v", out)
	}
	if out.Record == nil || out.Record.Points != 3 || out.Record.CorrectGuesses != 1 || out.Record.TotalGames != 1 {
		t.Fatalf("win record: %+v", out.Record)
	}
	if out.Saved == nil || !*out.Saved {
		t.Fatalf("win must be saved: %+v", out)
	}
	if out.Title != score.TheOne {
		t.Fatalf("sole leader title = %q", out.Title)
	}

	var board []leaderboardRow
	getJSON(t, c, ts.URL+"/leaderboard", &board)
	if len(board) != 1 || board[0].Username != "alice" || board[0].Points != 3 || board[0].Rank != 1 {
		t.Fatalf("leaderboard: %+v", board)
	}
	if board[0].Title != score.TheOne {
		t.Fatalf("leaderboard title = %q", board[0].Title)
	}
}

func TestLossCountsGameOnly(t *testing.T) {
	s, ts, c := newTestServer(t)
	signup(t, c, ts.URL, "bob")
	plantSession(s, "bob", 7)

	postJSON(t, c, ts.URL+"/game/start", nil, nil)
	var out guessRes
	for _, g := range []string{"1", "2", "3"} {
		postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": g}, &out)
	}
	if out.Outcome != game.OutcomeLoss || out.Secret != 7 {
		t.Fatalf("loss outcome: %+v", out)
	}
	if out.Record == nil || out.Record.Points != 0 || out.Record.CorrectGuesses != 0 || out.Record.TotalGames != 1 {
		t.Fatalf("loss record: %+v", out.Record)
	}

	var stats statsRes
	getJSON(t, c, ts.URL+"/stats/me", &stats)
	if stats.TotalGames != 1 || stats.Points != 0 || stats.Title != "Newbie" {
		t.Fatalf("stats after loss: %+v", stats)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	s, ts, c := newTestServer(t)
	signup(t, c, ts.URL, "carol")
	plantSession(s, "carol", 7)
	postJSON(t, c, ts.URL+"/game/start", nil, nil)

	postJSON(t, c, ts.URL+"/auth/logout", nil, nil)

	s.sessMu.Lock()
	_, ok := s.sessions[sessionKeyUser("carol")]
	s.sessMu.Unlock()
	if ok {
		t.Fatal("logout must drop the in-memory session")
	}
}
