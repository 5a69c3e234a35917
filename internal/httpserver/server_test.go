package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/history"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/store"
)

/* ---------------- fakes for the question and decoy sources ---------------- */

type fakeQuestions struct {
	mu   sync.Mutex
	q    game.Question
	fail bool
}

func (f *fakeQuestions) FetchQuestion(ctx context.Context) (game.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return game.Question{}, errors.New("question api down")
	}
	return f.q, nil
}

func (f *fakeQuestions) set(q game.Question, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.q, f.fail = q, fail
}

type placeholderDecoys struct{}

func (placeholderDecoys) FetchDecoy(ctx context.Context) string { return game.Placeholder }

var paris = game.Question{Category: "WORLD CAPITALS", Prompt: "Capital of France", Answer: "Paris"}

type harness struct {
	t         *testing.T
	srv       *Server
	questions *fakeQuestions
	token     string
}

func newHarness(t *testing.T, withHistory bool) *harness {
	t.Helper()
	q := &fakeQuestions{q: paris}
	var journal *history.Store
	if withHistory {
		db, err := history.Open(filepath.Join(t.TempDir(), "journal.db"))
		if err != nil {
			t.Fatalf("open journal: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		journal = history.NewStore(db)
	}
	srv := New(Options{
		Store:        store.NewMemoryStore(),
		Dealer:       game.NewDealer(q, placeholderDecoys{}),
		History:      journal,
		ClientOrigin: "http://localhost:5173",
		Secret:       "test-secret",
	})
	return &harness{t: t, srv: srv, questions: q}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	rec := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (h *harness) view(rec *httptest.ResponseRecorder, wantStatus int) sessionView {
	h.t.Helper()
	if rec.Code != wantStatus {
		h.t.Fatalf("status = %d, want %d; body=%s", rec.Code, wantStatus, rec.Body.String())
	}
	var v sessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		h.t.Fatalf("decode view: %v; body=%s", err, rec.Body.String())
	}
	return v
}

func (h *harness) start() sessionView {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/session", nil)
	if rec.Code != http.StatusCreated {
		h.t.Fatalf("POST /session status = %d; body=%s", rec.Code, rec.Body.String())
	}
	var res newSessionRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		h.t.Fatalf("decode: %v", err)
	}
	if res.Token == "" {
		h.t.Fatal("no token issued")
	}
	h.token = res.Token
	return res.Session
}

func count(xs []string, s string) int {
	n := 0
	for _, x := range xs {
		if x == s {
			n++
		}
	}
	return n
}

func TestHealth(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"ok":true}` {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestIndexPage(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("Jeopardy Game")) {
		t.Fatalf("index = %d", rec.Code)
	}
}

func TestFullRoundCorrectAnswer(t *testing.T) {
	h := newHarness(t, true)

	v := h.start()
	if v.Phase != game.PhaseAwaitingPoints || v.Score != 0 || v.Tier != game.TierEasy {
		t.Fatalf("unexpected start view: %+v", v)
	}
	if len(v.Options) != 0 || v.Question != "" {
		t.Fatalf("answers must be hidden before points: %+v", v)
	}
	if len(v.PointOptions) != 3 || v.PointOptions[1] != 200 {
		t.Fatalf("point options = %v", v.PointOptions)
	}

	v = h.view(h.do(http.MethodPost, "/session/points", pointsReq{Points: 200}), http.StatusOK)
	if v.Phase != game.PhaseAwaitingAnswer || v.Points != 200 {
		t.Fatalf("unexpected view after points: %+v", v)
	}
	if len(v.Options) != 4 || count(v.Options, "Paris") != 1 || count(v.Options, game.Placeholder) != 3 {
		t.Fatalf("options = %v", v.Options)
	}
	if v.Category != "WORLD CAPITALS" || v.Question != "Capital of France" {
		t.Fatalf("clue not shown: %+v", v)
	}

	v = h.view(h.do(http.MethodPost, "/session/answer", answerReq{Answer: "Paris"}), http.StatusOK)
	if v.Score != 200 {
		t.Fatalf("score = %d, want 200", v.Score)
	}
	if v.Phase != game.PhaseAwaitingPoints || v.Rounds != 1 {
		t.Fatalf("next round should be dealt: %+v", v)
	}
	if v.Last == nil || !v.Last.Correct || v.Last.Points != 200 {
		t.Fatalf("last result: %+v", v.Last)
	}

	rec := h.do(http.MethodGet, "/session/history", nil)
	var hist historyRes
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if !hist.Enabled || len(hist.Entries) != 1 || hist.Entries[0].Chosen != "Paris" || !hist.Entries[0].Correct {
		t.Fatalf("history = %+v", hist)
	}
}

func TestWrongAnswerKeepsScore(t *testing.T) {
	h := newHarness(t, false)
	h.start()
	h.do(http.MethodPost, "/session/points", pointsReq{Points: 300})

	v := h.view(h.do(http.MethodPost, "/session/answer", answerReq{Answer: game.Placeholder}), http.StatusOK)
	if v.Score != 0 || v.Last == nil || v.Last.Correct {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestAnswerBeforePointsRejected(t *testing.T) {
	h := newHarness(t, false)
	h.start()
	rec := h.do(http.MethodPost, "/session/answer", answerReq{Answer: "Paris"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestPointsOnlyOncePerRound(t *testing.T) {
	h := newHarness(t, false)
	h.start()
	h.do(http.MethodPost, "/session/points", pointsReq{Points: 100})
	v := h.view(h.do(http.MethodPost, "/session/points", pointsReq{Points: 300}), http.StatusOK)
	if v.Points != 100 {
		t.Fatalf("points = %d, want 100", v.Points)
	}
}

func TestTierChange(t *testing.T) {
	h := newHarness(t, false)
	h.start()

	v := h.view(h.do(http.MethodPost, "/session/tier", tierReq{Tier: "hard"}), http.StatusOK)
	if v.Tier != game.TierHard || len(v.PointOptions) != 3 || v.PointOptions[2] != 1000 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if rec := h.do(http.MethodPost, "/session/points", pointsReq{Points: 200}); rec.Code != http.StatusBadRequest {
		t.Fatalf("easy value on hard tier: status %d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/session/tier", tierReq{Tier: "expert"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown tier: status %d", rec.Code)
	}
}

func TestQuestionFailureOnStart(t *testing.T) {
	h := newHarness(t, false)
	h.questions.set(game.Question{}, true)

	v := h.start()
	if v.Phase != game.PhaseAwaitingQuestion || len(v.PointOptions) != 0 {
		t.Fatalf("no round should be presented: %+v", v)
	}

	// explicit deal once the source recovers
	h.questions.set(paris, false)
	v = h.view(h.do(http.MethodPost, "/session/deal", nil), http.StatusOK)
	if v.Phase != game.PhaseAwaitingPoints {
		t.Fatalf("deal should install a round: %+v", v)
	}
	if rec := h.do(http.MethodPost, "/session/deal", nil); rec.Code != http.StatusConflict {
		t.Fatalf("deal with a live round: status %d", rec.Code)
	}
}

func TestQuestionFailureAfterAnswer(t *testing.T) {
	h := newHarness(t, false)
	h.start()
	h.do(http.MethodPost, "/session/points", pointsReq{Points: 300})
	h.questions.set(game.Question{}, true)

	v := h.view(h.do(http.MethodPost, "/session/answer", answerReq{Answer: "Paris"}), http.StatusOK)
	if v.Score != 300 || v.Phase != game.PhaseAwaitingQuestion {
		t.Fatalf("unexpected view: %+v", v)
	}

	v = h.view(h.do(http.MethodGet, "/session", nil), http.StatusOK)
	if v.Score != 300 || v.Last == nil || v.Last.Chosen != "Paris" || len(v.Options) != 0 {
		t.Fatalf("score and last result must persist: %+v", v)
	}
}

func TestSessionAuth(t *testing.T) {
	h := newHarness(t, false)
	if rec := h.do(http.MethodGet, "/session", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", rec.Code)
	}

	h.token = "not-a-jwt"
	if rec := h.do(http.MethodGet, "/session", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", rec.Code)
	}

	tok, _, err := h.srv.signSession("unknown-session")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	h.token = tok
	if rec := h.do(http.MethodGet, "/session", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: status %d", rec.Code)
	}
}

func TestSessionCookie(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(http.MethodPost, "/session", nil)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jeopardy_session" {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("session cookie missing: %v", rec.Result().Cookies())
	}

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(cookie)
	got := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(got, req)
	if got.Code != http.StatusOK {
		t.Fatalf("cookie auth: status %d", got.Code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	h := newHarness(t, false)
	h.start()
	rec := h.do(http.MethodGet, "/session/history", nil)
	var hist historyRes
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hist.Enabled || len(hist.Entries) != 0 {
		t.Fatalf("history = %+v", hist)
	}
}

func TestNotFoundBodyIsJSON(t *testing.T) {
	h := newHarness(t, false)
	rec := h.do(http.MethodGet, `/no%22where`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("404 body is not JSON: %v; body=%s", err, rec.Body.String())
	}
	if body["error"] != "not_found" || body["path"] != `/no"where` {
		t.Fatalf("body = %v", body)
	}
}

func TestEmptySecretIssuesNoSession(t *testing.T) {
	srv := New(Options{
		Store:  store.NewMemoryStore(),
		Dealer: game.NewDealer(&fakeQuestions{q: paris}, placeholderDecoys{}),
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/session", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie should be issued without a secret")
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jeopardy_session" {
			return c
		}
	}
	return nil
}

func TestActiveSessionCookieIsRefreshed(t *testing.T) {
	h := newHarness(t, false)
	v := h.start()

	// recently issued: no refresh
	if c := sessionCookie(h.do(http.MethodGet, "/session", nil)); c != nil {
		t.Fatalf("fresh token should not be re-issued: %v", c)
	}

	// an hour left of a 24h lifetime
	now := time.Now()
	old, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": v.ID,
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Add(-23 * time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	h.token = old

	rec := h.do(http.MethodGet, "/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rec.Code, rec.Body.String())
	}
	c := sessionCookie(rec)
	if c == nil {
		t.Fatal("expiring token was not refreshed")
	}
	if c.Value == old || c.Expires.Before(now.Add(23*time.Hour)) {
		t.Fatalf("refreshed cookie expires %v", c.Expires)
	}
	h.token = c.Value
	h.view(h.do(http.MethodGet, "/session", nil), http.StatusOK)
}
