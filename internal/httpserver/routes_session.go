// apps/go-server/internal/httpserver/routes_session.go
//
// HTTP routes for playing a trivia session. Mounted under /session:
//   - POST /session          → create a session and deal its first round
//   - GET  /session          → current view
//   - POST /session/tier     → change difficulty tier (any phase)
//   - POST /session/points   → lock in the bet (once per round)
//   - POST /session/answer   → score the answer, journal it, deal the next round
//   - POST /session/deal     → fetch a round for a session still waiting for one
//   - GET  /session/history  → scored rounds for this session, newest first
//
// A failed question fetch is logged and leaves the session waiting for a
// question; responses stay 200 so the client simply shows no round. After
// an answer that means "last" (the round just scored) is what stays on
// screen; the scored round is never offered again and POST /session/deal
// retries the fetch.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/history"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/store"
)

// mountSession registers all /session routes.
func (s *Server) mountSession(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Post("/", s.handleNewSession)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession())
			r.Get("/", s.handleGetSession)
			r.Post("/tier", s.handleTier)
			r.Post("/points", s.handlePoints)
			r.Post("/answer", s.handleAnswer)
			r.Post("/deal", s.handleDeal)
			r.Get("/history", s.handleHistory)
		})
	})
}

// sessionView is what the client sees. Point options appear once a round
// is installed; the clue and its options only after points are locked in.
type sessionView struct {
	ID           string       `json:"id"`
	Phase        game.Phase   `json:"phase"`
	Score        int          `json:"score"`
	Tier         game.Tier    `json:"tier"`
	Rounds       int          `json:"rounds"`
	PointOptions []int        `json:"pointOptions,omitempty"`
	Points       int          `json:"points,omitempty"`
	Category     string       `json:"category,omitempty"`
	Question     string       `json:"question,omitempty"`
	Options      []string     `json:"options,omitempty"`
	Last         *game.Result `json:"last,omitempty"`
}

func viewOf(sess game.Session) sessionView {
	v := sessionView{
		ID:     sess.ID,
		Phase:  sess.Phase,
		Score:  sess.Score,
		Tier:   sess.Tier,
		Rounds: sess.Rounds,
		Last:   sess.Last,
	}
	if sess.Round == nil {
		return v
	}
	v.PointOptions = sess.Offered()
	if sess.Phase == game.PhaseAwaitingAnswer {
		v.Points = sess.Round.Points
		v.Category = sess.Round.Question.Category
		v.Question = sess.Round.Question.Prompt
		v.Options = append([]string(nil), sess.Round.Options...)
	}
	return v
}

// -----------------------------------------------------------------------------
// POST /session

type newSessionRes struct {
	Token   string      `json:"token"`
	Session sessionView `json:"session"`
}

// handleNewSession creates a session, issues its token, and deals the first round.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	sess := game.NewSession(uuid.NewString())
	tok, exp, err := s.signSession(sess.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign session")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, tok, exp)

	sess, err = s.deal(r, sess.ID)
	if err != nil {
		writeGameErr(w, err)
		return
	}
	hlog.FromRequest(r).Info().Str("session", sess.ID).Str("phase", string(sess.Phase)).Msg("session started")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newSessionRes{Token: tok, Session: viewOf(sess)})
}

// -----------------------------------------------------------------------------
// GET /session

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), sessionID(r))
	if err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess))
}

// -----------------------------------------------------------------------------
// POST /session/tier

type tierReq struct {
	Tier string `json:"tier"`
}

func (s *Server) handleTier(w http.ResponseWriter, r *http.Request) {
	var req tierReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	tier, err := game.ParseTier(req.Tier)
	if err != nil {
		writeGameErr(w, err)
		return
	}
	sess, err := s.store.Update(r.Context(), sessionID(r), func(cur game.Session) (game.Session, error) {
		return cur.WithTier(tier), nil
	})
	if err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess))
}

// -----------------------------------------------------------------------------
// POST /session/points

type pointsReq struct {
	Points int `json:"points"`
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	var req pointsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.store.Update(r.Context(), sessionID(r), func(cur game.Session) (game.Session, error) {
		return cur.SelectPoints(req.Points)
	})
	if err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess))
}

// -----------------------------------------------------------------------------
// POST /session/answer

type answerReq struct {
	Answer string `json:"answer"`
}

// handleAnswer scores the answer, records it in the journal (best effort),
// then deals the next round.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	var res game.Result
	sess, err := s.store.Update(r.Context(), sessionID(r), func(cur game.Session) (game.Session, error) {
		next, out, err := cur.SelectAnswer(req.Answer)
		res = out
		return next, err
	})
	if err != nil {
		writeGameErr(w, err)
		return
	}
	hlog.FromRequest(r).Info().
		Str("session", sess.ID).
		Bool("correct", res.Correct).
		Int("points", res.Points).
		Int("score", sess.Score).
		Msg("answer scored")

	if s.history != nil {
		if err := s.history.Record(r.Context(), history.FromResult(sess, res)); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("session", sess.ID).Msg("journal round")
		}
	}

	sess, err = s.deal(r, sess.ID)
	if err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess))
}

// -----------------------------------------------------------------------------
// POST /session/deal

func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request) {
	cur, err := s.store.Get(r.Context(), sessionID(r))
	if err != nil {
		writeGameErr(w, err)
		return
	}
	if cur.Phase != game.PhaseAwaitingQuestion {
		writeGameErr(w, game.ErrWrongPhase)
		return
	}
	sess, err := s.deal(r, cur.ID)
	if err != nil {
		writeGameErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(sess))
}

// -----------------------------------------------------------------------------
// GET /session/history

type historyRes struct {
	Enabled bool            `json:"enabled"`
	Entries []history.Entry `json:"entries"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		_ = json.NewEncoder(w).Encode(historyRes{Enabled: false, Entries: []history.Entry{}})
		return
	}
	rows, err := s.history.List(r.Context(), sessionID(r), s.opts.HistoryLimit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list history")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(historyRes{Enabled: true, Entries: rows})
}

// -----------------------------------------------------------------------------
// helpers

// deal fetches a round outside the store lock and installs it. A failed
// question fetch is logged and the session is returned as it stands:
// awaiting a question, with Last still holding any round just scored.
func (s *Server) deal(r *http.Request, id string) (game.Session, error) {
	round, err := s.dealer.NextRound(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("fetch question")
		return s.store.Get(r.Context(), id)
	}
	sess, err := s.store.Update(r.Context(), id, func(cur game.Session) (game.Session, error) {
		return cur.Install(round)
	})
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		// another request installed a round first; keep that one
		return sess, nil
	case errors.Is(err, game.ErrInvalidRound):
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("install round")
		return sess, nil
	}
	return sess, err
}

// writeGameErr maps domain errors to JSON error responses.
func writeGameErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"session_not_found"}`, http.StatusNotFound)
	case errors.Is(err, game.ErrWrongPhase):
		http.Error(w, `{"error":"wrong_phase"}`, http.StatusConflict)
	case errors.Is(err, game.ErrInvalidPoints):
		http.Error(w, `{"error":"invalid_points"}`, http.StatusBadRequest)
	case errors.Is(err, game.ErrUnknownTier):
		http.Error(w, `{"error":"unknown_tier"}`, http.StatusBadRequest)
	default:
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
	}
}
