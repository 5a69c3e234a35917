// apps/go-server/internal/game/engine.go
//
// Selection flow for a single trivia session.
// Responsibilities:
//   - Create new sessions (tier easy, score 0, waiting for a question).
//   - Install a freshly dealt round after checking its options.
//   - Lock in a point value once per round.
//   - Score an answer and send the session back for the next question.
//
// State transitions:
//
//	awaiting_question --Install--> awaiting_points --SelectPoints--> awaiting_answer
//	awaiting_answer --SelectAnswer--> awaiting_question
//
// Every method uses a value receiver and returns the next Session; the
// receiver is never modified, so callers can keep the old value on error.
package game

import (
	"errors"
	"fmt"
)

var (
	ErrWrongPhase    = errors.New("action not allowed in current phase")
	ErrInvalidPoints = errors.New("points not offered for tier")
	ErrInvalidRound  = errors.New("invalid round")
)

// NewSession returns a session waiting for its first question.
func NewSession(id string) Session {
	return Session{
		ID:    id,
		Phase: PhaseAwaitingQuestion,
		Tier:  TierEasy,
	}
}

// Install puts a dealt round in front of the player.
// Only valid while awaiting a question; a concurrent deal that lost the
// race gets ErrWrongPhase and its round is dropped.
func (s Session) Install(r Round) (Session, error) {
	if s.Phase != PhaseAwaitingQuestion {
		return s, ErrWrongPhase
	}
	if err := validateRound(r); err != nil {
		return s, err
	}
	opts := make([]string, len(r.Options))
	copy(opts, r.Options)

	next := s
	next.Round = &Round{Question: r.Question, Options: opts}
	next.Phase = PhaseAwaitingPoints
	return next, nil
}

// SelectPoints locks in the bet for the current round.
// Once a value is set, further calls are no-ops until the round is scored.
func (s Session) SelectPoints(v int) (Session, error) {
	switch s.Phase {
	case PhaseAwaitingAnswer:
		return s, nil
	case PhaseAwaitingPoints:
	default:
		return s, ErrWrongPhase
	}
	if !s.Tier.Offers(v) {
		return s, fmt.Errorf("%w: %d (%s)", ErrInvalidPoints, v, s.Tier)
	}
	r := *s.Round
	r.Points = v

	next := s
	next.Round = &r
	next.Phase = PhaseAwaitingAnswer
	return next, nil
}

// SelectAnswer scores the player's choice. The score grows by the bet
// only on an exact match; either way the session returns to waiting for
// a question.
func (s Session) SelectAnswer(answer string) (Session, Result, error) {
	if s.Phase != PhaseAwaitingAnswer || s.Round == nil {
		return s, Result{}, ErrWrongPhase
	}
	res := Result{
		Question: s.Round.Question,
		Chosen:   answer,
		Points:   s.Round.Points,
		Correct:  answer == s.Round.Question.Answer,
	}

	next := s
	if res.Correct {
		next.Score += res.Points
	}
	next.Round = nil
	next.Last = &res
	next.Rounds++
	next.Phase = PhaseAwaitingQuestion
	return next, res, nil
}

// WithTier switches the difficulty tier. Allowed in any phase; it only
// changes which values are offered from now on.
func (s Session) WithTier(t Tier) Session {
	next := s
	next.Tier = t
	return next
}

// Offered returns the point values currently offered to the player.
func (s Session) Offered() []int { return s.Tier.Points() }

// validateRound enforces the option invariant: four entries, exactly one
// of which is the correct answer.
func validateRound(r Round) error {
	if r.Question.Answer == "" {
		return fmt.Errorf("%w: empty answer", ErrInvalidRound)
	}
	if len(r.Options) != OptionCount {
		return fmt.Errorf("%w: %d options", ErrInvalidRound, len(r.Options))
	}
	hits := 0
	for _, o := range r.Options {
		if o == r.Question.Answer {
			hits++
		}
	}
	if hits != 1 {
		return fmt.Errorf("%w: answer appears %d times", ErrInvalidRound, hits)
	}
	return nil
}
