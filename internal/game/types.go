// apps/go-server/internal/game/types.go
//
// Core type definitions for the trivia game engine.
// Defines:
//   - Tier: difficulty tier selecting the offered point values.
//   - Phase: where a session sits in the selection flow.
//   - Question, Round, Result: per-round data.
//   - Session: one player's game state, replaced by pure transitions (engine.go).

package game

import (
	"errors"
	"strings"
)

// Tier selects which fixed triple of point values a player may bet.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

var tierPoints = map[Tier][3]int{
	TierEasy:   {100, 200, 300},
	TierMedium: {300, 500, 700},
	TierHard:   {500, 800, 1000},
}

var ErrUnknownTier = errors.New("unknown tier")

// ParseTier maps "easy" | "medium" | "hard" (any case) to a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierPoints[t]; !ok {
		return "", ErrUnknownTier
	}
	return t, nil
}

// Points returns the values offered for this tier, lowest first.
// An unknown tier offers the easy values.
func (t Tier) Points() []int {
	p, ok := tierPoints[t]
	if !ok {
		p = tierPoints[TierEasy]
	}
	return []int{p[0], p[1], p[2]}
}

// Offers reports whether v is one of the tier's point values.
func (t Tier) Offers(v int) bool {
	for _, p := range t.Points() {
		if p == v {
			return true
		}
	}
	return false
}

// Phase is a coarse state of the selection flow.
//   - "awaiting_question": no round installed; the next step is a deal.
//   - "awaiting_points":   round installed, answers hidden, point buttons live.
//   - "awaiting_answer":   points locked in, the four options are selectable.
type Phase string

const (
	PhaseAwaitingQuestion Phase = "awaiting_question"
	PhaseAwaitingPoints   Phase = "awaiting_points"
	PhaseAwaitingAnswer   Phase = "awaiting_answer"
)

// Question is one clue fetched from the trivia source.
type Question struct {
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
	Answer   string `json:"answer"`
}

// Round is a question plus its shuffled options and the chosen bet.
type Round struct {
	Question Question
	Options  []string // always 4 entries, exactly one equals Question.Answer
	Points   int      // 0 until the player picks a value
}

// Result is the outcome of the most recently scored round.
type Result struct {
	Question Question `json:"question"`
	Chosen   string   `json:"chosen"`
	Points   int      `json:"points"`
	Correct  bool     `json:"correct"`
}

// Session holds one player's game. Values are treated as immutable:
// every transition in engine.go returns a new Session.
type Session struct {
	ID     string
	Phase  Phase
	Tier   Tier
	Score  int
	Round  *Round  // nil in PhaseAwaitingQuestion
	Last   *Result // nil until the first answer
	Rounds int     // number of scored rounds
}
