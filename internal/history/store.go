package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
)

// Entry is one scored round as stored in round_results.
type Entry struct {
	SessionID string    `json:"-"`
	Tier      string    `json:"tier"`
	Category  string    `json:"category"`
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer"`
	Chosen    string    `json:"chosen"`
	Points    int       `json:"points"`
	Correct   bool      `json:"correct"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromResult builds a journal entry for a round scored in session s.
func FromResult(s game.Session, r game.Result) Entry {
	return Entry{
		SessionID: s.ID,
		Tier:      string(s.Tier),
		Category:  r.Question.Category,
		Prompt:    r.Question.Prompt,
		Answer:    r.Question.Answer,
		Chosen:    r.Chosen,
		Points:    r.Points,
		Correct:   r.Correct,
	}
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record appends one entry. CreatedAt is set by the database.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO round_results(session_id, tier, category, prompt, answer, chosen, points, correct)
		 VALUES(?,?,?,?,?,?,?,?)`,
		e.SessionID, e.Tier, e.Category, e.Prompt, e.Answer, e.Chosen, e.Points, e.Correct,
	)
	return err
}

// List returns up to limit entries for a session, newest first.
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, tier, category, prompt, answer, chosen, points, correct, created_at
		 FROM round_results
		 WHERE session_id=?
		 ORDER BY id DESC
		 LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.SessionID, &e.Tier, &e.Category, &e.Prompt, &e.Answer,
			&e.Chosen, &e.Points, &e.Correct, &created); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		e.CreatedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}
