// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the session Store.
//
// Characteristics:
//   - Stores game.Session values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs a transition under the write lock, so two requests on
//     the same session never interleave their read-modify-write.
//   - Tracks last access per session so idle sessions can be pruned.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
)

var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s game.Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (game.Session, error)

	// Update applies fn to the stored session and saves the result.
	// If fn returns an error nothing is written and the error is returned
	// together with the unchanged session.
	Update(ctx context.Context, id string, fn func(game.Session) (game.Session, error)) (game.Session, error)

	// Prune drops sessions not touched since before and reports how many.
	Prune(ctx context.Context, before time.Time) int
}

type entry struct {
	sess     game.Session
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions
	sessions map[string]*entry // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &entry{sess: s, lastSeen: m.now()}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e.sess, nil
	}
	return game.Session{}, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(game.Session) (game.Session, error)) (game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return game.Session{}, ErrNotFound
	}
	next, err := fn(e.sess)
	if err != nil {
		return e.sess, err
	}
	e.sess = next
	e.lastSeen = m.now()
	return next, nil
}

func (m *memory) Prune(ctx context.Context, before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
