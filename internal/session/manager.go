package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxIdle is how long a session may sit untouched before the sweeper
// discards it along with its in-memory image bytes.
const DefaultMaxIdle = 30 * time.Minute

// Manager owns all live sessions, keyed by the cookie value.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxIdle  time.Duration
}

func NewManager(maxIdle time.Duration) *Manager {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &Manager{
		sessions: make(map[string]*Session),
		maxIdle:  maxIdle,
	}
}

// New creates and registers a fresh Idle session.
func (m *Manager) New() *Session {
	s := &Session{
		id:       uuid.NewString(),
		phase:    PhaseIdle,
		lastSeen: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by ID and marks it as recently used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(time.Now())
	}
	return s, ok
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle longer than maxIdle and returns how many went.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(now, m.maxIdle) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.Sweep(now)
			}
		}
	}()
}
