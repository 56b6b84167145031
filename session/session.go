// Package session keys isolated trading ledgers by session ID. Each session
// owns its own balance, open positions, and activity log; nothing is shared
// across sessions.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comodofi/perps/ledger"
)

// Session is one interactive trading session.
type Session struct {
	ID      string
	Ledger  *ledger.Ledger
	Created time.Time
}

// Manager creates and looks up sessions. The factory builds a fresh,
// isolated ledger (with its own journal) per session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  func(id string) *ledger.Ledger
	now      func() time.Time
}

func NewManager(factory func(id string) *ledger.Ledger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		now:      time.Now,
	}
}

// GetOrCreate returns the session with the given ID, creating it if absent.
// An empty ID creates a new session under a fresh UUID.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s
		}
	} else {
		id = uuid.NewString()
	}

	s := &Session{
		ID:      id,
		Ledger:  m.factory(id),
		Created: m.now(),
	}
	m.sessions[id] = s
	return s
}

// Get returns an existing session or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
