package session

import (
	"sync"

	"github.com/google/uuid"
)

// Manager serializes turns per session: turns on different sessions run in
// parallel, turns on the same session wait for the previous one to release.
// Lock entries are refcounted and evicted once no turn holds or waits on
// them, so the map tracks live sessions only.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu      sync.Mutex
	holders int // turns holding or waiting on this lock
}

func NewManager() *Manager {
	return &Manager{locks: make(map[string]*sessionLock)}
}

// NewSessionID mints a fresh session identifier for callers that did not
// supply one.
func NewSessionID() string {
	return uuid.NewString()
}

// BeginTurn blocks until the session is free, then returns a fresh turn
// cache and a release func. The fresh cache is the turn-start clear: no
// previous turn's results, partial or complete, can be observed.
func (m *Manager) BeginTurn(sessionID string) (*TurnCache, func()) {
	m.mu.Lock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		m.locks[sessionID] = lock
	}
	lock.holders++
	m.mu.Unlock()

	lock.mu.Lock()
	release := func() {
		lock.mu.Unlock()
		m.mu.Lock()
		lock.holders--
		if lock.holders == 0 {
			delete(m.locks, sessionID)
		}
		m.mu.Unlock()
	}
	return NewTurnCache(), release
}

// active returns the number of tracked session locks.
func (m *Manager) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
