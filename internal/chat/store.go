package chat

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists session contexts between turns.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Count(ctx context.Context) (int, error)
}

// MemoryStore keeps sessions in process memory. With a TTL, a session expires
// ttl after its last save, the same way the Redis store refreshes its keys.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	session *Session
	expires time.Time // zero means never
}

// NewMemoryStore returns a store whose sessions never expire.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreTTL(0)
}

func NewMemoryStoreTTL(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if e.expired(m.now()) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{session: s.Clone()}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.sessions[s.ID] = e
	return nil
}

// Count drops expired sessions and returns how many are left.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, e := range m.sessions {
		if e.expired(now) {
			delete(m.sessions, id)
		}
	}
	return len(m.sessions), nil
}

// Locker hands out one mutex per session id so turns of a session never overlap.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock blocks until id is free and returns the matching unlock func.
func (l *Locker) Lock(id string) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
