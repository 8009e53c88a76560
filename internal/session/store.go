// Package session holds per-principal conversation state and scratch data.
//
// Sessions are created lazily on first acquisition, serialized per principal
// (a second event for the same principal blocks until the first releases),
// and dropped by a background sweeper after an idle TTL. Distinct principals
// are fully independent.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session is one principal's conversation state plus scratch data. It is
// only safe to use between Acquire and the returned release function.
type Session struct {
	State State
	data  map[string]string
}

// Get returns a scratch value.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Update merges scratch values, last write wins per key.
func (s *Session) Update(values map[string]string) {
	for k, v := range values {
		s.data[k] = v
	}
}

// Set stores one scratch value.
func (s *Session) Set(key, value string) {
	s.data[key] = value
}

// Clear resets the session to Idle and empties the scratch data.
func (s *Session) Clear() {
	s.State = Idle
	s.data = make(map[string]string)
}

type entry struct {
	mu      sync.Mutex
	session Session
	touched time.Time
}

// Store owns all sessions, keyed by principal id.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	ttl     time.Duration
	logger  *zap.Logger
}

// NewStore creates a session store. Sessions idle longer than ttl are
// eligible for sweeping; a zero ttl disables expiry.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries: make(map[int64]*entry),
		ttl:     ttl,
		logger:  logger,
	}
}

// Acquire returns the principal's session, creating it lazily, and blocks
// until no other event for the same principal is in flight. The caller must
// invoke the release function when handling completes; the session must not
// be touched afterwards.
func (s *Store) Acquire(principal int64) (*Session, func()) {
	for {
		s.mu.Lock()
		e, ok := s.entries[principal]
		if !ok {
			e = &entry{session: Session{State: Idle, data: make(map[string]string)}}
			s.entries[principal] = e
		}
		s.mu.Unlock()

		e.mu.Lock()

		// The sweeper may have dropped this entry between the map lookup
		// and the lock; retry against the current entry if so.
		s.mu.Lock()
		current := s.entries[principal] == e
		s.mu.Unlock()
		if !current {
			e.mu.Unlock()
			continue
		}

		return &e.session, func() {
			e.touched = time.Now()
			e.mu.Unlock()
		}
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle longer than the TTL and returns how many were
// removed. Sessions currently being handled are skipped.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for principal, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := now.Sub(e.touched)
		e.mu.Unlock()
		if e.touched.IsZero() || idle < s.ttl {
			continue
		}
		delete(s.entries, principal)
		removed++
	}
	if removed > 0 {
		s.logger.Debug("swept idle sessions", zap.Int("removed", removed))
	}
	return removed
}

// Run sweeps expired sessions at the given interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
