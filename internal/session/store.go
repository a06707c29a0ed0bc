package session

import (
	"sync"
	"time"
)

// Session holds the state of one in-progress conversational flow for a user.
type Session struct {
	Flow      string
	State     string
	Data      map[string]any // accumulated field values keyed by field name
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store keeps active sessions keyed by Telegram user ID.
// At most one session exists per user; setting a new one replaces the old.
// A zero TTL disables expiry entirely.
type Store struct {
	mu   sync.RWMutex
	data map[int64]*Session
	ttl  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a Store. When ttl > 0 a sweeper goroutine evicts expired
// sessions in the background; Get also treats expired entries as absent, so
// the sweeper only bounds memory.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		data: make(map[int64]*Session),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweep()
	}
	return s
}

// Set starts or replaces the user's session.
func (s *Store) Set(userID int64, sess *Session) {
	if sess == nil {
		return
	}
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}
	if s.ttl > 0 {
		sess.ExpiresAt = now.Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = sess
}

// Get returns the user's live session, or nil and false when there is none.
// An expired session counts as absent.
func (s *Store) Get(userID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[userID]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && time.Now().After(sess.ExpiresAt) {
		return nil, false
	}
	return sess, true
}

// Touch extends the expiry of a live session after user activity.
func (s *Store) Touch(userID int64) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.data[userID]; ok {
		sess.ExpiresAt = time.Now().Add(s.ttl)
	}
}

// Clear removes the user's session if any.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
}

// Len reports the number of stored sessions, including not-yet-swept expired ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close stops the background sweeper.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	interval := s.ttl
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, sess := range s.data {
				if now.After(sess.ExpiresAt) {
					delete(s.data, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
