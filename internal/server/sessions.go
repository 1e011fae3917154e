package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/NissesSenap/gridplane/internal/plane"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
	ErrRateLimited     = errors.New("too many events")
)

// session pairs a plane with the lock that serializes events against it.
// Each session has its own event budget so one busy tab cannot starve others.
type session struct {
	mu      sync.Mutex
	id      string
	plane   *plane.Plane
	limiter *rate.Limiter
}

// Sessions tracks the live planes, one per browser tab
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*session
	max      int
	limit    rate.Limit
	burst    int
}

// NewSessions creates a registry holding at most max planes, 0 for no limit.
// Every session may accept limit events per second with the given burst.
func NewSessions(max int, limit rate.Limit, burst int) *Sessions {
	if burst < 1 {
		burst = 1
	}
	return &Sessions{
		sessions: make(map[string]*session),
		max:      max,
		limit:    limit,
		burst:    burst,
	}
}

// Create registers a plane under a fresh ID
func (s *Sessions) Create(p *plane.Plane) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		return "", ErrTooManySessions
	}

	id := uuid.NewString()
	s.sessions[id] = &session{id: id, plane: p, limiter: rate.NewLimiter(s.limit, s.burst)}
	return id, nil
}

// Allow takes one event from the session's budget
func (s *Sessions) Allow(id string) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	if !sess.limiter.Allow() {
		return ErrRateLimited
	}
	return nil
}

// With runs fn against the plane while holding its session lock
func (s *Sessions) With(id string, fn func(p *plane.Plane) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.plane)
}

// Delete drops a session
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
