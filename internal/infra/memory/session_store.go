package memory

import (
	"context"
	"sync"
	"time"

	"character-match-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Values are cloned on the way in and out so callers never share maps.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
	}
}

func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Update holds the store lock for the whole read-modify-write; fn must not block.
func (s *SessionStore) Update(_ context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return domain.Session{}, err
	}
	s.sessions[id] = next
	return next.Clone(), nil
}

// Sweep drops sessions that expired before cutoff and returns how many went.
func (s *SessionStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper removes sessions once they have been expired for longer than
// retention, checking every interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, retention, interval time.Duration, onSweep func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now.Add(-retention)); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
