package memory

import (
	"context"
	"sync"
	"time"

	"character-match-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultRepository.
type ResultStore struct {
	now func() time.Time

	mu      sync.RWMutex
	results map[string]domain.StoredResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		now:     time.Now,
		results: make(map[string]domain.StoredResult),
	}
}

func (s *ResultStore) SaveMatch(_ context.Context, result domain.MatchResult, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.results[result.SessionID]
	stored.Match = &result
	stored.MatchUpdatedAt = s.now().UTC()
	s.results[result.SessionID] = stored
	return nil
}

func (s *ResultStore) SetPortrait(_ context.Context, sessionID, url string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.results[sessionID]
	stored.PortraitURL = url
	stored.PortraitUpdatedAt = s.now().UTC()
	s.results[sessionID] = stored
	return nil
}

func (s *ResultStore) Get(_ context.Context, sessionID string) (domain.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.results[sessionID]
	if !ok {
		return domain.StoredResult{}, domain.ErrResultNotFound
	}
	if stored.Match != nil {
		match := *stored.Match
		stored.Match = &match
	}
	return stored, nil
}
