package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"character-match-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 8

// SessionStore keeps sessions in Redis as JSON strings under session:{id}.
// Updates use WATCH/MULTI so concurrent writers on one session retry
// instead of losing each other's changes.
//
// With a positive retention the key expires retention after the session's
// own expiry; until then lookups still see the session and report it expired.
type SessionStore struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

func NewSessionStore(client *redis.Client, retention time.Duration) *SessionStore {
	return &SessionStore{
		client:    client,
		retention: retention,
		now:       time.Now,
	}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), data, s.keyTTL(session)).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(raw)
}

func (s *SessionStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	key := s.key(id)
	var updated domain.Session

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		session, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err == nil {
			updated = session
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.Session{}, err
		}
		return updated, nil
	}
	return domain.Session{}, fmt.Errorf("update session %s: too much contention", id)
}

func (s *SessionStore) keyTTL(session domain.Session) time.Duration {
	if s.retention <= 0 {
		return 0
	}
	ttl := session.ExpiresAt.Add(s.retention).Sub(s.now())
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}

func decodeSession(raw []byte) (domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Answers == nil {
		session.Answers = make(map[string]string)
	}
	if session.Uploads == nil {
		session.Uploads = []string{}
	}
	return session, nil
}
