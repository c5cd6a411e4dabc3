package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"character-match-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultStore keeps one hash per session:
//
//	HSET result:{sessionID} match <json> match_at <unix nanos>
//	HSET result:{sessionID} portrait_url <ref> portrait_at <unix nanos>
//
// The match and the portrait are written by separate calls and never
// overwrite each other. With a positive retention the hash expires at the
// owning session's expires_at plus retention, the same deadline as the
// session key.
type ResultStore struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

func NewResultStore(client *redis.Client, retention time.Duration) *ResultStore {
	return &ResultStore{
		client:    client,
		retention: retention,
		now:       time.Now,
	}
}

func (s *ResultStore) SaveMatch(ctx context.Context, result domain.MatchResult, sessionExpiresAt time.Time) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}
	return s.write(ctx, result.SessionID, sessionExpiresAt, "match", string(data), "match_at")
}

func (s *ResultStore) SetPortrait(ctx context.Context, sessionID, url string, sessionExpiresAt time.Time) error {
	return s.write(ctx, sessionID, sessionExpiresAt, "portrait_url", url, "portrait_at")
}

func (s *ResultStore) write(ctx context.Context, sessionID string, sessionExpiresAt time.Time, field, value, stampField string) error {
	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value, stampField, s.now().UTC().UnixNano())
	if s.retention > 0 && !sessionExpiresAt.IsZero() {
		pipe.ExpireAt(ctx, key, sessionExpiresAt.Add(s.retention))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store %s: %w", field, err)
	}
	return nil
}

func (s *ResultStore) Get(ctx context.Context, sessionID string) (domain.StoredResult, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return domain.StoredResult{}, fmt.Errorf("load result: %w", err)
	}
	if len(fields) == 0 {
		return domain.StoredResult{}, domain.ErrResultNotFound
	}

	var stored domain.StoredResult
	if raw, ok := fields["match"]; ok {
		var match domain.MatchResult
		if err := json.Unmarshal([]byte(raw), &match); err != nil {
			return domain.StoredResult{}, fmt.Errorf("unmarshal match: %w", err)
		}
		stored.Match = &match
		stored.MatchUpdatedAt = parseStamp(fields["match_at"])
	}
	stored.PortraitURL = fields["portrait_url"]
	stored.PortraitUpdatedAt = parseStamp(fields["portrait_at"])
	return stored, nil
}

func (s *ResultStore) key(sessionID string) string {
	return "result:" + sessionID
}

func parseStamp(raw string) time.Time {
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos).UTC()
}
