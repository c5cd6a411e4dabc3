package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/infra/media"
	"character-match-service/internal/infra/memory"
	"character-match-service/internal/seed"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	catalog  app.Catalog
	sessions *app.SessionService
	results  *app.ResultService
	blobs    *memory.BlobStore
	stored   *memory.ResultStore
	events   *app.EventHub
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, media.CopyTransformer{})
}

func newFixtureWith(t *testing.T, transformer app.ImageTransformer) *fixture {
	t.Helper()
	clock := newFakeClock()
	catalog := memory.NewCatalog()
	if err := seed.Apply(context.Background(), catalog, clock.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	events := app.NewEventHub()
	blobs := memory.NewBlobStore()
	sessions := app.NewSessionService(memory.NewSessionStore(), catalog, events, zap.NewNop()).WithClock(clock.Now)
	stored := memory.NewResultStore()
	results := app.NewResultService(sessions, stored, blobs, transformer, events, zap.NewNop()).WithClock(clock.Now)
	return &fixture{
		catalog:  catalog,
		sessions: sessions,
		results:  results,
		blobs:    blobs,
		stored:   stored,
		events:   events,
		clock:    clock,
	}
}
