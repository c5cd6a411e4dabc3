package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"character-match-service/internal/app"
	"golang.org/x/sync/singleflight"
)

// CachedTable fronts a slower app.Table (e.g. Postgres) with a TTL cache for
// single-row reads. Writes go straight through and invalidate the row.
type CachedTable[T any] struct {
	backing app.Table[T]
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedRow[T]
	// gen counts invalidations per ID; a load only fills the cache if no
	// write happened while it was reading.
	gen map[string]uint64
}

type cachedRow[T any] struct {
	value     T
	expiresAt time.Time
}

func NewCachedTable[T any](backing app.Table[T], ttl time.Duration) *CachedTable[T] {
	return &CachedTable[T]{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedRow[T]),
		gen:     make(map[string]uint64),
	}
}

func (c *CachedTable[T]) Get(ctx context.Context, id string) (T, error) {
	if v, ok := c.lookup(id); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if v, ok := c.lookup(id); ok {
			return v, nil
		}

		c.mu.RLock()
		startGen := c.gen[id]
		c.mu.RUnlock()

		v, err := c.backing.Get(ctx, id)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		if c.gen[id] == startGen {
			c.cache[id] = cachedRow[T]{
				value:     v,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// List always reads through; the full listing is only used by scoring
// and admin screens.
func (c *CachedTable[T]) List(ctx context.Context) ([]T, error) {
	return c.backing.List(ctx)
}

func (c *CachedTable[T]) Put(ctx context.Context, id string, v T) error {
	defer c.invalidate(id)
	return c.backing.Put(ctx, id, v)
}

func (c *CachedTable[T]) Delete(ctx context.Context, id string) error {
	defer c.invalidate(id)
	return c.backing.Delete(ctx, id)
}

func (c *CachedTable[T]) lookup(id string) (T, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
		return entry.value, true
	}
	var zero T
	return zero, false
}

// invalidate drops the row and detaches any in-flight load so later Gets
// read the backing table again.
func (c *CachedTable[T]) invalidate(id string) {
	c.mu.Lock()
	delete(c.cache, id)
	c.gen[id]++
	c.mu.Unlock()
	c.sf.Forget(id)
}

func (c *CachedTable[T]) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
