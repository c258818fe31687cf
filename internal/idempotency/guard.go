package idempotency

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxEntries = 1024
)

// Guard records platform update ids so a redelivered update is dispatched once.
type Guard interface {
	// Seen marks updateID as processed and reports whether it was already marked.
	Seen(ctx context.Context, updateID int) (bool, error)
	// Forget drops the mark so a later redelivery is processed again.
	Forget(ctx context.Context, updateID int) error
}

// MemoryGuard keeps the most recent update ids in process memory.
type MemoryGuard struct {
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[int]time.Time
	order   []int
}

func NewMemoryGuard(maxEntries int, ttl time.Duration, nowFn func() time.Time) *MemoryGuard {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemoryGuard{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        nowFn,
		entries:    make(map[int]time.Time),
	}
}

func (g *MemoryGuard) Seen(_ context.Context, updateID int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UTC()
	if expiresAt, ok := g.entries[updateID]; ok && !now.After(expiresAt) {
		return true, nil
	}
	g.pruneExpired(now)
	if _, exists := g.entries[updateID]; !exists {
		g.order = append(g.order, updateID)
	}
	g.entries[updateID] = now.Add(g.ttl)
	for len(g.entries) > g.maxEntries && len(g.order) > 0 {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.entries, oldest)
	}
	return false, nil
}

func (g *MemoryGuard) Forget(_ context.Context, updateID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.entries[updateID]; !ok {
		return nil
	}
	delete(g.entries, updateID)
	for i, id := range g.order {
		if id == updateID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

func (g *MemoryGuard) pruneExpired(now time.Time) {
	kept := g.order[:0]
	for _, id := range g.order {
		if now.After(g.entries[id]) {
			delete(g.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	g.order = kept
}

// RedisGuard marks update ids with SETNX so they survive restarts.
type RedisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(url, prefix string, ttl time.Duration) (*RedisGuard, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisGuard{client: redis.NewClient(opt), prefix: prefix, ttl: ttl}, nil
}

func (g *RedisGuard) Seen(ctx context.Context, updateID int) (bool, error) {
	created, err := g.client.SetNX(ctx, g.key(updateID), 1, g.ttl).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

func (g *RedisGuard) Forget(ctx context.Context, updateID int) error {
	return g.client.Del(ctx, g.key(updateID)).Err()
}

func (g *RedisGuard) Close() error {
	return g.client.Close()
}

func (g *RedisGuard) key(updateID int) string {
	return g.prefix + "update:" + strconv.Itoa(updateID)
}
