package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamGuard enforces the one-in-flight-stream-per-conversation rule.
// Acquire returns false when another stream already holds the key. The
// TTL protects against flags leaked by a crashed process.
type StreamGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ============================================================================
// In-memory guard
// ============================================================================

type memoryStreamGuard struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
}

// NewMemoryStreamGuard creates a process-local stream guard. Suitable for
// single-instance deployments; use the Redis guard when running more
// than one replica.
func NewMemoryStreamGuard(ttl time.Duration) StreamGuard {
	return &memoryStreamGuard{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

var _ StreamGuard = (*memoryStreamGuard)(nil)

func (g *memoryStreamGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	g.sweep(now)

	if expiry, held := g.entries[key]; held && now.Before(expiry) {
		return false, nil
	}
	g.entries[key] = now.Add(g.ttl)
	return true, nil
}

func (g *memoryStreamGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}

// sweep drops expired flags. Called under the lock.
func (g *memoryStreamGuard) sweep(now time.Time) {
	for key, expiry := range g.entries {
		if now.After(expiry) {
			delete(g.entries, key)
		}
	}
}

// ============================================================================
// Redis guard
// ============================================================================

type redisStreamGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStreamGuard creates a stream guard backed by Redis SET NX, so
// the one-stream rule holds across replicas.
func NewRedisStreamGuard(client *redis.Client, ttl time.Duration) StreamGuard {
	return &redisStreamGuard{client: client, ttl: ttl}
}

var _ StreamGuard = (*redisStreamGuard)(nil)

func (g *redisStreamGuard) Acquire(ctx context.Context, key string) (bool, error) {
	acquired, err := g.client.SetNX(ctx, guardKey(key), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire stream guard: %w", err)
	}
	return acquired, nil
}

func (g *redisStreamGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, guardKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release stream guard: %w", err)
	}
	return nil
}

func guardKey(key string) string {
	return "planstack:stream:" + key
}
