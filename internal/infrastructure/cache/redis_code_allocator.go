package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCodeAllocator hands out per-store-per-day session code sequence
// numbers with a Redis counter. INCR is atomic server-side, so concurrent
// allocations on the same (store, day) pair never observe the same number.
// Suitable for distributed deployments where multiple instances allocate
// codes against one Redis.
type RedisCodeAllocator struct {
	client    *redis.Client
	keyPrefix string
	keyTTL    time.Duration
}

// NewRedisCodeAllocator creates a Redis-backed allocator and verifies the
// connection
func NewRedisCodeAllocator(cfg RedisConfig) (*RedisCodeAllocator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCodeAllocatorWithClient(client, ""), nil
}

// NewRedisCodeAllocatorWithClient creates an allocator with an existing
// Redis client. This is useful for testing or when sharing a client across
// components.
func NewRedisCodeAllocatorWithClient(client *redis.Client, keyPrefix string) *RedisCodeAllocator {
	if keyPrefix == "" {
		keyPrefix = "session:seq:"
	}
	return &RedisCodeAllocator{
		client:    client,
		keyPrefix: keyPrefix,
		// Counters are keyed by day; 48h outlives any clock skew between
		// instances before expiry.
		keyTTL: 48 * time.Hour,
	}
}

// NextSequence allocates the next number for the (store, day) pair
func (a *RedisCodeAllocator) NextSequence(ctx context.Context, storeID uuid.UUID, day time.Time) (int64, error) {
	key := fmt.Sprintf("%s%s:%s", a.keyPrefix, storeID, day.Format(picking.SessionCodeDateLayout))

	seq, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate session sequence: %w", err)
	}

	// Set the TTL only when the counter was just created. A failed EXPIRE
	// leaves a counter that simply lives longer; sequences stay correct.
	if seq == 1 {
		if err := a.client.Expire(ctx, key, a.keyTTL).Err(); err != nil {
			return 0, fmt.Errorf("failed to set sequence expiry: %w", err)
		}
	}

	return seq, nil
}

// Close closes the Redis client
func (a *RedisCodeAllocator) Close() error {
	return a.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (a *RedisCodeAllocator) GetClient() *redis.Client {
	return a.client
}

// Ensure RedisCodeAllocator implements CodeAllocator
var _ picking.CodeAllocator = (*RedisCodeAllocator)(nil)
