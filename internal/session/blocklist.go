// File: internal/session/blocklist.go
package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// TokenBlocklistService remembers revoked token IDs until the tokens would
// have expired anyway.
type TokenBlocklistService interface {
	// AddToBlocklist adds a token's JTI (JWT ID) to the blocklist until expiresAt.
	AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error
	// IsBlocklisted checks if a token's JTI is in the blocklist.
	IsBlocklisted(ctx context.Context, jti string) (bool, error)
}

// InMemoryBlocklistService is an in-memory implementation of TokenBlocklistService using a cache.
type InMemoryBlocklistService struct {
	cache *cache.Cache
}

// NewInMemoryBlocklistService creates a new in-memory blocklist service.
func NewInMemoryBlocklistService(cleanupInterval time.Duration) *InMemoryBlocklistService {
	return &InMemoryBlocklistService{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// AddToBlocklist adds a token JTI to the cache. Already expired tokens are skipped.
func (s *InMemoryBlocklistService) AddToBlocklist(_ context.Context, jti string, expiresAt time.Time) error {
	duration := time.Until(expiresAt)
	if duration <= 0 {
		return nil
	}
	s.cache.Set(jti, true, duration)
	return nil
}

// IsBlocklisted checks if a token JTI exists in the cache.
func (s *InMemoryBlocklistService) IsBlocklisted(_ context.Context, jti string) (bool, error) {
	_, found := s.cache.Get(jti)
	return found, nil
}

// RedisBlocklistService shares revocations between instances. Each revoked
// JTI is a key that expires together with its token.
type RedisBlocklistService struct {
	client *redis.Client
	prefix string
}

// NewRedisBlocklistService stores revoked JTIs under prefix:revoked:<jti>.
func NewRedisBlocklistService(client *redis.Client, prefix string) *RedisBlocklistService {
	return &RedisBlocklistService{client: client, prefix: prefix}
}

func (s *RedisBlocklistService) key(jti string) string {
	if s.prefix == "" {
		return "revoked:" + jti
	}
	return s.prefix + ":revoked:" + jti
}

func (s *RedisBlocklistService) AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error {
	duration := time.Until(expiresAt)
	if duration <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(jti), 1, duration).Err()
}

func (s *RedisBlocklistService) IsBlocklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NewBlocklist keeps revocations next to the sessions: in Redis when the
// store is Redis, in process memory otherwise.
func NewBlocklist(store Store) TokenBlocklistService {
	if rs, ok := store.(*RedisStore); ok {
		return NewRedisBlocklistService(rs.client, rs.prefix)
	}
	return NewInMemoryBlocklistService(10 * time.Minute)
}
