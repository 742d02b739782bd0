// File: internal/session/store.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookmarked_backend/internal/config"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ErrNotFound is returned by a Store for unknown or expired session IDs.
var ErrNotFound = errors.New("session: not found")

// Store keeps serialized session records keyed by opaque session ID.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local Store backed by go-cache.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a MemoryStore; expired records are swept every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	v, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("session: unexpected record type %T", v)
	}
	return data, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data []byte, ttl time.Duration) error {
	s.cache.Set(id, data, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// NewStore builds the Store selected by SESSION_STORE.
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rs, err := NewRedisStore(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using redis session store", zap.String("addr", cfg.RedisAddr))
		cleanup := func() {
			if err := rs.Close(); err != nil {
				logger.Warn("Failed to close redis session store", zap.Error(err))
			}
		}
		return rs, cleanup, nil
	default:
		logger.Info("Using in-memory session store")
		return NewMemoryStore(10 * time.Minute), func() {}, nil
	}
}
