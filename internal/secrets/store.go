// Package secrets resolves per-tenant Slack signing secrets.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("signing secret not found")

type Store interface {
	Lookup(ctx context.Context, tenant string) (string, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(secrets map[string]string) *MemoryStore {
	m := &MemoryStore{secrets: make(map[string]string, len(secrets))}
	for tenant, secret := range secrets {
		m.secrets[tenant] = secret
	}
	return m
}

func (m *MemoryStore) Lookup(_ context.Context, tenant string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	secret, ok := m.secrets[tenant]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

func (m *MemoryStore) Put(_ context.Context, tenant, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.secrets[tenant] = secret
	return nil
}

const keyPrefix = "slackgate:secret:"

type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Lookup(ctx context.Context, tenant string) (string, error) {
	secret, err := s.client.Get(ctx, key(tenant)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get signing secret: %w", err)
	}
	return secret, nil
}

func (s *RedisStore) Put(ctx context.Context, tenant, secret string) error {
	if err := s.client.Set(ctx, key(tenant), secret, 0).Err(); err != nil {
		return fmt.Errorf("failed to set signing secret: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, tenant string) error {
	if err := s.client.Del(ctx, key(tenant)).Err(); err != nil {
		return fmt.Errorf("failed to delete signing secret: %w", err)
	}
	return nil
}

func key(tenant string) string {
	return keyPrefix + tenant
}
