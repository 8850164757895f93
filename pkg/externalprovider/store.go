package externalprovider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// OneTimeStore keeps short-lived values that are read at most once.
type OneTimeStore interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns and removes the value. ok is false when the key is unknown or expired.
	Take(ctx context.Context, key string) (value []byte, ok bool, err error)
}

// RedisStore is a OneTimeStore backed by expiring Redis keys. Take uses GETDEL so two
// concurrent readers can never both see the value.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Take(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryStore is a process-local OneTimeStore.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]memEntry), now: time.Now}
}

func (s *InMemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memEntry{value: value, expiresAt: now.Add(ttl)}
	return nil
}

func (s *InMemoryStore) Take(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	delete(s.entries, key)
	if s.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}
