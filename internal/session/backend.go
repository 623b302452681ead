package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBackend struct{ client *redis.Client }

func NewRedisBackend(client *redis.Client) Backend {
	return &redisBackend{client: client}
}

func sessionKey(id string) string { return "session:" + id }

func (b *redisBackend) Load(ctx context.Context, id string) (*Session, error) {
	data, err := b.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func (b *redisBackend) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return b.client.Set(ctx, sessionKey(s.ID), data, ttl).Err()
}

func (b *redisBackend) Remove(ctx context.Context, id string) error {
	return b.client.Del(ctx, sessionKey(id)).Err()
}

// MemoryBackend keeps sessions in process. Expiry is not enforced.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string][]byte
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(_ context.Context, id string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	data, ok := b.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *MemoryBackend) Save(_ context.Context, s *Session, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	b.sessions[s.ID] = data
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	delete(b.sessions, id)
	return nil
}

func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}
