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

// Persistence keeps a visitor's session across portal restarts and reloads.
// Load returns nil without error when nothing is stored.
type Persistence interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, s *Session) error
	Delete(ctx context.Context, key string) error
}

// MemoryPersistence keeps sessions in process memory.
type MemoryPersistence struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{sessions: make(map[string]Session)}
}

func (m *MemoryPersistence) Load(_ context.Context, key string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryPersistence) Save(_ context.Context, key string, s *Session) error {
	if s == nil {
		return errors.New("session: cannot save nil session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = *s
	return nil
}

func (m *MemoryPersistence) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

// RedisPersistence stores sessions as JSON values under Prefix+key. Entries
// expire after TTL so abandoned sessions do not accumulate.
type RedisPersistence struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// DefaultRedisTTL matches the backend's default refresh token lifetime.
const DefaultRedisTTL = 7 * 24 * time.Hour

func NewRedisPersistence(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisPersistence {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisPersistence{Client: client, Prefix: prefix, TTL: ttl}
}

func (r *RedisPersistence) Load(ctx context.Context, key string) (*Session, error) {
	raw, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisPersistence) Save(ctx context.Context, key string, s *Session) error {
	if s == nil {
		return errors.New("session: cannot save nil session")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.Client.Set(ctx, r.Prefix+key, raw, r.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisPersistence) Delete(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, r.Prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
