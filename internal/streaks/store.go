package streaks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is the persisted check-in state for one identity.
type Record struct {
	LastCheckIn string   `json:"last_check_in"` // YYYY-MM-DD, empty when never checked in
	Streak      int      `json:"streak"`
	History     []string `json:"history"`
}

// Store persists check-in records keyed by identity.
type Store interface {
	Get(ctx context.Context, identityKey string) (Record, error)
	Put(ctx context.Context, identityKey string, rec Record) error
}

const (
	redisKeyPrefix = "checkin:"
	redisRecordTTL = 90 * 24 * time.Hour
)

// RedisStore keeps records in Redis so streaks survive restarts and
// are shared across replicas.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, identityKey string) (Record, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+identityKey).Bytes()
	if err == redis.Nil {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read check-in record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode check-in record: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Put(ctx context.Context, identityKey string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode check-in record: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+identityKey, raw, redisRecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to write check-in record: %w", err)
	}
	return nil
}

// MemoryStore is the in-process fallback used when Redis is not
// configured. Records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, identityKey string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[identityKey], nil
}

func (s *MemoryStore) Put(ctx context.Context, identityKey string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identityKey] = rec
	return nil
}
