// Package practice parks serialized learning sessions between HTTP
// requests, either in process memory or in Redis when REDIS_ADDR is set.
package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"wordspark-backend/internal/learning"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("practice session not found")

// StoredSession binds a parked session snapshot to its owner and list, so a
// session ID cannot be replayed against another user's data.
type StoredSession struct {
	OwnerID  uint              `json:"owner_id"`
	ListID   uint              `json:"list_id"`
	Snapshot learning.Snapshot `json:"snapshot"`
}

// SessionStore is the contract both store variants satisfy. Entries expire
// after the TTL the store was built with.
type SessionStore interface {
	Put(ctx context.Context, id string, sess StoredSession) error
	Get(ctx context.Context, id string) (*StoredSession, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in a mutex-guarded map. Expired entries are
// dropped lazily on read and by the scheduler's periodic Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	sess     StoredSession
	deadline time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Put(_ context.Context, id string, sess StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memoryEntry{sess: sess, deadline: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(entry.deadline) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess := entry.sess
	return &sess, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, entry := range m.sessions {
		if now.After(entry.deadline) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RedisStore keeps sessions as JSON blobs with a server-side TTL, so they
// survive process restarts and expire without sweeping.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func sessionKey(id string) string {
	return "wordspark:practice:" + id
}

func (r *RedisStore) Put(ctx context.Context, id string, sess StoredSession) error {
	blob, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(id), blob, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*StoredSession, error) {
	blob, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var sess StoredSession
	if err := json.Unmarshal(blob, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}
