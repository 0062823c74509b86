package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Memory is an in-process backend with redis semantics for Get, Set and expiry.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	// Err, when set, fails every command.
	Err error
}

type memoryEntry struct {
	value string
	// Zero never expires.
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}}
}

// NewWithMemory returns a client backed by m.
func NewWithMemory(m *Memory) *Client {
	return &Client{rdb: m}
}

// Put stores value without expiry, the way producers of shared keys do.
func (m *Memory) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value}
}

func (m *Memory) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStringResult("", m.Err)
	}
	e, ok := m.entries[key]
	if ok && !e.expires.IsZero() && !time.Now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(e.value, nil)
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	e := memoryEntry{}
	if 0 < expiration {
		e.expires = time.Now().Add(expiration)
	}
	switch v := value.(type) {
	case []byte:
		e.value = string(v)
	case string:
		e.value = v
	}
	m.entries[key] = e
	return redis.NewStatusResult("OK", nil)
}

func (m *Memory) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.Err)
}

func (m *Memory) Close() error {
	return nil
}
