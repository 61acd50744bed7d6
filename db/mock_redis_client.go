package db

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"
)

type mockEntry struct {
	value     string
	expiresAt time.Time
}

func (e mockEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MockRedisClient is an in-memory RedisClient used in development and tests.
type MockRedisClient struct {
	data    map[string]mockEntry
	mu      sync.Mutex
	context context.Context
	now     func() time.Time
}

// NewMockRedisClient initializes an empty MockRedisClient.
func NewMockRedisClient(ctx context.Context) *MockRedisClient {
	return &MockRedisClient{
		data:    make(map[string]mockEntry),
		context: ctx,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for expiry.
func (m *MockRedisClient) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MockRedisClient) Set(key, value string) error {
	return m.SetWithTTL(key, value, 0)
}

func (m *MockRedisClient) SetWithTTL(key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := mockEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = entry
	return nil
}

func (m *MockRedisClient) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return entry.value, nil
}

// Incr follows redis semantics: missing keys start at zero and keep no expiry.
func (m *MockRedisClient) Incr(key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, _ := m.lookup(key)
	var n int64
	if entry.value != "" {
		parsed, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value is not an integer: %s", key)
		}
		n = parsed
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	m.data[key] = entry
	return n, nil
}

func (m *MockRedisClient) Expire(key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.lookup(key)
	if !ok {
		return nil
	}
	entry.expiresAt = m.now().Add(ttl)
	m.data[key] = entry
	return nil
}

// Keys matches with path.Match, which covers the glob patterns redis accepts here.
func (m *MockRedisClient) Keys(pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := []string{}
	for key := range m.data {
		if _, ok := m.lookup(key); !ok {
			continue
		}
		if matched, _ := path.Match(pattern, key); matched {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockRedisClient) Del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockRedisClient) GetContext() context.Context {
	return m.context
}

func (m *MockRedisClient) Ping() error {
	return nil
}

// lookup drops expired entries. Callers hold mu.
func (m *MockRedisClient) lookup(key string) (mockEntry, bool) {
	entry, ok := m.data[key]
	if !ok {
		return mockEntry{}, false
	}
	if entry.expired(m.now()) {
		delete(m.data, key)
		return mockEntry{}, false
	}
	return entry, true
}
