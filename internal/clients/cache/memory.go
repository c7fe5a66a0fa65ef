package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a process-wide TTL cache. Entries are replaced wholesale, never mutated.
// Every namespace carries a generation that InvalidateByPrefix advances.
type Memory struct {
	mu          sync.Mutex
	items       map[string]entry
	generations map[string]uint64
	now         func() time.Time
}

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		items:       make(map[string]entry),
		generations: make(map[string]uint64),
		now:         now,
	}
}

// Get returns the value for key. Expired entries are evicted on access.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value for ttl. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

// Generation returns the current generation of namespace.
func (m *Memory) Generation(_ context.Context, namespace string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strconv.FormatUint(m.generations[namespace], 10), nil
}

// SetIfGeneration stores value only while the key's namespace is still at generation.
// It reports whether the value was stored.
func (m *Memory) SetIfGeneration(_ context.Context, key, generation string, value []byte, ttl time.Duration) (bool, error) {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if strconv.FormatUint(m.generations[namespaceOf(key)], 10) != generation {
		return false, nil
	}
	m.items[key] = e
	return true, nil
}

func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) InvalidateByPrefix(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generations[namespace]++
	removed := 0
	for key := range m.items {
		if InNamespace(key, namespace) {
			delete(m.items, key)
			removed++
		}
	}
	logger.Debug("invalidate namespace", zap.String("namespace", namespace), zap.Int("removed", removed))
	return nil
}

// CleanExpired drops expired entries and returns how many were removed.
func (m *Memory) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.items {
		if e.expired(now) {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Run cleans expired entries every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.CleanExpired(); removed > 0 {
				logger.Debug("cache cleanup", zap.Int("removed", removed))
			}
		}
	}
}
