package kvstore

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	val       int64
	expiresAt time.Time // zero = no expiry
}

// Memory is an in-process Store with per-entry TTLs. Expired entries are
// dropped on access; Sweep removes the rest on a caller-chosen schedule,
// so eviction is deterministic rather than sampled.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*memEntry
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now, entries: make(map[string]*memEntry)}
}

// live returns the entry for key, dropping it first if expired.
func (m *Memory) live(key string) *memEntry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *Memory) Get(_ context.Context, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return 0, false, nil
	}
	return e.val, true, nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		e = &memEntry{}
		m.entries[key] = e
	}
	e.val++
	return e.val, nil
}

func (m *Memory) Decr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return 0, nil
	}
	e.val--
	if e.val <= 0 {
		delete(m.entries, key)
		return 0, nil
	}
	return e.val, nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.live(key); e != nil {
		e.expiresAt = m.now().Add(ttl)
	}
	return nil
}

// Sweep removes every expired entry and reports how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	dropped := 0
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, k)
			dropped++
		}
	}
	return dropped
}

// Janitor sweeps on the given interval until ctx is cancelled.
func (m *Memory) Janitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
