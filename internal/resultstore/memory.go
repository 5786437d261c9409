package resultstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	result    LastResult
	expiresAt time.Time
}

// Memory keeps results for the life of the process.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemory returns an empty store. A non-positive ttl never expires.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

func (m *Memory) Save(_ context.Context, userID string, r *LastResult) error {
	e := memoryEntry{result: clone(r)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key(userID)] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Load(_ context.Context, userID string) (*LastResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(userID)
	e, ok := m.entries[k]
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, k)
		return nil, ErrNotFound
	}
	out := clone(&e.result)
	return &out, nil
}

func (m *Memory) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.entries, key(userID))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

// clone copies the answer map so callers cannot mutate stored state.
func clone(r *LastResult) LastResult {
	out := *r
	if r.Answers != nil {
		out.Answers = make(map[int]int, len(r.Answers))
		for k, v := range r.Answers {
			out.Answers[k] = v
		}
	}
	return out
}
