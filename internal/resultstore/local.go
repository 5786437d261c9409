package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// KV is the raw key/value surface of the local SQLite store.
type KV interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValues(ctx context.Context, keys ...string) error
}

// Local keeps the result in the on-disk store so a later invocation of the
// CLI can reopen it.
type Local struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

type localEnvelope struct {
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	Result    *LastResult `json:"result"`
}

// NewLocal wraps kv. A non-positive ttl never expires.
func NewLocal(kv KV, ttl time.Duration) *Local {
	return &Local{kv: kv, ttl: ttl, now: time.Now}
}

func (l *Local) Save(ctx context.Context, userID string, r *LastResult) error {
	env := localEnvelope{Result: r}
	if l.ttl > 0 {
		exp := l.now().Add(l.ttl)
		env.ExpiresAt = &exp
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return l.kv.SetValue(ctx, key(userID), string(data))
}

func (l *Local) Load(ctx context.Context, userID string) (*LastResult, error) {
	raw, ok, err := l.kv.GetValue(ctx, key(userID))
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	var env localEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Result == nil {
		_ = l.kv.DeleteValues(ctx, key(userID))
		return nil, ErrNotFound
	}
	if env.ExpiresAt != nil && !l.now().Before(*env.ExpiresAt) {
		_ = l.kv.DeleteValues(ctx, key(userID))
		return nil, ErrNotFound
	}
	return env.Result, nil
}

func (l *Local) Clear(ctx context.Context, userID string) error {
	return l.kv.DeleteValues(ctx, key(userID))
}

// Close is a no-op; the owning store is closed by its opener.
func (l *Local) Close() error { return nil }
