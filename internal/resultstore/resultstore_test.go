package resultstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/config"
	"github.com/stemsi/qprep-client/internal/model"
)

func sampleResult() *LastResult {
	return &LastResult{
		Result:    model.ExamResult{TotalQuestions: 4, Correct: 2, Score: 1.5, TotalMarks: 4, Percentage: 38},
		Paper:     model.QuestionPaperFull{ID: "p1", ExamName: "Mock Physics"},
		PaperType: model.PaperTypeLatestPaper,
		Answers:   map[int]int{0: 1, 3: 2},
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	if _, err := m.Load(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty load: %v", err)
	}

	in := sampleResult()
	if err := m.Save(ctx, "u1", in); err != nil {
		t.Fatal(err)
	}
	in.Answers[0] = 9 // must not leak into the store

	got, err := m.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Paper.ID != "p1" || got.Answers[0] != 1 {
		t.Fatalf("loaded %+v", got)
	}
	if _, err := m.Load(ctx, "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatal("results leaked across users")
	}

	_ = m.Clear(ctx, "u1")
	if _, err := m.Load(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatal("Clear did not remove the result")
	}
}

func TestMemoryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	_ = m.Save(ctx, "", sampleResult())
	now = now.Add(59 * time.Second)
	if _, err := m.Load(ctx, ""); err != nil {
		t.Fatalf("before ttl: %v", err)
	}
	now = now.Add(time.Second)
	if _, err := m.Load(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after ttl: %v", err)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{ResultStore: "etcd"}
	if _, err := New(context.Background(), cfg, nil, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg.ResultStore = "local"
	if _, err := New(context.Background(), cfg, nil, zerolog.Nop()); err == nil {
		t.Fatal("local backend without a kv store should fail")
	}

	cfg.ResultStore = "memory"
	s, err := New(context.Background(), cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("got %T", s)
	}
}

type mapKV map[string]string

func (m mapKV) GetValue(_ context.Context, k string) (string, bool, error) {
	v, ok := m[k]
	return v, ok, nil
}

func (m mapKV) SetValue(_ context.Context, k, v string) error {
	m[k] = v
	return nil
}

func (m mapKV) DeleteValues(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

func TestLocalRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	kv := mapKV{}
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	l := NewLocal(kv, time.Minute)
	l.now = func() time.Time { return now }

	if _, err := l.Load(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty load: %v", err)
	}
	if err := l.Save(ctx, "u1", sampleResult()); err != nil {
		t.Fatal(err)
	}

	// A second store over the same kv sees the result, as a later CLI run would.
	again := NewLocal(kv, time.Minute)
	again.now = l.now
	got, err := again.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Paper.ExamName != "Mock Physics" || got.Answers[3] != 2 {
		t.Fatalf("loaded %+v", got)
	}

	now = now.Add(time.Minute)
	if _, err := again.Load(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after ttl: %v", err)
	}
	if len(kv) != 0 {
		t.Fatal("expired entry was not removed")
	}

	kv[key("u2")] = "{not json"
	if _, err := l.Load(ctx, "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("corrupt entry: %v", err)
	}
}

// TestRedisRoundTrip needs a reachable server in QPREP_TEST_REDIS_URL.
func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("QPREP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("QPREP_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	rdb, err := NewRedisClient(ctx, url, zerolog.Nop())
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	s := NewRedis(rdb, time.Minute)
	defer s.Close()

	user := "test-" + time.Now().Format("150405.000000")
	defer s.Clear(ctx, user)

	if err := s.Save(ctx, user, sampleResult()); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if got.Result.Score != 1.5 || got.Answers[3] != 2 {
		t.Fatalf("loaded %+v", got)
	}

	ttl, err := rdb.TTL(ctx, key(user)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %v, err = %v", ttl, err)
	}

	rdb.Set(ctx, key(user), "{not json", time.Minute)
	if _, err := s.Load(ctx, user); !errors.Is(err, ErrNotFound) {
		t.Fatalf("corrupt entry: %v", err)
	}
}
