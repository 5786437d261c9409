package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient creates and validates a Redis client connection.
func NewRedisClient(ctx context.Context, url string, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis result store connected")

	return rdb, nil
}

// Redis stores the result as JSON under qp_last_result[:<user>].
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis wraps an existing client. A non-positive ttl never expires.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

func (s *Redis) Save(ctx context.Context, userID string, r *LastResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.rdb.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *Redis) Load(ctx context.Context, userID string) (*LastResult, error) {
	data, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}

	var r LastResult
	if err := json.Unmarshal(data, &r); err != nil {
		// A corrupt entry is as good as none.
		_ = s.rdb.Del(ctx, key(userID)).Err()
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *Redis) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("clear result: %w", err)
	}
	return nil
}

func (s *Redis) Close() error { return s.rdb.Close() }
