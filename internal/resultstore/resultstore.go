// Package resultstore keeps the most recent practice result so the result
// and solutions views can be reopened after the attempt has ended.
package resultstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/config"
	"github.com/stemsi/qprep-client/internal/model"
)

// ErrNotFound is returned when no result has been written, or it expired.
var ErrNotFound = errors.New("no recent result")

// LastResult is written once when a practice attempt is submitted.
type LastResult struct {
	Result       model.ExamResult        `json:"result"`
	SubjectStats []model.SubjectStat     `json:"subjectStats"`
	Paper        model.QuestionPaperFull `json:"paper"`
	PaperType    model.PaperType         `json:"paperType"`
	// Answers maps a flattened question index to the chosen option index.
	Answers     map[int]int `json:"answers"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

// Store is the shared contract of the local, memory and Redis backends.
type Store interface {
	Save(ctx context.Context, userID string, r *LastResult) error
	Load(ctx context.Context, userID string) (*LastResult, error)
	Clear(ctx context.Context, userID string) error
	Close() error
}

// New builds the backend selected by cfg.ResultStore. local backs the
// "local" backend and may be nil otherwise.
func New(ctx context.Context, cfg *config.Config, local KV, log zerolog.Logger) (Store, error) {
	switch cfg.ResultStore {
	case "", "local":
		if local == nil {
			return nil, fmt.Errorf("local result store needs a key/value store")
		}
		return NewLocal(local, cfg.ResultTTL), nil
	case "memory":
		return NewMemory(cfg.ResultTTL), nil
	case "redis":
		rdb, err := NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		return NewRedis(rdb, cfg.ResultTTL), nil
	default:
		return nil, fmt.Errorf("unknown result store %q", cfg.ResultStore)
	}
}

func key(userID string) string {
	return config.StorageKey.LastResultKey(userID)
}
