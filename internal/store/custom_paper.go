package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/qprep-client/internal/model"
)

// CustomPaperStore caches generated custom papers locally, keyed by id.
type CustomPaperStore struct {
	s *Store
}

// Save inserts or replaces paper. A missing id or creation time is filled in.
func (c *CustomPaperStore) Save(ctx context.Context, paper *model.CustomPaper) error {
	if paper.ID == "" {
		paper.ID = uuid.NewString()
	}
	now := c.s.now()
	if paper.CreatedAt.IsZero() {
		paper.CreatedAt = now
	}
	if paper.UpdatedAt.IsZero() {
		paper.UpdatedAt = now
	}

	body, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("encode custom paper: %w", err)
	}

	_, err = c.s.db.ExecContext(ctx,
		`INSERT INTO custom_papers (id, user_id, created_at, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET user_id = excluded.user_id, created_at = excluded.created_at, body = excluded.body`,
		paper.ID, paper.UserID, paper.CreatedAt.UnixMilli(), string(body))
	if err != nil {
		return fmt.Errorf("save custom paper: %w", err)
	}
	return nil
}

// Get returns the paper with id, or nil when it is missing or unreadable.
func (c *CustomPaperStore) Get(ctx context.Context, id string) (*model.CustomPaper, error) {
	var body string
	err := c.s.db.QueryRowContext(ctx, `SELECT body FROM custom_papers WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get custom paper: %w", err)
	}

	var paper model.CustomPaper
	if err := json.Unmarshal([]byte(body), &paper); err != nil {
		c.s.log.Warn().Err(err).Str("id", id).Msg("custom paper is malformed; ignoring")
		return nil, nil
	}
	return &paper, nil
}

// List returns cached papers newest first, without their generated content.
func (c *CustomPaperStore) List(ctx context.Context) ([]model.CustomPaperListItem, error) {
	rows, err := c.s.db.QueryContext(ctx, `SELECT id, body FROM custom_papers ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list custom papers: %w", err)
	}
	defer rows.Close()

	items := []model.CustomPaperListItem{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		var paper model.CustomPaper
		if err := json.Unmarshal([]byte(body), &paper); err != nil {
			c.s.log.Warn().Err(err).Str("id", id).Msg("skipping malformed custom paper")
			continue
		}
		items = append(items, paper.ListItem())
	}
	return items, rows.Err()
}

// Delete removes the paper with id. Deleting a missing paper is not an error.
func (c *CustomPaperStore) Delete(ctx context.Context, id string) error {
	if _, err := c.s.db.ExecContext(ctx, `DELETE FROM custom_papers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete custom paper: %w", err)
	}
	return nil
}

// CountCreatedToday counts papers userID created since local midnight of now.
func (c *CustomPaperStore) CountCreatedToday(ctx context.Context, userID string, now time.Time) (int, error) {
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var n int
	err := c.s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM custom_papers WHERE user_id = ? AND created_at >= ?`,
		userID, startOfDay.UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count custom papers: %w", err)
	}
	return n, nil
}
