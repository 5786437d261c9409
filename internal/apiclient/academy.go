package apiclient

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/stemsi/qprep-client/internal/model"
)

// GetMyAcademy reports academy enrolment.
func (c *Client) GetMyAcademy(ctx context.Context) (*model.AcademyState, error) {
	var st model.AcademyState
	if err := c.get(ctx, "/user/my-academy", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetMyAcademyQuestionPapers lists papers published by the user's academy.
func (c *Client) GetMyAcademyQuestionPapers(ctx context.Context, page, limit int, search string) ([]model.QuestionPaper, error) {
	q := pageQuery(page, limit)
	if search != "" {
		q.Set("search", search)
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/user/my-academy/question-papers", q, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.QuestionPaper](raw, "data", "papers"), nil
}

// GetMyAcademyQuestionPaperByID fetches a full academy paper.
func (c *Client) GetMyAcademyQuestionPaperByID(ctx context.Context, id string) (*model.QuestionPaperFull, error) {
	var paper model.QuestionPaperFull
	if err := c.get(ctx, "/user/my-academy/question-papers/"+url.PathEscape(id), nil, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}

// GetNotifications returns one page of announcements.
func (c *Client) GetNotifications(ctx context.Context, page, limit int) ([]model.NotificationItem, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/notifications", pageQuery(page, limit), &raw); err != nil {
		return nil, err
	}
	return decodeList[model.NotificationItem](raw, "data", "notifications"), nil
}

// GetNotificationDetail fetches one announcement.
func (c *Client) GetNotificationDetail(ctx context.Context, id string) (*model.NotificationItem, error) {
	var item model.NotificationItem
	if err := c.get(ctx, "/notifications/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
