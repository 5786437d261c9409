package apiclient

import (
	"context"
	"encoding/json"

	"github.com/stemsi/qprep-client/internal/model"
)

// SubmitPerformanceResult records a finished practice attempt.
func (c *Client) SubmitPerformanceResult(ctx context.Context, sub model.PerformanceSubmission) error {
	if sub.SubjectStats == nil {
		sub.SubjectStats = []model.SubjectStat{}
	}
	return c.post(ctx, "/performance-analytics/submit", sub, nil)
}

// GetMyPaperSubmissions lists the caller's past practice attempts.
func (c *Client) GetMyPaperSubmissions(ctx context.Context) ([]model.PaperSubmissionItem, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/performance-analytics/submissions", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.PaperSubmissionItem](raw, "submissions"), nil
}

// GetPerformanceAnalytics returns the aggregated analytics document as-is.
func (c *Client) GetPerformanceAnalytics(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/performance-analytics", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
