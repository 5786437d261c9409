package apiclient

import (
	"context"

	"github.com/stemsi/qprep-client/internal/model"
)

// CreateCustomPaper asks the backend to generate a practice paper.
func (c *Client) CreateCustomPaper(ctx context.Context, req model.CreateCustomPaperRequest) (*model.CustomPaper, error) {
	var paper model.CustomPaper
	if err := c.post(ctx, "/custom-papers", req, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}
