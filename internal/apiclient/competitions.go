package apiclient

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/stemsi/qprep-client/internal/model"
)

// GetCompetitions lists competitions.
func (c *Client) GetCompetitions(ctx context.Context) ([]model.Competition, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/competitions", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.Competition](raw, "competitions", "data"), nil
}

// GetCompetitionByID fetches one competition.
func (c *Client) GetCompetitionByID(ctx context.Context, id string) (*model.Competition, error) {
	var comp model.Competition
	if err := c.get(ctx, "/competitions/"+url.PathEscape(id), nil, &comp); err != nil {
		return nil, err
	}
	return &comp, nil
}

// StartCompetition opens an attempt and returns the server clock and questions.
func (c *Client) StartCompetition(ctx context.Context, id string) (*model.CompetitionSession, error) {
	var sess model.CompetitionSession
	if err := c.post(ctx, "/competitions/"+url.PathEscape(id)+"/start", nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// SubmitCompetition sends the final answers of an attempt.
func (c *Client) SubmitCompetition(ctx context.Context, id string, req model.SubmitCompetitionRequest) (json.RawMessage, error) {
	if req.Answers == nil {
		req.Answers = []model.CompetitionAnswer{}
	}
	var out json.RawMessage
	if err := c.post(ctx, "/competitions/"+url.PathEscape(id)+"/submit", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCompetitionLeaderboard returns one page of the ranking.
func (c *Client) GetCompetitionLeaderboard(ctx context.Context, id string, page, limit int) ([]model.LeaderboardEntry, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/competitions/"+url.PathEscape(id)+"/leaderboard", pageQuery(page, limit), &raw); err != nil {
		return nil, err
	}
	return decodeList[model.LeaderboardEntry](raw, "leaderboard", "data"), nil
}

// GetMyCompetitionSubmissions lists the caller's past competition attempts.
func (c *Client) GetMyCompetitionSubmissions(ctx context.Context) ([]model.CompetitionSubmissionItem, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/competitions/my-submissions", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.CompetitionSubmissionItem](raw, "submissions"), nil
}
