package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/session"
)

// CompetitionService runs server-timed competition attempts.
type CompetitionService struct {
	api   *apiclient.Client
	clock session.Clock
	log   zerolog.Logger
}

// NewCompetitionService creates a new CompetitionService.
func NewCompetitionService(api *apiclient.Client, clock session.Clock, log zerolog.Logger) *CompetitionService {
	return &CompetitionService{
		api:   api,
		clock: clock,
		log:   log.With().Str("component", "competition_service").Logger(),
	}
}

// CompetitionAttempt is a started competition plus the server's verdict once
// submitted.
type CompetitionAttempt struct {
	*session.Exam
	CompetitionID string
	SubmissionID  string

	mu     sync.Mutex
	result json.RawMessage
}

// Result is the submit response, or nil before a successful submission.
func (a *CompetitionAttempt) Result() json.RawMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Begin starts (or resumes) the competition. The countdown is anchored to the
// server clock reported in the start response.
func (s *CompetitionService) Begin(ctx context.Context, id string) (*CompetitionAttempt, error) {
	attempt := &CompetitionAttempt{CompetitionID: id}

	submit := func(ctx context.Context, sub session.Submission) error {
		raw, err := s.api.SubmitCompetition(ctx, id, model.SubmitCompetitionRequest{
			Answers: competitionAnswers(sub),
		})
		if err != nil {
			return classify("submit competition", err)
		}
		attempt.mu.Lock()
		attempt.result = raw
		attempt.mu.Unlock()

		s.log.Info().
			Str("competition_id", id).
			Str("trigger", string(sub.Trigger)).
			Int("answered", len(sub.Answers)).
			Msg("Competition submitted")
		return nil
	}

	load := func(ctx context.Context) (*session.Payload, error) {
		started, err := s.api.StartCompetition(ctx, id)
		if err != nil {
			return nil, classify("start competition", err)
		}
		attempt.SubmissionID = started.SubmissionID

		var timer *session.Timer
		if started.EndDateTime.IsZero() {
			timer = session.NewCountdown(s.clock, time.Duration(started.TimeLeftSeconds)*time.Second)
		} else {
			timer = session.NewTimer(s.clock, started.ServerNow, started.EndDateTime, started.TimeLeftSeconds)
		}

		languages := started.Competition.LanguagesAvailable
		if len(languages) == 0 {
			languages = []string{model.DefaultLanguage}
		}
		return &session.Payload{
			Title:     started.Competition.Title,
			Questions: started.Questions,
			Languages: languages,
			Timer:     timer,
		}, nil
	}

	attempt.Exam = session.NewExam(submit, s.log)
	if err := attempt.Start(ctx, load); err != nil {
		return nil, err
	}
	return attempt, nil
}

// competitionAnswers keys answers by question id, in question order.
// selectedOptionId carries the option index.
func competitionAnswers(sub session.Submission) []model.CompetitionAnswer {
	indexes := make([]int, 0, len(sub.Answers))
	for i := range sub.Answers {
		if i >= 0 && i < len(sub.Questions) {
			indexes = append(indexes, i)
		}
	}
	sort.Ints(indexes)

	out := make([]model.CompetitionAnswer, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, model.CompetitionAnswer{
			QuestionID:       sub.Questions[i].ID,
			SelectedOptionID: sub.Answers[i],
		})
	}
	return out
}

// List returns all competitions.
func (s *CompetitionService) List(ctx context.Context) ([]model.Competition, error) {
	comps, err := s.api.GetCompetitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return comps, nil
}

// Leaderboard returns one page of the ranking.
func (s *CompetitionService) Leaderboard(ctx context.Context, id string, page, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.api.GetCompetitionLeaderboard(ctx, id, page, limit)
	if err != nil {
		return nil, classify("leaderboard", err)
	}
	return rows, nil
}

// History lists the caller's competition attempts.
func (s *CompetitionService) History(ctx context.Context) ([]model.CompetitionSubmissionItem, error) {
	items, err := s.api.GetMyCompetitionSubmissions(ctx)
	if err != nil {
		return nil, classify("competition history", err)
	}
	return items, nil
}
