package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/session"
	"github.com/stemsi/qprep-client/internal/store"
	"github.com/stemsi/qprep-client/internal/validator"
)

var (
	allQuestionCounts  = []int{10, 25, 50, 100}
	freeQuestionCounts = []int{10, 25}
	durationOptions    = []int{15, 30, 60, 120}
)

// CustomPaperService generates papers on the backend and caches them locally.
type CustomPaperService struct {
	api    *apiclient.Client
	papers *store.CustomPaperStore
	auth   *store.AuthStore
	clock  session.Clock
	limit  int
	log    zerolog.Logger
}

// NewCustomPaperService creates a new CustomPaperService. freePerDay is the
// local daily quota for users without a plan.
func NewCustomPaperService(
	api *apiclient.Client,
	st *store.Store,
	clock session.Clock,
	freePerDay int,
	log zerolog.Logger,
) *CustomPaperService {
	return &CustomPaperService{
		api:    api,
		papers: st.CustomPapers(),
		auth:   st.Auth(),
		clock:  clock,
		limit:  freePerDay,
		log:    log.With().Str("component", "custom_paper_service").Logger(),
	}
}

// Options returns the question counts and durations user may pick.
func (s *CustomPaperService) Options(user *model.User) (counts, durations []int) {
	if user.IsFree() {
		return freeQuestionCounts, durationOptions
	}
	return allQuestionCounts, durationOptions
}

// DefaultTitle is used when the caller leaves the title blank.
func DefaultTitle(subject string, difficulty model.Difficulty) string {
	return fmt.Sprintf("%s - %s Level", subject, difficulty)
}

// Remaining reports how many papers a free user may still create today.
// It returns -1 for paid users.
func (s *CustomPaperService) Remaining(ctx context.Context) (int, error) {
	user := s.auth.User()
	if !user.IsFree() {
		return -1, nil
	}
	var userID string
	if user != nil {
		userID = user.ID
	}
	used, err := s.papers.CountCreatedToday(ctx, userID, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if left := s.limit - used; left > 0 {
		return left, nil
	}
	return 0, nil
}

// Create generates a paper. Free users are held to the daily quota locally
// and to the smaller question counts; a 403 from the backend is reported as
// the quota being reached.
func (s *CustomPaperService) Create(ctx context.Context, req model.CreateCustomPaperRequest) (*model.CustomPaper, error) {
	user := s.auth.User()
	if user == nil || !s.auth.IsAuthenticated() {
		return nil, ErrNotLoggedIn
	}

	req.Subject = strings.TrimSpace(req.Subject)
	req.Title = strings.TrimSpace(req.Title)
	req.Difficulty = model.Difficulty(strings.ToUpper(string(req.Difficulty)))
	if req.Title == "" && req.Subject != "" {
		req.Title = DefaultTitle(req.Subject, req.Difficulty)
	}
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	counts, _ := s.Options(user)
	if !contains(counts, req.QuestionCount) {
		return nil, fmt.Errorf("%d questions: %w", req.QuestionCount, ErrUpgradeRequired)
	}

	left, err := s.Remaining(ctx)
	if err != nil {
		return nil, err
	}
	if left == 0 {
		return nil, ErrUsageLimitReached
	}

	paper, err := s.api.CreateCustomPaper(ctx, req)
	if err != nil {
		if apiclient.IsForbidden(err) {
			return nil, ErrUsageLimitReached
		}
		return nil, fmt.Errorf("create custom paper: %w", err)
	}
	if paper.UserID == "" {
		paper.UserID = user.ID
	}
	if err := s.papers.Save(ctx, paper); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("paper_id", paper.ID).
		Str("subject", paper.Subject).
		Int("questions", paper.QuestionCount).
		Msg("Custom paper created")
	return paper, nil
}

// List returns cached papers, newest first.
func (s *CustomPaperService) List(ctx context.Context) ([]model.CustomPaperListItem, error) {
	return s.papers.List(ctx)
}

// Delete removes a cached paper.
func (s *CustomPaperService) Delete(ctx context.Context, id string) error {
	return s.papers.Delete(ctx, id)
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
