package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/resultstore"
	"github.com/stemsi/qprep-client/internal/scoring"
	"github.com/stemsi/qprep-client/internal/session"
	"github.com/stemsi/qprep-client/internal/store"
)

// Source says where a practice paper comes from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceAcademy Source = "academy"
	SourceCustom  Source = "custom"
)

// PracticeService runs untimed-by-server practice papers: the countdown is
// local and scoring happens on the client.
type PracticeService struct {
	api     *apiclient.Client
	papers  *store.CustomPaperStore
	auth    *store.AuthStore
	results resultstore.Store
	clock   session.Clock
	log     zerolog.Logger
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(
	api *apiclient.Client,
	st *store.Store,
	results resultstore.Store,
	clock session.Clock,
	log zerolog.Logger,
) *PracticeService {
	return &PracticeService{
		api:     api,
		papers:  st.CustomPapers(),
		auth:    st.Auth(),
		results: results,
		clock:   clock,
		log:     log.With().Str("component", "practice_service").Logger(),
	}
}

// LoadPaper fetches a full paper. Custom papers come from the local cache.
func (s *PracticeService) LoadPaper(ctx context.Context, id string, src Source) (*model.QuestionPaperFull, error) {
	switch src {
	case SourceCustom:
		cp, err := s.papers.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if cp == nil {
			return nil, ErrNotFound
		}
		paper := cp.GeneratedPaper
		if paper.ID == "" {
			paper.ID = cp.ID
		}
		if paper.ExamName == "" {
			paper.ExamName = cp.Title
		}
		if paper.ExamDueMin == 0 {
			paper.ExamDueMin = cp.Duration
		}
		return &paper, nil

	case SourceAcademy:
		paper, err := s.api.GetMyAcademyQuestionPaperByID(ctx, id)
		if err != nil {
			return nil, classify("load academy paper", err)
		}
		return paper, nil

	case SourceRemote, "":
		paper, err := s.api.GetPaperFullDetails(ctx, id)
		if err != nil {
			return nil, classify("load paper", err)
		}
		return paper, nil

	default:
		return nil, fmt.Errorf("unknown paper source %q", src)
	}
}

// PracticeAttempt is a started practice paper plus its locally computed
// result once submitted.
type PracticeAttempt struct {
	*session.Exam

	mu     sync.Mutex
	result *resultstore.LastResult
}

// Result is the scored attempt, or nil before a successful submission. It
// does not depend on the result store accepting the write.
func (a *PracticeAttempt) Result() *resultstore.LastResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Begin starts a countdown attempt on paper. Submitting it scores the
// answers locally, reports them to analytics and stores the last result.
// Only the scoring is required to succeed; analytics and the result store
// are best effort.
func (s *PracticeService) Begin(ctx context.Context, paper *model.QuestionPaperFull, src Source) (*PracticeAttempt, error) {
	paperType := scoring.PaperTypeOf(paper, src == SourceCustom)
	attempt := &PracticeAttempt{}

	submit := func(ctx context.Context, sub session.Submission) error {
		out := scoring.Calculate(paper, scoring.Answers(sub.Answers), sub.SecondsLeft)
		last := &resultstore.LastResult{
			Result:       out.Result,
			SubjectStats: out.SubjectStats,
			Paper:        *paper,
			PaperType:    paperType,
			Answers:      sub.Answers,
			SubmittedAt:  s.clock.Now(),
		}
		attempt.mu.Lock()
		attempt.result = last
		attempt.mu.Unlock()

		if err := s.api.SubmitPerformanceResult(ctx, scoring.Submission(paper.ID, paperType, out)); err != nil {
			s.log.Warn().Err(err).Str("paper_id", paper.ID).Msg("Performance submission failed")
		}
		if err := s.results.Save(ctx, s.userID(), last); err != nil {
			s.log.Warn().Err(err).Str("paper_id", paper.ID).Msg("Saving last result failed")
		}

		s.log.Info().
			Str("paper_id", paper.ID).
			Float64("score", out.Result.Score).
			Int("percentage", out.Result.Percentage).
			Msg("Practice attempt scored")
		return nil
	}

	attempt.Exam = session.NewExam(submit, s.log)
	load := func(context.Context) (*session.Payload, error) {
		duration := time.Duration(paper.DurationMinutes()) * time.Minute
		return &session.Payload{
			Title:     paper.ExamName,
			Questions: paper.Questions(),
			Languages: paper.SupportedLanguages,
			Timer:     session.NewCountdown(s.clock, duration),
		}, nil
	}
	if err := attempt.Start(ctx, load); err != nil {
		return nil, err
	}
	return attempt, nil
}

// LastResult returns the most recent scored attempt for the current user.
func (s *PracticeService) LastResult(ctx context.Context) (*resultstore.LastResult, error) {
	r, err := s.results.Load(ctx, s.userID())
	if errors.Is(err, resultstore.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	return r, nil
}

// History lists past practice attempts recorded by the backend.
func (s *PracticeService) History(ctx context.Context) ([]model.PaperSubmissionItem, error) {
	items, err := s.api.GetMyPaperSubmissions(ctx)
	if err != nil {
		return nil, classify("list submissions", err)
	}
	return items, nil
}

func (s *PracticeService) userID() string {
	if u := s.auth.User(); u != nil {
		return u.ID
	}
	return ""
}
