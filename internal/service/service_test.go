package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/mockapi"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/resultstore"
	"github.com/stemsi/qprep-client/internal/session"
	"github.com/stemsi/qprep-client/internal/store"
	"github.com/stemsi/qprep-client/internal/validator"
)

const testMobile = "9876543210"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type testEnv struct {
	mock    *mockapi.Server
	store   *store.Store
	api     *apiclient.Client
	clock   *fakeClock
	results *resultstore.Memory

	auth        *AuthService
	practice    *PracticeService
	competition *CompetitionService
	custom      *CustomPaperService
}

// newEnv wires every service against an in-process mock backend. The client
// clock runs skew behind the server.
func newEnv(t *testing.T, skew time.Duration) *testEnv {
	t.Helper()
	serverNow := time.Now().Truncate(time.Second)

	mock := mockapi.New(mockapi.Options{
		JWTSecret: "test-secret",
		GinMode:   gin.TestMode,
		Now:       func() time.Time { return serverNow },
	}, zerolog.Nop())
	srv := httptest.NewServer(mock.Router())
	t.Cleanup(srv.Close)

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "qprep.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clock := &fakeClock{now: serverNow.Add(-skew)}
	api := apiclient.New(srv.URL, 5*time.Second, st.Auth(), zerolog.Nop())
	results := resultstore.NewMemory(time.Hour)

	return &testEnv{
		mock:        mock,
		store:       st,
		api:         api,
		clock:       clock,
		results:     results,
		auth:        NewAuthService(api, st.Auth(), zerolog.Nop()),
		practice:    NewPracticeService(api, st, results, clock, zerolog.Nop()),
		competition: NewCompetitionService(api, clock, zerolog.Nop()),
		custom:      NewCustomPaperService(api, st, clock, 2, zerolog.Nop()),
	}
}

func (e *testEnv) login(t *testing.T) *model.User {
	t.Helper()
	ctx := context.Background()
	if err := e.auth.SendOTP(ctx, testMobile); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	u, err := e.auth.VerifyOTP(ctx, testMobile, mockapi.DefaultOTP)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	return u
}

func TestLoginAndProfile(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()

	var verr *validator.Error
	if err := env.auth.SendOTP(ctx, "12345"); !errors.As(err, &verr) {
		t.Fatalf("short mobile: %v", err)
	}
	if _, err := env.auth.VerifyOTP(ctx, testMobile, "0000"); apiclient.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("wrong otp: %v", err)
	}

	u := env.login(t)
	if env.auth.CurrentUser() == nil || env.auth.CurrentUser().ID != u.ID {
		t.Fatal("user not cached after login")
	}

	updated, err := env.auth.UpdateProfile(ctx, model.UpdateProfileRequest{Name: "Asha", Language: "hi"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Asha" || env.auth.CurrentUser().Language != "hi" {
		t.Fatalf("merged user = %+v", updated)
	}

	fresh, err := env.auth.Profile(ctx)
	if err != nil || fresh.Name != "Asha" {
		t.Fatalf("profile: %+v, %v", fresh, err)
	}

	if err := env.auth.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.auth.Profile(ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("after logout: %v", err)
	}
}

func TestRejectedTokenClearsCredentials(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()

	if err := env.store.Auth().Save(ctx, "opaque-but-unknown", &model.User{ID: "ghost"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.auth.Profile(ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("profile: %v", err)
	}
	if env.store.Auth().Token() != "" || env.store.Auth().User() != nil {
		t.Fatal("credentials survived a 401")
	}
}

func answer(t *testing.T, exam *session.Exam, index, option int) {
	t.Helper()
	if err := exam.Jump(index); err != nil {
		t.Fatal(err)
	}
	if err := exam.SelectAnswer(option); err != nil {
		t.Fatal(err)
	}
}

func TestPracticeAttemptIsScoredAndRecorded(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	env.login(t)

	paper, err := env.practice.LoadPaper(ctx, mockapi.PaperPhysicsMock, SourceRemote)
	if err != nil {
		t.Fatal(err)
	}
	exam, err := env.practice.Begin(ctx, paper, SourceRemote)
	if err != nil {
		t.Fatal(err)
	}
	if got := exam.Snapshot().SecondsLeft; got != 30*60 {
		t.Fatalf("seconds left = %d", got)
	}

	answer(t, exam.Exam, 0, 1) // correct, +2
	answer(t, exam.Exam, 1, 3) // wrong, -0.5
	if err := exam.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	last, err := env.practice.LastResult(ctx)
	if err != nil {
		t.Fatal(err)
	}
	r := last.Result
	if r.Score != 1.5 || r.TotalMarks != 6 || r.Percentage != 25 || r.Accuracy != 50 {
		t.Fatalf("result = %+v", r)
	}
	if last.PaperType != model.PaperTypeLatestPaper || last.Answers[0] != 1 {
		t.Fatalf("last = %+v", last)
	}

	history, err := env.practice.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Score != 1.5 || history[0].Paper == nil {
		t.Fatalf("history = %+v", history)
	}
}

func TestPracticeAnalyticsFailureIsSwallowed(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	env.login(t)
	env.mock.FailNextSubmissions(1)

	paper, _ := env.practice.LoadPaper(ctx, mockapi.PaperSSC2024, SourceRemote)
	exam, err := env.practice.Begin(ctx, paper, SourceRemote)
	if err != nil {
		t.Fatal(err)
	}
	if err := exam.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if exam.State() != session.StateSubmitted {
		t.Fatalf("state = %s", exam.State())
	}

	last, err := env.practice.LastResult(ctx)
	if err != nil || last.PaperType != model.PaperTypeRealExam || last.Result.Unanswered != 3 {
		t.Fatalf("last = %+v, err = %v", last, err)
	}
	if history, _ := env.practice.History(ctx); len(history) != 0 {
		t.Fatalf("failed analytics call was recorded: %+v", history)
	}
}

type failingResults struct{ resultstore.Store }

func (failingResults) Save(context.Context, string, *resultstore.LastResult) error {
	return errors.New("redis: connection refused")
}

func TestPracticeResultSurvivesStoreFailure(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	env.login(t)

	practice := NewPracticeService(env.api, env.store, failingResults{env.results}, env.clock, zerolog.Nop())
	paper, err := practice.LoadPaper(ctx, mockapi.PaperPhysicsMock, SourceRemote)
	if err != nil {
		t.Fatal(err)
	}
	attempt, err := practice.Begin(ctx, paper, SourceRemote)
	if err != nil {
		t.Fatal(err)
	}
	answer(t, attempt.Exam, 0, 1)

	// Let the countdown expire so the timer submits.
	env.clock.mu.Lock()
	env.clock.now = env.clock.now.Add(31 * time.Minute)
	env.clock.mu.Unlock()
	if left := attempt.Tick(ctx); left != 0 {
		t.Fatalf("left = %d", left)
	}

	if attempt.State() != session.StateSubmitted || attempt.LastError() != nil {
		t.Fatalf("state = %s, lastErr = %v", attempt.State(), attempt.LastError())
	}
	last := attempt.Result()
	if last == nil || last.Result.Correct != 1 || last.Result.Score != 2 {
		t.Fatalf("result = %+v", last)
	}
	if _, err := practice.LastResult(ctx); !errors.Is(err, resultstore.ErrNotFound) {
		t.Fatalf("LastResult: %v", err)
	}
}

func TestPaperAccessErrors(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	env.login(t)

	if _, err := env.practice.LoadPaper(ctx, mockapi.PaperPremium, SourceRemote); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("premium: %v", err)
	}
	if _, err := env.practice.LoadPaper(ctx, "no-such-paper", SourceRemote); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
	if _, err := env.practice.LoadPaper(ctx, mockapi.AcademyPaper, SourceAcademy); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("academy for non-member: %v", err)
	}

	empty, err := env.practice.LoadPaper(ctx, mockapi.PaperEmpty, SourceRemote)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.practice.Begin(ctx, empty, SourceRemote); !errors.Is(err, session.ErrNotAvailable) {
		t.Fatalf("empty paper: %v", err)
	}
}

func TestCompetitionUsesServerClock(t *testing.T) {
	// The client clock is an hour behind the server.
	env := newEnv(t, time.Hour)
	ctx := context.Background()
	env.login(t)

	attempt, err := env.competition.Begin(ctx, mockapi.CompetitionLive)
	if err != nil {
		t.Fatal(err)
	}
	if left := attempt.Tick(ctx); left != 30*60 {
		t.Fatalf("skewed countdown = %d, want 1800", left)
	}

	answer(t, attempt.Exam, 0, 1)
	answer(t, attempt.Exam, 1, 2)
	if err := attempt.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var verdict struct {
		Score        float64 `json:"score"`
		CorrectCount int     `json:"correctCount"`
	}
	if err := json.Unmarshal(attempt.Result(), &verdict); err != nil {
		t.Fatal(err)
	}
	if verdict.Score != 2 || verdict.CorrectCount != 2 {
		t.Fatalf("verdict = %+v", verdict)
	}

	board, err := env.competition.Leaderboard(ctx, mockapi.CompetitionLive, 1, 10)
	if err != nil || len(board) != 1 || board[0].Rank != 1 {
		t.Fatalf("leaderboard = %+v, err = %v", board, err)
	}
	history, err := env.competition.History(ctx)
	if err != nil || len(history) != 1 || history[0].Status != model.CompetitionSubmissionSubmitted {
		t.Fatalf("history = %+v, err = %v", history, err)
	}
}

func TestCompetitionSubmitRetry(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	env.login(t)

	attempt, err := env.competition.Begin(ctx, mockapi.CompetitionLive)
	if err != nil {
		t.Fatal(err)
	}
	answer(t, attempt.Exam, 2, 1)

	env.mock.FailNextSubmissions(1)
	if err := attempt.Submit(ctx); !errors.Is(err, session.ErrSubmitFailed) {
		t.Fatalf("first submit: %v", err)
	}
	if attempt.State() != session.StateFailed || attempt.Result() != nil {
		t.Fatalf("state = %s", attempt.State())
	}

	if err := attempt.Submit(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if attempt.State() != session.StateSubmitted {
		t.Fatalf("state = %s", attempt.State())
	}
}

func TestCompetitionNotLive(t *testing.T) {
	env := newEnv(t, 0)
	env.login(t)

	_, err := env.competition.Begin(context.Background(), mockapi.CompetitionUpcoming)
	if apiclient.StatusOf(err) != http.StatusConflict {
		t.Fatalf("upcoming: %v", err)
	}
}

func TestCompetitionAnswersUseQuestionIDs(t *testing.T) {
	sub := session.Submission{
		Questions: []model.Question{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Answers:   map[int]int{2: 3, 0: 1, 7: 0},
	}
	got := competitionAnswers(sub)
	want := []model.CompetitionAnswer{{QuestionID: "a", SelectedOptionID: 1}, {QuestionID: "c", SelectedOptionID: 3}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("answer %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCustomPaperQuota(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	env.login(t)

	req := model.CreateCustomPaperRequest{Subject: "Physics", QuestionCount: 10, Duration: 15, Difficulty: "easy"}

	if _, err := env.custom.Create(ctx, model.CreateCustomPaperRequest{Subject: "Physics", QuestionCount: 50, Duration: 15, Difficulty: "EASY"}); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("50 questions on free plan: %v", err)
	}
	var verr *validator.Error
	if _, err := env.custom.Create(ctx, model.CreateCustomPaperRequest{Subject: "Physics", QuestionCount: 10, Duration: 20, Difficulty: "EASY"}); !errors.As(err, &verr) {
		t.Fatalf("bad duration: %v", err)
	}

	var first *model.CustomPaper
	for i := 0; i < 2; i++ {
		p, err := env.custom.Create(ctx, req)
		if err != nil {
			t.Fatalf("paper %d: %v", i, err)
		}
		if p.Title != "Physics - EASY Level" {
			t.Fatalf("title = %q", p.Title)
		}
		first = p
	}
	if left, _ := env.custom.Remaining(ctx); left != 0 {
		t.Fatalf("remaining = %d", left)
	}
	if _, err := env.custom.Create(ctx, req); !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("third paper: %v", err)
	}

	list, err := env.custom.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list = %+v, err = %v", list, err)
	}
	paper, err := env.practice.LoadPaper(ctx, first.ID, SourceCustom)
	if err != nil || len(paper.Questions()) != 10 || paper.DurationMinutes() != 15 {
		t.Fatalf("cached paper: %+v, err = %v", paper, err)
	}

	// Emptying the local cache does not fool the backend's own quota.
	for _, item := range list {
		_ = env.custom.Delete(ctx, item.ID)
	}
	if _, err := env.custom.Create(ctx, req); !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("server-side quota: %v", err)
	}
	if _, err := env.practice.LoadPaper(ctx, first.ID, SourceCustom); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted paper: %v", err)
	}
}

func TestCustomPaperQuotaIsPerUser(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	env.login(t)

	req := model.CreateCustomPaperRequest{Subject: "Chemistry", QuestionCount: 10, Duration: 30, Difficulty: "MEDIUM"}
	for i := 0; i < 2; i++ {
		if _, err := env.custom.Create(ctx, req); err != nil {
			t.Fatalf("paper %d: %v", i, err)
		}
	}
	if left, _ := env.custom.Remaining(ctx); left != 0 {
		t.Fatalf("first user remaining = %d", left)
	}

	// A different account on the same device starts with a full allowance.
	const otherMobile = "9876500000"
	if err := env.auth.SendOTP(ctx, otherMobile); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	if _, err := env.auth.VerifyOTP(ctx, otherMobile, mockapi.DefaultOTP); err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	left, err := env.custom.Remaining(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if left != 2 {
		t.Fatalf("second user remaining = %d, want 2", left)
	}
	if _, err := env.custom.Create(ctx, req); err != nil {
		t.Fatalf("second user paper: %v", err)
	}
}
