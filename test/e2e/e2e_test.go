//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/mockapi"
	"github.com/stemsi/qprep-client/internal/model"
)

const defaultBaseURL = "http://localhost:3001"

var (
	baseURL string
	mobile  string
	token   staticToken
	client  *apiclient.Client
)

// staticToken holds the bearer issued during the login step.
type staticToken struct{ value string }

func (s *staticToken) Token() string { return s.value }

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	// The backend keeps state in process; a fresh number per run avoids
	// colliding with earlier competition submissions.
	mobile = fmt.Sprintf("8%09d", time.Now().UnixNano()%1_000_000_000)

	if err := waitHealthy(10 * time.Second); err != nil {
		fmt.Printf("Backend not reachable at %s: %v\n", baseURL, err)
		os.Exit(1)
	}

	client = apiclient.New(baseURL, 10*time.Second, &token, zerolog.Nop())
	os.Exit(m.Run())
}

func waitHealthy(limit time.Duration) error {
	deadline := time.Now().Add(limit)
	for {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func TestE2EFlow(t *testing.T) {
	ctx := context.Background()

	// Step 1: Anonymous requests are rejected
	t.Run("ProfileRequiresLogin", func(t *testing.T) {
		_, err := client.GetMyProfile(ctx)
		if !apiclient.IsUnauthorized(err) {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	// Step 2: Login with the fixed one-time code
	t.Run("Login", func(t *testing.T) {
		if err := client.SendOTP(ctx, model.SendOTPRequest{MobileNo: mobile}); err != nil {
			t.Fatalf("send otp: %v", err)
		}
		if _, err := client.VerifyOTP(ctx, model.VerifyOTPRequest{MobileNo: mobile, OTP: "0000"}); !apiclient.IsUnauthorized(err) {
			t.Fatalf("wrong code: expected 401, got %v", err)
		}
		out, err := client.VerifyOTP(ctx, model.VerifyOTPRequest{MobileNo: mobile, OTP: mockapi.DefaultOTP})
		if err != nil {
			t.Fatalf("verify otp: %v", err)
		}
		if out.AccessToken == "" {
			t.Fatal("token missing")
		}
		token.value = out.AccessToken

		user, err := client.GetMyProfile(ctx)
		if err != nil {
			t.Fatalf("profile: %v", err)
		}
		if user.Contact != mobile {
			t.Errorf("profile contact = %q, want %q", user.Contact, mobile)
		}
	})

	// Step 3: Browse the catalogue
	t.Run("Catalogue", func(t *testing.T) {
		cats, err := client.GetExamCategories(ctx)
		if err != nil {
			t.Fatalf("categories: %v", err)
		}
		if len(cats) == 0 {
			t.Fatal("no categories")
		}
		papers, err := client.GetQuestionPapers(ctx)
		if err != nil {
			t.Fatalf("papers: %v", err)
		}
		found := false
		for _, p := range papers {
			if p.ID == mockapi.PaperPhysicsMock {
				found = true
			}
		}
		if !found {
			t.Errorf("%s missing from %d papers", mockapi.PaperPhysicsMock, len(papers))
		}
	})

	// Step 4: Full paper content carries the answer key
	t.Run("PaperDetails", func(t *testing.T) {
		full, err := client.GetPaperFullDetails(ctx, mockapi.PaperPhysicsMock)
		if err != nil {
			t.Fatalf("full paper: %v", err)
		}
		questions := full.Questions()
		if len(questions) == 0 {
			t.Fatal("paper has no questions")
		}
		for i, q := range questions {
			if q.CorrectAnswer() < 0 {
				t.Errorf("question %d has no answer key", i)
			}
		}

		if _, err := client.GetPaperFullDetails(ctx, "does-not-exist"); !apiclient.IsNotFound(err) {
			t.Errorf("missing paper: expected 404, got %v", err)
		}
	})

	// Step 5: Start and submit the live competition
	t.Run("Competition", func(t *testing.T) {
		sess, err := client.StartCompetition(ctx, mockapi.CompetitionLive)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if len(sess.Questions) == 0 || sess.TimeLeftSeconds <= 0 {
			t.Fatalf("unexpected session: %d questions, %ds left", len(sess.Questions), sess.TimeLeftSeconds)
		}

		answers := make([]model.CompetitionAnswer, 0, len(sess.Questions))
		for _, q := range sess.Questions {
			answers = append(answers, model.CompetitionAnswer{QuestionID: q.ID, SelectedOptionID: 0})
		}
		raw, err := client.SubmitCompetition(ctx, mockapi.CompetitionLive, model.SubmitCompetitionRequest{Answers: answers})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !json.Valid(raw) {
			t.Errorf("submit returned invalid json: %s", raw)
		}

		if _, err := client.SubmitCompetition(ctx, mockapi.CompetitionLive, model.SubmitCompetitionRequest{Answers: answers}); apiclient.StatusOf(err) != http.StatusConflict {
			t.Errorf("second submit: expected 409, got %v", err)
		}

		subs, err := client.GetMyCompetitionSubmissions(ctx)
		if err != nil {
			t.Fatalf("my submissions: %v", err)
		}
		if len(subs) == 0 {
			t.Error("submission not listed")
		}
	})

	// Step 6: Generate custom papers until the free daily quota runs out
	t.Run("CustomPaper", func(t *testing.T) {
		req := model.CreateCustomPaperRequest{
			Subject:       "Physics",
			QuestionCount: 10,
			Duration:      15,
			Difficulty:    model.DifficultyEasy,
		}
		paper, err := client.CreateCustomPaper(ctx, req)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(paper.GeneratedPaper.Questions()) == 0 {
			t.Error("custom paper has no questions")
		}
		if paper.Title != "Physics - EASY Level" {
			t.Errorf("default title = %q", paper.Title)
		}

		// The quota is configured on the server; 20 is well past any default.
		for i := 0; i < 20; i++ {
			_, err = client.CreateCustomPaper(ctx, req)
			if err != nil {
				break
			}
		}
		if !apiclient.IsForbidden(err) {
			t.Errorf("free tier over quota: expected 403, got %v", err)
		}
	})
}
