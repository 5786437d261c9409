package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/service"
	"github.com/stemsi/qprep-client/internal/validator"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("qprep "+name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// parseFlags lets flags and positional arguments interleave, so
// `take ID -custom` and `take -custom ID` both work.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// unableTo wraps a read failure. Read failures are reported once and never
// retried.
func unableTo(what string, err error) error {
	switch {
	case apiclient.IsUnauthorized(err):
		return service.ErrNotLoggedIn
	case apiclient.IsForbidden(err):
		return service.ErrUpgradeRequired
	}
	return fmt.Errorf("unable to load %s: %w", what, err)
}

// ─── Account ───────────────────────────────────────────────────────────

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := a.flags("login")
	mobile := fs.String("mobile", "", "10-digit mobile number")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	var err error
	if *mobile == "" {
		if *mobile, err = a.prompt("Mobile number: "); err != nil {
			return err
		}
	}
	if err := a.auth.SendOTP(ctx, *mobile); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "A login code was sent to %s.\n", *mobile)

	otp, err := a.promptSecret("Code: ")
	if err != nil {
		return err
	}
	user, err := a.auth.VerifyOTP(ctx, *mobile, otp)
	if err != nil {
		return err
	}
	a.success("Logged in as %s.", displayName(user))
	return nil
}

func (a *app) cmdLogout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.success("Logged out.")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, args []string) error {
	fs := a.flags("whoami")
	refresh := fs.Bool("refresh", false, "fetch the profile from the server")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	user := a.auth.CurrentUser()
	if *refresh || user == nil {
		var err error
		if user, err = a.auth.Profile(ctx); err != nil {
			return err
		}
	}
	a.renderProfile(user)
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	var req model.UpdateProfileRequest
	fs := a.flags("profile")
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Gender, "gender", "", "male, female or other")
	fs.StringVar(&req.Address, "address", "", "postal address")
	fs.StringVar(&req.ProfilePic, "picture", "", "profile picture URL")
	fs.StringVar(&req.Language, "language", "", "en, hi or mr")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := a.auth.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	a.success("Profile updated.")
	a.renderProfile(user)
	return nil
}

func (a *app) cmdLang(ctx context.Context, args []string) error {
	langs := a.st.Language()
	if len(args) == 0 {
		fmt.Fprintln(a.out, langs.Get(ctx))
		return nil
	}
	if err := langs.Set(ctx, model.Language(strings.ToLower(args[0]))); err != nil {
		return err
	}
	a.success("Language set to %s.", langs.Get(ctx))
	return nil
}

// ─── Catalogue ─────────────────────────────────────────────────────────

func (a *app) cmdCategories(ctx context.Context, args []string) error {
	fs := a.flags("categories")
	parent := fs.String("sub", "", "list subcategories of this category id")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	if *parent != "" {
		subs, err := a.api.GetExamSubCategories(ctx, *parent)
		if err != nil {
			return unableTo("subcategories", err)
		}
		t := a.table("ID", "Name", "Active", "Description")
		for _, s := range subs {
			t.Append([]string{s.ID, s.Name, strconv.FormatBool(s.IsActive), s.Description})
		}
		t.Render()
		return nil
	}

	cats, err := a.api.GetExamCategories(ctx)
	if err != nil {
		return unableTo("categories", err)
	}
	t := a.table("ID", "Category", "Description")
	for _, c := range cats {
		t.Append([]string{c.ID, c.Name, c.Description})
	}
	t.Render()
	return nil
}

func (a *app) cmdSubjects(ctx context.Context, _ []string) error {
	subjects, err := a.api.GetSubjects(ctx)
	if err != nil {
		return unableTo("subjects", err)
	}
	t := a.table("ID", "Subject", "Description")
	for _, s := range subjects {
		t.Append([]string{s.ID, s.Name, s.Description})
	}
	t.Render()
	return nil
}

func (a *app) cmdPapers(ctx context.Context, args []string) error {
	var q model.QuestionPaperQuery
	fs := a.flags("papers")
	fs.StringVar(&q.CategoryID, "category", "", "category id")
	fs.StringVar(&q.SubcategoryID, "sub", "", "subcategory id")
	fs.StringVar(&q.Search, "search", "", "title search")
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.Limit, "limit", 20, "page size")
	realOnly := fs.Bool("real", false, "only previous-year papers")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "real" {
			q.IsRealExam = realOnly
		}
	})

	papers, err := a.api.GetQuestionPapersPaged(ctx, q)
	if err != nil {
		return unableTo("papers", err)
	}
	a.renderPapers(papers)
	return nil
}

func (a *app) cmdRealExams(ctx context.Context, args []string) error {
	fs := a.flags("real-exams")
	search := fs.String("search", "", "title search")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	pos, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: qprep real-exams CATEGORY [-search Q]")
	}

	var papers []model.QuestionPaper
	if *search != "" {
		papers, err = a.api.SearchRealExams(ctx, pos[0], *search, *page, *limit)
	} else {
		papers, err = a.api.GetRealExamsByCategory(ctx, pos[0], *page, *limit)
	}
	if err != nil {
		return unableTo("real exams", err)
	}
	a.renderPapers(papers)
	return nil
}

// ─── Practice ──────────────────────────────────────────────────────────

func (a *app) cmdTake(ctx context.Context, args []string) error {
	fs := a.flags("take")
	custom := fs.Bool("custom", false, "the id names a generated custom paper")
	academy := fs.Bool("academy", false, "the id names an academy paper")
	pos, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: qprep take ID [-custom|-academy]")
	}

	src := service.SourceRemote
	switch {
	case *custom && *academy:
		return errors.New("-custom and -academy are exclusive")
	case *custom:
		src = service.SourceCustom
	case *academy:
		src = service.SourceAcademy
	}
	return a.takePaper(ctx, pos[0], src)
}

func (a *app) takePaper(ctx context.Context, id string, src service.Source) error {
	paper, err := a.practice.LoadPaper(ctx, id, src)
	if err != nil {
		return err
	}
	a.renderPaperIntro(paper)

	attempt, err := a.practice.Begin(ctx, paper, src)
	if err != nil {
		return err
	}
	submitted, err := a.runExam(ctx, attempt.Exam)
	if err != nil || !submitted {
		return err
	}

	// Rendered from the attempt so a result store outage does not hide it.
	last := attempt.Result()
	if last == nil {
		return errors.New("the attempt was submitted but not scored")
	}
	a.renderResult(last)
	if _, err := a.practice.LastResult(ctx); err == nil {
		fmt.Fprintln(a.out, "Review answers with `qprep solutions`.")
	}
	return nil
}

func (a *app) cmdResult(ctx context.Context, _ []string) error {
	last, err := a.practice.LastResult(ctx)
	if err != nil {
		return err
	}
	a.renderResult(last)
	return nil
}

func (a *app) cmdSolutions(ctx context.Context, args []string) error {
	fs := a.flags("solutions")
	wrongOnly := fs.Bool("wrong", false, "only show questions answered wrongly or skipped")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	last, err := a.practice.LastResult(ctx)
	if err != nil {
		return err
	}
	a.renderSolutions(last, string(a.st.Language().Get(ctx)), *wrongOnly)
	return nil
}

func (a *app) cmdHistory(ctx context.Context, args []string) error {
	fs := a.flags("history")
	comps := fs.Bool("competitions", false, "list competition attempts instead")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	if *comps {
		items, err := a.competitions.History(ctx)
		if err != nil {
			return err
		}
		a.renderCompetitionHistory(items)
		return nil
	}

	items, err := a.practice.History(ctx)
	if err != nil {
		return err
	}
	a.renderPracticeHistory(items)
	return nil
}

func (a *app) cmdAnalytics(ctx context.Context, _ []string) error {
	raw, err := a.api.GetPerformanceAnalytics(ctx)
	if err != nil {
		return unableTo("analytics", err)
	}
	a.renderJSON(raw)
	return nil
}

// ─── Competitions ──────────────────────────────────────────────────────

func (a *app) cmdCompetitions(ctx context.Context, _ []string) error {
	comps, err := a.competitions.List(ctx)
	if err != nil {
		return unableTo("competitions", err)
	}
	a.renderCompetitions(comps)
	return nil
}

func (a *app) cmdCompete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: qprep compete ID")
	}

	attempt, err := a.competitions.Begin(ctx, args[0])
	if err != nil {
		if apiclient.StatusOf(err) == http.StatusConflict {
			return fmt.Errorf("competition is not open for you: %w", err)
		}
		return err
	}
	submitted, err := a.runExam(ctx, attempt.Exam)
	if err != nil || !submitted {
		if err == nil {
			fmt.Fprintf(a.out, "Run `qprep compete %s` again to resume before the window closes.\n", args[0])
		}
		return err
	}
	a.renderCompetitionResult(attempt.Result())
	return nil
}

func (a *app) cmdLeaderboard(ctx context.Context, args []string) error {
	fs := a.flags("leaderboard")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	pos, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: qprep leaderboard ID [-page N] [-limit N]")
	}

	rows, err := a.competitions.Leaderboard(ctx, pos[0], *page, *limit)
	if err != nil {
		return err
	}
	a.renderLeaderboard(rows)
	return nil
}

// ─── Custom papers ─────────────────────────────────────────────────────

func (a *app) cmdCustom(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: qprep custom create|list|delete ID|take ID")
	}
	switch args[0] {
	case "create":
		return a.customCreate(ctx, args[1:])
	case "list":
		items, err := a.custom.List(ctx)
		if err != nil {
			return err
		}
		a.renderCustomPapers(items)
		return nil
	case "delete":
		if len(args) != 2 {
			return errors.New("usage: qprep custom delete ID")
		}
		if err := a.custom.Delete(ctx, args[1]); err != nil {
			return err
		}
		a.success("Deleted %s.", args[1])
		return nil
	case "take":
		if len(args) != 2 {
			return errors.New("usage: qprep custom take ID")
		}
		return a.takePaper(ctx, args[1], service.SourceCustom)
	}
	return fmt.Errorf("unknown custom subcommand %q", args[0])
}

func (a *app) customCreate(ctx context.Context, args []string) error {
	var req model.CreateCustomPaperRequest
	var difficulty string
	fs := a.flags("custom create")
	fs.StringVar(&req.Subject, "subject", "", "subject name")
	fs.StringVar(&req.Title, "title", "", "paper title (defaults to subject and difficulty)")
	fs.IntVar(&req.QuestionCount, "count", 10, "number of questions")
	fs.IntVar(&req.Duration, "duration", 30, "minutes")
	fs.StringVar(&difficulty, "difficulty", string(model.DifficultyMedium), "EASY, MEDIUM or HARD")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	req.Difficulty = model.Difficulty(difficulty)

	paper, err := a.custom.Create(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrUpgradeRequired) {
			counts, _ := a.custom.Options(a.auth.CurrentUser())
			return fmt.Errorf("%w (available question counts: %v)", err, counts)
		}
		return err
	}
	a.success("Created %q with %d questions (%s).", paper.Title, paper.QuestionCount, paper.ID)

	if left, err := a.custom.Remaining(ctx); err == nil && left >= 0 {
		fmt.Fprintf(a.out, "%d free papers left today.\n", left)
	}
	fmt.Fprintf(a.out, "Start it with `qprep custom take %s`.\n", paper.ID)
	return nil
}

// ─── Subscriptions ─────────────────────────────────────────────────────

func (a *app) cmdPlans(ctx context.Context, args []string) error {
	fs := a.flags("plans")
	category := fs.String("category", "", "only plans for this category id")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	plans, err := a.api.GetPlans(ctx, *category)
	if err != nil {
		return unableTo("plans", err)
	}
	a.renderPlans(plans)
	return nil
}

func (a *app) cmdSubscribe(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: qprep subscribe PLAN_ID PAYMENT_ID")
	}
	req := model.SubscribeRequest{PlanID: args[0], PaymentID: args[1]}
	if err := validator.Check(&req); err != nil {
		return err
	}

	if _, err := a.api.Subscribe(ctx, req); err != nil {
		if apiclient.IsUnauthorized(err) {
			return service.ErrNotLoggedIn
		}
		return fmt.Errorf("subscribe: %w", err)
	}

	// The plan name lives on the profile; refresh so quotas update.
	user, err := a.auth.Profile(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("Profile refresh after subscribe failed")
		a.success("Subscribed to %s.", req.PlanID)
		return nil
	}
	a.success("Subscribed. Active plan: %s.", user.PlanName)
	return nil
}

func (a *app) cmdSubscription(ctx context.Context, _ []string) error {
	sub, err := a.api.GetMySubscription(ctx)
	if err != nil {
		return unableTo("subscription", err)
	}
	a.renderJSON(sub)

	decision, err := a.api.ValidateUsage(ctx, model.UsageCustomPaper)
	if err != nil {
		a.log.Debug().Err(err).Msg("Usage check failed")
		return nil
	}
	switch {
	case !decision.Allowed:
		a.warn("Custom papers: limit reached. %s", decision.Message)
	case decision.Remaining != nil:
		fmt.Fprintf(a.out, "Custom papers left today: %d\n", *decision.Remaining)
	default:
		fmt.Fprintln(a.out, "Custom papers: unlimited")
	}
	return nil
}

// ─── Notifications & academy ───────────────────────────────────────────

func (a *app) cmdNotifications(ctx context.Context, args []string) error {
	if len(args) == 1 {
		n, err := a.api.GetNotificationDetail(ctx, args[0])
		if err != nil {
			return unableTo("notification", err)
		}
		a.renderNotification(n)
		return nil
	}

	items, err := a.api.GetNotifications(ctx, 1, 20)
	if err != nil {
		return unableTo("notifications", err)
	}
	a.renderNotifications(items)
	return nil
}

func (a *app) cmdAcademy(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "papers":
			fs := a.flags("academy papers")
			search := fs.String("search", "", "title search")
			if _, err := parseFlags(fs, args[1:]); err != nil {
				return err
			}
			papers, err := a.api.GetMyAcademyQuestionPapers(ctx, 1, 20, *search)
			if err != nil {
				return unableTo("academy papers", err)
			}
			a.renderPapers(papers)
			return nil
		case "take":
			if len(args) != 2 {
				return errors.New("usage: qprep academy take ID")
			}
			return a.takePaper(ctx, args[1], service.SourceAcademy)
		default:
			return fmt.Errorf("unknown academy subcommand %q", args[0])
		}
	}

	state, err := a.api.GetMyAcademy(ctx)
	if err != nil {
		return unableTo("academy", err)
	}
	if !state.Enrolled {
		msg := "You are not enrolled in an academy."
		if state.Reason != "" {
			msg += " " + state.Reason
		}
		fmt.Fprintln(a.out, msg)
		return nil
	}
	a.heading("Academy")
	a.renderJSON(state.Academy)
	return nil
}
