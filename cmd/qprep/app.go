package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/config"
	"github.com/stemsi/qprep-client/internal/resultstore"
	"github.com/stemsi/qprep-client/internal/service"
	"github.com/stemsi/qprep-client/internal/session"
	"github.com/stemsi/qprep-client/internal/store"
	"github.com/stemsi/qprep-client/internal/validator"
	"golang.org/x/term"
)

// app bundles the services one CLI invocation needs.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	st  *store.Store
	api *apiclient.Client

	auth         *service.AuthService
	practice     *service.PracticeService
	competitions *service.CompetitionService
	custom       *service.CustomPaperService

	stdin *os.File
	in    *bufio.Reader
	out   io.Writer
}

func newApp(
	cfg *config.Config,
	log zerolog.Logger,
	st *store.Store,
	results resultstore.Store,
	clock session.Clock,
	in io.Reader,
	out io.Writer,
) *app {
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, st.Auth(), log)

	a := &app{
		cfg:          cfg,
		log:          log,
		st:           st,
		api:          api,
		auth:         service.NewAuthService(api, st.Auth(), log),
		practice:     service.NewPracticeService(api, st, results, clock, log),
		competitions: service.NewCompetitionService(api, clock, log),
		custom:       service.NewCustomPaperService(api, st, clock, cfg.FreeCustomPapersPerDay, log),
		in:           bufio.NewReader(in),
		out:          out,
	}
	if f, ok := in.(*os.File); ok {
		a.stdin = f
	}
	return a
}

type command struct {
	name    string
	args    string
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"login", "[-mobile N]", "log in with a one-time code", (*app).cmdLogin},
		{"logout", "", "forget stored credentials", (*app).cmdLogout},
		{"whoami", "[-refresh]", "show the logged-in profile", (*app).cmdWhoami},
		{"profile", "[-name] [-email] [-gender] [-address] [-language]", "edit the profile", (*app).cmdProfile},
		{"lang", "[en|hi|mr]", "show or set the preferred language", (*app).cmdLang},
		{"categories", "[-sub CATEGORY_ID]", "list exam categories", (*app).cmdCategories},
		{"subjects", "", "list subjects for custom papers", (*app).cmdSubjects},
		{"papers", "[-category] [-sub] [-search] [-real] [-page] [-limit]", "list question papers", (*app).cmdPapers},
		{"real-exams", "CATEGORY [-search Q]", "list previous-year papers", (*app).cmdRealExams},
		{"take", "ID [-custom|-academy]", "attempt a practice paper", (*app).cmdTake},
		{"result", "", "show the last practice result", (*app).cmdResult},
		{"solutions", "[-wrong]", "review answers of the last practice attempt", (*app).cmdSolutions},
		{"competitions", "", "list competitions", (*app).cmdCompetitions},
		{"compete", "ID", "join a live competition", (*app).cmdCompete},
		{"leaderboard", "ID [-page] [-limit]", "show a competition ranking", (*app).cmdLeaderboard},
		{"history", "[-competitions]", "list past attempts", (*app).cmdHistory},
		{"analytics", "", "show the performance summary", (*app).cmdAnalytics},
		{"custom", "create|list|delete|take", "manage generated practice papers", (*app).cmdCustom},
		{"plans", "[-category ID]", "list subscription plans", (*app).cmdPlans},
		{"subscribe", "PLAN_ID PAYMENT_ID", "activate a plan after payment", (*app).cmdSubscribe},
		{"subscription", "", "show the active subscription", (*app).cmdSubscription},
		{"notifications", "[ID]", "list or read notifications", (*app).cmdNotifications},
		{"academy", "[papers|take ID]", "academy membership and papers", (*app).cmdAcademy},
	}
}

// dispatch runs the subcommand named by args[0].
func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}
	a.usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func (a *app) usage() {
	fmt.Fprintln(a.out, "Usage: qprep <command> [arguments]")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(a.out, "  %-14s %-48s %s\n", c.name, c.args, c.summary)
	}
}

// prompt prints label and reads one trimmed line.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal.
func (a *app) promptSecret(label string) (string, error) {
	if a.stdin == nil || !term.IsTerminal(int(a.stdin.Fd())) {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, label)
	b, err := term.ReadPassword(int(a.stdin.Fd()))
	fmt.Fprintln(a.out) // Newline after hidden input
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// describe turns service errors into a line the user can act on.
func describe(err error) string {
	var verr *validator.Error
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		return "you are not logged in; run `qprep login` first"
	case errors.Is(err, service.ErrUpgradeRequired):
		return "this needs an active subscription; see `qprep plans`"
	case errors.Is(err, service.ErrUsageLimitReached):
		return "daily custom paper limit reached; upgrade for more (see `qprep plans`)"
	case errors.Is(err, service.ErrNotFound):
		return "not found"
	case errors.Is(err, resultstore.ErrNotFound):
		return "no recent result; take a paper first"
	case errors.Is(err, session.ErrNotAvailable):
		return "this paper has no questions yet"
	case errors.As(err, &verr):
		return "invalid input: " + verr.Error()
	}
	return err.Error()
}
