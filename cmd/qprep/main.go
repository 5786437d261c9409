package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/config"
	"github.com/stemsi/qprep-client/internal/logger"
	"github.com/stemsi/qprep-client/internal/resultstore"
	"github.com/stemsi/qprep-client/internal/session"
	"github.com/stemsi/qprep-client/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// Logs go to stderr so they never interleave with rendered screens.
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Open Local Store ──────────────────────────────────────────────
	st, err := store.Open(ctx, cfg.StorePath(), log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open local store")
		return 1
	}
	defer st.Close()

	// ─── Result Store ──────────────────────────────────────────────────
	results, err := resultstore.New(ctx, cfg, st, log)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.ResultStore).Msg("Failed to open result store")
		return 1
	}
	defer results.Close()

	a := newApp(cfg, log, st, results, session.SystemClock{}, os.Stdin, os.Stdout)
	if err := a.dispatch(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %s", describe(err)))
		return 1
	}
	return 0
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
