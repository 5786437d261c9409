package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stemsi/qprep-client/internal/session"
)

const defaultTickInterval = 500 * time.Millisecond

type examAction int

const (
	actNone examAction = iota
	actNext
	actPrev
	actJump
	actAnswer
	actClear
	actMark
	actLanguage
	actPalette
	actSubmit
	actShow
	actHelp
	actQuit
	actYes
	actUnknown
)

// examCommand is one parsed line of exam input. Numbers are one-based as
// typed; apply converts them.
type examCommand struct {
	action examAction
	n      int
	arg    string
}

// parseCommand reads a line typed during an attempt. A bare number answers
// the current question with that option.
func parseCommand(line string) examCommand {
	line = strings.TrimSpace(line)
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return examCommand{action: actNone}
	}
	head, rest := fields[0], fields[1:]

	if n, err := strconv.Atoi(head); err == nil && len(rest) == 0 {
		return examCommand{action: actAnswer, n: n}
	}

	numeric := func(a examAction) examCommand {
		if len(rest) != 1 {
			return examCommand{action: actUnknown, arg: line}
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return examCommand{action: actUnknown, arg: line}
		}
		return examCommand{action: a, n: n}
	}

	switch head {
	case "n", "next":
		return examCommand{action: actNext}
	case "p", "prev", "previous":
		return examCommand{action: actPrev}
	case "j", "jump", "go":
		return numeric(actJump)
	case "a", "answer":
		return numeric(actAnswer)
	case "c", "clear":
		return examCommand{action: actClear}
	case "m", "mark":
		return examCommand{action: actMark}
	case "l", "lang":
		if len(rest) != 1 {
			return examCommand{action: actUnknown, arg: line}
		}
		return examCommand{action: actLanguage, arg: rest[0]}
	case "g", "grid", "palette":
		return examCommand{action: actPalette}
	case "s", "submit":
		return examCommand{action: actSubmit}
	case "r", "show":
		return examCommand{action: actShow}
	case "h", "help", "?":
		return examCommand{action: actHelp}
	case "q", "quit", "exit":
		return examCommand{action: actQuit}
	case "y", "yes":
		return examCommand{action: actYes}
	}
	return examCommand{action: actUnknown, arg: line}
}

// readLines feeds input lines to the exam loop so the loop can also watch
// the timer. The goroutine ends at EOF or when ctx is done.
func (a *app) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := a.in.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// runExam drives an attempt until it is submitted, the user quits or ctx
// ends. It reports whether the attempt was submitted.
func (a *app) runExam(ctx context.Context, exam *session.Exam) (bool, error) {
	if lang := string(a.st.Language().Get(ctx)); lang != "" {
		// Papers without the preferred language keep their first one.
		_ = exam.SetLanguage(lang)
	}

	interval := a.cfg.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go exam.Run(runCtx, interval, nil)

	lines := a.readLines(runCtx)
	watch := time.NewTicker(interval)
	defer watch.Stop()

	var confirming, failureShown bool
	a.renderQuestion(exam.Snapshot())
	fmt.Fprintln(a.out, "Type h for help.")

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()

		case <-exam.Done():
			a.announceSubmitted(exam)
			return true, nil

		case <-watch.C:
			// Auto-submit errors are swallowed by the session; surface them
			// once so the user knows to retry.
			if exam.State() == session.StateFailed && !failureShown {
				failureShown = true
				a.warn("Time is up but the submission failed: %v", exam.LastError())
				fmt.Fprintln(a.out, "Type s to retry.")
			}

		case line, ok := <-lines:
			if !ok {
				a.warn("Input closed; the attempt was not submitted.")
				return false, nil
			}
			cmd := parseCommand(line)

			if confirming {
				confirming = false
				if cmd.action != actYes {
					fmt.Fprintln(a.out, "Submission cancelled.")
					continue
				}
				if err := exam.Submit(ctx); err != nil {
					failureShown = true
					a.reportSubmitError(err)
					continue
				}
				a.announceSubmitted(exam)
				return true, nil
			}

			switch cmd.action {
			case actQuit:
				fmt.Fprintln(a.out, "Left the attempt without submitting.")
				return false, nil
			case actSubmit:
				v := exam.Snapshot()
				marked := 0
				for _, p := range exam.Palette() {
					if p.Status == session.PaletteMarked {
						marked++
					}
				}
				fmt.Fprintf(a.out, "Answered %d of %d, %d marked for review. Submit now? [y/N] ",
					v.Answered, v.Total, marked)
				confirming = true
			default:
				a.apply(exam, cmd)
			}
		}
	}
}

// apply performs a non-submitting command and redraws.
func (a *app) apply(exam *session.Exam, cmd examCommand) {
	switch cmd.action {
	case actNone, actShow:
		a.renderQuestion(exam.Snapshot())
		return
	case actHelp:
		a.renderExamHelp()
		return
	case actPalette:
		a.renderPalette(exam.Palette())
		return
	case actYes:
		return
	case actUnknown:
		a.warn("Unknown command %q; type h for help.", cmd.arg)
		return
	}

	if !a.ensureActive(exam) {
		return
	}

	var err error
	switch cmd.action {
	case actNext:
		var moved bool
		if moved, err = exam.Next(); err == nil && !moved {
			fmt.Fprintln(a.out, "This is the last question.")
			return
		}
	case actPrev:
		var moved bool
		if moved, err = exam.Prev(); err == nil && !moved {
			fmt.Fprintln(a.out, "This is the first question.")
			return
		}
	case actJump:
		err = exam.Jump(cmd.n - 1)
	case actAnswer:
		err = exam.SelectAnswer(cmd.n - 1)
	case actClear:
		err = exam.ClearAnswer()
	case actMark:
		_, err = exam.ToggleMark()
	case actLanguage:
		err = exam.SetLanguage(cmd.arg)
	}
	if err != nil {
		a.warn("%s", describeExamError(err))
		return
	}
	a.renderQuestion(exam.Snapshot())
}

// ensureActive returns a failed attempt to answering while time remains.
func (a *app) ensureActive(exam *session.Exam) bool {
	if exam.State() != session.StateFailed {
		return true
	}
	if err := exam.Resume(); err != nil {
		if errors.Is(err, session.ErrTimeUp) {
			a.warn("Time is up; type s to retry the submission.")
		} else {
			a.warn("%s", describeExamError(err))
		}
		return false
	}
	return true
}

func (a *app) reportSubmitError(err error) {
	if errors.Is(err, session.ErrAlreadySubmitting) {
		fmt.Fprintln(a.out, "A submission is already in progress.")
		return
	}
	a.warn("%s", describe(err))
	fmt.Fprintln(a.out, "Type s to retry, or keep answering while time remains.")
}

func (a *app) announceSubmitted(exam *session.Exam) {
	if exam.Snapshot().SecondsLeft == 0 {
		a.success("Time is up. Your answers were submitted.")
		return
	}
	a.success("Submitted.")
}

func describeExamError(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidOption):
		return "No such option."
	case errors.Is(err, session.ErrOutOfRange):
		return "No such question."
	case errors.Is(err, session.ErrUnknownLanguage):
		return "This paper is not available in that language."
	case errors.Is(err, session.ErrNotActive):
		return "The attempt is not accepting answers right now."
	}
	return err.Error()
}
