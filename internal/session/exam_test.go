package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func questions(n, options int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i].Content = model.MultiLangContent{"en": {Type: model.ContentTypeText, Text: "Q"}}
		qs[i].Options = make([]model.QuestionOption, options)
	}
	return qs
}

func staticLoad(p *Payload) LoadFunc {
	return func(context.Context) (*Payload, error) { return p, nil }
}

type countingSubmitter struct {
	calls atomic.Int32
	err   error
	gate  chan struct{}
	last  Submission
	mu    sync.Mutex
}

func (s *countingSubmitter) Submit(_ context.Context, sub Submission) error {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.last = sub
	s.mu.Unlock()
	return s.err
}

func startedExam(t *testing.T, clock Clock, n int, secs int, sub *countingSubmitter) *Exam {
	t.Helper()
	e := NewExam(sub.Submit, zerolog.Nop())
	err := e.Start(context.Background(), staticLoad(&Payload{
		Title:     "Mock",
		Questions: questions(n, 4),
		Timer:     NewCountdown(clock, time.Duration(secs)*time.Second),
	}))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return e
}

func TestTimerCompensatesSkew(t *testing.T) {
	clock := newFakeClock()
	serverNow := clock.Now().Add(10 * time.Second) // server runs ahead
	timer := NewTimer(clock, serverNow, serverNow.Add(60*time.Second), 60)

	if got := timer.Tick(); got != 60 {
		t.Fatalf("first tick = %d, want 60", got)
	}
	clock.Advance(1500 * time.Millisecond)
	if got := timer.Tick(); got != 58 {
		t.Fatalf("after 1.5s = %d, want 58 (floored)", got)
	}
	if timer.Offset() != 10*time.Second {
		t.Fatalf("offset = %v", timer.Offset())
	}
}

func TestTimerNeverIncreases(t *testing.T) {
	clock := newFakeClock()
	timer := NewCountdown(clock, 30*time.Second)

	prev := timer.Remaining()
	steps := []time.Duration{time.Second, -5 * time.Second, 700 * time.Millisecond, -time.Hour, time.Hour + 10*time.Second, 40 * time.Second}
	for _, d := range steps {
		clock.Advance(d)
		got := timer.Tick()
		if got > prev {
			t.Fatalf("timer went from %d to %d after %v", prev, got, d)
		}
		if got < 0 {
			t.Fatalf("negative reading %d", got)
		}
		prev = got
	}
	if prev != 0 {
		t.Fatalf("final reading %d, want 0", prev)
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[int]string{0: "00:00", 59: "00:59", 61: "01:01", 3600: "60:00", -3: "00:00"}
	for in, want := range cases {
		if got := FormatTime(in); got != want {
			t.Errorf("FormatTime(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestZeroQuestionsNeverActive(t *testing.T) {
	sub := &countingSubmitter{}
	e := NewExam(sub.Submit, zerolog.Nop())
	err := e.Start(context.Background(), staticLoad(&Payload{Timer: NewCountdown(newFakeClock(), time.Minute)}))

	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("err = %v, want ErrNotAvailable", err)
	}
	if e.State() != StateStarting {
		t.Fatalf("state = %s", e.State())
	}
	if err := e.SelectAnswer(0); !errors.Is(err, ErrNotActive) {
		t.Fatalf("SelectAnswer before active: %v", err)
	}
	if sub.calls.Load() != 0 {
		t.Fatal("submit called for unavailable paper")
	}
}

func TestStartFailureCanBeRetried(t *testing.T) {
	sub := &countingSubmitter{}
	e := NewExam(sub.Submit, zerolog.Nop())
	boom := errors.New("network down")

	err := e.Start(context.Background(), func(context.Context) (*Payload, error) { return nil, boom })
	if !errors.Is(err, boom) || e.State() != StateStarting {
		t.Fatalf("first start: err=%v state=%s", err, e.State())
	}

	err = e.Start(context.Background(), staticLoad(&Payload{Questions: questions(2, 4), Timer: NewCountdown(newFakeClock(), time.Minute)}))
	if err != nil || e.State() != StateActive {
		t.Fatalf("retry: err=%v state=%s", err, e.State())
	}
	if err := e.Start(context.Background(), nil); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("third start: %v", err)
	}
}

func TestLastAnswerWins(t *testing.T) {
	sub := &countingSubmitter{}
	e := startedExam(t, newFakeClock(), 3, 60, sub)

	_ = e.SelectAnswer(1)
	_ = e.SelectAnswer(3)

	answers := e.Answers()
	if len(answers) != 1 || answers[0] != 3 {
		t.Fatalf("answers = %v, want {0:3}", answers)
	}
	if err := e.SelectAnswer(4); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("out of range option: %v", err)
	}
	if err := e.ClearAnswer(); err != nil || len(e.Answers()) != 0 {
		t.Fatalf("ClearAnswer: %v, %v", err, e.Answers())
	}
}

func TestNavigationAndPalette(t *testing.T) {
	sub := &countingSubmitter{}
	e := startedExam(t, newFakeClock(), 4, 60, sub)

	if moved, _ := e.Prev(); moved {
		t.Fatal("Prev moved before the first question")
	}
	_ = e.SelectAnswer(0)
	_, _ = e.ToggleMark()
	_, _ = e.Next()
	_ = e.SelectAnswer(2)
	_, _ = e.Next()
	if err := e.Jump(3); err != nil {
		t.Fatal(err)
	}
	if moved, _ := e.Next(); moved {
		t.Fatal("Next moved past the last question")
	}
	if err := e.Jump(9); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Jump(9): %v", err)
	}

	want := []PaletteStatus{PaletteMarked, PaletteAnswered, PaletteVisited, PaletteVisited}
	for i, item := range e.Palette() {
		if item.Status != want[i] {
			t.Errorf("palette[%d] = %s, want %s", i, item.Status, want[i])
		}
		if item.Current != (i == 3) {
			t.Errorf("palette[%d].Current = %v", i, item.Current)
		}
	}

	_ = e.Jump(0)
	if marked, _ := e.ToggleMark(); marked {
		t.Fatal("second toggle should unmark")
	}
	if e.Palette()[0].Status != PaletteAnswered {
		t.Fatal("unmarked answered question should show as answered")
	}

	v := e.Snapshot()
	if v.Index != 0 || v.Total != 4 || v.Answered != 2 || v.Selected != 0 || v.Marked {
		t.Fatalf("snapshot = %+v", v)
	}
}

func TestExpiredAtStartAutoSubmitsOnce(t *testing.T) {
	clock := newFakeClock()
	sub := &countingSubmitter{}
	e := NewExam(sub.Submit, zerolog.Nop())

	end := clock.Now()
	err := e.Start(context.Background(), staticLoad(&Payload{
		Questions: questions(2, 4),
		Timer:     NewTimer(clock, clock.Now(), end, 0),
	}))
	if err != nil {
		t.Fatal(err)
	}

	// The user clicks submit in the same tick; the timer fires again too.
	if err := e.Submit(context.Background()); !errors.Is(err, ErrAlreadySubmitting) {
		t.Fatalf("manual submit after auto: %v", err)
	}
	e.Tick(context.Background())

	if n := sub.calls.Load(); n != 1 {
		t.Fatalf("submit called %d times, want 1", n)
	}
	if e.State() != StateSubmitted {
		t.Fatalf("state = %s", e.State())
	}
	if sub.last.Trigger != TriggerTimer {
		t.Fatalf("trigger = %s", sub.last.Trigger)
	}
	select {
	case <-e.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestConcurrentTriggersSubmitOnce(t *testing.T) {
	clock := newFakeClock()
	sub := &countingSubmitter{gate: make(chan struct{})}
	e := startedExam(t, clock, 2, 1, sub)
	clock.Advance(2 * time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = e.Submit(context.Background()) }()
		go func() { defer wg.Done(); e.Tick(context.Background()) }()
	}

	// Let the single in-flight submission finish once everyone has raced.
	time.Sleep(50 * time.Millisecond)
	close(sub.gate)
	wg.Wait()

	if n := sub.calls.Load(); n != 1 {
		t.Fatalf("submit called %d times, want 1", n)
	}
	if e.State() != StateSubmitted {
		t.Fatalf("state = %s", e.State())
	}
}

func TestManualFailureIsRetryable(t *testing.T) {
	sub := &countingSubmitter{err: errors.New("503")}
	e := startedExam(t, newFakeClock(), 2, 60, sub)

	err := e.Submit(context.Background())
	if !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("err = %v", err)
	}
	if e.State() != StateFailed || e.LastError() == nil {
		t.Fatalf("state = %s, lastErr = %v", e.State(), e.LastError())
	}

	if err := e.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := e.SelectAnswer(1); err != nil {
		t.Fatalf("answering after resume: %v", err)
	}

	sub.err = nil
	if err := e.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if e.State() != StateSubmitted || sub.calls.Load() != 2 {
		t.Fatalf("state = %s, calls = %d", e.State(), sub.calls.Load())
	}
	if sub.last.Answers[0] != 1 {
		t.Fatalf("retry carried answers %v", sub.last.Answers)
	}
}

func TestAutoFailureIsSwallowed(t *testing.T) {
	clock := newFakeClock()
	sub := &countingSubmitter{err: errors.New("timeout")}
	e := startedExam(t, clock, 2, 5, sub)

	clock.Advance(6 * time.Second)
	if left := e.Tick(context.Background()); left != 0 {
		t.Fatalf("left = %d", left)
	}
	if e.State() != StateFailed {
		t.Fatalf("state = %s", e.State())
	}

	// Further ticks do not resubmit; time is up so resuming is refused.
	e.Tick(context.Background())
	if sub.calls.Load() != 1 {
		t.Fatalf("calls = %d", sub.calls.Load())
	}
	if err := e.Resume(); !errors.Is(err, ErrTimeUp) {
		t.Fatalf("Resume: %v", err)
	}
}

func TestTimerKeepsRunningAfterManualFailure(t *testing.T) {
	clock := newFakeClock()
	sub := &countingSubmitter{err: errors.New("503")}
	e := startedExam(t, clock, 2, 10, sub)

	if err := e.Submit(context.Background()); !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("err = %v", err)
	}

	clock.Advance(4 * time.Second)
	if left := e.Tick(context.Background()); left != 6 {
		t.Fatalf("left = %d, want 6", left)
	}
	if got := e.Snapshot().SecondsLeft; got != 6 {
		t.Fatalf("snapshot left = %d, want 6", got)
	}
	if e.State() != StateFailed || sub.calls.Load() != 1 {
		t.Fatalf("state = %s, calls = %d", e.State(), sub.calls.Load())
	}

	// Expiry auto-submits the failed attempt once.
	sub.err = nil
	clock.Advance(30 * time.Second)
	if left := e.Tick(context.Background()); left != 0 {
		t.Fatalf("left = %d", left)
	}
	if e.State() != StateSubmitted || sub.calls.Load() != 2 {
		t.Fatalf("state = %s, calls = %d", e.State(), sub.calls.Load())
	}
	if sub.last.Trigger != TriggerTimer {
		t.Fatalf("trigger = %s", sub.last.Trigger)
	}
	select {
	case <-e.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestResumeRefusedPastDeadline(t *testing.T) {
	clock := newFakeClock()
	sub := &countingSubmitter{err: errors.New("503")}
	e := startedExam(t, clock, 2, 10, sub)

	if err := e.Submit(context.Background()); !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("err = %v", err)
	}

	// No tick ran since the deadline passed.
	clock.Advance(30 * time.Second)
	if err := e.Resume(); !errors.Is(err, ErrTimeUp) {
		t.Fatalf("Resume: %v", err)
	}
	if e.State() != StateFailed {
		t.Fatalf("state = %s", e.State())
	}
}

func TestFailedAutoSubmitIsNotRepeated(t *testing.T) {
	clock := newFakeClock()
	sub := &countingSubmitter{err: errors.New("503")}
	e := startedExam(t, clock, 2, 10, sub)

	_ = e.Submit(context.Background())
	clock.Advance(11 * time.Second)
	e.Tick(context.Background())
	e.Tick(context.Background())
	clock.Advance(time.Minute)
	e.Tick(context.Background())

	// One manual attempt plus one automatic one.
	if sub.calls.Load() != 2 || e.State() != StateFailed {
		t.Fatalf("state = %s, calls = %d", e.State(), sub.calls.Load())
	}
	if err := e.Submit(context.Background()); !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("manual retry: %v", err)
	}
	if sub.calls.Load() != 3 {
		t.Fatalf("calls = %d", sub.calls.Load())
	}
}

func TestRunStopsWhenSubmitted(t *testing.T) {
	clock := newFakeClock()
	sub := &countingSubmitter{}
	e := startedExam(t, clock, 1, 1, sub)
	clock.Advance(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var readings []int
	e.Run(ctx, time.Millisecond, func(left int) { readings = append(readings, left) })

	if ctx.Err() != nil {
		t.Fatal("Run did not return after auto-submit")
	}
	if e.State() != StateSubmitted || len(readings) == 0 || readings[len(readings)-1] != 0 {
		t.Fatalf("state = %s, readings = %v", e.State(), readings)
	}
}

func TestSetLanguage(t *testing.T) {
	sub := &countingSubmitter{}
	e := NewExam(sub.Submit, zerolog.Nop())
	qs := questions(1, 2)
	qs[0].Content = model.MultiLangContent{"en": {Text: "Hello"}, "hi": {Text: "Namaste"}}
	_ = e.Start(context.Background(), staticLoad(&Payload{
		Questions: qs,
		Languages: []string{"hi", "en"},
		Timer:     NewCountdown(newFakeClock(), time.Minute),
	}))

	if v := e.Snapshot(); v.Language != "hi" || v.Question.Text != "Namaste" {
		t.Fatalf("default language view = %+v", v)
	}
	if err := e.SetLanguage("mr"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("SetLanguage(mr) = %v", err)
	}
	_ = e.SetLanguage("en")
	if v := e.Snapshot(); v.Question.Text != "Hello" {
		t.Fatalf("english view = %+v", v.Question)
	}
}
