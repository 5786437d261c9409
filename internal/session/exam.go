package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/model"
)

// Payload is what a successful start yields.
type Payload struct {
	Title     string
	Questions []model.Question
	Languages []string
	Timer     *Timer
}

// LoadFunc fetches the payload for Start.
type LoadFunc func(ctx context.Context) (*Payload, error)

// Submission is the frozen answer sheet handed to a SubmitFunc.
type Submission struct {
	Questions   []model.Question
	Answers     map[int]int
	Marked      []int
	SecondsLeft int
	Trigger     Trigger
}

// SubmitFunc delivers a submission. It is called at most once per attempt
// unless a previous call failed and the user retries.
type SubmitFunc func(ctx context.Context, sub Submission) error

// Exam is the controller for one timed attempt. All methods are safe for
// concurrent use; the submission guard lives in the State value.
type Exam struct {
	submit SubmitFunc
	log    zerolog.Logger

	mu       sync.Mutex
	state    State
	loading  bool
	payload  *Payload
	current  int
	answers  map[int]int
	marked   map[int]struct{}
	visited  map[int]struct{}
	language string
	lastErr  error
	// failedBy is the trigger of the submission that left StateFailed.
	failedBy Trigger
	done     chan struct{}
}

// NewExam returns a controller in StateStarting.
func NewExam(submit SubmitFunc, log zerolog.Logger) *Exam {
	return &Exam{
		submit:  submit,
		log:     log.With().Str("component", "exam_session").Logger(),
		state:   StateStarting,
		answers: map[int]int{},
		marked:  map[int]struct{}{},
		visited: map[int]struct{}{},
		done:    make(chan struct{}),
	}
}

// Start loads the attempt. A load error leaves the controller in
// StateStarting so Start may be retried; a payload with no questions yields
// ErrNotAvailable and never enters StateActive. If the timer is already at
// zero the attempt is auto-submitted before Start returns.
func (e *Exam) Start(ctx context.Context, load LoadFunc) error {
	e.mu.Lock()
	if e.state != StateStarting {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	if e.loading {
		e.mu.Unlock()
		return ErrStartInProgress
	}
	e.loading = true
	e.mu.Unlock()

	payload, err := load(ctx)

	e.mu.Lock()
	e.loading = false
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("start session: %w", err)
	}
	if payload == nil || len(payload.Questions) == 0 {
		e.mu.Unlock()
		return ErrNotAvailable
	}
	if payload.Timer == nil {
		e.mu.Unlock()
		return fmt.Errorf("start session: payload has no timer")
	}

	e.payload = payload
	e.state = StateActive
	e.current = 0
	e.visited[0] = struct{}{}
	e.language = model.DefaultLanguage
	if len(payload.Languages) > 0 {
		e.language = payload.Languages[0]
	}
	expired := payload.Timer.Remaining() == 0
	e.mu.Unlock()

	e.log.Info().
		Str("title", payload.Title).
		Int("questions", len(payload.Questions)).
		Int("seconds_left", payload.Timer.Remaining()).
		Dur("clock_offset", payload.Timer.Offset()).
		Msg("Session active")

	if expired {
		_ = e.trigger(ctx, TriggerTimer)
	}
	return nil
}

// Tick advances the timer and auto-submits when it reaches zero. The
// countdown keeps running after a failed manual submit, and expiry then
// auto-submits once more. It returns the seconds left.
func (e *Exam) Tick(ctx context.Context) int {
	e.mu.Lock()
	if e.payload == nil {
		e.mu.Unlock()
		return 0
	}
	timer := e.payload.Timer
	state, failedBy := e.state, e.failedBy
	e.mu.Unlock()

	switch state {
	case StateActive:
	case StateFailed:
		if failedBy != TriggerManual {
			return timer.Tick()
		}
	default:
		return timer.Remaining()
	}

	left := timer.Tick()
	if left == 0 {
		_ = e.trigger(ctx, TriggerTimer)
	}
	return left
}

// Run ticks every interval until the attempt is submitted or ctx ends.
// onTick, if non-nil, receives each reading.
func (e *Exam) Run(ctx context.Context, interval time.Duration, onTick func(secondsLeft int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-ticker.C:
			left := e.Tick(ctx)
			if onTick != nil {
				onTick(left)
			}
		}
	}
}

// Submit is the manual submit action. It is a no-op returning
// ErrAlreadySubmitting while another submission is in flight or done.
func (e *Exam) Submit(ctx context.Context) error {
	return e.trigger(ctx, TriggerManual)
}

func (e *Exam) trigger(ctx context.Context, trig Trigger) error {
	e.mu.Lock()
	switch e.state {
	case StateActive, StateFailed:
	case StateStarting:
		e.mu.Unlock()
		return ErrNotActive
	default:
		e.mu.Unlock()
		return ErrAlreadySubmitting
	}
	e.state = StateSubmitting
	sub := e.submissionLocked(trig)
	e.mu.Unlock()

	err := e.submit(ctx, sub)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateFailed
		e.lastErr = err
		e.failedBy = trig
		if trig == TriggerTimer {
			e.log.Warn().Err(err).Msg("Auto-submit failed")
			return nil
		}
		return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	e.state = StateSubmitted
	e.lastErr = nil
	close(e.done)
	e.log.Info().Str("trigger", string(trig)).Int("answered", len(sub.Answers)).Msg("Session submitted")
	return nil
}

func (e *Exam) submissionLocked(trig Trigger) Submission {
	answers := make(map[int]int, len(e.answers))
	for k, v := range e.answers {
		answers[k] = v
	}
	return Submission{
		Questions:   e.payload.Questions,
		Answers:     answers,
		Marked:      e.markedLocked(),
		SecondsLeft: e.payload.Timer.Remaining(),
		Trigger:     trig,
	}
}

func (e *Exam) markedLocked() []int {
	out := make([]int, 0, len(e.marked))
	for i := range e.marked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Resume returns a failed attempt to StateActive while time remains.
func (e *Exam) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateFailed {
		return ErrNotActive
	}
	if e.payload.Timer.Tick() == 0 {
		return ErrTimeUp
	}
	e.state = StateActive
	return nil
}

// Done is closed once the attempt reaches StateSubmitted.
func (e *Exam) Done() <-chan struct{} { return e.done }

// State returns the current state.
func (e *Exam) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastError is the most recent submission failure, if any.
func (e *Exam) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ─── Answering ─────────────────────────────────────────────────────────

// SelectAnswer records option for the current question, replacing any
// earlier choice.
func (e *Exam) SelectAnswer(option int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return ErrNotActive
	}
	if option < 0 || option >= len(e.payload.Questions[e.current].Options) {
		return ErrInvalidOption
	}
	e.answers[e.current] = option
	return nil
}

// ClearAnswer removes the current question's answer.
func (e *Exam) ClearAnswer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return ErrNotActive
	}
	delete(e.answers, e.current)
	return nil
}

// ToggleMark flips the review flag on the current question and returns
// the new value.
func (e *Exam) ToggleMark() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false, ErrNotActive
	}
	if _, ok := e.marked[e.current]; ok {
		delete(e.marked, e.current)
		return false, nil
	}
	e.marked[e.current] = struct{}{}
	return true, nil
}

// ─── Navigation ────────────────────────────────────────────────────────

// Next moves forward; it reports false on the last question.
func (e *Exam) Next() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false, ErrNotActive
	}
	if e.current >= len(e.payload.Questions)-1 {
		return false, nil
	}
	e.moveLocked(e.current + 1)
	return true, nil
}

// Prev moves back; it reports false on the first question.
func (e *Exam) Prev() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return false, ErrNotActive
	}
	if e.current == 0 {
		return false, nil
	}
	e.moveLocked(e.current - 1)
	return true, nil
}

// Jump moves to a zero-based question index, as the palette does.
func (e *Exam) Jump(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return ErrNotActive
	}
	if index < 0 || index >= len(e.payload.Questions) {
		return ErrOutOfRange
	}
	e.moveLocked(index)
	return nil
}

func (e *Exam) moveLocked(index int) {
	e.current = index
	e.visited[index] = struct{}{}
}

// SetLanguage switches the content language.
func (e *Exam) SetLanguage(lang string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.payload == nil {
		return ErrNotActive
	}
	if len(e.payload.Languages) > 0 {
		found := false
		for _, l := range e.payload.Languages {
			if l == lang {
				found = true
				break
			}
		}
		if !found {
			return ErrUnknownLanguage
		}
	}
	e.language = lang
	return nil
}

// ─── Views ─────────────────────────────────────────────────────────────

// Palette returns the status of every question. Marked wins over answered,
// answered over visited.
func (e *Exam) Palette() []PaletteItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.payload == nil {
		return nil
	}

	items := make([]PaletteItem, len(e.payload.Questions))
	for i := range items {
		status := PaletteNotVisited
		if _, ok := e.marked[i]; ok {
			status = PaletteMarked
		} else if _, ok := e.answers[i]; ok {
			status = PaletteAnswered
		} else if _, ok := e.visited[i]; ok {
			status = PaletteVisited
		}
		items[i] = PaletteItem{Index: i, Status: status, Current: i == e.current}
	}
	return items
}

// View is a read-only snapshot for rendering.
type View struct {
	State       State
	Title       string
	Index       int
	Total       int
	Answered    int
	SecondsLeft int
	Language    string
	Languages   []string
	Question    model.ResolvedContent
	Options     []model.ResolvedContent
	// Selected is the chosen option index, or -1.
	Selected int
	Marked   bool
}

// Snapshot returns the current view.
func (e *Exam) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{State: e.state, Selected: -1, Language: e.language}
	if e.payload == nil {
		return v
	}

	q := e.payload.Questions[e.current]
	v.Title = e.payload.Title
	v.Index = e.current
	v.Total = len(e.payload.Questions)
	v.Answered = len(e.answers)
	v.SecondsLeft = e.payload.Timer.Remaining()
	v.Languages = e.payload.Languages
	v.Question = q.Content.Resolve(e.language)
	v.Options = make([]model.ResolvedContent, len(q.Options))
	for i, opt := range q.Options {
		v.Options[i] = opt.Content.Resolve(e.language)
	}
	if sel, ok := e.answers[e.current]; ok {
		v.Selected = sel
	}
	_, v.Marked = e.marked[e.current]
	return v
}

// Answers returns a copy of the answer map.
func (e *Exam) Answers() map[int]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int]int, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}
