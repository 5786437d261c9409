package session

import "errors"

// State is the lifecycle of one exam attempt.
//
//	starting → active → submitting → submitted
//	                        ↓    ↑
//	                       failed → active (Resume)
type State string

const (
	StateStarting   State = "starting"
	StateActive     State = "active"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateFailed     State = "failed"
)

// Trigger says what started a submission.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerTimer  Trigger = "timer"
)

var (
	ErrNotAvailable      = errors.New("no questions available")
	ErrAlreadyStarted    = errors.New("session already started")
	ErrStartInProgress   = errors.New("session start already in progress")
	ErrNotActive         = errors.New("session is not active")
	ErrAlreadySubmitting = errors.New("submission already in progress or done")
	ErrSubmitFailed      = errors.New("submission failed")
	ErrInvalidOption     = errors.New("option out of range")
	ErrOutOfRange        = errors.New("question index out of range")
	ErrTimeUp            = errors.New("time is up")
	ErrUnknownLanguage   = errors.New("language not offered by this paper")
)

// PaletteStatus is how a question appears in the navigation grid.
type PaletteStatus string

const (
	PaletteNotVisited PaletteStatus = "not_visited"
	PaletteVisited    PaletteStatus = "visited"
	PaletteAnswered   PaletteStatus = "answered"
	PaletteMarked     PaletteStatus = "marked"
)

// PaletteItem is one cell of the navigation grid.
type PaletteItem struct {
	Index   int
	Status  PaletteStatus
	Current bool
}
