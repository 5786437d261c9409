package session

import (
	"fmt"
	"sync"
	"time"
)

// Clock abstracts the local wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Timer counts down to an absolute deadline. The server/client clock offset
// is measured once, at construction, and applied to every later reading.
// Readings never increase.
type Timer struct {
	clock  Clock
	end    time.Time
	offset time.Duration

	mu   sync.Mutex
	left int
}

// NewTimer builds a timer from a server-reported "now", the absolute end and
// the server's own initial seconds-left figure. A zero serverNow means the
// deadline is already in local time.
func NewTimer(clock Clock, serverNow, end time.Time, initialLeft int) *Timer {
	var offset time.Duration
	if !serverNow.IsZero() {
		offset = serverNow.Sub(clock.Now())
	}
	if initialLeft < 0 {
		initialLeft = 0
	}
	return &Timer{clock: clock, end: end, offset: offset, left: initialLeft}
}

// NewCountdown runs for d from the clock's current time.
func NewCountdown(clock Clock, d time.Duration) *Timer {
	return NewTimer(clock, time.Time{}, clock.Now().Add(d), int(d/time.Second))
}

// Offset is the measured server-minus-local skew.
func (t *Timer) Offset() time.Duration { return t.offset }

// Remaining returns the last computed seconds left without advancing.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.left
}

// Tick recomputes floor((end − (localNow + offset)) / 1s), floored at zero,
// and keeps the smaller of that and the previous reading.
func (t *Timer) Tick() int {
	remaining := t.end.Sub(t.clock.Now().Add(t.offset))
	left := 0
	if remaining > 0 {
		left = int(remaining / time.Second)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if left < t.left {
		t.left = left
	}
	return t.left
}

// FormatTime renders seconds as MM:SS.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
