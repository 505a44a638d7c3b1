package timing

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// HuntTimer tracks how long the current puzzle has been on screen and when
// the nudge hint becomes available. It holds no goroutine; the owning screen
// polls it on its own tick and simply drops it on teardown.
type HuntTimer struct {
	clock      clockwork.Clock
	start      time.Time
	nudgeAfter time.Duration
}

func NewHuntTimer(clock clockwork.Clock, nudgeAfter time.Duration) *HuntTimer {
	return &HuntTimer{
		clock:      clock,
		start:      clock.Now(),
		nudgeAfter: nudgeAfter,
	}
}

// Reset restarts the timer, used when the team advances to a new puzzle.
func (t *HuntTimer) Reset() {
	t.start = t.clock.Now()
}

func (t *HuntTimer) Elapsed() time.Duration {
	return t.clock.Since(t.start)
}

// NudgeVisible reports whether the puzzle has been unsolved long enough to
// reveal the nudge hint.
func (t *HuntTimer) NudgeVisible() bool {
	return t.Elapsed() >= t.nudgeAfter
}

// UntilNudge returns how long until the nudge hint unlocks, floored at zero.
func (t *HuntTimer) UntilNudge() time.Duration {
	left := t.nudgeAfter - t.Elapsed()
	if left < 0 {
		left = 0
	}
	return left
}

// FormatClock renders a duration as m:ss for timer displays.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
