package timing

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Countdown ticks once per second toward a target time. The channel emits
// the remaining duration and closes after emitting zero. Stop must be called
// on teardown so the ticker goroutine does not outlive its screen.
type Countdown struct {
	clock  clockwork.Clock
	target time.Time
	ch     chan time.Duration
	stop   chan struct{}
}

func NewCountdown(clock clockwork.Clock, target time.Time) *Countdown {
	c := &Countdown{
		clock:  clock,
		target: target,
		ch:     make(chan time.Duration, 1),
		stop:   make(chan struct{}),
	}
	go c.run()
	return c
}

// C delivers the remaining time once per second.
func (c *Countdown) C() <-chan time.Duration {
	return c.ch
}

// Stop cancels the countdown. Safe to call more than once.
func (c *Countdown) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *Countdown) run() {
	defer close(c.ch)

	ticker := c.clock.NewTicker(time.Second)
	defer stopAndDrainTicker(ticker)

	for {
		remaining := c.target.Sub(c.clock.Now())
		if remaining < 0 {
			remaining = 0
		}
		select {
		case c.ch <- remaining:
		case <-c.stop:
			return
		}
		if remaining == 0 {
			return
		}
		select {
		case <-ticker.Chan():
		case <-c.stop:
			return
		}
	}
}

// stopAndDrainTicker stops a ticker and drains any pending tick so the
// channel cannot leak a buffered value.
func stopAndDrainTicker(ticker clockwork.Ticker) {
	ticker.Stop()
	select {
	case <-ticker.Chan():
	default:
	}
}

// Split is a countdown duration broken into display units.
type Split struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

func SplitDuration(d time.Duration) Split {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Split{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}
