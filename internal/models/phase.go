package models

import "time"

// Phase identifies a time-gated sub-event with independent start/end times.
type Phase string

const (
	PhaseMainHunt Phase = "main"
	PhaseBonus1   Phase = "bonus1"
	PhaseBonus2   Phase = "bonus2"
)

// BonusRoundID returns the bonus round number for a bonus phase.
func (p Phase) BonusRoundID() (int, bool) {
	switch p {
	case PhaseBonus1:
		return 1, true
	case PhaseBonus2:
		return 2, true
	default:
		return 0, false
	}
}

// PhaseStatus is the client's view of a phase gate. It is never cached
// beyond the current screen's lifetime; a reload re-fetches it.
type PhaseStatus struct {
	Started   bool
	Ended     bool
	StartTime time.Time
	EndTime   time.Time
}
