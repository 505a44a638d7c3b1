package bonus

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
)

// Step is the screen a bonus round renders. At most one is active at a time,
// decided solely by the latest fetched status.
type Step string

const (
	// StepCountdown renders the scheduled start time while the round is gated.
	StepCountdown Step = "countdown"
	// StepQuestion renders the round's location hint and puzzle.
	StepQuestion Step = "question"
	// StepLeaderboard renders the read-only winners list once the round ends.
	StepLeaderboard Step = "leaderboard"
)

var (
	ErrEmptyCode   = errors.New("location code is required")
	ErrEmptyAnswer = errors.New("answer is required")
	ErrEmptyWinner = errors.New("leader name and team name are required")
)

// API is what a bonus flow needs from the backend.
type API interface {
	BonusStatus(ctx context.Context, roundID int) (*hunt_api_client.PhaseStatusResponse, error)
	SubmitBonusCode(ctx context.Context, roundID int, code string) (*hunt_api_client.BonusScanResponse, error)
	SubmitBonusAnswer(ctx context.Context, roundID int, answer string) (*hunt_api_client.AnswerResponse, error)
	SubmitBonusWinner(ctx context.Context, roundID int, leaderName, teamName string) error
	BonusLeaderboard(ctx context.Context, roundID int) ([]hunt_api_client.BonusSubmission, error)
}

// Flow drives one bonus round. It has the same shape as the main hunt flow
// but is additionally gated by the round's start/end times: before the start
// only the countdown renders, and after the end the whole flow is replaced
// by the winners list. As in the main flow, a monotonically increasing
// request token discards responses overtaken by a newer request, so a slow
// pre-end status can never drag an ended round back onto the puzzle.
type Flow struct {
	api     API
	roundID int
	log     zerolog.Logger

	seq atomic.Uint64

	mu            sync.Mutex
	step          Step
	status        *hunt_api_client.PhaseStatusResponse
	locationHint  string
	questionImage string
	submissions   []hunt_api_client.BonusSubmission
}

func New(api API, roundID int, log zerolog.Logger) *Flow {
	return &Flow{
		api:     api,
		roundID: roundID,
		log:     log,
		step:    StepCountdown,
	}
}

func (f *Flow) RoundID() int {
	return f.roundID
}

// Load re-fetches the round status and selects the step. A round already
// started on a previous visit re-enters the question step directly, carrying
// the location hint and any question image the server already unlocked.
func (f *Flow) Load(ctx context.Context) error {
	tok := f.seq.Add(1)

	status, err := f.api.BonusStatus(ctx, f.roundID)
	if err != nil {
		// Fail safe: without a fresh status the round stays gated.
		return err
	}

	var submissions []hunt_api_client.BonusSubmission
	if status.IsEnded {
		submissions, err = f.api.BonusLeaderboard(ctx, f.roundID)
		if err != nil {
			f.log.Warn().Err(err).Int("round", f.roundID).Msg("bonus leaderboard fetch failed")
			submissions = nil
		}
		// First-correct-wins: order by submission time regardless of how the
		// server happened to sort.
		sort.SliceStable(submissions, func(i, j int) bool {
			return submissions[i].SubmittedAt.Before(submissions[j].SubmittedAt)
		})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if tok != f.seq.Load() {
		f.log.Debug().Uint64("token", tok).Int("round", f.roundID).Msg("discarding stale status load")
		return nil
	}

	f.status = status
	switch {
	case status.IsEnded:
		f.step = StepLeaderboard
		f.submissions = submissions
	case status.IsStarted:
		f.step = StepQuestion
		f.locationHint = status.LocationHint
		if status.QuestionImage != "" {
			f.questionImage = status.QuestionImage
		}
	default:
		f.step = StepCountdown
	}
	return nil
}

// SubmitCode submits the round's location code. Acceptance unlocks the
// question image; resubmitting an accepted code is a safe no-op.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}

	tok := f.seq.Add(1)
	resp, err := f.api.SubmitBonusCode(ctx, f.roundID, code)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if tok != f.seq.Load() {
		f.log.Debug().Uint64("token", tok).Int("round", f.roundID).Msg("discarding stale scan response")
		return nil
	}
	if resp.QuestionImage != "" {
		f.questionImage = resp.QuestionImage
	}
	return nil
}

// SubmitAnswer submits the round's puzzle answer.
func (f *Flow) SubmitAnswer(ctx context.Context, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyAnswer
	}

	resp, err := f.api.SubmitBonusAnswer(ctx, f.roundID, answer)
	if err != nil {
		return "", err
	}
	return resp.Msg, nil
}

// SubmitWinner appends the round's winning submission record.
func (f *Flow) SubmitWinner(ctx context.Context, leaderName, teamName string) error {
	leaderName = strings.TrimSpace(leaderName)
	teamName = strings.TrimSpace(teamName)
	if leaderName == "" || teamName == "" {
		return ErrEmptyWinner
	}
	return f.api.SubmitBonusWinner(ctx, f.roundID, leaderName, teamName)
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Status() *hunt_api_client.PhaseStatusResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == nil {
		return nil
	}
	s := *f.status
	return &s
}

func (f *Flow) LocationHint() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locationHint
}

func (f *Flow) QuestionImage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.questionImage
}

// Submissions is the winners list, ordered by submission time ascending.
func (f *Flow) Submissions() []hunt_api_client.BonusSubmission {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]hunt_api_client.BonusSubmission, len(f.submissions))
	copy(out, f.submissions)
	return out
}
