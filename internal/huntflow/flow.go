package huntflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
	"github.com/xeniahunt/huntclient/internal/hint"
)

// State is the hunt screen the flow is currently in.
type State string

const (
	// StateLocation shows the hint and the location-code entry.
	StateLocation State = "location"
	// StateQuestion shows the puzzle content and the answer entry.
	StateQuestion State = "question"
	// StateCompleted is terminal; only the leaderboard remains reachable.
	StateCompleted State = "completed"
)

var (
	ErrEmptyCode   = errors.New("location code is required")
	ErrEmptyAnswer = errors.New("puzzle answer is required")
)

// SubmitAPI is what the flow needs from the backend beyond the hint engine.
type SubmitAPI interface {
	SubmitCode(ctx context.Context, code string) (*hunt_api_client.SubmitCodeResponse, error)
	SubmitAnswer(ctx context.Context, answer string) (*hunt_api_client.AnswerResponse, error)
}

// Flow drives the location -> question -> advance state machine. All
// authoritative state lives on the server; the flow only ever replaces its
// view wholesale from the latest fetch. A monotonically increasing request
// token discards responses that were overtaken by a newer request, so a slow
// early response can never overwrite a fast later one.
type Flow struct {
	api          SubmitAPI
	hints        *hint.Engine
	clock        clockwork.Clock
	log          zerolog.Logger
	advanceDelay time.Duration

	seq atomic.Uint64

	mu           sync.Mutex
	state        State
	hintState    hint.State
	question     *hunt_api_client.Question
	progress     *hunt_api_client.ProgressResponse
	success      string
	advanceTimer clockwork.Timer

	notify chan struct{}
}

func New(api SubmitAPI, hints *hint.Engine, clock clockwork.Clock, advanceDelay time.Duration, log zerolog.Logger) *Flow {
	return &Flow{
		api:          api,
		hints:        hints,
		clock:        clock,
		log:          log,
		advanceDelay: advanceDelay,
		state:        StateLocation,
		notify:       make(chan struct{}, 1),
	}
}

// Refresh re-fetches the hint and progress and reconciles the state. A hint
// carrying AlreadyScanned reconstructs the question state without a re-scan,
// which is what makes a mid-question reload safe. Fetch failures leave the
// state untouched.
func (f *Flow) Refresh(ctx context.Context) error {
	tok := f.seq.Add(1)

	st, err := f.hints.FetchHint(ctx)
	if err != nil {
		return err
	}

	var question *hunt_api_client.Question
	if !st.Terminal && st.AlreadyScanned {
		question, err = f.hints.FetchQuestion(ctx)
		if err != nil {
			return err
		}
	}

	progress, err := f.hints.FetchProgress(ctx)
	if err != nil {
		// Progress is display-only; a failed fetch must not block the hint.
		f.log.Warn().Err(err).Msg("progress fetch failed")
		progress = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if tok != f.seq.Load() {
		f.log.Debug().Uint64("token", tok).Msg("discarding stale hint refresh")
		return nil
	}

	f.hintState = st
	f.success = ""
	if progress != nil {
		f.progress = progress
	}

	switch {
	case st.Terminal:
		f.state = StateCompleted
		f.question = nil
	case st.AlreadyScanned:
		f.state = StateQuestion
		f.question = question
	default:
		f.state = StateLocation
		f.question = nil
	}

	f.signalLocked()
	return nil
}

// SubmitCode submits a decoded location code. On acceptance the flow moves
// to the question state; a rejection leaves it in place and the returned
// error never echoes the rejected code.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}

	tok := f.seq.Add(1)
	resp, err := f.api.SubmitCode(ctx, code)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if tok != f.seq.Load() {
		f.log.Debug().Uint64("token", tok).Msg("discarding stale code response")
		return nil
	}

	question := resp.Question
	f.question = &question
	f.state = StateQuestion
	f.success = ""
	f.signalLocked()
	return nil
}

// SubmitAnswer submits a puzzle answer. On a correct answer the server's
// success message is returned and a refresh is scheduled after the advance
// delay; the delay is pure pacing, the next state always comes from the
// refreshed hint. An incorrect answer returns the rejection and leaves the
// puzzle on screen.
func (f *Flow) SubmitAnswer(ctx context.Context, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyAnswer
	}

	tok := f.seq.Add(1)
	resp, err := f.api.SubmitAnswer(ctx, answer)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if tok != f.seq.Load() {
		f.log.Debug().Uint64("token", tok).Msg("discarding stale answer response")
		return resp.Msg, nil
	}

	f.success = resp.Msg
	f.scheduleAdvanceLocked()
	f.signalLocked()
	return resp.Msg, nil
}

// Stop cancels any pending advance timer. Call on screen teardown.
func (f *Flow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopAdvanceLocked()
}

// Changed signals after every applied state transition. The channel has a
// buffer of one; listeners that lag simply coalesce updates.
func (f *Flow) Changed() <-chan struct{} {
	return f.notify
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Hint() hint.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hintState
}

func (f *Flow) Question() *hunt_api_client.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.question == nil {
		return nil
	}
	q := *f.question
	return &q
}

func (f *Flow) Progress() *hunt_api_client.ProgressResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progress == nil {
		return nil
	}
	p := *f.progress
	return &p
}

// QuestionNumber is the displayed current question number.
func (f *Flow) QuestionNumber() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hint.QuestionNumber(f.progress)
}

// SuccessMessage is the last correct-answer message, cleared on refresh.
func (f *Flow) SuccessMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.success
}

func (f *Flow) scheduleAdvanceLocked() {
	f.stopAdvanceLocked()
	f.advanceTimer = f.clock.AfterFunc(f.advanceDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := f.Refresh(ctx); err != nil {
			f.log.Error().Err(err).Msg("post-answer refresh failed")
		}
	})
}

func (f *Flow) stopAdvanceLocked() {
	if f.advanceTimer != nil {
		f.advanceTimer.Stop()
		f.advanceTimer = nil
	}
}

func (f *Flow) signalLocked() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}
