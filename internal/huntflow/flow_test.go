package huntflow

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeniahunt/huntclient/clients"
	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
	"github.com/xeniahunt/huntclient/internal/hint"
)

type step struct {
	hint     string
	code     string
	question hunt_api_client.Question
	answer   string
}

// fakeBackend models the server-side team state for a fixed sequence of
// steps: which step the team is on and whether the current location has been
// scanned.
type fakeBackend struct {
	mu        sync.Mutex
	steps     []step
	completed int
	scanned   bool

	// When set, the next SubmitCode signals codeEntered and then blocks on
	// codeGate, letting a test interleave a newer request around it.
	codeGate    chan struct{}
	codeEntered chan struct{}
}

func newFakeBackend(steps []step) *fakeBackend {
	return &fakeBackend{steps: steps}
}

func (b *fakeBackend) Hint(ctx context.Context) (*hunt_api_client.HintResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.completed >= len(b.steps) {
		return &hunt_api_client.HintResponse{Msg: "Hunt completed! Congratulations!"}, nil
	}
	return &hunt_api_client.HintResponse{
		Hint:           b.steps[b.completed].hint,
		AlreadyScanned: b.scanned,
	}, nil
}

func (b *fakeBackend) Question(ctx context.Context) (*hunt_api_client.QuestionResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.scanned {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Msg: "Scan the location first"}
	}
	return &hunt_api_client.QuestionResponse{Question: b.steps[b.completed].question}, nil
}

func (b *fakeBackend) Progress(ctx context.Context) (*hunt_api_client.ProgressResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &hunt_api_client.ProgressResponse{Completed: b.completed, Total: len(b.steps)}, nil
}

func (b *fakeBackend) SubmitCode(ctx context.Context, code string) (*hunt_api_client.SubmitCodeResponse, error) {
	b.mu.Lock()
	gate, entered := b.codeGate, b.codeEntered
	b.codeGate, b.codeEntered = nil, nil
	b.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.completed >= len(b.steps) || code != b.steps[b.completed].code {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Msg: "Invalid location code"}
	}
	already := b.scanned
	b.scanned = true
	return &hunt_api_client.SubmitCodeResponse{
		Question:       b.steps[b.completed].question,
		AlreadyScanned: already,
	}, nil
}

func (b *fakeBackend) SubmitAnswer(ctx context.Context, answer string) (*hunt_api_client.AnswerResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.scanned {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Msg: "Scan the location first"}
	}
	if answer != b.steps[b.completed].answer {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Msg: "Incorrect answer. Try again!"}
	}
	b.completed++
	b.scanned = false
	return &hunt_api_client.AnswerResponse{Msg: "Correct! Get ready for the next location."}, nil
}

func sixteenSteps() []step {
	steps := make([]step, 16)
	for i := range steps {
		steps[i] = step{
			hint:     fmt.Sprintf("hint for location %d", i+1),
			code:     fmt.Sprintf("LOC-%02d", i+1),
			question: hunt_api_client.Question{ID: i + 1, Text: fmt.Sprintf("puzzle %d", i+1)},
			answer:   "42",
		}
	}
	return steps
}

func newTestFlow(backend *fakeBackend, clock clockwork.Clock) *Flow {
	engine := hint.NewEngine(backend, zerolog.Nop())
	return New(backend, engine, clock, 2*time.Second, zerolog.Nop())
}

func TestFlowWalkthrough(t *testing.T) {
	backend := newFakeBackend(sixteenSteps())
	backend.completed = 6 // Foxes have solved six puzzles already.
	clock := clockwork.NewFakeClock()
	flow := newTestFlow(backend, clock)
	defer flow.Stop()

	ctx := context.Background()
	require.NoError(t, flow.Refresh(ctx))
	assert.Equal(t, StateLocation, flow.State())
	assert.Equal(t, "hint for location 7", flow.Hint().Hint)
	assert.Equal(t, 7, flow.QuestionNumber())

	// A bad code is rejected and the flow stays put.
	err := flow.SubmitCode(ctx, "LOC-99")
	require.Error(t, err)
	var apiErr *clients.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid location code", apiErr.Msg)
	assert.Equal(t, StateLocation, flow.State())

	// The right code reveals puzzle 7.
	require.NoError(t, flow.SubmitCode(ctx, "LOC-07"))
	assert.Equal(t, StateQuestion, flow.State())
	require.NotNil(t, flow.Question())
	assert.Equal(t, 7, flow.Question().ID)

	// A wrong answer keeps the puzzle on screen.
	_, err = flow.SubmitAnswer(ctx, "wrong")
	require.Error(t, err)
	assert.Equal(t, StateQuestion, flow.State())

	// The correct answer returns the success message and, after the pacing
	// delay, the refreshed hint is for question 8.
	msg, err := flow.SubmitAnswer(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Correct! Get ready for the next location.", msg)
	assert.Equal(t, msg, flow.SuccessMessage())

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool {
		return flow.State() == StateLocation && flow.Hint().Hint == "hint for location 8"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 8, flow.QuestionNumber())
	assert.Empty(t, flow.SuccessMessage())
}

func TestFlowReloadMidQuestion(t *testing.T) {
	backend := newFakeBackend(sixteenSteps())
	backend.completed = 2
	backend.scanned = true
	flow := newTestFlow(backend, clockwork.NewFakeClock())
	defer flow.Stop()

	// A fresh flow over an already-scanned location lands directly on the
	// puzzle, no re-scan required.
	require.NoError(t, flow.Refresh(context.Background()))
	assert.Equal(t, StateQuestion, flow.State())
	require.NotNil(t, flow.Question())
	assert.Equal(t, 3, flow.Question().ID)
}

func TestFlowCompletion(t *testing.T) {
	backend := newFakeBackend(sixteenSteps())
	backend.completed = len(backend.steps)
	flow := newTestFlow(backend, clockwork.NewFakeClock())
	defer flow.Stop()

	require.NoError(t, flow.Refresh(context.Background()))
	assert.Equal(t, StateCompleted, flow.State())
	assert.Contains(t, flow.Hint().Message, "Hunt completed")
	assert.Nil(t, flow.Question())
}

func TestFlowEmptyInputValidation(t *testing.T) {
	backend := newFakeBackend(sixteenSteps())
	flow := newTestFlow(backend, clockwork.NewFakeClock())
	defer flow.Stop()

	require.ErrorIs(t, flow.SubmitCode(context.Background(), "   "), ErrEmptyCode)
	_, err := flow.SubmitAnswer(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestFlowDiscardsOvertakenResponse(t *testing.T) {
	backend := newFakeBackend(sixteenSteps())
	gate := make(chan struct{})
	entered := make(chan struct{})
	backend.codeGate = gate
	backend.codeEntered = entered
	flow := newTestFlow(backend, clockwork.NewFakeClock())
	defer flow.Stop()

	ctx := context.Background()

	// A code submission stalls in flight while a newer refresh completes.
	done := make(chan error, 1)
	go func() {
		done <- flow.SubmitCode(ctx, "LOC-01")
	}()
	<-entered

	require.NoError(t, flow.Refresh(ctx))

	close(gate)
	require.NoError(t, <-done)

	// The stale response must not flip the state the refresh settled on.
	assert.Equal(t, StateLocation, flow.State())
}
