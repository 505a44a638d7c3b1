package bonus

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeniahunt/huntclient/clients"
	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
)

type fakeBonusAPI struct {
	mu          sync.Mutex
	status      map[int]*hunt_api_client.PhaseStatusResponse
	statusErr   error
	submissions []hunt_api_client.BonusSubmission

	scanned bool

	// When set, the next BonusStatus signals statusEntered and then blocks
	// on statusGate, letting a test interleave a newer load around it.
	statusGate    chan struct{}
	statusEntered chan struct{}
}

func (f *fakeBonusAPI) BonusStatus(ctx context.Context, roundID int) (*hunt_api_client.PhaseStatusResponse, error) {
	f.mu.Lock()
	resp, err := f.status[roundID], f.statusErr
	gate, entered := f.statusGate, f.statusEntered
	f.statusGate, f.statusEntered = nil, nil
	f.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}
	return resp, err
}

func (f *fakeBonusAPI) SubmitBonusCode(ctx context.Context, roundID int, code string) (*hunt_api_client.BonusScanResponse, error) {
	if code != "BONUS-CODE" {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Msg: "Invalid location code"}
	}
	already := f.scanned
	f.scanned = true
	return &hunt_api_client.BonusScanResponse{QuestionImage: "https://img.example/bonus.png", AlreadyScanned: already}, nil
}

func (f *fakeBonusAPI) SubmitBonusAnswer(ctx context.Context, roundID int, answer string) (*hunt_api_client.AnswerResponse, error) {
	if answer != "42" {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Msg: "Incorrect answer"}
	}
	return &hunt_api_client.AnswerResponse{Msg: "Correct! Send a runner to the stage."}, nil
}

func (f *fakeBonusAPI) SubmitBonusWinner(ctx context.Context, roundID int, leaderName, teamName string) error {
	return nil
}

func (f *fakeBonusAPI) BonusLeaderboard(ctx context.Context, roundID int) ([]hunt_api_client.BonusSubmission, error) {
	return f.submissions, nil
}

func TestLoadBeforeStartShowsCountdown(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	api := &fakeBonusAPI{status: map[int]*hunt_api_client.PhaseStatusResponse{
		1: {IsStarted: false, StartTime: start},
	}}
	flow := New(api, 1, zerolog.Nop())

	require.NoError(t, flow.Load(context.Background()))
	assert.Equal(t, StepCountdown, flow.Step())
	require.NotNil(t, flow.Status())
	assert.Equal(t, start, flow.Status().StartTime)
}

func TestLoadMidRoundReentersQuestion(t *testing.T) {
	api := &fakeBonusAPI{status: map[int]*hunt_api_client.PhaseStatusResponse{
		1: {
			IsStarted:     true,
			LocationHint:  "by the bandstand",
			QuestionImage: "https://img.example/unlocked.png",
		},
	}}
	flow := New(api, 1, zerolog.Nop())

	// A team that scanned earlier gets the puzzle back without a re-scan.
	require.NoError(t, flow.Load(context.Background()))
	assert.Equal(t, StepQuestion, flow.Step())
	assert.Equal(t, "by the bandstand", flow.LocationHint())
	assert.Equal(t, "https://img.example/unlocked.png", flow.QuestionImage())
}

func TestSubmitCodeUnlocksQuestionImage(t *testing.T) {
	api := &fakeBonusAPI{status: map[int]*hunt_api_client.PhaseStatusResponse{
		1: {IsStarted: true, LocationHint: "by the bandstand"},
	}}
	flow := New(api, 1, zerolog.Nop())
	require.NoError(t, flow.Load(context.Background()))
	assert.Empty(t, flow.QuestionImage())

	require.Error(t, flow.SubmitCode(context.Background(), "WRONG"))
	assert.Empty(t, flow.QuestionImage())

	require.NoError(t, flow.SubmitCode(context.Background(), "BONUS-CODE"))
	assert.Equal(t, "https://img.example/bonus.png", flow.QuestionImage())

	// Resubmitting the accepted code is a no-op.
	require.NoError(t, flow.SubmitCode(context.Background(), "BONUS-CODE"))
	assert.Equal(t, "https://img.example/bonus.png", flow.QuestionImage())

	msg, err := flow.SubmitAnswer(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Correct! Send a runner to the stage.", msg)
}

func TestLoadEndedOrdersWinnersBySubmissionTime(t *testing.T) {
	base := time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)
	api := &fakeBonusAPI{
		status: map[int]*hunt_api_client.PhaseStatusResponse{
			2: {IsStarted: true, IsEnded: true},
		},
		submissions: []hunt_api_client.BonusSubmission{
			{LeaderName: "Casey", TeamName: "Owls", SubmittedAt: base.Add(2 * time.Minute)},
			{LeaderName: "Riley", TeamName: "Foxes", SubmittedAt: base},
			{LeaderName: "Sam", TeamName: "Bears", SubmittedAt: base.Add(time.Minute)},
		},
	}
	flow := New(api, 2, zerolog.Nop())

	require.NoError(t, flow.Load(context.Background()))
	assert.Equal(t, StepLeaderboard, flow.Step())

	subs := flow.Submissions()
	require.Len(t, subs, 3)
	assert.Equal(t, "Foxes", subs[0].TeamName)
	assert.Equal(t, "Bears", subs[1].TeamName)
	assert.Equal(t, "Owls", subs[2].TeamName)
}

func TestLoadDiscardsOvertakenStatus(t *testing.T) {
	api := &fakeBonusAPI{status: map[int]*hunt_api_client.PhaseStatusResponse{
		1: {IsStarted: true, LocationHint: "by the bandstand"},
	}}
	gate := make(chan struct{})
	entered := make(chan struct{})
	api.statusGate = gate
	api.statusEntered = entered
	flow := New(api, 1, zerolog.Nop())

	ctx := context.Background()

	// A mid-round status stalls in flight while the round ends and a newer
	// load lands on the winners list.
	done := make(chan error, 1)
	go func() {
		done <- flow.Load(ctx)
	}()
	<-entered

	api.mu.Lock()
	api.status[1] = &hunt_api_client.PhaseStatusResponse{IsStarted: true, IsEnded: true}
	api.mu.Unlock()
	require.NoError(t, flow.Load(ctx))
	require.Equal(t, StepLeaderboard, flow.Step())

	close(gate)
	require.NoError(t, <-done)

	// The stale pre-end status must not re-expose the puzzle.
	assert.Equal(t, StepLeaderboard, flow.Step())
}

func TestLoadFailureKeepsRoundGated(t *testing.T) {
	api := &fakeBonusAPI{statusErr: errors.New("connection refused")}
	flow := New(api, 1, zerolog.Nop())

	require.Error(t, flow.Load(context.Background()))
	assert.Equal(t, StepCountdown, flow.Step())
}

func TestEmptyInputValidation(t *testing.T) {
	flow := New(&fakeBonusAPI{}, 1, zerolog.Nop())

	require.ErrorIs(t, flow.SubmitCode(context.Background(), " "), ErrEmptyCode)
	_, err := flow.SubmitAnswer(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyAnswer)
	require.ErrorIs(t, flow.SubmitWinner(context.Background(), "Riley", ""), ErrEmptyWinner)
	require.ErrorIs(t, flow.SubmitWinner(context.Background(), "", "Foxes"), ErrEmptyWinner)
	require.NoError(t, flow.SubmitWinner(context.Background(), "Riley", "Foxes"))
}
