package hint

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xeniahunt/huntclient/clients"
	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
)

// completionPhrase is the sentinel the server embeds in its message when a
// team has finished the hunt. The server is the sole writer of that message,
// which is the only reason matching on content is tolerable; keep the match
// confined to isTerminalMessage.
const completionPhrase = "hunt completed"

// API is what the engine needs from the hunt backend.
type API interface {
	Hint(ctx context.Context) (*hunt_api_client.HintResponse, error)
	Question(ctx context.Context) (*hunt_api_client.QuestionResponse, error)
	Progress(ctx context.Context) (*hunt_api_client.ProgressResponse, error)
}

// State is the reconciled hint state for the team's current step. It is
// replaced wholesale on every fetch, never merged.
type State struct {
	// Terminal is set when the server reports the hunt as finished; Message
	// then carries the completion text and Hint is empty.
	Terminal       bool
	Message        string
	Hint           string
	AlreadyScanned bool
}

// Engine fetches the current hint, puzzle content and team progress.
type Engine struct {
	api API
	log zerolog.Logger
}

func NewEngine(api API, log zerolog.Logger) *Engine {
	return &Engine{api: api, log: log}
}

// FetchHint retrieves the current hint state. The terminal condition arrives
// either as a populated msg field or as a rejection whose message carries the
// completion phrase; both normalize to a terminal State, not an error.
func (e *Engine) FetchHint(ctx context.Context) (State, error) {
	resp, err := e.api.Hint(ctx)
	if err != nil {
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && isTerminalMessage(apiErr.Msg) {
			e.log.Info().Msg("hunt reported as completed")
			return State{Terminal: true, Message: apiErr.Msg}, nil
		}
		return State{}, err
	}

	if resp.Msg != "" {
		e.log.Info().Msg("hunt reported as completed")
		return State{Terminal: true, Message: resp.Msg}, nil
	}

	return State{
		Hint:           resp.Hint,
		AlreadyScanned: resp.AlreadyScanned,
	}, nil
}

// FetchProgress retrieves the team's completed/total counters.
func (e *Engine) FetchProgress(ctx context.Context) (*hunt_api_client.ProgressResponse, error) {
	return e.api.Progress(ctx)
}

// FetchQuestion retrieves the current puzzle content. Only call this when
// the hint reports AlreadyScanned, so a reload renders the puzzle without
// forcing a re-scan.
func (e *Engine) FetchQuestion(ctx context.Context) (*hunt_api_client.Question, error) {
	resp, err := e.api.Question(ctx)
	if err != nil {
		return nil, err
	}
	return &resp.Question, nil
}

// QuestionNumber is the displayed current question number, always one past
// the completed count.
func QuestionNumber(p *hunt_api_client.ProgressResponse) int {
	if p == nil {
		return 1
	}
	return p.Completed + 1
}

func isTerminalMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), completionPhrase)
}
