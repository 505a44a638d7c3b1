package hunt_api_client

import (
	"context"
	"fmt"
	"time"
)

// PhaseStatusResponse reports whether a time-gated phase has started or
// ended. The location hint and question image fields are only populated on
// bonus-round statuses.
type PhaseStatusResponse struct {
	IsStarted     bool      `json:"isStarted"`
	IsEnded       bool      `json:"isEnded"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	LocationHint  string    `json:"location_hint,omitempty"`
	QuestionImage string    `json:"question_image,omitempty"`
}

// HintResponse carries the current location hint. When the hunt is complete
// the server sends a terminal message in Msg instead of a hint.
type HintResponse struct {
	Hint           string `json:"hint"`
	AlreadyScanned bool   `json:"alreadyScanned"`
	Msg            string `json:"msg,omitempty"`
}

// Question is the puzzle content for the team's current step. Exactly one of
// Text, Image or Link is expected to be populated depending on puzzle type.
type Question struct {
	ID    int    `json:"id"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
	Link  string `json:"link,omitempty"`
}

type QuestionResponse struct {
	Question Question `json:"question"`
}

type SubmitCodeResponse struct {
	Question       Question `json:"question"`
	AlreadyScanned bool     `json:"alreadyScanned"`
}

type AnswerResponse struct {
	Msg string `json:"msg"`
}

type ProgressResponse struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// HuntStatus fetches the main hunt's phase status.
func (c *HuntAPIClient) HuntStatus(ctx context.Context) (*PhaseStatusResponse, error) {
	var resp PhaseStatusResponse
	if err := c.GetJSON(ctx, HuntStatusEndpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to get hunt status: %w", err)
	}
	return &resp, nil
}

// Hint fetches the current location hint for the team's assigned sequence.
func (c *HuntAPIClient) Hint(ctx context.Context) (*HintResponse, error) {
	var resp HintResponse
	if err := c.GetJSON(ctx, HintEndpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Question fetches the puzzle content for the question the team is currently
// on. Only meaningful once the location code has been accepted.
func (c *HuntAPIClient) Question(ctx context.Context) (*QuestionResponse, error) {
	var resp QuestionResponse
	if err := c.GetJSON(ctx, QuestionEndpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &resp, nil
}

// SubmitCode submits a decoded QR location code. The server rejects invalid
// codes with a 4xx; resubmitting an already accepted code is a safe no-op.
func (c *HuntAPIClient) SubmitCode(ctx context.Context, code string) (*SubmitCodeResponse, error) {
	var resp SubmitCodeResponse
	body := struct {
		Code string `json:"code"`
	}{Code: code}
	if err := c.PostJSON(ctx, CodeEndpoint, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitAnswer submits a puzzle answer. Incorrect answers come back as 4xx.
func (c *HuntAPIClient) SubmitAnswer(ctx context.Context, answer string) (*AnswerResponse, error) {
	var resp AnswerResponse
	body := struct {
		Answer string `json:"answer"`
	}{Answer: answer}
	if err := c.PostJSON(ctx, AnswerEndpoint, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Progress fetches the team's completed/total counters.
func (c *HuntAPIClient) Progress(ctx context.Context) (*ProgressResponse, error) {
	var resp ProgressResponse
	if err := c.GetJSON(ctx, HuntProgressEndpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &resp, nil
}

// SetAvatar updates the team's avatar seed.
func (c *HuntAPIClient) SetAvatar(ctx context.Context, avatarSeed string) error {
	body := struct {
		AvatarSeed string `json:"avatarSeed"`
	}{AvatarSeed: avatarSeed}
	if err := c.PutJSON(ctx, AvatarEndpoint, body, nil); err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}
	return nil
}
