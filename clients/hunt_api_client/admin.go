package hunt_api_client

import (
	"context"
	"fmt"
	"time"

	"github.com/xeniahunt/huntclient/clients"
)

// AdminClient is the admin-console surface of the backend. It authenticates
// with its own bearer token, independent of any player session.
type AdminClient struct {
	*clients.BaseClient
}

func NewAdminClient(baseURL string, tokens clients.TokenSource) *AdminClient {
	return &AdminClient{
		BaseClient: clients.NewBaseClient(baseURL, tokens),
	}
}

// AdminQuestion is the full question/location record, including the answer
// and location code. Only visible through the admin surface.
type AdminQuestion struct {
	ID       int    `json:"id,omitempty"`
	Hint     string `json:"hint"`
	Code     string `json:"code"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type TeamSummary struct {
	ID        string `json:"id"`
	TeamName  string `json:"team_name"`
	Score     int    `json:"score"`
	Completed int    `json:"completed"`
}

type PhaseTiming struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type TimingsConfig struct {
	MainHunt PhaseTiming `json:"mainHunt"`
	Bonus1   PhaseTiming `json:"bonus1"`
	Bonus2   PhaseTiming `json:"bonus2"`
}

// Login exchanges admin credentials for an admin bearer token.
func (c *AdminClient) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}
	if err := c.PostJSON(ctx, AdminLoginEndpoint, body, &resp); err != nil {
		return nil, fmt.Errorf("admin login failed: %w", err)
	}
	return &resp, nil
}

func (c *AdminClient) Questions(ctx context.Context) ([]AdminQuestion, error) {
	var questions []AdminQuestion
	if err := c.GetJSON(ctx, AdminQuestionsEndpoint, &questions); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (c *AdminClient) AddQuestion(ctx context.Context, q AdminQuestion) error {
	q.ID = 0
	if err := c.PostJSON(ctx, AdminQuestionsEndpoint, q, nil); err != nil {
		return fmt.Errorf("failed to add question: %w", err)
	}
	return nil
}

func (c *AdminClient) UpdateQuestion(ctx context.Context, id int, q AdminQuestion) error {
	q.ID = 0
	endpoint := fmt.Sprintf("%s/%d", AdminQuestionsEndpoint, id)
	if err := c.PutJSON(ctx, endpoint, q, nil); err != nil {
		return fmt.Errorf("failed to update question %d: %w", id, err)
	}
	return nil
}

func (c *AdminClient) DeleteQuestion(ctx context.Context, id int) error {
	if err := c.BaseClient.Delete(ctx, fmt.Sprintf("%s/%d", AdminQuestionsEndpoint, id)); err != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, err)
	}
	return nil
}

func (c *AdminClient) Teams(ctx context.Context) ([]TeamSummary, error) {
	var teams []TeamSummary
	if err := c.GetJSON(ctx, AdminTeamsEndpoint, &teams); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (c *AdminClient) DeleteTeam(ctx context.Context, id string) error {
	if err := c.BaseClient.Delete(ctx, fmt.Sprintf("%s/%s", AdminTeamsEndpoint, id)); err != nil {
		return fmt.Errorf("failed to delete team %s: %w", id, err)
	}
	return nil
}

// ResetTeamProgress clears a team's progress back to the first step of its
// sequence.
func (c *AdminClient) ResetTeamProgress(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/%s/reset", AdminTeamsEndpoint, id)
	if err := c.PostJSON(ctx, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to reset team %s: %w", id, err)
	}
	return nil
}

// RegenerateSequences reassigns every team's location/question ordering.
func (c *AdminClient) RegenerateSequences(ctx context.Context) error {
	if err := c.PostJSON(ctx, AdminSequenceEndpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to regenerate sequences: %w", err)
	}
	return nil
}

func (c *AdminClient) Timings(ctx context.Context) (*TimingsConfig, error) {
	var timings TimingsConfig
	if err := c.GetJSON(ctx, AdminTimingsEndpoint, &timings); err != nil {
		return nil, fmt.Errorf("failed to get timings: %w", err)
	}
	return &timings, nil
}

func (c *AdminClient) SetTimings(ctx context.Context, timings TimingsConfig) error {
	if err := c.PutJSON(ctx, AdminTimingsEndpoint, timings, nil); err != nil {
		return fmt.Errorf("failed to set timings: %w", err)
	}
	return nil
}

// EndBonusRound closes a bonus round, freezing its winners list.
func (c *AdminClient) EndBonusRound(ctx context.Context, roundID int) error {
	if err := c.PostJSON(ctx, fmt.Sprintf(BonusEndEndpoint, roundID), nil, nil); err != nil {
		return fmt.Errorf("failed to end bonus round %d: %w", roundID, err)
	}
	return nil
}
