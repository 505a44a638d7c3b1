package hunt_api_client

import (
	"context"
	"fmt"
	"time"
)

// BonusScanResponse is the payload returned when a bonus-round location code
// is accepted.
type BonusScanResponse struct {
	QuestionImage  string `json:"questionImage"`
	AlreadyScanned bool   `json:"alreadyScanned"`
}

// BonusSubmission records a team's winning submission for a bonus round.
// Immutable once created; the collection is append-only.
type BonusSubmission struct {
	LeaderName  string    `json:"leader_name"`
	TeamName    string    `json:"team_name"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// BonusStatus fetches the phase status of a bonus round, including the
// round's location hint and question image once it has started.
func (c *HuntAPIClient) BonusStatus(ctx context.Context, roundID int) (*PhaseStatusResponse, error) {
	var resp PhaseStatusResponse
	endpoint := fmt.Sprintf(BonusStatusEndpoint, roundID)
	if err := c.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to get bonus round %d status: %w", roundID, err)
	}
	return &resp, nil
}

// SubmitBonusCode submits a decoded QR code for a bonus-round location.
func (c *HuntAPIClient) SubmitBonusCode(ctx context.Context, roundID int, code string) (*BonusScanResponse, error) {
	var resp BonusScanResponse
	body := struct {
		Code string `json:"code"`
	}{Code: code}
	if err := c.PostJSON(ctx, fmt.Sprintf(BonusScanEndpoint, roundID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitBonusAnswer submits an answer for a bonus-round puzzle.
func (c *HuntAPIClient) SubmitBonusAnswer(ctx context.Context, roundID int, answer string) (*AnswerResponse, error) {
	var resp AnswerResponse
	body := struct {
		Answer string `json:"answer"`
	}{Answer: answer}
	if err := c.PostJSON(ctx, fmt.Sprintf(BonusAnswerEndpoint, roundID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitBonusWinner records the winning leader and team for a bonus round.
func (c *HuntAPIClient) SubmitBonusWinner(ctx context.Context, roundID int, leaderName, teamName string) error {
	body := struct {
		LeaderName string `json:"leader_name"`
		TeamName   string `json:"team_name"`
	}{LeaderName: leaderName, TeamName: teamName}
	if err := c.PostJSON(ctx, fmt.Sprintf(BonusWinnerEndpoint, roundID), body, nil); err != nil {
		return fmt.Errorf("failed to submit bonus winner: %w", err)
	}
	return nil
}

// BonusLeaderboard fetches the bonus round's submissions. Bonus rounds are
// first-correct-wins, so the list is ordered by submission time, not score.
func (c *HuntAPIClient) BonusLeaderboard(ctx context.Context, roundID int) ([]BonusSubmission, error) {
	var subs []BonusSubmission
	endpoint := fmt.Sprintf(BonusLeaderboardEndpoint, roundID)
	if err := c.GetJSON(ctx, endpoint, &subs); err != nil {
		return nil, fmt.Errorf("failed to get bonus round %d leaderboard: %w", roundID, err)
	}
	return subs, nil
}
