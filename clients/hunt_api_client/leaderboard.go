package hunt_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type LeaderboardEntry struct {
	Rank          int        `json:"rank"`
	TeamName      string     `json:"team_name"`
	Score         int        `json:"score"`
	AvatarSeed    string     `json:"avatar_seed,omitempty"`
	LastSolveTime *time.Time `json:"last_solve_time,omitempty"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalTeams  int  `json:"totalTeams"`
	HasNext     bool `json:"hasNextPage"`
	HasPrev     bool `json:"hasPrevPage"`
}

// Standings is the normalized leaderboard page. The server contract evolved
// over time: newer deployments return a paginated envelope, older ones a bare
// ranked array. UnmarshalJSON accepts both so callers only ever see the
// envelope form.
type Standings struct {
	Teams      []LeaderboardEntry `json:"teams"`
	Pagination Pagination         `json:"pagination"`
}

func (s *Standings) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []LeaderboardEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		for i := range entries {
			if entries[i].Rank == 0 {
				entries[i].Rank = i + 1
			}
		}
		s.Teams = entries
		s.Pagination = Pagination{
			CurrentPage: 1,
			TotalPages:  1,
			TotalTeams:  len(entries),
		}
		return nil
	}

	type envelope Standings
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*s = Standings(env)
	return nil
}

type TeamSolve struct {
	QuestionNumber int       `json:"question_number"`
	SolvedAt       time.Time `json:"solved_at"`
}

// Leaderboard fetches one ranked page of the main leaderboard.
func (c *HuntAPIClient) Leaderboard(ctx context.Context, page, limit int) (*Standings, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > LeaderboardPageSizeMax {
		limit = LeaderboardPageSizeDflt
	}
	endpoint := fmt.Sprintf("%s?page=%d&limit=%d", LeaderboardEndpoint, page, limit)

	var standings Standings
	if err := c.GetJSON(ctx, endpoint, &standings); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return &standings, nil
}

// TeamProgress fetches a team's ordered solve history. Teams with zero score
// have no history; the server answers with an empty list, not an error.
func (c *HuntAPIClient) TeamProgress(ctx context.Context, teamID string) ([]TeamSolve, error) {
	var solves []TeamSolve
	endpoint := fmt.Sprintf("%s/%s", TeamProgressEndpoint, teamID)
	if err := c.GetJSON(ctx, endpoint, &solves); err != nil {
		return nil, fmt.Errorf("failed to get team progress: %w", err)
	}
	if solves == nil {
		solves = []TeamSolve{}
	}
	return solves, nil
}
