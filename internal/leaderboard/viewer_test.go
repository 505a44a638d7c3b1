package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
)

type fakeLeaderboardAPI struct {
	standings *hunt_api_client.Standings
	pages     map[int]*hunt_api_client.Standings
	err       error
	solves    map[string][]hunt_api_client.TeamSolve
}

func (f *fakeLeaderboardAPI) Leaderboard(ctx context.Context, page, limit int) (*hunt_api_client.Standings, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.pages != nil {
		return f.pages[page], nil
	}
	return f.standings, nil
}

func (f *fakeLeaderboardAPI) TeamProgress(ctx context.Context, teamID string) ([]hunt_api_client.TeamSolve, error) {
	solves, ok := f.solves[teamID]
	if !ok {
		return nil, errors.New("unknown team")
	}
	return solves, nil
}

func standingsFixture() *hunt_api_client.Standings {
	return &hunt_api_client.Standings{
		Teams: []hunt_api_client.LeaderboardEntry{
			{Rank: 1, TeamName: "Owls", Score: 16},
			{Rank: 2, TeamName: "Foxes", Score: 12},
			{Rank: 3, TeamName: "Bears", Score: 9},
		},
		Pagination: hunt_api_client.Pagination{CurrentPage: 1, TotalPages: 1, TotalTeams: 3},
	}
}

func TestRankingsWithheldUntilHuntEnds(t *testing.T) {
	api := &fakeLeaderboardAPI{standings: standingsFixture()}
	viewer := NewViewer(api, 16, zerolog.Nop())

	view, err := viewer.FetchPage(context.Background(), 1, 10, false, "Foxes")
	require.NoError(t, err)

	assert.False(t, view.Revealed)
	assert.Empty(t, view.Entries, "ranked list must stay hidden mid-hunt")

	// The viewer's own rank is still surfaced.
	require.NotNil(t, view.Own)
	assert.Equal(t, 2, view.Own.Rank)
	assert.Equal(t, "Foxes", view.Own.TeamName)
}

func TestRankingsRevealedAfterHuntEnds(t *testing.T) {
	api := &fakeLeaderboardAPI{standings: standingsFixture()}
	viewer := NewViewer(api, 16, zerolog.Nop())

	view, err := viewer.FetchPage(context.Background(), 1, 10, true, "Foxes")
	require.NoError(t, err)

	assert.True(t, view.Revealed)
	require.Len(t, view.Entries, 3)
	assert.Equal(t, "Owls", view.Entries[0].TeamName)
}

func TestOwnEntryAbsentFromPage(t *testing.T) {
	api := &fakeLeaderboardAPI{standings: standingsFixture()}
	viewer := NewViewer(api, 16, zerolog.Nop())

	view, err := viewer.FetchPage(context.Background(), 1, 10, false, "Wolves")
	require.NoError(t, err)
	assert.Nil(t, view.Own)
}

func TestOwnEntryFoundBeyondFetchedPage(t *testing.T) {
	pages := map[int]*hunt_api_client.Standings{
		1: {
			Teams: []hunt_api_client.LeaderboardEntry{
				{Rank: 1, TeamName: "Owls", Score: 16},
				{Rank: 2, TeamName: "Bears", Score: 14},
			},
			Pagination: hunt_api_client.Pagination{CurrentPage: 1, TotalPages: 2, TotalTeams: 4, HasNext: true},
		},
		2: {
			Teams: []hunt_api_client.LeaderboardEntry{
				{Rank: 3, TeamName: "Wolves", Score: 10},
				{Rank: 4, TeamName: "Foxes", Score: 8},
			},
			Pagination: hunt_api_client.Pagination{CurrentPage: 2, TotalPages: 2, TotalTeams: 4, HasPrev: true},
		},
	}
	viewer := NewViewer(&fakeLeaderboardAPI{pages: pages}, 16, zerolog.Nop())

	// While rankings are withheld a team ranked off the first page still sees
	// its own rank.
	view, err := viewer.FetchPage(context.Background(), 1, 2, false, "Foxes")
	require.NoError(t, err)
	assert.Empty(t, view.Entries)
	require.NotNil(t, view.Own)
	assert.Equal(t, 4, view.Own.Rank)
	assert.Equal(t, 8, view.Own.Score)
}

func TestStatsCountCompletedTeams(t *testing.T) {
	api := &fakeLeaderboardAPI{standings: standingsFixture()}
	viewer := NewViewer(api, 16, zerolog.Nop())

	view, err := viewer.FetchPage(context.Background(), 1, 10, true, "")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Stats.ActiveTeams)
	assert.Equal(t, 1, view.Stats.Completed, "only a full score counts as completed")
	assert.Equal(t, 16, view.Stats.TotalPuzzles)
}

func TestTeamProgressZeroScoreVersusError(t *testing.T) {
	solved := time.Date(2026, 5, 1, 11, 15, 0, 0, time.UTC)
	api := &fakeLeaderboardAPI{solves: map[string][]hunt_api_client.TeamSolve{
		"foxes-id": {{QuestionNumber: 1, SolvedAt: solved}},
		"new-team": {},
	}}
	viewer := NewViewer(api, 16, zerolog.Nop())

	solves, err := viewer.TeamProgress(context.Background(), "foxes-id")
	require.NoError(t, err)
	require.Len(t, solves, 1)
	assert.Equal(t, 1, solves[0].QuestionNumber)

	solves, err = viewer.TeamProgress(context.Background(), "new-team")
	require.NoError(t, err)
	assert.Empty(t, solves)

	_, err = viewer.TeamProgress(context.Background(), "missing")
	assert.Error(t, err)
}

func TestFetchPagePropagatesErrors(t *testing.T) {
	api := &fakeLeaderboardAPI{err: errors.New("connection refused")}
	viewer := NewViewer(api, 16, zerolog.Nop())

	_, err := viewer.FetchPage(context.Background(), 1, 10, true, "Foxes")
	assert.Error(t, err)
}
