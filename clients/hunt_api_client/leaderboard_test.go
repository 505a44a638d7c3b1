package hunt_api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandingsUnmarshalEnvelope(t *testing.T) {
	raw := `{
		"teams": [
			{"rank": 1, "team_name": "Foxes", "score": 12},
			{"rank": 2, "team_name": "Owls", "score": 9}
		],
		"pagination": {"currentPage": 1, "totalPages": 3, "totalTeams": 25, "hasNextPage": true, "hasPrevPage": false}
	}`

	var standings Standings
	require.NoError(t, json.Unmarshal([]byte(raw), &standings))
	require.Len(t, standings.Teams, 2)
	assert.Equal(t, "Foxes", standings.Teams[0].TeamName)
	assert.Equal(t, 3, standings.Pagination.TotalPages)
	assert.True(t, standings.Pagination.HasNext)
}

func TestStandingsUnmarshalLegacyBareArray(t *testing.T) {
	raw := `[
		{"team_name": "Foxes", "score": 12},
		{"team_name": "Owls", "score": 9}
	]`

	var standings Standings
	require.NoError(t, json.Unmarshal([]byte(raw), &standings))
	require.Len(t, standings.Teams, 2)

	// Missing ranks are synthesized from position.
	assert.Equal(t, 1, standings.Teams[0].Rank)
	assert.Equal(t, 2, standings.Teams[1].Rank)

	// A bare array normalizes to a single page.
	assert.Equal(t, 1, standings.Pagination.CurrentPage)
	assert.Equal(t, 1, standings.Pagination.TotalPages)
	assert.Equal(t, 2, standings.Pagination.TotalTeams)
	assert.False(t, standings.Pagination.HasNext)
	assert.False(t, standings.Pagination.HasPrev)
}

func leaderboardServer(t *testing.T, teamCount, pageSize int) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/leaderboard", func(w http.ResponseWriter, req *http.Request) {
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		require.Equal(t, pageSize, limit)

		totalPages := (teamCount + limit - 1) / limit
		start := (page - 1) * limit
		end := start + limit
		if end > teamCount {
			end = teamCount
		}

		var entries []LeaderboardEntry
		for i := start; i < end; i++ {
			entries = append(entries, LeaderboardEntry{
				Rank:     i + 1,
				TeamName: fmt.Sprintf("team-%02d", i+1),
				Score:    teamCount - i,
			})
		}
		writeJSON(w, http.StatusOK, Standings{
			Teams: entries,
			Pagination: Pagination{
				CurrentPage: page,
				TotalPages:  totalPages,
				TotalTeams:  teamCount,
				HasNext:     page < totalPages,
				HasPrev:     page > 1,
			},
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestLeaderboardPagesAreDisjoint(t *testing.T) {
	srv := leaderboardServer(t, 25, 10)
	client := NewHuntAPIClient(srv.URL, staticToken("tok"))

	page1, err := client.Leaderboard(context.Background(), 1, 10)
	require.NoError(t, err)
	page2, err := client.Leaderboard(context.Background(), 2, 10)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, entry := range page1.Teams {
		seen[entry.TeamName] = true
	}
	for _, entry := range page2.Teams {
		assert.False(t, seen[entry.TeamName], "team %s appears on both pages", entry.TeamName)
	}

	assert.True(t, page1.Pagination.HasNext)
	assert.False(t, page1.Pagination.HasPrev)

	page3, err := client.Leaderboard(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, page3.Pagination.CurrentPage, page3.Pagination.TotalPages)
	assert.False(t, page3.Pagination.HasNext, "HasNext must be false on the last page")
}

func TestTeamProgressEmptyIsNotAnError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/leaderboard/team/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") == "zero-score" {
			writeJSON(w, http.StatusOK, []TeamSolve{})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "boom"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewHuntAPIClient(srv.URL, staticToken("tok"))

	solves, err := client.TeamProgress(context.Background(), "zero-score")
	require.NoError(t, err)
	assert.NotNil(t, solves)
	assert.Empty(t, solves)

	_, err = client.TeamProgress(context.Background(), "broken")
	assert.Error(t, err)
}
