package leaderboard

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xeniahunt/huntclient/clients/hunt_api_client"
)

// API is what the viewer needs from the backend.
type API interface {
	Leaderboard(ctx context.Context, page, limit int) (*hunt_api_client.Standings, error)
	TeamProgress(ctx context.Context, teamID string) ([]hunt_api_client.TeamSolve, error)
}

// View is one leaderboard page after the reveal-at-end rule is applied.
// While the main hunt is still running the ranked list is withheld and only
// the viewer's own entry is exposed, so mid-event standings cannot leak.
type View struct {
	Revealed   bool
	Own        *hunt_api_client.LeaderboardEntry
	Entries    []hunt_api_client.LeaderboardEntry
	Pagination hunt_api_client.Pagination
	Stats      Stats
}

// Stats are the header counters derived from the visible page.
type Stats struct {
	ActiveTeams  int
	Completed    int
	TotalPuzzles int
}

// Viewer fetches and shapes leaderboard data for display.
type Viewer struct {
	api          API
	totalPuzzles int
	log          zerolog.Logger
}

func NewViewer(api API, totalPuzzles int, log zerolog.Logger) *Viewer {
	return &Viewer{api: api, totalPuzzles: totalPuzzles, log: log}
}

// FetchPage fetches one standings page and applies the reveal rule. ownTeam
// is the viewer's team name, used to surface their own rank while the full
// list is withheld.
func (v *Viewer) FetchPage(ctx context.Context, page, pageSize int, ended bool, ownTeam string) (*View, error) {
	standings, err := v.api.Leaderboard(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	view := &View{
		Revealed:   ended,
		Pagination: standings.Pagination,
		Stats:      v.statsFor(standings.Teams),
	}
	view.Own = findEntry(standings.Teams, ownTeam)
	if !ended && view.Own == nil && ownTeam != "" {
		// The own entry may rank beyond the fetched page; while the full list
		// is withheld it is the only thing the viewer gets to see, so scan the
		// remaining pages for it. A failed scan degrades to no own entry.
		own, err := v.scanForOwn(ctx, page, pageSize, standings.Pagination.TotalPages, ownTeam)
		if err != nil {
			v.log.Warn().Err(err).Str("team", ownTeam).Msg("own-rank page scan failed")
		} else {
			view.Own = own
		}
	}
	if ended {
		view.Entries = standings.Teams
	}
	return view, nil
}

func (v *Viewer) scanForOwn(ctx context.Context, skipPage, pageSize, totalPages int, ownTeam string) (*hunt_api_client.LeaderboardEntry, error) {
	for p := 1; p <= totalPages; p++ {
		if p == skipPage {
			continue
		}
		standings, err := v.api.Leaderboard(ctx, p, pageSize)
		if err != nil {
			return nil, err
		}
		if own := findEntry(standings.Teams, ownTeam); own != nil {
			return own, nil
		}
	}
	return nil, nil
}

func findEntry(entries []hunt_api_client.LeaderboardEntry, teamName string) *hunt_api_client.LeaderboardEntry {
	if teamName == "" {
		return nil
	}
	for i := range entries {
		if entries[i].TeamName == teamName {
			entry := entries[i]
			return &entry
		}
	}
	return nil
}

// TeamProgress fetches a team's ordered solve history. The empty non-nil
// slice on success is deliberate: a zero-score team has no history, which is
// not the same as a failed fetch.
func (v *Viewer) TeamProgress(ctx context.Context, teamID string) ([]hunt_api_client.TeamSolve, error) {
	solves, err := v.api.TeamProgress(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return solves, nil
}

func (v *Viewer) statsFor(entries []hunt_api_client.LeaderboardEntry) Stats {
	stats := Stats{
		ActiveTeams:  len(entries),
		TotalPuzzles: v.totalPuzzles,
	}
	for _, entry := range entries {
		if v.totalPuzzles > 0 && entry.Score >= v.totalPuzzles {
			stats.Completed++
		}
	}
	return stats
}
