package standings

import (
	"cmp"
	"slices"
	"time"

	"github.com/Dosada05/tournament-ops/models"
)

// Totals is what a team earned from matches alone, before manual adjustments.
type Totals struct {
	Kills           int
	PlacementPoints int
	Wins            int
	AlivePlayers    int
}

// MatchTotals sums the qualifying matches for every team in teamIDs. Result
// entries of teams outside teamIDs are ignored. AlivePlayers comes from the
// most recent qualifying match the team took part in.
func MatchTotals(teamIDs []string, matches []*models.Match, now time.Time) map[string]Totals {
	totals := make(map[string]Totals, len(teamIDs))
	for _, id := range teamIDs {
		totals[id] = Totals{AlivePlayers: models.SquadSize}
	}

	qualifying := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m != nil && m.CountsTowardStandings(now) {
			qualifying = append(qualifying, m)
		}
	}
	slices.SortStableFunc(qualifying, func(a, b *models.Match) int {
		if c := a.DateTime.Compare(b.DateTime); c != 0 {
			return c
		}
		if c := cmp.Compare(a.MatchNumber, b.MatchNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for _, m := range qualifying {
		for _, r := range m.Results {
			t, ok := totals[r.TeamID]
			if !ok {
				continue
			}
			t.Kills += r.Kills
			t.PlacementPoints += r.PlacementPoints
			if r.Rank == 1 {
				t.Wins++
			}
			t.AlivePlayers = r.AlivePlayers
			totals[r.TeamID] = t
		}
	}
	return totals
}

// Compute returns the cumulative standings of teams, in input order, from the
// given matches plus each team's manual adjustment. TotalPoints is always
// TotalKills + PlacementPoints.
func Compute(teams []*models.Team, matches []*models.Match, now time.Time) []models.TeamStanding {
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	totals := MatchTotals(ids, matches, now)

	out := make([]models.TeamStanding, 0, len(teams))
	for _, t := range teams {
		mt := totals[t.ID]
		s := models.TeamStanding{
			TeamID:          t.ID,
			TotalKills:      mt.Kills + t.Adjustment.Kills,
			PlacementPoints: mt.PlacementPoints + t.Adjustment.PlacementPoints,
			Wins:            mt.Wins + t.Adjustment.Wins,
			AlivePlayers:    mt.AlivePlayers,
		}
		s.TotalPoints = s.TotalKills + s.PlacementPoints
		out = append(out, s)
	}
	return out
}

// AdjustmentFor returns the adjustment that makes a team's cumulative stats
// equal the wanted values given what matches already contribute.
func AdjustmentFor(derived Totals, wantKills, wantPlacement, wantWins int) models.StatAdjustment {
	return models.StatAdjustment{
		Kills:           wantKills - derived.Kills,
		PlacementPoints: wantPlacement - derived.PlacementPoints,
		Wins:            wantWins - derived.Wins,
	}
}
