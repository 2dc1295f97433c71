// Package standings holds the scoring rules of the battle-royale format: how a
// finished lobby is ranked and how match results roll up into season totals.
// Everything here is pure; persistence lives in the services layer.
package standings

import (
	"cmp"
	"slices"

	"github.com/Dosada05/tournament-ops/models"
)

// compareResults orders entries best first: total points, then placement
// points, then kills. Entries equal on all three compare as equal.
func compareResults(a, b models.MatchResult) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.PlacementPoints, a.PlacementPoints); c != 0 {
		return c
	}
	return cmp.Compare(b.Kills, a.Kills)
}

// RankResults returns a copy of results sorted best first with Rank set to the
// 1-based position. Fully tied entries keep their input order.
func RankResults(results models.MatchResults) models.MatchResults {
	ranked := results.Clone()
	for i := range ranked {
		ranked[i].Normalize()
	}
	slices.SortStableFunc(ranked, compareResults)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// SortLeaderboard orders teams the way the leaderboard shows them. Team name
// breaks full ties so the order never depends on storage order.
func SortLeaderboard(teams []*models.Team) {
	slices.SortStableFunc(teams, func(a, b *models.Team) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PlacementPoints, a.PlacementPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalKills, a.TotalKills); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamName, b.TeamName)
	})
}
