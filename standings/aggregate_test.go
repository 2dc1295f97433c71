package standings

import (
	"reflect"
	"testing"
	"time"

	"github.com/Dosada05/tournament-ops/models"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func finished(id string, at time.Time, results ...models.MatchResult) *models.Match {
	return &models.Match{
		ID:       id,
		DateTime: at,
		Status:   models.MatchStatusCompleted,
		Results:  RankResults(results),
	}
}

func res(team string, kills, placement int) models.MatchResult {
	return models.MatchResult{TeamID: team, Kills: kills, PlacementPoints: placement, AlivePlayers: 4}
}

func teams(ids ...string) []*models.Team {
	out := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		out = append(out, &models.Team{ID: id, TeamName: id})
	}
	return out
}

func byTeam(ss []models.TeamStanding) map[string]models.TeamStanding {
	out := make(map[string]models.TeamStanding, len(ss))
	for _, s := range ss {
		out[s.TeamID] = s
	}
	return out
}

func TestComputeSumsQualifyingMatches(t *testing.T) {
	matches := []*models.Match{
		finished("m1", now.Add(-3*time.Hour), res("a", 10, 20), res("b", 15, 10)),
		finished("m2", now.Add(-2*time.Hour), res("a", 2, 4), res("b", 7, 12)),
	}

	got := byTeam(Compute(teams("a", "b"), matches, now))

	if a := got["a"]; a.TotalKills != 12 || a.PlacementPoints != 24 || a.TotalPoints != 36 || a.Wins != 1 {
		t.Errorf("team a = %+v", a)
	}
	if b := got["b"]; b.TotalKills != 22 || b.PlacementPoints != 22 || b.TotalPoints != 44 || b.Wins != 1 {
		t.Errorf("team b = %+v", b)
	}
}

func TestComputeWinsCountsFirstPlaces(t *testing.T) {
	matches := []*models.Match{
		finished("m1", now.Add(-3*time.Hour), res("a", 10, 20), res("b", 1, 1)),
		finished("m2", now.Add(-2*time.Hour), res("a", 9, 20), res("b", 1, 1)),
		finished("m3", now.Add(-1*time.Hour), res("a", 0, 0), res("b", 10, 10)),
	}

	got := byTeam(Compute(teams("a", "b"), matches, now))

	if got["a"].Wins != 2 {
		t.Errorf("team a wins = %d, want 2", got["a"].Wins)
	}
	if got["b"].Wins != 1 {
		t.Errorf("team b wins = %d, want 1", got["b"].Wins)
	}
}

func TestComputeLiveAndUpcomingMatches(t *testing.T) {
	live := &models.Match{
		ID:       "live",
		DateTime: now.Add(-10 * time.Minute),
		Status:   models.MatchStatusUpcoming,
		Results:  models.MatchResults{{TeamID: "a", Kills: 5, PlacementPoints: 3, AlivePlayers: 2}},
	}
	future := &models.Match{
		ID:       "future",
		DateTime: now.Add(time.Hour),
		Status:   models.MatchStatusUpcoming,
		Results:  models.MatchResults{{TeamID: "a", Kills: 50, PlacementPoints: 50, Rank: 1, AlivePlayers: 4}},
	}

	got := byTeam(Compute(teams("a"), []*models.Match{live, future}, now))["a"]

	if got.TotalKills != 5 || got.PlacementPoints != 3 {
		t.Errorf("live match should count and future should not, got %+v", got)
	}
	if got.Wins != 0 {
		t.Errorf("unfinished matches must not produce wins, got %d", got.Wins)
	}
	if got.AlivePlayers != 2 {
		t.Errorf("alive players = %d, want 2 from the live match", got.AlivePlayers)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	ts := teams("a", "b", "c")
	matches := []*models.Match{
		finished("m1", now.Add(-3*time.Hour), res("a", 10, 20), res("b", 15, 10), res("c", 5, 10)),
		finished("m2", now.Add(-2*time.Hour), res("c", 8, 6), res("b", 8, 6)),
	}

	first := Compute(ts, matches, now)
	second := Compute(ts, matches, now)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recompute differs:\n%+v\n%+v", first, second)
	}
}

func TestComputePointsInvariant(t *testing.T) {
	ts := teams("a", "b")
	ts[1].Adjustment = models.StatAdjustment{Kills: 3, PlacementPoints: -2}
	matches := []*models.Match{
		finished("m1", now.Add(-time.Hour), res("a", 7, 11), res("b", 4, 9)),
	}

	for _, s := range Compute(ts, matches, now) {
		if s.TotalPoints != s.TotalKills+s.PlacementPoints {
			t.Errorf("team %s: total %d != kills %d + placement %d", s.TeamID, s.TotalPoints, s.TotalKills, s.PlacementPoints)
		}
	}
}

func TestComputeDeletionIsRetroactive(t *testing.T) {
	ts := teams("a")
	m1 := finished("m1", now.Add(-3*time.Hour), res("a", 6, 10))
	m2 := finished("m2", now.Add(-2*time.Hour), res("a", 9, 10))

	before := Compute(ts, []*models.Match{m1, m2}, now)[0]
	after := Compute(ts, []*models.Match{m1}, now)[0]

	if before.TotalKills-after.TotalKills != 9 {
		t.Fatalf("removing a 9-kill match changed kills by %d", before.TotalKills-after.TotalKills)
	}
}

func TestComputeIgnoresForeignTeams(t *testing.T) {
	matches := []*models.Match{
		finished("m1", now.Add(-time.Hour), res("a", 1, 1), res("other-season", 30, 30)),
	}
	got := Compute(teams("a"), matches, now)

	if len(got) != 1 || got[0].TeamID != "a" {
		t.Fatalf("unexpected standings %+v", got)
	}
}

func TestAdjustmentSurvivesRecompute(t *testing.T) {
	matches := []*models.Match{
		finished("m1", now.Add(-time.Hour), res("a", 10, 5)),
	}
	derived := MatchTotals([]string{"a"}, matches, now)["a"]

	ts := teams("a")
	ts[0].Adjustment = AdjustmentFor(derived, 40, 25, 3)

	got := Compute(ts, matches, now)[0]
	if got.TotalKills != 40 || got.PlacementPoints != 25 || got.Wins != 3 || got.TotalPoints != 65 {
		t.Fatalf("manual values not reproduced: %+v", got)
	}
}

func TestComputeWithoutMatches(t *testing.T) {
	got := Compute(teams("a"), nil, now)[0]
	if got.TotalKills != 0 || got.TotalPoints != 0 || got.Wins != 0 || got.AlivePlayers != models.SquadSize {
		t.Fatalf("fresh team standing = %+v", got)
	}
}

func TestComputeDeletionIsRetroactiveWithNegativeAdjustment(t *testing.T) {
	m1 := finished("m1", now.Add(-2*time.Hour), res("a", 10, 0))
	m2 := finished("m2", now.Add(-time.Hour), res("a", 5, 0))

	ts := teams("a")
	ts[0].Adjustment = models.StatAdjustment{Kills: -10}

	before := Compute(ts, []*models.Match{m1, m2}, now)[0]
	after := Compute(ts, []*models.Match{m2}, now)[0]

	if before.TotalKills != 5 {
		t.Fatalf("kills before delete = %d, want 5", before.TotalKills)
	}
	if delta := before.TotalKills - after.TotalKills; delta != 10 {
		t.Fatalf("removing a 10-kill match changed kills by %d", delta)
	}
	if after.TotalPoints != after.TotalKills+after.PlacementPoints {
		t.Fatalf("points invariant broken: %+v", after)
	}
}
