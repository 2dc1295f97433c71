package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/tournament-ops/models"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture()
	season := f.db.addSeason(models.SeasonStatusActive)
	other := f.db.addSeason(models.SeasonStatusCompleted)

	owls := f.db.addTeam(season, "Night Owls", true)
	f.db.addTeam(season, "Pending Squad", false)
	f.db.addTeam(other, "Old Guard", true)

	owlsTeam := f.db.teams[owls]
	owlsTeam.TotalPoints = 30
	f.db.teams[owls] = owlsTeam

	f.db.addMatch(season, 1, f.now.Add(-2*time.Hour))
	f.db.addMatch(season, 2, f.now.Add(time.Hour))
	done := f.db.addMatch(season, 3, f.now.Add(-5*time.Hour))
	m := f.db.matches[done]
	m.Status = models.MatchStatusCompleted
	f.db.matches[done] = m

	svc := NewDashboardService(memSeasons{f.db}, memTeams{f.db}, memMatches{f.db}, discardLogger()).(*dashboardService)
	svc.now = func() time.Time { return f.now }

	stats, err := svc.GetStats(context.Background(), &season)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	want := models.DashboardStats{
		ActiveSeasons:            1,
		TeamsTotal:               2,
		TeamsVerified:            1,
		TeamsPendingVerification: 1,
		MatchesTotal:             3,
		MatchesUpcoming:          1,
		MatchesLive:              1,
		MatchesCompleted:         1,
	}
	got := *stats
	got.SeasonID, got.LeaderTeam = nil, nil
	if got != want {
		t.Fatalf("GetStats() = %+v, want %+v", got, want)
	}
	if stats.LeaderTeam == nil || *stats.LeaderTeam != "Night Owls" {
		t.Fatalf("LeaderTeam = %v, want Night Owls", stats.LeaderTeam)
	}

	all, err := svc.GetStats(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetStats(all) error = %v", err)
	}
	if all.ActiveSeasons != 1 || all.TeamsTotal != 3 || all.LeaderTeam != nil {
		t.Fatalf("GetStats(all) = %+v", all)
	}
}

func TestDashboardStatsUnknownSeason(t *testing.T) {
	f := newFixture()
	svc := NewDashboardService(memSeasons{f.db}, memTeams{f.db}, memMatches{f.db}, discardLogger())

	for _, id := range []string{"not-a-uuid", newID()} {
		if _, err := svc.GetStats(context.Background(), &id); !errors.Is(err, ErrSeasonNotFound) {
			t.Fatalf("GetStats(%q) error = %v, want ErrSeasonNotFound", id, err)
		}
	}
}
