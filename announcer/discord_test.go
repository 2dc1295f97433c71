package announcer

import (
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-ops/models"
)

func TestResultsEmbed(t *testing.T) {
	match := &models.Match{
		ID:          "m1",
		MatchNumber: 4,
		GameName:    "PUBG Mobile",
		MapName:     "Erangel",
		DateTime:    time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		Results: models.MatchResults{
			{TeamID: "b", Kills: 15, PlacementPoints: 10, TotalPoints: 25, Rank: 2},
			{TeamID: "a", Kills: 10, PlacementPoints: 20, TotalPoints: 30, Rank: 1},
			{TeamID: "x", Kills: 1, TotalPoints: 1, Rank: 3},
		},
	}

	embed := ResultsEmbed(match, map[string]string{"a": "Alpha", "b": "Bravo"})

	if embed.Title != "Match #4 results - Erangel" {
		t.Fatalf("title = %q", embed.Title)
	}
	lines := strings.Split(embed.Description, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), embed.Description)
	}
	if !strings.Contains(lines[0], "Alpha - 30 pts") || !strings.Contains(lines[1], "Bravo - 25 pts") {
		t.Fatalf("rows not ordered by rank: %q", embed.Description)
	}
	if !strings.Contains(lines[2], "Unknown team") {
		t.Fatalf("missing name fallback: %q", lines[2])
	}
	if embed.Footer == nil || embed.Footer.Text != "PUBG Mobile" {
		t.Fatalf("footer = %+v", embed.Footer)
	}
	if match.Results[0].TeamID != "b" {
		t.Fatal("embed reordered the match results")
	}
}

func TestResultsEmbedTruncates(t *testing.T) {
	match := &models.Match{MatchNumber: 1}
	for i := 0; i < maxRows+5; i++ {
		match.Results = append(match.Results, models.MatchResult{TeamID: "t", Rank: i + 1})
	}

	embed := ResultsEmbed(match, nil)
	lines := strings.Split(embed.Description, "\n")
	if len(lines) != maxRows+1 {
		t.Fatalf("got %d lines, want %d", len(lines), maxRows+1)
	}
	if !strings.HasPrefix(lines[maxRows], "... and 5 more") {
		t.Fatalf("last line = %q", lines[maxRows])
	}
}

func TestNewDiscordRequiresConfig(t *testing.T) {
	if _, err := NewDiscord("", "123"); err == nil {
		t.Fatal("expected error without token")
	}
	if _, err := NewDiscord("token", ""); err == nil {
		t.Fatal("expected error without channel")
	}
}
