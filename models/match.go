package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// MatchStatus is the persisted lifecycle state. Only two values are ever stored;
// "live" is derived from the clock by DisplayStatus.
type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

type MatchResult struct {
	TeamID          string `json:"teamId"`
	Kills           int    `json:"kills"`
	PlacementPoints int    `json:"placementPoints"`
	TotalPoints     int    `json:"totalPoints"`
	Rank            int    `json:"rank"`
	AlivePlayers    int    `json:"alivePlayers"`
}

// NewMatchResult returns the zero entry a team gets when it is added to a match.
func NewMatchResult(teamID string) MatchResult {
	return MatchResult{TeamID: teamID, AlivePlayers: SquadSize}
}

// Normalize recomputes TotalPoints from its inputs.
func (r *MatchResult) Normalize() {
	r.TotalPoints = r.Kills + r.PlacementPoints
}

// MatchResults is the results array persisted as JSONB.
type MatchResults []MatchResult

func (rs MatchResults) Value() (driver.Value, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(rs)
}

func (rs *MatchResults) Scan(src any) error {
	*rs = MatchResults{}
	return scanJSON(src, rs)
}

// IndexOf returns the position of the team's entry or -1.
func (rs MatchResults) IndexOf(teamID string) int {
	for i := range rs {
		if rs[i].TeamID == teamID {
			return i
		}
	}
	return -1
}

func (rs MatchResults) Clone() MatchResults {
	out := make(MatchResults, len(rs))
	copy(out, rs)
	return out
}

type Match struct {
	ID           string       `json:"id" db:"id"`
	SeasonID     string       `json:"seasonId" db:"season_id"`
	MatchNumber  int          `json:"matchNumber" db:"match_number"`
	GameName     string       `json:"gameName" db:"game_name"`
	MapName      string       `json:"mapName" db:"map_name"`
	RoomID       *string      `json:"roomId,omitempty" db:"room_id"`
	RoomPassword *string      `json:"password,omitempty" db:"room_password"`
	MaxPlayers   *int         `json:"maxPlayers,omitempty" db:"max_players"`
	DateTime     time.Time    `json:"dateTime" db:"date_time"`
	Status       MatchStatus  `json:"status" db:"status"`
	Results      MatchResults `json:"results" db:"results"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// DisplayStatus derives the three-way status shown to readers.
func (m *Match) DisplayStatus(now time.Time) MatchStatus {
	switch {
	case m.IsCompleted():
		return MatchStatusCompleted
	case !now.Before(m.DateTime):
		return MatchStatusLive
	default:
		return MatchStatusUpcoming
	}
}

// CountsTowardStandings reports whether the match contributes to season totals:
// finished, or started according to the clock.
func (m *Match) CountsTowardStandings(now time.Time) bool {
	return m.DisplayStatus(now) != MatchStatusUpcoming
}
