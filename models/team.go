package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SquadSize is the number of players a team fields in a match, leader included.
const SquadSize = 4

type RosterMember struct {
	Name   string `json:"name"`
	GameID string `json:"gameId"`
}

// Roster is stored as a single JSONB document on the team row.
type Roster struct {
	Leader     RosterMember   `json:"leader"`
	Players    []RosterMember `json:"players"`
	Substitute *RosterMember  `json:"substitute,omitempty"`
}

func (r Roster) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Roster) Scan(src any) error {
	return scanJSON(src, r)
}

// StatAdjustment is a manual correction layered on top of the match-derived totals.
type StatAdjustment struct {
	Kills           int `json:"-" db:"adjust_kills"`
	PlacementPoints int `json:"-" db:"adjust_placement_points"`
	Wins            int `json:"-" db:"adjust_wins"`
}

type Team struct {
	ID       string `json:"id" db:"id"`
	SeasonID string `json:"seasonId" db:"season_id"`
	TeamName string `json:"teamName" db:"team_name"`
	Roster   Roster `json:"roster" db:"roster"`

	ContactEmail *string `json:"contactEmail,omitempty" db:"contact_email"`
	ContactPhone *string `json:"contactPhone,omitempty" db:"contact_phone"`
	DocumentKey  *string `json:"-" db:"document_key"`
	DocumentURL  *string `json:"documentUrl,omitempty" db:"-"`

	TotalKills      int `json:"totalKills" db:"total_kills"`
	PlacementPoints int `json:"placementPoints" db:"placement_points"`
	TotalPoints     int `json:"totalPoints" db:"total_points"`
	Wins            int `json:"wins" db:"wins"`
	AlivePlayers    int `json:"alivePlayers" db:"alive_players"`

	Adjustment StatAdjustment `json:"-" db:"-"`

	IsVerified bool      `json:"isVerified" db:"is_verified"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// StripPrivate clears the fields only operators may see.
func (t *Team) StripPrivate() {
	t.ContactEmail = nil
	t.ContactPhone = nil
	t.DocumentKey = nil
	t.DocumentURL = nil
}

// TeamStanding is one row of a bulk standings write.
type TeamStanding struct {
	TeamID          string `json:"teamId"`
	TotalKills      int    `json:"totalKills"`
	PlacementPoints int    `json:"placementPoints"`
	TotalPoints     int    `json:"totalPoints"`
	Wins            int    `json:"wins"`
	AlivePlayers    int    `json:"alivePlayers"`
}

var (
	ErrRosterLeaderRequired = errors.New("team leader is required")
	ErrRosterPlayerCount    = fmt.Errorf("roster must list exactly %d players besides the leader", SquadSize-1)
	ErrRosterMemberName     = errors.New("every roster member needs a name")
)

func (r Roster) Validate() error {
	if r.Leader.Name == "" {
		return ErrRosterLeaderRequired
	}
	if len(r.Players) != SquadSize-1 {
		return ErrRosterPlayerCount
	}
	for _, p := range r.Players {
		if p.Name == "" {
			return ErrRosterMemberName
		}
	}
	if r.Substitute != nil && r.Substitute.Name == "" {
		return ErrRosterMemberName
	}
	return nil
}
