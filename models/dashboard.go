package models

// DashboardStats is the operator overview of one season, or of all seasons
// when no season is selected.
type DashboardStats struct {
	SeasonID                 *string `json:"seasonId,omitempty"`
	ActiveSeasons            int     `json:"activeSeasons"`
	TeamsTotal               int     `json:"teamsTotal"`
	TeamsVerified            int     `json:"teamsVerified"`
	TeamsPendingVerification int     `json:"teamsPendingVerification"`
	MatchesTotal             int     `json:"matchesTotal"`
	MatchesUpcoming          int     `json:"matchesUpcoming"`
	MatchesLive              int     `json:"matchesLive"`
	MatchesCompleted         int     `json:"matchesCompleted"`
	LeaderTeam               *string `json:"leaderTeam,omitempty"`
}
