package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/repositories"
	"github.com/Dosada05/tournament-ops/standings"
)

// ResultsAnnouncer publishes the final table of a finished match.
type ResultsAnnouncer interface {
	AnnounceMatchResults(ctx context.Context, match *models.Match, teamNames map[string]string) error
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*MatchView, error)
	GetMatch(ctx context.Context, id string, asAdmin bool) (*MatchView, error)
	ListMatches(ctx context.Context, filter ListMatchesInput, asAdmin bool) ([]*MatchView, error)
	AddTeams(ctx context.Context, id string, teamIDs []string) (*MatchView, error)
	UpdateResults(ctx context.Context, id string, results []ResultInput) (*MatchView, error)
	UpdateMatch(ctx context.Context, id string, input UpdateMatchInput) (*MatchView, error)
	FinishMatch(ctx context.Context, id string) (*MatchView, error)
	DeleteMatch(ctx context.Context, id string) error
}

type CreateMatchInput struct {
	SeasonID    string     `json:"seasonId"`
	MatchNumber int        `json:"matchNumber"`
	GameName    string     `json:"gameName"`
	MapName     string     `json:"mapName"`
	RoomID      *string    `json:"roomId,omitempty"`
	Password    *string    `json:"password,omitempty"`
	MaxPlayers  *int       `json:"maxPlayers,omitempty"`
	DateTime    *time.Time `json:"dateTime"`
	Status      string     `json:"status,omitempty"`
}

// UpdateMatchInput is a partial update; nil fields are left untouched.
type UpdateMatchInput struct {
	MatchNumber *int          `json:"matchNumber,omitempty"`
	GameName    *string       `json:"gameName,omitempty"`
	MapName     *string       `json:"mapName,omitempty"`
	RoomID      *string       `json:"roomId,omitempty"`
	Password    *string       `json:"password,omitempty"`
	MaxPlayers  *int          `json:"maxPlayers,omitempty"`
	DateTime    *time.Time    `json:"dateTime,omitempty"`
	Status      *string       `json:"status,omitempty"`
	Results     []ResultInput `json:"results,omitempty"`
}

// ResultInput carries the scoring fields of one team. A supplied totalPoints is
// ignored; it is always kills + placementPoints.
type ResultInput struct {
	TeamID          string `json:"teamId"`
	Kills           int    `json:"kills"`
	PlacementPoints int    `json:"placementPoints"`
	TotalPoints     *int   `json:"totalPoints,omitempty"`
	AlivePlayers    *int   `json:"alivePlayers,omitempty"`
}

type ListMatchesInput struct {
	SeasonID *string
	Status   *models.MatchStatus
}

type MatchResultView struct {
	models.MatchResult
	TeamName string `json:"teamName"`
}

// MatchView is a match as readers see it: derived status and team names filled in.
type MatchView struct {
	*models.Match
	Status  models.MatchStatus `json:"status"`
	Results []MatchResultView  `json:"results"`
}

type matchService struct {
	tx         repositories.TxManager
	matchRepo  repositories.MatchRepository
	teamRepo   repositories.TeamRepository
	seasonRepo repositories.SeasonRepository
	standings  StandingsService
	announcer  ResultsAnnouncer
	logger     *slog.Logger
	revealLead time.Duration
	now        func() time.Time
}

func NewMatchService(
	tx repositories.TxManager,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	seasonRepo repositories.SeasonRepository,
	standingsService StandingsService,
	announcer ResultsAnnouncer,
	revealLead time.Duration,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:         tx,
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		seasonRepo: seasonRepo,
		standings:  standingsService,
		announcer:  announcer,
		logger:     logger,
		revealLead: revealLead,
		now:        time.Now,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*MatchView, error) {
	if input.SeasonID == "" {
		return nil, validationError("seasonId is required")
	}
	mapName := strings.TrimSpace(input.MapName)
	if mapName == "" {
		return nil, validationError("mapName is required")
	}
	if input.DateTime == nil || input.DateTime.IsZero() {
		return nil, validationError("dateTime is required")
	}
	if input.MatchNumber < 0 {
		return nil, validationError("matchNumber must not be negative")
	}
	if input.MaxPlayers != nil && *input.MaxPlayers <= 0 {
		return nil, validationError("maxPlayers must be positive")
	}
	if err := checkCreateStatus(input.Status); err != nil {
		return nil, err
	}
	if _, err := activeSeason(ctx, s.seasonRepo, input.SeasonID); err != nil {
		return nil, err
	}

	match := &models.Match{
		ID:           newID(),
		SeasonID:     input.SeasonID,
		MatchNumber:  input.MatchNumber,
		GameName:     strings.TrimSpace(input.GameName),
		MapName:      mapName,
		RoomID:       trimmedOrNil(input.RoomID),
		RoomPassword: trimmedOrNil(input.Password),
		MaxPlayers:   input.MaxPlayers,
		DateTime:     input.DateTime.UTC(),
		Status:       models.MatchStatusUpcoming,
		Results:      models.MatchResults{},
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchSeasonInvalid) {
			return nil, validationError("season %s does not exist", input.SeasonID)
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created",
		slog.String("match_id", match.ID),
		slog.String("season_id", match.SeasonID),
		slog.Int("match_number", match.MatchNumber))
	return s.view(ctx, match, true)
}

// checkCreateStatus accepts the statuses a new match may be created with.
// "live" is derived from the clock, so it is stored as upcoming.
func checkCreateStatus(status string) error {
	switch models.MatchStatus(status) {
	case "", models.MatchStatusUpcoming, models.MatchStatusLive:
		return nil
	case models.MatchStatusCompleted:
		return validationError("a match cannot be created as completed")
	default:
		return validationError("unknown match status %q", status)
	}
}

func (s *matchService) GetMatch(ctx context.Context, id string, asAdmin bool) (*MatchView, error) {
	if err := checkID(id, ErrMatchNotFound); err != nil {
		return nil, err
	}
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchError(id, err)
	}
	return s.view(ctx, match, asAdmin)
}

func (s *matchService) ListMatches(ctx context.Context, filter ListMatchesInput, asAdmin bool) ([]*MatchView, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case models.MatchStatusUpcoming, models.MatchStatusLive, models.MatchStatusCompleted:
		default:
			return nil, validationError("unknown match status %q", *filter.Status)
		}
	}
	if filter.SeasonID != nil && checkID(*filter.SeasonID, ErrSeasonNotFound) != nil {
		return []*MatchView{}, nil
	}

	matches, err := s.matchRepo.List(ctx, repositories.ListMatchesFilter{
		SeasonID: filter.SeasonID,
		Status:   filter.Status,
		Now:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return s.views(ctx, matches, asAdmin)
}

func (s *matchService) AddTeams(ctx context.Context, id string, teamIDs []string) (*MatchView, error) {
	if err := checkID(id, ErrMatchNotFound); err != nil {
		return nil, err
	}

	unique := make([]string, 0, len(teamIDs))
	seen := make(map[string]bool, len(teamIDs))
	for _, teamID := range teamIDs {
		if seen[teamID] {
			continue
		}
		seen[teamID] = true
		if err := checkID(teamID, ErrTeamNotFound); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
		}
		unique = append(unique, teamID)
	}

	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.lockMutable(ctx, exec, id)
		if err != nil {
			return err
		}
		if len(unique) == 0 {
			return nil
		}

		teams, err := s.teamRepo.ListByIDs(ctx, exec, unique)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		found := make(map[string]*models.Team, len(teams))
		for _, t := range teams {
			found[t.ID] = t
		}

		added := 0
		for _, teamID := range unique {
			t, ok := found[teamID]
			if !ok {
				return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
			}
			if t.SeasonID != match.SeasonID {
				return fmt.Errorf("%w: %w: %s", ErrValidationFailed, ErrTeamWrongSeason, t.TeamName)
			}
			if match.Results.IndexOf(teamID) >= 0 {
				continue
			}
			match.Results = append(match.Results, models.NewMatchResult(teamID))
			added++
		}
		if added == 0 {
			return nil
		}
		return s.matchRepo.Update(ctx, exec, match)
	})
	if err != nil {
		return nil, mapMatchError(id, err)
	}

	s.logger.InfoContext(ctx, "teams added to match", slog.String("match_id", id), slog.Int("requested", len(teamIDs)))
	return s.view(ctx, match, true)
}

func (s *matchService) UpdateResults(ctx context.Context, id string, results []ResultInput) (*MatchView, error) {
	return s.UpdateMatch(ctx, id, UpdateMatchInput{Results: results})
}

func (s *matchService) UpdateMatch(ctx context.Context, id string, input UpdateMatchInput) (*MatchView, error) {
	if err := checkID(id, ErrMatchNotFound); err != nil {
		return nil, err
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.lockMutable(ctx, exec, id)
		if err != nil {
			return err
		}
		applySchedule(match, input)
		if input.Results != nil {
			if err := applyResults(match, input.Results); err != nil {
				return err
			}
		}
		return s.matchRepo.Update(ctx, exec, match)
	})
	if err != nil {
		return nil, mapMatchError(id, err)
	}

	s.logger.InfoContext(ctx, "match updated",
		slog.String("match_id", id),
		slog.Bool("results", input.Results != nil))

	if input.Results != nil || input.DateTime != nil {
		s.standings.Trigger(ctx, match.SeasonID)
	}
	return s.view(ctx, match, true)
}

func validateUpdate(input UpdateMatchInput) error {
	if input.MapName != nil && strings.TrimSpace(*input.MapName) == "" {
		return validationError("mapName must not be empty")
	}
	if input.DateTime != nil && input.DateTime.IsZero() {
		return validationError("dateTime must not be empty")
	}
	if input.MatchNumber != nil && *input.MatchNumber < 0 {
		return validationError("matchNumber must not be negative")
	}
	if input.MaxPlayers != nil && *input.MaxPlayers <= 0 {
		return validationError("maxPlayers must be positive")
	}
	if input.Status != nil {
		switch models.MatchStatus(*input.Status) {
		case models.MatchStatusUpcoming, models.MatchStatusLive:
		case models.MatchStatusCompleted:
			return validationError("use finish to complete a match")
		default:
			return validationError("unknown match status %q", *input.Status)
		}
	}
	for _, r := range input.Results {
		if r.TeamID == "" {
			return validationError("every result needs a teamId")
		}
		if r.Kills < 0 || r.PlacementPoints < 0 {
			return validationError("kills and placementPoints must not be negative")
		}
		if r.AlivePlayers != nil && (*r.AlivePlayers < 0 || *r.AlivePlayers > models.SquadSize) {
			return validationError("alivePlayers must be between 0 and %d", models.SquadSize)
		}
	}
	return nil
}

func applySchedule(m *models.Match, input UpdateMatchInput) {
	if input.MatchNumber != nil {
		m.MatchNumber = *input.MatchNumber
	}
	if input.GameName != nil {
		m.GameName = strings.TrimSpace(*input.GameName)
	}
	if input.MapName != nil {
		m.MapName = strings.TrimSpace(*input.MapName)
	}
	if input.RoomID != nil {
		m.RoomID = trimmedOrNil(input.RoomID)
	}
	if input.Password != nil {
		m.RoomPassword = trimmedOrNil(input.Password)
	}
	if input.MaxPlayers != nil {
		m.MaxPlayers = input.MaxPlayers
	}
	if input.DateTime != nil {
		m.DateTime = input.DateTime.UTC()
	}
}

// applyResults replaces the scoring fields of the listed teams. Rank stays 0
// until the match is finished.
func applyResults(m *models.Match, results []ResultInput) error {
	next := m.Results.Clone()
	for _, r := range results {
		i := next.IndexOf(r.TeamID)
		if i < 0 {
			return validationError("team %s is not part of this match", r.TeamID)
		}
		next[i].Kills = r.Kills
		next[i].PlacementPoints = r.PlacementPoints
		if r.AlivePlayers != nil {
			next[i].AlivePlayers = *r.AlivePlayers
		}
		next[i].Normalize()
	}
	m.Results = next
	return nil
}

func (s *matchService) FinishMatch(ctx context.Context, id string) (*MatchView, error) {
	if err := checkID(id, ErrMatchNotFound); err != nil {
		return nil, err
	}

	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.lockMutable(ctx, exec, id)
		if err != nil {
			return err
		}
		ranked := standings.RankResults(match.Results)
		if err := s.matchRepo.Complete(ctx, exec, id, ranked); err != nil {
			return err
		}
		match.Results = ranked
		match.Status = models.MatchStatusCompleted
		return nil
	})
	if err != nil {
		return nil, mapMatchError(id, err)
	}

	s.logger.InfoContext(ctx, "match finished",
		slog.String("match_id", id),
		slog.String("season_id", match.SeasonID),
		slog.Int("teams", len(match.Results)))

	s.standings.Trigger(ctx, match.SeasonID)

	view, err := s.view(ctx, match, true)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, view)
	return view, nil
}

func (s *matchService) announce(ctx context.Context, view *MatchView) {
	if s.announcer == nil {
		return
	}
	names := make(map[string]string, len(view.Results))
	for _, r := range view.Results {
		names[r.TeamID] = r.TeamName
	}
	if err := s.announcer.AnnounceMatchResults(ctx, view.Match, names); err != nil {
		s.logger.WarnContext(ctx, "failed to announce match results",
			slog.String("match_id", view.ID),
			slog.Any("error", err))
	}
}

func (s *matchService) DeleteMatch(ctx context.Context, id string) error {
	if err := checkID(id, ErrMatchNotFound); err != nil {
		return err
	}
	seasonID, err := s.matchRepo.Delete(ctx, nil, id)
	if err != nil {
		return mapMatchError(id, err)
	}

	s.logger.InfoContext(ctx, "match deleted", slog.String("match_id", id), slog.String("season_id", seasonID))
	s.standings.Trigger(ctx, seasonID)
	return nil
}

// lockMutable loads the match under a row lock and rejects completed matches.
func (s *matchService) lockMutable(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, id)
	if err != nil {
		return nil, err
	}
	if match.IsCompleted() {
		return nil, ErrMatchCompleted
	}
	return match, nil
}

func mapMatchError(id string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchCompleted):
		return ErrMatchCompleted
	case errors.Is(err, ErrMatchCompleted),
		errors.Is(err, ErrMatchNotFound),
		errors.Is(err, ErrTeamNotFound),
		errors.Is(err, ErrValidationFailed):
		return err
	default:
		return fmt.Errorf("match %s: %w", id, err)
	}
}

func (s *matchService) view(ctx context.Context, m *models.Match, asAdmin bool) (*MatchView, error) {
	views, err := s.views(ctx, []*models.Match{m}, asAdmin)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *matchService) views(ctx context.Context, matches []*models.Match, asAdmin bool) ([]*MatchView, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range matches {
		for _, r := range m.Results {
			if !seen[r.TeamID] {
				seen[r.TeamID] = true
				ids = append(ids, r.TeamID)
			}
		}
	}
	names, err := s.teamRepo.NamesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team names: %w", err)
	}

	now := s.now()
	out := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		copied := *m
		if !asAdmin && copied.RoomPassword != nil && now.Before(copied.DateTime.Add(-s.revealLead)) {
			copied.RoomPassword = nil
		}

		results := make([]MatchResultView, 0, len(m.Results))
		for _, r := range m.Results {
			results = append(results, MatchResultView{MatchResult: r, TeamName: names[r.TeamID]})
		}

		out = append(out, &MatchView{
			Match:   &copied,
			Status:  m.DisplayStatus(now),
			Results: results,
		})
	}
	return out, nil
}
