package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context, seasonID *string) (*models.DashboardStats, error)
}

type dashboardService struct {
	seasonRepo repositories.SeasonRepository
	teamRepo   repositories.TeamRepository
	matchRepo  repositories.MatchRepository
	logger     *slog.Logger
	now        func() time.Time
}

func NewDashboardService(
	seasonRepo repositories.SeasonRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) DashboardService {
	return &dashboardService{
		seasonRepo: seasonRepo,
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// GetStats counts teams and matches; match counts use the derived status.
func (s *dashboardService) GetStats(ctx context.Context, seasonID *string) (*models.DashboardStats, error) {
	if seasonID != nil && checkID(*seasonID, ErrSeasonNotFound) != nil {
		return nil, ErrSeasonNotFound
	}
	stats := &models.DashboardStats{SeasonID: seasonID}

	var (
		active  []models.Season
		teams   []*models.Team
		matches []*models.Match
	)
	now := s.now()
	status := models.SeasonStatusActive

	g, gctx := errgroup.WithContext(ctx)
	if seasonID != nil {
		g.Go(func() error {
			season, err := s.seasonRepo.GetByID(gctx, nil, *seasonID)
			if err != nil {
				return err
			}
			if !season.IsCompleted() {
				stats.ActiveSeasons = 1
			}
			return nil
		})
	} else {
		g.Go(func() error {
			var err error
			active, err = s.seasonRepo.List(gctx, &status)
			return err
		})
	}
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.List(gctx, repositories.ListTeamsFilter{SeasonID: seasonID})
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.List(gctx, repositories.ListMatchesFilter{SeasonID: seasonID, Now: now})
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	if seasonID == nil {
		stats.ActiveSeasons = len(active)
	}

	stats.TeamsTotal = len(teams)
	for _, t := range teams {
		if !t.IsVerified {
			continue
		}
		stats.TeamsVerified++
		// Список уже отсортирован по таблице
		if stats.LeaderTeam == nil && seasonID != nil && t.TotalPoints > 0 {
			name := t.TeamName
			stats.LeaderTeam = &name
		}
	}
	stats.TeamsPendingVerification = stats.TeamsTotal - stats.TeamsVerified

	stats.MatchesTotal = len(matches)
	for _, m := range matches {
		switch m.DisplayStatus(now) {
		case models.MatchStatusCompleted:
			stats.MatchesCompleted++
		case models.MatchStatusLive:
			stats.MatchesLive++
		default:
			stats.MatchesUpcoming++
		}
	}

	return stats, nil
}
