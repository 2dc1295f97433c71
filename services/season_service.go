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
)

type SeasonService interface {
	CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.Season, error)
	GetSeason(ctx context.Context, id string) (*models.Season, error)
	ListSeasons(ctx context.Context, status *models.SeasonStatus) ([]models.Season, error)
	CompleteSeason(ctx context.Context, id string) (*models.Season, error)
}

type CreateSeasonInput struct {
	Name      string     `json:"name"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

type seasonService struct {
	seasonRepo repositories.SeasonRepository
	logger     *slog.Logger
}

func NewSeasonService(seasonRepo repositories.SeasonRepository, logger *slog.Logger) SeasonService {
	return &seasonService{seasonRepo: seasonRepo, logger: logger}
}

func (s *seasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.Season, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("season name is required")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, validationError("season end date must not be before its start date")
	}

	season := &models.Season{
		ID:        newID(),
		Name:      name,
		Status:    models.SeasonStatusActive,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.seasonRepo.Create(ctx, season); err != nil {
		return nil, fmt.Errorf("failed to create season: %w", err)
	}

	s.logger.InfoContext(ctx, "season created", slog.String("season_id", season.ID), slog.String("name", season.Name))
	return season, nil
}

func (s *seasonService) GetSeason(ctx context.Context, id string) (*models.Season, error) {
	if err := checkID(id, ErrSeasonNotFound); err != nil {
		return nil, err
	}
	season, err := s.seasonRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to get season %s: %w", id, err)
	}
	return season, nil
}

func (s *seasonService) ListSeasons(ctx context.Context, status *models.SeasonStatus) ([]models.Season, error) {
	if status != nil && *status != models.SeasonStatusActive && *status != models.SeasonStatusCompleted {
		return nil, validationError("unknown season status %q", *status)
	}
	return s.seasonRepo.List(ctx, status)
}

// CompleteSeason is one-way; completing an already completed season is a no-op.
func (s *seasonService) CompleteSeason(ctx context.Context, id string) (*models.Season, error) {
	season, err := s.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if season.IsCompleted() {
		return season, nil
	}

	if err := s.seasonRepo.UpdateStatus(ctx, id, models.SeasonStatusCompleted); err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to complete season %s: %w", id, err)
	}
	season.Status = models.SeasonStatusCompleted

	s.logger.InfoContext(ctx, "season completed", slog.String("season_id", id))
	return season, nil
}

// activeSeason loads a season that still accepts matches and registrations.
func activeSeason(ctx context.Context, repo repositories.SeasonRepository, id string) (*models.Season, error) {
	if id == "" {
		return nil, validationError("seasonId is required")
	}
	if err := checkID(id, ErrSeasonNotFound); err != nil {
		return nil, validationError("season %s does not exist", id)
	}
	season, err := repo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, validationError("season %s does not exist", id)
		}
		return nil, fmt.Errorf("failed to load season %s: %w", id, err)
	}
	if season.IsCompleted() {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrSeasonCompleted)
	}
	return season, nil
}
