package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/Dosada05/tournament-ops/repositories"
	"github.com/Dosada05/tournament-ops/standings"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	// Recompute rebuilds every team's cumulative stats in the season from its matches.
	Recompute(ctx context.Context, seasonID string) error
	// Trigger runs Recompute after a match mutation. Failures are logged and the
	// season is queued for Reconcile; they never reach the caller.
	Trigger(ctx context.Context, seasonID string)
	// Reconcile recomputes queued seasons and every active season.
	Reconcile(ctx context.Context) error
	ApplyManualStats(ctx context.Context, entries []ManualStatsEntry) (*ManualStatsResult, error)
}

// ManualStatsEntry is one row of the legacy bulk stats overwrite. Nil fields
// keep the team's current value.
type ManualStatsEntry struct {
	TeamName        string `json:"teamName"`
	TotalKills      *int   `json:"totalKills,omitempty"`
	PlacementPoints *int   `json:"placementPoints,omitempty"`
	Wins            *int   `json:"wins,omitempty"`
}

type ManualStatsResult struct {
	Updated []string `json:"updated"`
	Unknown []string `json:"unknown"`
}

type standingsService struct {
	teamRepo     repositories.TeamRepository
	matchRepo    repositories.MatchRepository
	seasonRepo   repositories.SeasonRepository
	standingRepo repositories.StandingRepository
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewStandingsService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	seasonRepo repositories.SeasonRepository,
	standingRepo repositories.StandingRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		seasonRepo:   seasonRepo,
		standingRepo: standingRepo,
		logger:       logger,
		now:          time.Now,
		pending:      make(map[string]struct{}),
	}
}

func (s *standingsService) Recompute(ctx context.Context, seasonID string) error {
	if err := checkID(seasonID, ErrSeasonNotFound); err != nil {
		return err
	}
	if _, err := s.seasonRepo.GetByID(ctx, nil, seasonID); err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return ErrSeasonNotFound
		}
		return fmt.Errorf("failed to load season %s: %w", seasonID, err)
	}

	var (
		teams   []*models.Team
		matches []*models.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListBySeason(gctx, nil, seasonID)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListBySeason(gctx, nil, seasonID)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("recompute season %s: %w", seasonID, err)
	}

	rows := standings.Compute(teams, matches, s.now())
	if err := s.standingRepo.BulkUpdate(ctx, nil, rows); err != nil {
		return fmt.Errorf("recompute season %s: %w", seasonID, err)
	}

	s.mu.Lock()
	delete(s.pending, seasonID)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "standings recomputed",
		slog.String("season_id", seasonID),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)))
	return nil
}

func (s *standingsService) Trigger(ctx context.Context, seasonID string) {
	if err := s.Recompute(ctx, seasonID); err != nil {
		s.logger.ErrorContext(ctx, "standings recompute failed, queued for reconciliation",
			slog.String("season_id", seasonID),
			slog.Any("error", err))
		s.mu.Lock()
		s.pending[seasonID] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *standingsService) pendingSeasons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *standingsService) Reconcile(ctx context.Context) error {
	ids := s.pendingSeasons()

	active := models.SeasonStatusActive
	seasons, err := s.seasonRepo.List(ctx, &active)
	if err != nil {
		return fmt.Errorf("failed to list active seasons: %w", err)
	}
	for _, season := range seasons {
		if !slices.Contains(ids, season.ID) {
			ids = append(ids, season.ID)
		}
	}

	var errs []error
	for _, id := range ids {
		if err := s.Recompute(ctx, id); err != nil {
			if errors.Is(err, ErrSeasonNotFound) {
				s.mu.Lock()
				delete(s.pending, id)
				s.mu.Unlock()
				continue
			}
			s.mu.Lock()
			s.pending[id] = struct{}{}
			s.mu.Unlock()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *standingsService) ApplyManualStats(ctx context.Context, entries []ManualStatsEntry) (*ManualStatsResult, error) {
	if len(entries) == 0 {
		return nil, validationError("at least one team entry is required")
	}

	names := make([]string, 0, len(entries))
	for i, e := range entries {
		if e.TeamName == "" {
			return nil, validationError("entry %d: teamName is required", i)
		}
		for _, v := range []*int{e.TotalKills, e.PlacementPoints, e.Wins} {
			if v != nil && *v < 0 {
				return nil, validationError("entry %d: stats must not be negative", i)
			}
		}
		names = append(names, e.TeamName)
	}

	teams, err := s.teamRepo.ListByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams by name: %w", err)
	}
	byName := make(map[string]*models.Team, len(teams))
	for _, t := range teams {
		byName[t.TeamName] = t
	}

	result := &ManualStatsResult{Updated: []string{}, Unknown: []string{}}
	bySeason := make(map[string][]ManualStatsEntry)
	for _, e := range entries {
		t, ok := byName[e.TeamName]
		if !ok {
			result.Unknown = append(result.Unknown, e.TeamName)
			continue
		}
		bySeason[t.SeasonID] = append(bySeason[t.SeasonID], e)
	}

	seasonIDs := make([]string, 0, len(bySeason))
	for id := range bySeason {
		seasonIDs = append(seasonIDs, id)
	}
	slices.Sort(seasonIDs)

	for _, seasonID := range seasonIDs {
		matches, err := s.matchRepo.ListBySeason(ctx, nil, seasonID)
		if err != nil {
			return nil, fmt.Errorf("failed to load matches of season %s: %w", seasonID, err)
		}

		seasonEntries := bySeason[seasonID]
		ids := make([]string, 0, len(seasonEntries))
		for _, e := range seasonEntries {
			ids = append(ids, byName[e.TeamName].ID)
		}
		derived := standings.MatchTotals(ids, matches, s.now())

		adjustments := make(map[string]models.StatAdjustment, len(seasonEntries))
		for _, e := range seasonEntries {
			t := byName[e.TeamName]
			d := derived[t.ID]
			// Пропущенные поля сохраняют текущую корректировку
			adjustments[t.ID] = standings.AdjustmentFor(d,
				valueOr(e.TotalKills, d.Kills+t.Adjustment.Kills),
				valueOr(e.PlacementPoints, d.PlacementPoints+t.Adjustment.PlacementPoints),
				valueOr(e.Wins, d.Wins+t.Adjustment.Wins))
			result.Updated = append(result.Updated, t.TeamName)
		}

		if err := s.standingRepo.SetAdjustments(ctx, nil, adjustments); err != nil {
			return nil, err
		}
		if err := s.Recompute(ctx, seasonID); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "manual stats applied",
		slog.Int("updated", len(result.Updated)),
		slog.Int("unknown", len(result.Unknown)))
	return result, nil
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
