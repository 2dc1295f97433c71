package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/lib/pq"
)

// StandingRepository owns the cumulative columns of the teams table.
type StandingRepository interface {
	BulkUpdate(ctx context.Context, exec SQLExecutor, standings []models.TeamStanding) error
	SetAdjustments(ctx context.Context, exec SQLExecutor, adjustments map[string]models.StatAdjustment) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkUpdate writes every standing in one statement. total_points is a generated column.
func (r *postgresStandingRepository) BulkUpdate(ctx context.Context, exec SQLExecutor, standings []models.TeamStanding) error {
	if len(standings) == 0 {
		return nil
	}

	ids := make([]string, len(standings))
	kills := make([]int64, len(standings))
	placement := make([]int64, len(standings))
	wins := make([]int64, len(standings))
	alive := make([]int64, len(standings))
	for i, s := range standings {
		ids[i] = s.TeamID
		kills[i] = int64(s.TotalKills)
		placement[i] = int64(s.PlacementPoints)
		wins[i] = int64(s.Wins)
		alive[i] = int64(s.AlivePlayers)
	}

	query := `
		UPDATE teams AS t SET
			total_kills = u.kills,
			placement_points = u.placement,
			wins = u.wins,
			alive_players = u.alive,
			updated_at = now()
		FROM unnest($1::uuid[], $2::int[], $3::int[], $4::int[], $5::int[])
			AS u(id, kills, placement, wins, alive)
		WHERE t.id = u.id`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		pq.Array(ids), pq.Array(kills), pq.Array(placement), pq.Array(wins), pq.Array(alive))
	if err != nil {
		return fmt.Errorf("failed to bulk update standings: %w", err)
	}
	return nil
}

func (r *postgresStandingRepository) SetAdjustments(ctx context.Context, exec SQLExecutor, adjustments map[string]models.StatAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	ids := make([]string, 0, len(adjustments))
	kills := make([]int64, 0, len(adjustments))
	placement := make([]int64, 0, len(adjustments))
	wins := make([]int64, 0, len(adjustments))
	for id, a := range adjustments {
		ids = append(ids, id)
		kills = append(kills, int64(a.Kills))
		placement = append(placement, int64(a.PlacementPoints))
		wins = append(wins, int64(a.Wins))
	}

	query := `
		UPDATE teams AS t SET
			adjust_kills = u.kills,
			adjust_placement_points = u.placement,
			adjust_wins = u.wins,
			updated_at = now()
		FROM unnest($1::uuid[], $2::int[], $3::int[], $4::int[])
			AS u(id, kills, placement, wins)
		WHERE t.id = u.id`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		pq.Array(ids), pq.Array(kills), pq.Array(placement), pq.Array(wins))
	if err != nil {
		return fmt.Errorf("failed to store stat adjustments: %w", err)
	}
	return nil
}
