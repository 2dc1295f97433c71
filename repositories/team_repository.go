package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameConflict  = errors.New("team name conflict")
	ErrTeamSeasonInvalid = errors.New("team season conflict or invalid")
)

type ListTeamsFilter struct {
	SeasonID     *string
	VerifiedOnly bool
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error)
	GetByName(ctx context.Context, name string) (*models.Team, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []string) ([]*models.Team, error)
	ListByNames(ctx context.Context, names []string) ([]*models.Team, error)
	ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]*models.Team, error)
	List(ctx context.Context, filter ListTeamsFilter) ([]*models.Team, error)
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	SetVerified(ctx context.Context, id string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `
	id, season_id, team_name, roster, contact_email, contact_phone, document_key,
	total_kills, placement_points, total_points, wins, alive_players,
	adjust_kills, adjust_placement_points, adjust_wins,
	is_verified, created_at, updated_at`

// leaderboardOrder mirrors standings.SortLeaderboard.
const leaderboardOrder = ` ORDER BY total_points DESC, placement_points DESC, total_kills DESC, team_name ASC`

func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	query := `
		INSERT INTO teams (id, season_id, team_name, roster, contact_email, contact_phone, document_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING total_kills, placement_points, total_points, wins, alive_players, is_verified, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.SeasonID, t.TeamName, t.Roster, t.ContactEmail, t.ContactPhone, t.DocumentKey,
	).Scan(&t.TotalKills, &t.PlacementPoints, &t.TotalPoints, &t.Wins, &t.AlivePlayers,
		&t.IsVerified, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "teams_team_name_key" {
				return ErrTeamNameConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "teams_season_id_fkey" {
				return ErrTeamSeasonInvalid
			}
		}
	}
	return err
}

func (r *postgresTeamRepository) scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.SeasonID, &t.TeamName, &t.Roster, &t.ContactEmail, &t.ContactPhone, &t.DocumentKey,
		&t.TotalKills, &t.PlacementPoints, &t.TotalPoints, &t.Wins, &t.AlivePlayers,
		&t.Adjustment.Kills, &t.Adjustment.PlacementPoints, &t.Adjustment.Wins,
		&t.IsVerified, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) queryTeams(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, err := r.scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_name = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, name))
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []string) ([]*models.Team, error) {
	if len(ids) == 0 {
		return []*models.Team{}, nil
	}
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ANY($1::uuid[])`
	return r.queryTeams(ctx, exec, query, pq.Array(ids))
}

func (r *postgresTeamRepository) ListByNames(ctx context.Context, names []string) ([]*models.Team, error) {
	if len(names) == 0 {
		return []*models.Team{}, nil
	}
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_name = ANY($1)`
	return r.queryTeams(ctx, nil, query, pq.Array(names))
}

func (r *postgresTeamRepository) ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE season_id = $1` + leaderboardOrder
	return r.queryTeams(ctx, exec, query, seasonID)
}

func (r *postgresTeamRepository) List(ctx context.Context, filter ListTeamsFilter) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.SeasonID != nil {
		query += fmt.Sprintf(" AND season_id = $%d", argID)
		args = append(args, *filter.SeasonID)
		argID++
	}
	if filter.VerifiedOnly {
		query += " AND is_verified"
	}
	query += leaderboardOrder

	return r.queryTeams(ctx, nil, query, args...)
}

func (r *postgresTeamRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, team_name FROM teams WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query team names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan team name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (r *postgresTeamRepository) SetVerified(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET is_verified = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
