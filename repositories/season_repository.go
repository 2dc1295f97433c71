package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-ops/models"
)

var ErrSeasonNotFound = errors.New("season not found")

type SeasonRepository interface {
	Create(ctx context.Context, season *models.Season) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Season, error)
	List(ctx context.Context, status *models.SeasonStatus) ([]models.Season, error)
	UpdateStatus(ctx context.Context, id string, status models.SeasonStatus) error
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeasonRepository) Create(ctx context.Context, s *models.Season) error {
	query := `
		INSERT INTO seasons (id, name, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		s.ID, s.Name, s.Status, s.StartDate, s.EndDate,
	).Scan(&s.CreatedAt)
}

func (r *postgresSeasonRepository) scanSeason(row rowScanner) (*models.Season, error) {
	var s models.Season
	err := row.Scan(&s.ID, &s.Name, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Season, error) {
	query := `
		SELECT id, name, status, start_date, end_date, created_at
		FROM seasons
		WHERE id = $1`

	return r.scanSeason(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresSeasonRepository) List(ctx context.Context, status *models.SeasonStatus) ([]models.Season, error) {
	query := `
		SELECT id, name, status, start_date, end_date, created_at
		FROM seasons`
	args := []interface{}{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	seasons := make([]models.Season, 0)
	for rows.Next() {
		s, err := r.scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, *s)
	}
	return seasons, rows.Err()
}

func (r *postgresSeasonRepository) UpdateStatus(ctx context.Context, id string, status models.SeasonStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE seasons SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}
