package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchCompleted     = errors.New("match is already completed")
	ErrMatchSeasonInvalid = errors.New("match season conflict or invalid")
)

type ListMatchesFilter struct {
	SeasonID *string
	// Status filters on the derived status as of Now.
	Status *models.MatchStatus
	Now    time.Time
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	List(ctx context.Context, filter ListMatchesFilter) ([]*models.Match, error)
	ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Complete(ctx context.Context, exec SQLExecutor, id string, results models.MatchResults) error
	Delete(ctx context.Context, exec SQLExecutor, id string) (seasonID string, err error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, season_id, match_number, game_name, map_name, room_id, room_password, max_players,
	date_time, status, results, created_at, updated_at`

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (
			id, season_id, match_number, game_name, map_name, room_id, room_password, max_players,
			date_time, status, results
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.SeasonID, m.MatchNumber, m.GameName, m.MapName, m.RoomID, m.RoomPassword, m.MaxPlayers,
		m.DateTime, m.Status, m.Results,
	).Scan(&m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "matches_season_id_fkey" {
			return ErrMatchSeasonInvalid
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.SeasonID, &m.MatchNumber, &m.GameName, &m.MapName, &m.RoomID, &m.RoomPassword, &m.MaxPlayers,
		&m.DateTime, &m.Status, &m.Results, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) List(ctx context.Context, filter ListMatchesFilter) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.SeasonID != nil {
		query += fmt.Sprintf(" AND season_id = $%d", argID)
		args = append(args, *filter.SeasonID)
		argID++
	}
	if filter.Status != nil {
		switch *filter.Status {
		case models.MatchStatusCompleted:
			query += " AND status = 'completed'"
		case models.MatchStatusLive:
			query += fmt.Sprintf(" AND status <> 'completed' AND date_time <= $%d", argID)
			args = append(args, filter.Now)
			argID++
		case models.MatchStatusUpcoming:
			query += fmt.Sprintf(" AND status <> 'completed' AND date_time > $%d", argID)
			args = append(args, filter.Now)
			argID++
		}
	}
	query += " ORDER BY date_time ASC, match_number ASC"

	return r.queryMatches(ctx, nil, query, args...)
}

func (r *postgresMatchRepository) ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE season_id = $1 ORDER BY date_time ASC, match_number ASC`
	return r.queryMatches(ctx, exec, query, seasonID)
}

// Update rewrites schedule fields and results of a match that is not completed.
func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET
			match_number = $1, game_name = $2, map_name = $3, room_id = $4, room_password = $5,
			max_players = $6, date_time = $7, results = $8, updated_at = now()
		WHERE id = $9 AND status <> 'completed'
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.MatchNumber, m.GameName, m.MapName, m.RoomID, m.RoomPassword,
		m.MaxPlayers, m.DateTime, m.Results, m.ID,
	).Scan(&m.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchCompleted
	}
	return err
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, id string, results models.MatchResults) error {
	query := `
		UPDATE matches SET status = 'completed', results = $1, updated_at = now()
		WHERE id = $2 AND status <> 'completed'`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, results, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchCompleted)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id string) (string, error) {
	var seasonID string
	err := r.getExecutor(exec).QueryRowContext(ctx, `DELETE FROM matches WHERE id = $1 RETURNING season_id`, id).Scan(&seasonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMatchNotFound
		}
		return "", err
	}
	return seasonID, nil
}
