package waypoint

import (
	"context"
	"errors"

	"backend-tripline/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateWaypoint(ctx context.Context, name string) (Waypoint, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Waypoint{}, err
	}
	wp := Waypoint{ID: uuid.NewString(), Name: name}
	row := s.db.QueryRow(ctx, `
		INSERT INTO waypoints (id, name)
		VALUES ($1,$2)
		RETURNING created_at
	`, wp.ID, wp.Name)
	if err := row.Scan(&wp.CreatedAt); err != nil {
		return Waypoint{}, mapWriteError(err)
	}
	return wp, nil
}

// RenameWaypoint changes the display name; the id stays stable so edges
// referencing the waypoint are unaffected.
func (s *Service) RenameWaypoint(ctx context.Context, id, name string) (Waypoint, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Waypoint{}, err
	}
	wp, err := s.GetWaypoint(ctx, id)
	if err != nil {
		return Waypoint{}, err
	}
	if _, err := s.db.Exec(ctx, `UPDATE waypoints SET name=$2 WHERE id=$1`, id, name); err != nil {
		return Waypoint{}, mapWriteError(err)
	}
	wp.Name = name
	return wp, nil
}

func (s *Service) GetWaypoint(ctx context.Context, id string) (Waypoint, error) {
	row := s.db.QueryRow(ctx, `SELECT id, name, created_at FROM waypoints WHERE id=$1`, id)
	var wp Waypoint
	if err := row.Scan(&wp.ID, &wp.Name, &wp.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Waypoint{}, ErrNotFound
		}
		return Waypoint{}, err
	}
	return wp, nil
}

func (s *Service) ListWaypoints(ctx context.Context) ([]Waypoint, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, created_at FROM waypoints ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Waypoint
	for rows.Next() {
		var wp Waypoint
		if err := rows.Scan(&wp.ID, &wp.Name, &wp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, wp)
	}
	return out, rows.Err()
}

func (s *Service) DeleteWaypoint(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM waypoints WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateName
	}
	return err
}
