package extras

import (
	"context"
	"errors"

	"backend-tripline/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

const (
	activityColumns = `id, COALESCE(waypoint_id, ''), kind, address, duration_hours, starts_at`
	lodgingColumns  = `id, COALESCE(waypoint_id, ''), name, kind, address, price, rating, check_in, check_out`
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateActivity(ctx context.Context, a Activity) (Activity, error) {
	if err := a.validate(); err != nil {
		return Activity{}, err
	}
	a.ID = uuid.NewString()
	a.StartsAt = a.StartsAt.UTC()
	_, err := s.db.Exec(ctx, `
		INSERT INTO activities (id, waypoint_id, kind, address, duration_hours, starts_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
	`, a.ID, a.WaypointID, string(a.Kind), a.Address, a.DurationHours, a.StartsAt)
	if err != nil {
		return Activity{}, mapInsertError(err, ErrInvalidActivity)
	}
	return a, nil
}

func (s *Service) GetActivity(ctx context.Context, id string) (Activity, error) {
	row := s.db.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id=$1`, id)
	return scanActivity(row)
}

// ListActivities returns activities, optionally only those at one waypoint.
func (s *Service) ListActivities(ctx context.Context, waypointID string) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`
	var args []any
	if waypointID != "" {
		query += ` WHERE waypoint_id=$1`
		args = append(args, waypointID)
	}
	query += ` ORDER BY starts_at, id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM activities WHERE id=$1`, id)
}

func (s *Service) CreateLodging(ctx context.Context, l Lodging) (Lodging, error) {
	if err := l.validate(); err != nil {
		return Lodging{}, err
	}
	l.ID = uuid.NewString()
	l.CheckIn, l.CheckOut = l.CheckIn.UTC(), l.CheckOut.UTC()
	_, err := s.db.Exec(ctx, `
		INSERT INTO lodgings (id, waypoint_id, name, kind, address, price, rating, check_in, check_out)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.WaypointID, l.Name, string(l.Kind), l.Address, l.Price, l.Rating, l.CheckIn, l.CheckOut)
	if err != nil {
		return Lodging{}, mapInsertError(err, ErrInvalidLodging)
	}
	return l, nil
}

func (s *Service) GetLodging(ctx context.Context, id string) (Lodging, error) {
	row := s.db.QueryRow(ctx, `SELECT `+lodgingColumns+` FROM lodgings WHERE id=$1`, id)
	return scanLodging(row)
}

func (s *Service) ListLodgings(ctx context.Context, waypointID string) ([]Lodging, error) {
	query := `SELECT ` + lodgingColumns + ` FROM lodgings`
	var args []any
	if waypointID != "" {
		query += ` WHERE waypoint_id=$1`
		args = append(args, waypointID)
	}
	query += ` ORDER BY check_in, id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lodging
	for rows.Next() {
		l, err := scanLodging(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Service) DeleteLodging(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM lodgings WHERE id=$1`, id)
}

func (s *Service) deleteByID(ctx context.Context, query, id string) error {
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapInsertError reports a missing waypoint as a validation failure.
func mapInsertError(err, invalid error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return errors.Join(invalid, errUnknownWaypoint)
	}
	return err
}

func scanActivity(row pgx.Row) (Activity, error) {
	var (
		a    Activity
		kind string
	)
	if err := row.Scan(&a.ID, &a.WaypointID, &kind, &a.Address, &a.DurationHours, &a.StartsAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, ErrNotFound
		}
		return Activity{}, err
	}
	a.Kind = ActivityKind(kind)
	return a, nil
}

func scanLodging(row pgx.Row) (Lodging, error) {
	var (
		l    Lodging
		kind string
	)
	if err := row.Scan(&l.ID, &l.WaypointID, &l.Name, &kind, &l.Address, &l.Price, &l.Rating, &l.CheckIn, &l.CheckOut); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lodging{}, ErrNotFound
		}
		return Lodging{}, err
	}
	l.Kind = LodgingKind(kind)
	return l, nil
}
