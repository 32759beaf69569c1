package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend-tripline/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

type Service struct {
	db db.TxQuerier
}

func NewService(db db.TxQuerier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, name, createdBy string) (Itinerary, error) {
	it := Itinerary{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Status:       StatusActive,
		CreatedBy:    createdBy,
		Participants: []string{},
		Activities:   []string{},
		Lodgings:     []string{},
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO itineraries (id, name, status, created_by)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, it.ID, it.Name, string(it.Status), it.CreatedBy)
	if err := row.Scan(&it.CreatedAt); err != nil {
		return Itinerary{}, err
	}
	return it, nil
}

// Get loads an itinerary together with its attachment ids.
func (s *Service) Get(ctx context.Context, id string) (Itinerary, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, status, created_by, created_at
		FROM itineraries WHERE id=$1
	`, id)
	it, err := scanItinerary(row)
	if err != nil {
		return Itinerary{}, err
	}
	if it.Participants, err = s.Participants(ctx, id); err != nil {
		return Itinerary{}, err
	}
	if it.Activities, err = s.Activities(ctx, id); err != nil {
		return Itinerary{}, err
	}
	if it.Lodgings, err = s.Lodgings(ctx, id); err != nil {
		return Itinerary{}, err
	}
	return it, nil
}

// List returns itineraries, optionally restricted to one status.
func (s *Service) List(ctx context.Context, status Status) ([]Itinerary, error) {
	query := `SELECT id, name, status, created_by, created_at FROM itineraries`
	var args []any
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`
	return s.queryItineraries(ctx, query, args...)
}

// ListForParticipant returns the itineraries a user takes part in.
func (s *Service) ListForParticipant(ctx context.Context, userID string, status Status) ([]Itinerary, error) {
	query := `
		SELECT i.id, i.name, i.status, i.created_by, i.created_at
		FROM itineraries i
		JOIN itinerary_participants p ON p.itinerary_id = i.id
		WHERE p.participant_id=$1`
	args := []any{userID}
	if status != "" {
		query += ` AND i.status=$2`
		args = append(args, string(status))
	}
	query += ` ORDER BY i.created_at DESC, i.id`
	return s.queryItineraries(ctx, query, args...)
}

func (s *Service) Status(ctx context.Context, id string) (Status, error) {
	var status string
	if err := s.db.QueryRow(ctx, `SELECT status FROM itineraries WHERE id=$1`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return Status(status), nil
}

func (s *Service) Complete(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusCancelled)
}

// transition moves an active itinerary into a terminal state. The row lock
// serializes it against leg edits running in the postgres leg store.
func (s *Service) transition(ctx context.Context, id string, to Status) error {
	return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		current, err := LockStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if current != StatusActive {
			return ErrInvalidTransition
		}
		_, err = tx.Exec(ctx, `UPDATE itineraries SET status=$2 WHERE id=$1`, id, string(to))
		return err
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM itineraries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) LinkParticipants(ctx context.Context, id string, userIDs []string) error {
	return s.link(ctx, "itinerary_participants", "participant_id", id, userIDs)
}

func (s *Service) LinkActivities(ctx context.Context, id string, activityIDs []string) error {
	return s.link(ctx, "itinerary_activities", "activity_id", id, activityIDs)
}

func (s *Service) LinkLodgings(ctx context.Context, id string, lodgingIDs []string) error {
	return s.link(ctx, "itinerary_lodgings", "lodging_id", id, lodgingIDs)
}

func (s *Service) Participants(ctx context.Context, id string) ([]string, error) {
	return s.linked(ctx, "itinerary_participants", "participant_id", id)
}

func (s *Service) Activities(ctx context.Context, id string) ([]string, error) {
	return s.linked(ctx, "itinerary_activities", "activity_id", id)
}

func (s *Service) Lodgings(ctx context.Context, id string) ([]string, error) {
	return s.linked(ctx, "itinerary_lodgings", "lodging_id", id)
}

// link replaces the whole attachment set in one transaction.
func (s *Service) link(ctx context.Context, table, column, id string, ids []string) error {
	return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := LockStatus(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE itinerary_id=$1`, id); err != nil {
			return err
		}
		for _, ref := range dedupe(ids) {
			if _, err := tx.Exec(ctx, `INSERT INTO `+table+` (itinerary_id, `+column+`) VALUES ($1,$2)`, id, ref); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
					return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
				}
				return err
			}
		}
		return nil
	})
}

func (s *Service) linked(ctx context.Context, table, column, id string) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT `+column+` FROM `+table+` WHERE itinerary_id=$1 ORDER BY `+column, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Service) queryItineraries(ctx context.Context, query string, args ...any) ([]Itinerary, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// LockStatus reads an itinerary's status under a row lock held until tx ends.
func LockStatus(ctx context.Context, tx pgx.Tx, id string) (Status, error) {
	var status string
	if err := tx.QueryRow(ctx, `SELECT status FROM itineraries WHERE id=$1 FOR UPDATE`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return Status(status), nil
}

func scanItinerary(row pgx.Row) (Itinerary, error) {
	var (
		it     Itinerary
		status string
	)
	if err := row.Scan(&it.ID, &it.Name, &status, &it.CreatedBy, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Itinerary{}, ErrNotFound
		}
		return Itinerary{}, err
	}
	it.Status = Status(status)
	return it, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
