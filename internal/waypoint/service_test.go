package waypoint

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
)

func TestWaypointCRUD(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO waypoints`).
		WithArgs(pgxmock.AnyArg(), "Lisbon").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	svc := NewService(mock)
	wp, err := svc.CreateWaypoint(context.Background(), "  Lisbon ")
	if err != nil {
		t.Fatalf("create waypoint: %v", err)
	}
	if wp.Name != "Lisbon" || !wp.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected waypoint %+v", wp)
	}

	mock.ExpectQuery(`SELECT id, name, created_at FROM waypoints WHERE id=\$1`).
		WithArgs(wp.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow(wp.ID, wp.Name, wp.CreatedAt))

	loaded, err := svc.GetWaypoint(context.Background(), wp.ID)
	if err != nil {
		t.Fatalf("get waypoint: %v", err)
	}
	if loaded.ID != wp.ID {
		t.Fatalf("unexpected waypoint")
	}

	mock.ExpectQuery(`SELECT id, name, created_at FROM waypoints WHERE id=\$1`).
		WithArgs(wp.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow(wp.ID, wp.Name, wp.CreatedAt))
	mock.ExpectExec(`UPDATE waypoints SET name=\$2 WHERE id=\$1`).
		WithArgs(wp.ID, "Porto").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := svc.RenameWaypoint(context.Background(), wp.ID, "Porto")
	if err != nil {
		t.Fatalf("rename waypoint: %v", err)
	}
	if updated.Name != "Porto" {
		t.Fatalf("expected updated name")
	}

	mock.ExpectQuery(`SELECT id, name, created_at FROM waypoints ORDER BY name`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(wp.ID, "Porto", createdAt).
			AddRow("wp-2", "Seville", createdAt))
	list, err := svc.ListWaypoints(context.Background())
	if err != nil || len(list) != 2 {
		t.Fatalf("list waypoints: %v (%d)", err, len(list))
	}

	mock.ExpectExec(`DELETE FROM waypoints`).WithArgs(wp.ID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.DeleteWaypoint(context.Background(), wp.ID); err != nil {
		t.Fatalf("delete waypoint: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWaypointNameValidation(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.CreateWaypoint(context.Background(), "   "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := svc.CreateWaypoint(context.Background(), strings.Repeat("x", 51)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected invalid name for long input, got %v", err)
	}
	if _, err := svc.RenameWaypoint(context.Background(), "wp-1", ""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected invalid name on rename, got %v", err)
	}
}

func TestWaypointDuplicateName(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO waypoints`).
		WithArgs(pgxmock.AnyArg(), "Lisbon").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	svc := NewService(mock)
	if _, err := svc.CreateWaypoint(context.Background(), "Lisbon"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected duplicate name, got %v", err)
	}
}

func TestWaypointNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM waypoints WHERE id=\$1`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`DELETE FROM waypoints`).WithArgs("missing").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	svc := NewService(mock)
	if _, err := svc.GetWaypoint(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.DeleteWaypoint(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}

func TestWaypointListError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM waypoints ORDER BY name`).WillReturnError(errQuery)

	svc := NewService(mock)
	if _, err := svc.ListWaypoints(context.Background()); !errors.Is(err, errQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestDeleteWaypointInUse(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM waypoints`).WithArgs("wp-1").WillReturnError(&pgconn.PgError{Code: foreignKeyViolation})

	svc := NewService(mock)
	if err := svc.DeleteWaypoint(context.Background(), "wp-1"); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected in use, got %v", err)
	}
}

var errQuery = errors.New("query error")
