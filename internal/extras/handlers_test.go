package extras

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func newTestApp(svc *Service) *fiber.App {
	app := fiber.New()
	pass := func(c *fiber.Ctx) error { return c.Next() }
	RegisterActivityRoutes(app.Group("/activities"), svc, pass)
	RegisterLodgingRoutes(app.Group("/lodgings"), svc, pass)
	return app
}

func TestActivityHandlers(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO activities`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`FROM activities WHERE id=\$1`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	app := newTestApp(NewService(mock))

	body := `{"kind":"excursion","address":"Harbour","duration_hours":2,"starts_at":"2024-06-01T09:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/activities/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create activity status: %v %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/activities/missing", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLodgingHandlersValidation(t *testing.T) {
	app := newTestApp(NewService(nil))

	body := `{"name":"Inn","kind":"castle","address":"Street","price":10,"rating":3,"check_in":"2024-06-01T14:00:00Z","check_out":"2024-06-02T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/lodgings/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}
