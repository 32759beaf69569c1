package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"backend-tripline/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const edgeColumns = `id, origin_id, destination_id, mode, cost, distance`

type Service struct {
	db    db.Querier
	cache *Cache
}

func NewService(db db.Querier, cache *Cache) *Service {
	return &Service{db: db, cache: cache}
}

func (s *Service) CreateEdge(ctx context.Context, edge Edge) (Edge, error) {
	if err := edge.validate(); err != nil {
		return Edge{}, err
	}
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO route_edges (id, origin_id, destination_id, mode, cost, distance)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, edge.ID, edge.OriginID, edge.DestinationID, string(edge.Mode), edge.Cost, edge.Distance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Edge{}, ErrDuplicateEdge
		}
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return Edge{}, errors.Join(ErrInvalidEdge, errUnknownWaypoint)
		}
		return Edge{}, err
	}
	return edge, nil
}

// Edge returns the catalog entry with the given id.
func (s *Service) Edge(ctx context.Context, id string) (Edge, error) {
	row := s.db.QueryRow(ctx, `SELECT `+edgeColumns+` FROM route_edges WHERE id=$1`, id)
	return scanEdge(row)
}

// LookupExact finds the edge for an (origin, destination, mode) triple.
func (s *Service) LookupExact(ctx context.Context, originID, destinationID string, mode Mode) (Edge, error) {
	if edge, ok := s.cache.get(ctx, originID, destinationID, mode); ok {
		return edge, nil
	}
	row := s.db.QueryRow(ctx, `
		SELECT `+edgeColumns+`
		FROM route_edges
		WHERE origin_id=$1 AND destination_id=$2 AND mode=$3
	`, originID, destinationID, string(mode))
	edge, err := scanEdge(row)
	if err != nil {
		return Edge{}, err
	}
	s.cache.put(ctx, edge)
	return edge, nil
}

// LookupSwapMode finds the edge sharing edge's endpoints under another mode.
func (s *Service) LookupSwapMode(ctx context.Context, edge Edge, mode Mode) (Edge, error) {
	return s.LookupExact(ctx, edge.OriginID, edge.DestinationID, mode)
}

func (s *Service) ListEdges(ctx context.Context, f Filter) ([]Edge, error) {
	var (
		conds []string
		args  []any
	)
	add := func(col, val string) {
		args = append(args, val)
		conds = append(conds, col+"=$"+strconv.Itoa(len(args)))
	}
	if f.OriginID != "" {
		add("origin_id", f.OriginID)
	}
	if f.DestinationID != "" {
		add("destination_id", f.DestinationID)
	}
	if f.Mode != "" {
		add("mode", string(f.Mode))
	}

	query := `SELECT ` + edgeColumns + ` FROM route_edges`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY origin_id, destination_id, mode`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

// UpdateEdge changes the cost and distance of an edge. Endpoints and mode
// are the lookup key and cannot change; delete and recreate instead.
func (s *Service) UpdateEdge(ctx context.Context, id string, cost, distance int64) (Edge, error) {
	edge, err := s.Edge(ctx, id)
	if err != nil {
		return Edge{}, err
	}
	if cost > 0 {
		edge.Cost = cost
	}
	if distance > 0 {
		edge.Distance = distance
	}
	_, err = s.db.Exec(ctx, `UPDATE route_edges SET cost=$2, distance=$3 WHERE id=$1`, edge.ID, edge.Cost, edge.Distance)
	if err != nil {
		return Edge{}, err
	}
	s.cache.invalidate(ctx, edge)
	return edge, nil
}

func (s *Service) DeleteEdge(ctx context.Context, id string) error {
	edge, err := s.Edge(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM route_edges WHERE id=$1`, id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrEdgeInUse
		}
		return err
	}
	s.cache.invalidate(ctx, edge)
	return nil
}

func scanEdge(row pgx.Row) (Edge, error) {
	var (
		edge Edge
		mode string
	)
	if err := row.Scan(&edge.ID, &edge.OriginID, &edge.DestinationID, &mode, &edge.Cost, &edge.Distance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Edge{}, ErrNotFound
		}
		return Edge{}, err
	}
	edge.Mode = Mode(mode)
	return edge, nil
}
