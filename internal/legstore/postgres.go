package legstore

import (
	"context"
	"errors"
	"time"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/db"
	"backend-tripline/internal/itinerary"
	"backend-tripline/internal/pathedit"

	"github.com/jackc/pgx/v5"
)

const legSelect = `
	SELECT l.id, l.itinerary_id, l.start_time, l.end_time, l.classification,
	       e.id, e.origin_id, e.destination_id, e.mode, e.cost, e.distance
	FROM legs l
	JOIN route_edges e ON e.id = l.edge_id`

// Postgres stores legs in the legs table. Mutate locks the itinerary row
// FOR UPDATE, so edits to one itinerary queue up behind each other.
type Postgres struct {
	db db.TxQuerier
}

func NewPostgres(q db.TxQuerier) *Postgres {
	return &Postgres{db: q}
}

func (p *Postgres) Mutate(ctx context.Context, itineraryID string, fn func(ctx context.Context, tx pathedit.Tx) error) error {
	return db.InTx(ctx, p.db, func(tx pgx.Tx) error {
		status, err := itinerary.LockStatus(ctx, tx, itineraryID)
		if err != nil {
			return err
		}
		return fn(ctx, &postgresTx{q: tx, itineraryID: itineraryID, status: status})
	})
}

func (p *Postgres) ItineraryOfLeg(ctx context.Context, legID string) (string, error) {
	var id string
	if err := p.db.QueryRow(ctx, `SELECT itinerary_id FROM legs WHERE id=$1`, legID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", itinerary.ErrLegNotFound
		}
		return "", err
	}
	return id, nil
}

func (p *Postgres) Legs(ctx context.Context, itineraryID string) ([]itinerary.Leg, error) {
	var status string
	if err := p.db.QueryRow(ctx, `SELECT status FROM itineraries WHERE id=$1`, itineraryID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, itinerary.ErrNotFound
		}
		return nil, err
	}
	return orderedLegs(ctx, p.db, itineraryID)
}

// Purge deletes the itinerary's legs. Deleting the itinerary row already
// cascades to them.
func (p *Postgres) Purge(ctx context.Context, itineraryID string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM legs WHERE itinerary_id=$1`, itineraryID)
	return err
}

type postgresTx struct {
	q           db.Querier
	itineraryID string
	status      itinerary.Status
}

func (tx *postgresTx) Status(context.Context) (itinerary.Status, error) {
	return tx.status, nil
}

func (tx *postgresTx) OrderedLegs(ctx context.Context) ([]itinerary.Leg, error) {
	return orderedLegs(ctx, tx.q, tx.itineraryID)
}

func (tx *postgresTx) AddLeg(ctx context.Context, edge catalog.Edge, start, end time.Time, class itinerary.Classification) (itinerary.Leg, error) {
	leg, err := itinerary.NewLeg(tx.itineraryID, edge, start, end, class)
	if err != nil {
		return itinerary.Leg{}, err
	}
	_, err = tx.q.Exec(ctx, `
		INSERT INTO legs (id, itinerary_id, edge_id, start_time, end_time, classification)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, leg.ID, leg.ItineraryID, leg.Edge.ID, leg.StartTime, leg.EndTime, string(leg.Classification))
	if err != nil {
		return itinerary.Leg{}, err
	}
	return leg, nil
}

func (tx *postgresTx) DeleteLeg(ctx context.Context, legID string) error {
	tag, err := tx.q.Exec(ctx, `DELETE FROM legs WHERE id=$1 AND itinerary_id=$2`, legID, tx.itineraryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return itinerary.ErrLegNotFound
	}
	return nil
}

func (tx *postgresTx) GetLeg(ctx context.Context, legID string) (itinerary.Leg, error) {
	row := tx.q.QueryRow(ctx, legSelect+` WHERE l.id=$1 AND l.itinerary_id=$2`, legID, tx.itineraryID)
	leg, err := scanLeg(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return itinerary.Leg{}, itinerary.ErrLegNotFound
	}
	return leg, err
}

func (tx *postgresTx) UpdateLegEdge(ctx context.Context, legID string, edge catalog.Edge, newEnd time.Time) (itinerary.Leg, error) {
	leg, err := tx.GetLeg(ctx, legID)
	if err != nil {
		return itinerary.Leg{}, err
	}
	if err := checkEnd(leg, newEnd); err != nil {
		return itinerary.Leg{}, err
	}
	leg.Edge = edge
	leg.EndTime = newEnd.UTC()

	tag, err := tx.q.Exec(ctx, `
		UPDATE legs SET edge_id=$3, end_time=$4
		WHERE id=$1 AND itinerary_id=$2
	`, legID, tx.itineraryID, edge.ID, leg.EndTime)
	if err != nil {
		return itinerary.Leg{}, err
	}
	if tag.RowsAffected() == 0 {
		return itinerary.Leg{}, itinerary.ErrLegNotFound
	}
	return leg, nil
}

func orderedLegs(ctx context.Context, q db.Querier, itineraryID string) ([]itinerary.Leg, error) {
	rows, err := q.Query(ctx, legSelect+` WHERE l.itinerary_id=$1 ORDER BY l.start_time, l.id`, itineraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	legs := []itinerary.Leg{}
	for rows.Next() {
		leg, err := scanLeg(rows)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	itinerary.SortLegs(legs)
	return legs, nil
}

func scanLeg(row pgx.Row) (itinerary.Leg, error) {
	var (
		leg         itinerary.Leg
		class, mode string
	)
	err := row.Scan(
		&leg.ID, &leg.ItineraryID, &leg.StartTime, &leg.EndTime, &class,
		&leg.Edge.ID, &leg.Edge.OriginID, &leg.Edge.DestinationID, &mode, &leg.Edge.Cost, &leg.Edge.Distance,
	)
	if err != nil {
		return itinerary.Leg{}, err
	}
	leg.Classification = itinerary.Classification(class)
	leg.Edge.Mode = catalog.Mode(mode)
	leg.StartTime, leg.EndTime = leg.StartTime.UTC(), leg.EndTime.UTC()
	return leg, nil
}
