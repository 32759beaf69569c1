package pathedit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/itinerary"

	"go.opentelemetry.io/otel/attribute"
)

// AppendLeg adds a leg travelling the catalog edge edgeID. No splicing is
// done; the caller is building the path leg by leg.
func (e *Editor) AppendLeg(ctx context.Context, itineraryID, edgeID string, start, end time.Time, class itinerary.Classification) (leg itinerary.Leg, err error) {
	ctx, span := e.start(ctx, "AppendLeg",
		attribute.String("itinerary.id", itineraryID),
		attribute.String("edge.id", edgeID),
	)
	defer func() { finish(span, err) }()

	err = e.store.Mutate(ctx, itineraryID, func(ctx context.Context, tx Tx) error {
		if err := requireEditable(ctx, tx); err != nil {
			return err
		}
		edge, err := e.catalog.Edge(ctx, edgeID)
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%w: edge %s", ErrNoSuchRoute, edgeID)
		}
		if err != nil {
			return err
		}
		leg, err = tx.AddLeg(ctx, edge, start, end, class)
		return err
	})
	if err != nil {
		return itinerary.Leg{}, err
	}

	e.logger.DebugContext(ctx, "leg appended",
		slog.String("itinerary_id", itineraryID),
		slog.String("leg_id", leg.ID),
		slog.String("edge_id", edgeID),
	)
	return leg, nil
}

// RemoveLeg deletes a single leg without reconnecting its neighbours and
// returns what was removed.
func (e *Editor) RemoveLeg(ctx context.Context, legID string) (removed itinerary.Leg, err error) {
	ctx, span := e.start(ctx, "RemoveLeg", attribute.String("leg.id", legID))
	defer func() { finish(span, err) }()

	itineraryID, err := e.store.ItineraryOfLeg(ctx, legID)
	if err != nil {
		return itinerary.Leg{}, err
	}
	span.SetAttributes(attribute.String("itinerary.id", itineraryID))

	err = e.store.Mutate(ctx, itineraryID, func(ctx context.Context, tx Tx) error {
		if err := requireEditable(ctx, tx); err != nil {
			return err
		}
		if removed, err = tx.GetLeg(ctx, legID); err != nil {
			return err
		}
		return tx.DeleteLeg(ctx, legID)
	})
	if err != nil {
		return itinerary.Leg{}, err
	}

	e.logger.DebugContext(ctx, "leg removed",
		slog.String("itinerary_id", itineraryID),
		slog.String("leg_id", legID),
	)
	return removed, nil
}

// ExtendLeg moves a leg's end time later, keeping its edge.
func (e *Editor) ExtendLeg(ctx context.Context, legID string, newEnd time.Time) (leg itinerary.Leg, err error) {
	ctx, span := e.start(ctx, "ExtendLeg", attribute.String("leg.id", legID))
	defer func() { finish(span, err) }()

	itineraryID, err := e.store.ItineraryOfLeg(ctx, legID)
	if err != nil {
		return itinerary.Leg{}, err
	}
	span.SetAttributes(attribute.String("itinerary.id", itineraryID))

	err = e.store.Mutate(ctx, itineraryID, func(ctx context.Context, tx Tx) error {
		if err := requireEditable(ctx, tx); err != nil {
			return err
		}
		current, err := tx.GetLeg(ctx, legID)
		if err != nil {
			return err
		}
		if !newEnd.After(current.EndTime) {
			return ErrInvalidExtension
		}
		leg, err = tx.UpdateLegEdge(ctx, legID, current.Edge, newEnd)
		return err
	})
	if err != nil {
		return itinerary.Leg{}, err
	}

	e.logger.DebugContext(ctx, "leg extended",
		slog.String("itinerary_id", itineraryID),
		slog.String("leg_id", legID),
		slog.Time("end_time", leg.EndTime),
	)
	return leg, nil
}
