package pathedit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/itinerary"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NominalLegDuration is the length given to legs the editor creates or
// re-routes on its own.
const NominalLegDuration = 2 * time.Hour

// Editor splices legs when waypoints are inserted into or removed from an
// itinerary path. It holds no state between calls; serialization per
// itinerary comes from Store.Mutate.
type Editor struct {
	store   Store
	catalog Catalog
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewEditor(store Store, cat Catalog, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		store:   store,
		catalog: cat,
		logger:  logger,
		tracer:  otel.Tracer("backend-tripline/internal/pathedit"),
	}
}

// DeleteWaypoint removes every leg touching waypointID and, when the removed
// run had a waypoint on each side, reconnects those two with a single leg
// using the mode of the first removed leg. A missing catalog edge leaves the
// path split. The two reconnected waypoints are the outer endpoints of the
// removed run itself: the origin of its first leg and the destination of its
// last, not the neighbouring legs.
func (e *Editor) DeleteWaypoint(ctx context.Context, itineraryID, waypointID string) (err error) {
	ctx, span := e.start(ctx, "DeleteWaypoint",
		attribute.String("itinerary.id", itineraryID),
		attribute.String("waypoint.id", waypointID),
	)
	defer func() { finish(span, err) }()

	return e.store.Mutate(ctx, itineraryID, func(ctx context.Context, tx Tx) error {
		legs, err := editableLegs(ctx, tx)
		if err != nil {
			return err
		}
		run := legsTouching(legs, waypointID)
		if len(run) == 0 {
			return ErrWaypointNotInPath
		}

		first, last := legs[run[0]], legs[run[len(run)-1]]
		prev, next := first.Edge.OriginID, last.Edge.DestinationID
		if prev == waypointID {
			prev = ""
		}
		if next == waypointID {
			next = ""
		}

		for i := len(run) - 1; i >= 0; i-- {
			if err := tx.DeleteLeg(ctx, legs[run[i]].ID); err != nil {
				return err
			}
		}
		span.SetAttributes(attribute.Int("legs.removed", len(run)))

		if prev == "" || next == "" || prev == next {
			e.logger.DebugContext(ctx, "waypoint removed at path boundary",
				slog.String("itinerary_id", itineraryID),
				slog.String("waypoint_id", waypointID),
				slog.Int("legs_removed", len(run)),
			)
			return nil
		}

		edge, err := e.catalog.LookupExact(ctx, prev, next, first.Edge.Mode)
		if errors.Is(err, catalog.ErrNotFound) {
			e.logger.WarnContext(ctx, "no edge to reconnect path, leaving it split",
				slog.String("itinerary_id", itineraryID),
				slog.String("waypoint_id", waypointID),
				slog.String("origin_id", prev),
				slog.String("destination_id", next),
				slog.String("mode", string(first.Edge.Mode)),
			)
			span.AddEvent("reconnect_skipped")
			return nil
		}
		if err != nil {
			return err
		}

		leg, err := tx.AddLeg(ctx, edge, first.StartTime, first.StartTime.Add(NominalLegDuration), first.Classification)
		if err != nil {
			return err
		}
		e.logger.DebugContext(ctx, "waypoint removed and path reconnected",
			slog.String("itinerary_id", itineraryID),
			slog.String("waypoint_id", waypointID),
			slog.String("leg_id", leg.ID),
			slog.Int("legs_removed", len(run)),
		)
		return nil
	})
}

// InsertWaypointAfter adds newWaypointID next to the first leg touching
// afterWaypointID. If that leg arrives at afterWaypointID a new leg is
// appended after it. If it departs from afterWaypointID the leg itself is
// re-routed to start at the new waypoint, which drops the stretch between
// them. An appended leg that starts when the following leg does sorts after
// it, since equal start times fall back to creation order.
func (e *Editor) InsertWaypointAfter(ctx context.Context, itineraryID, newWaypointID, afterWaypointID string, mode catalog.Mode) (leg itinerary.Leg, err error) {
	ctx, span := e.start(ctx, "InsertWaypointAfter",
		attribute.String("itinerary.id", itineraryID),
		attribute.String("waypoint.id", newWaypointID),
		attribute.String("after_waypoint.id", afterWaypointID),
		attribute.String("mode", string(mode)),
	)
	defer func() { finish(span, err) }()

	if !mode.Valid() {
		return itinerary.Leg{}, catalog.ErrInvalidMode
	}

	err = e.store.Mutate(ctx, itineraryID, func(ctx context.Context, tx Tx) error {
		legs, err := editableLegs(ctx, tx)
		if err != nil {
			return err
		}
		target, insertAfter, ok := findInsertTarget(legs, afterWaypointID)
		if !ok {
			return ErrWaypointNotInPath
		}

		if insertAfter {
			edge, err := e.lookup(ctx, afterWaypointID, newWaypointID, mode)
			if err != nil {
				return err
			}
			leg, err = tx.AddLeg(ctx, edge, target.EndTime, target.EndTime.Add(NominalLegDuration), target.Classification)
			return err
		}

		edge, err := e.lookup(ctx, newWaypointID, afterWaypointID, mode)
		if err != nil {
			return err
		}
		leg, err = tx.UpdateLegEdge(ctx, target.ID, edge, target.StartTime.Add(NominalLegDuration))
		return err
	})
	if err != nil {
		return itinerary.Leg{}, err
	}

	e.logger.DebugContext(ctx, "waypoint inserted",
		slog.String("itinerary_id", itineraryID),
		slog.String("waypoint_id", newWaypointID),
		slog.String("after_waypoint_id", afterWaypointID),
		slog.String("leg_id", leg.ID),
	)
	return leg, nil
}

// ChangeTransportMode swaps a leg onto the catalog edge with the same
// endpoints and the given mode. Timing is unchanged.
func (e *Editor) ChangeTransportMode(ctx context.Context, legID string, mode catalog.Mode) (leg itinerary.Leg, err error) {
	ctx, span := e.start(ctx, "ChangeTransportMode",
		attribute.String("leg.id", legID),
		attribute.String("mode", string(mode)),
	)
	defer func() { finish(span, err) }()

	if !mode.Valid() {
		return itinerary.Leg{}, catalog.ErrInvalidMode
	}

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
		edge, err := e.catalog.LookupSwapMode(ctx, current.Edge, mode)
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%w: %s to %s by %s", ErrNoSuchRoute, current.Edge.OriginID, current.Edge.DestinationID, mode)
		}
		if err != nil {
			return err
		}
		leg, err = tx.UpdateLegEdge(ctx, legID, edge, current.EndTime)
		return err
	})
	if err != nil {
		return itinerary.Leg{}, err
	}

	e.logger.DebugContext(ctx, "transport mode changed",
		slog.String("itinerary_id", itineraryID),
		slog.String("leg_id", legID),
		slog.String("mode", string(mode)),
	)
	return leg, nil
}

func (e *Editor) lookup(ctx context.Context, originID, destinationID string, mode catalog.Mode) (catalog.Edge, error) {
	edge, err := e.catalog.LookupExact(ctx, originID, destinationID, mode)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Edge{}, fmt.Errorf("%w: %s to %s by %s", ErrNoSuchRoute, originID, destinationID, mode)
	}
	return edge, err
}

func (e *Editor) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "pathedit.Editor."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func requireEditable(ctx context.Context, tx Tx) error {
	status, err := tx.Status(ctx)
	if err != nil {
		return err
	}
	if !status.Editable() {
		return fmt.Errorf("%w: status is %s", ErrItineraryNotEditable, status)
	}
	return nil
}

// editableLegs checks the itinerary is active and returns its ordered legs,
// failing with ErrEmptyPath when there are none.
func editableLegs(ctx context.Context, tx Tx) ([]itinerary.Leg, error) {
	if err := requireEditable(ctx, tx); err != nil {
		return nil, err
	}
	legs, err := tx.OrderedLegs(ctx)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, ErrEmptyPath
	}
	return legs, nil
}
