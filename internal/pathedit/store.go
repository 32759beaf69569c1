package pathedit

import (
	"context"
	"time"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/itinerary"
)

// Catalog is the read side of the route catalog the editor depends on.
// Lookups report a missing edge with catalog.ErrNotFound.
type Catalog interface {
	Edge(ctx context.Context, id string) (catalog.Edge, error)
	LookupExact(ctx context.Context, originID, destinationID string, mode catalog.Mode) (catalog.Edge, error)
	LookupSwapMode(ctx context.Context, edge catalog.Edge, mode catalog.Mode) (catalog.Edge, error)
}

// Store persists legs. Mutate runs fn with exclusive access to one
// itinerary's legs; if fn returns an error nothing it did is kept.
type Store interface {
	Mutate(ctx context.Context, itineraryID string, fn func(ctx context.Context, tx Tx) error) error
	ItineraryOfLeg(ctx context.Context, legID string) (string, error)
	Legs(ctx context.Context, itineraryID string) ([]itinerary.Leg, error)
	Purge(ctx context.Context, itineraryID string) error
}

// Tx is a mutation scope bound to a single itinerary. Leg ids from other
// itineraries are reported as ErrLegNotFound.
type Tx interface {
	Status(ctx context.Context) (itinerary.Status, error)
	OrderedLegs(ctx context.Context) ([]itinerary.Leg, error)
	AddLeg(ctx context.Context, edge catalog.Edge, start, end time.Time, class itinerary.Classification) (itinerary.Leg, error)
	DeleteLeg(ctx context.Context, legID string) error
	GetLeg(ctx context.Context, legID string) (itinerary.Leg, error)
	UpdateLegEdge(ctx context.Context, legID string, edge catalog.Edge, newEnd time.Time) (itinerary.Leg, error)
}
