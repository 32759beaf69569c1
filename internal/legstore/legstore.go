// Package legstore holds the persistence adapters behind pathedit.Store.
// Every adapter returns legs ordered with itinerary.SortLegs and reports
// unknown legs as itinerary.ErrLegNotFound.
package legstore

import (
	"context"
	"fmt"
	"time"

	"backend-tripline/internal/itinerary"
)

// StatusReader resolves an itinerary's lifecycle status for stores that do
// not keep itineraries themselves.
type StatusReader interface {
	Status(ctx context.Context, itineraryID string) (itinerary.Status, error)
}

func checkEnd(leg itinerary.Leg, newEnd time.Time) error {
	if !newEnd.After(leg.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", itinerary.ErrInvalidLeg)
	}
	return nil
}
