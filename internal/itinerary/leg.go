package itinerary

import (
	"fmt"
	"sort"
	"time"

	"backend-tripline/internal/catalog"

	"github.com/google/uuid"
)

// Classification tags how a leg was planned.
type Classification string

const (
	Official    Classification = "official"
	Recommended Classification = "recommended"
	Personal    Classification = "personal"
)

func (c Classification) Valid() bool {
	switch c {
	case Official, Recommended, Personal:
		return true
	}
	return false
}

// Leg is one hop of an itinerary, travelling a catalog edge during
// [StartTime, EndTime). The edge is a snapshot of the catalog entry the
// leg references by Edge.ID.
type Leg struct {
	ID             string         `json:"id" bson:"_id"`
	ItineraryID    string         `json:"itinerary_id" bson:"itinerary_id"`
	Edge           catalog.Edge   `json:"edge" bson:"edge"`
	StartTime      time.Time      `json:"start_time" bson:"start_time"`
	EndTime        time.Time      `json:"end_time" bson:"end_time"`
	Classification Classification `json:"classification" bson:"classification"`
}

// NewLeg validates and builds a leg with a fresh id. Ids are UUIDv7, so
// they sort in creation order within a process.
func NewLeg(itineraryID string, edge catalog.Edge, start, end time.Time, class Classification) (Leg, error) {
	if !end.After(start) {
		return Leg{}, fmt.Errorf("%w: end_time must be after start_time", ErrInvalidLeg)
	}
	if !class.Valid() {
		return Leg{}, fmt.Errorf("%w: classification %q", ErrInvalidLeg, class)
	}
	if edge.ID == "" {
		return Leg{}, fmt.Errorf("%w: edge required", ErrInvalidLeg)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Leg{}, err
	}
	return Leg{
		ID:             id.String(),
		ItineraryID:    itineraryID,
		Edge:           edge,
		StartTime:      start.UTC(),
		EndTime:        end.UTC(),
		Classification: class,
	}, nil
}

// SortLegs orders legs by start time, breaking ties on id so the order is
// the same no matter which store produced the slice. For legs built by
// NewLeg a tie therefore falls back to creation order.
func SortLegs(legs []Leg) {
	sort.SliceStable(legs, func(i, j int) bool {
		if !legs[i].StartTime.Equal(legs[j].StartTime) {
			return legs[i].StartTime.Before(legs[j].StartTime)
		}
		return legs[i].ID < legs[j].ID
	})
}
