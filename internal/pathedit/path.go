package pathedit

import (
	"context"

	"backend-tripline/internal/itinerary"

	"go.opentelemetry.io/otel/attribute"
)

// PathView is a read-only snapshot of an itinerary's ordered legs.
// Gaps lists every index i where leg i does not end where leg i+1 starts.
type PathView struct {
	ItineraryID   string          `json:"itinerary_id"`
	Legs          []itinerary.Leg `json:"legs"`
	Waypoints     []string        `json:"waypoints"`
	TotalCost     int64           `json:"total_cost"`
	TotalDistance int64           `json:"total_distance"`
	Continuous    bool            `json:"continuous"`
	Gaps          []int           `json:"gaps"`
}

func (e *Editor) Path(ctx context.Context, itineraryID string) (view PathView, err error) {
	ctx, span := e.start(ctx, "Path", attribute.String("itinerary.id", itineraryID))
	defer func() { finish(span, err) }()

	legs, err := e.store.Legs(ctx, itineraryID)
	if err != nil {
		return PathView{}, err
	}
	return BuildPathView(itineraryID, legs), nil
}

// BuildPathView orders legs and derives totals and continuity.
func BuildPathView(itineraryID string, legs []itinerary.Leg) PathView {
	ordered := append([]itinerary.Leg(nil), legs...)
	itinerary.SortLegs(ordered)

	view := PathView{
		ItineraryID: itineraryID,
		Legs:        ordered,
		Waypoints:   []string{},
		Gaps:        []int{},
	}
	if view.Legs == nil {
		view.Legs = []itinerary.Leg{}
	}
	for i, leg := range ordered {
		view.TotalCost += leg.Edge.Cost
		view.TotalDistance += leg.Edge.Distance
		if i == 0 {
			view.Waypoints = append(view.Waypoints, leg.Edge.OriginID)
		} else if ordered[i-1].Edge.DestinationID != leg.Edge.OriginID {
			view.Gaps = append(view.Gaps, i-1)
			view.Waypoints = append(view.Waypoints, leg.Edge.OriginID)
		}
		view.Waypoints = append(view.Waypoints, leg.Edge.DestinationID)
	}
	view.Continuous = len(view.Gaps) == 0
	return view
}
