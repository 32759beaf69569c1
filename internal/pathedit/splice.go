package pathedit

import "backend-tripline/internal/itinerary"

// legsTouching returns the indices of legs that start or end at waypointID,
// in path order.
func legsTouching(legs []itinerary.Leg, waypointID string) []int {
	var idx []int
	for i, leg := range legs {
		if leg.Edge.Touches(waypointID) {
			idx = append(idx, i)
		}
	}
	return idx
}

// findInsertTarget scans legs in order and stops at the first one that
// arrives at or departs from waypointID. insertAfter is true when the leg
// arrives there.
func findInsertTarget(legs []itinerary.Leg, waypointID string) (target itinerary.Leg, insertAfter, ok bool) {
	for _, leg := range legs {
		switch waypointID {
		case leg.Edge.DestinationID:
			return leg, true, true
		case leg.Edge.OriginID:
			return leg, false, true
		}
	}
	return itinerary.Leg{}, false, false
}
