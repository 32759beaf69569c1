package catalog

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("route edge not found")
	ErrDuplicateEdge = errors.New("route edge already exists for origin, destination and mode")
	ErrInvalidEdge   = errors.New("route edge invalid")
	ErrInvalidMode   = errors.New("unknown transport mode")
	ErrEdgeInUse     = errors.New("route edge is used by itinerary legs")

	errUnknownWaypoint = errors.New("origin or destination waypoint does not exist")
)

// Mode is the transport used to travel a route edge.
type Mode string

const (
	Bus   Mode = "bus"
	Plane Mode = "plane"
	Car   Mode = "car"
	Ferry Mode = "ferry"
	Train Mode = "train"
)

// ParseMode normalises user input into a Mode.
func ParseMode(input string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "bus", "coach":
		return Bus, nil
	case "plane", "flight", "air":
		return Plane, nil
	case "car", "auto":
		return Car, nil
	case "ferry", "boat":
		return Ferry, nil
	case "train", "rail":
		return Train, nil
	default:
		return "", ErrInvalidMode
	}
}

func (m Mode) Valid() bool {
	switch m {
	case Bus, Plane, Car, Ferry, Train:
		return true
	}
	return false
}

// Edge is one precomputed transport option between two waypoints.
// (OriginID, DestinationID, Mode) is unique across the catalog.
type Edge struct {
	ID            string `json:"id" bson:"_id"`
	OriginID      string `json:"origin_id" bson:"origin_id"`
	DestinationID string `json:"destination_id" bson:"destination_id"`
	Mode          Mode   `json:"mode" bson:"mode"`
	Cost          int64  `json:"cost" bson:"cost"`
	Distance      int64  `json:"distance" bson:"distance"`
}

// Touches reports whether the edge starts or ends at the waypoint.
func (e Edge) Touches(waypointID string) bool {
	return e.OriginID == waypointID || e.DestinationID == waypointID
}

func (e Edge) validate() error {
	switch {
	case e.OriginID == "" || e.DestinationID == "":
		return errors.Join(ErrInvalidEdge, errors.New("origin_id and destination_id required"))
	case e.OriginID == e.DestinationID:
		return errors.Join(ErrInvalidEdge, errors.New("origin and destination must differ"))
	case !e.Mode.Valid():
		return errors.Join(ErrInvalidEdge, ErrInvalidMode)
	case e.Cost <= 0 || e.Distance <= 0:
		return errors.Join(ErrInvalidEdge, errors.New("cost and distance must be positive"))
	}
	return nil
}

// Filter narrows ListEdges. Empty fields match everything.
type Filter struct {
	OriginID      string
	DestinationID string
	Mode          Mode
}
