package extras

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidActivity = errors.New("invalid activity")
	ErrInvalidLodging  = errors.New("invalid lodging")

	errUnknownWaypoint = errors.New("waypoint does not exist")
)

type ActivityKind string

const (
	Workshop    ActivityKind = "workshop"
	Performance ActivityKind = "performance"
	Exhibition  ActivityKind = "exhibition"
	Ceremony    ActivityKind = "ceremony"
	Excursion   ActivityKind = "excursion"
	Networking  ActivityKind = "networking"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case Workshop, Performance, Exhibition, Ceremony, Excursion, Networking:
		return true
	}
	return false
}

type Activity struct {
	ID            string       `json:"id"`
	WaypointID    string       `json:"waypoint_id,omitempty"`
	Kind          ActivityKind `json:"kind"`
	Address       string       `json:"address"`
	DurationHours int          `json:"duration_hours"`
	StartsAt      time.Time    `json:"starts_at"`
}

func (a Activity) validate() error {
	switch {
	case !a.Kind.Valid():
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidActivity, a.Kind)
	case strings.TrimSpace(a.Address) == "":
		return fmt.Errorf("%w: address required", ErrInvalidActivity)
	case a.DurationHours <= 0:
		return fmt.Errorf("%w: duration must be a positive number of hours", ErrInvalidActivity)
	case a.StartsAt.IsZero():
		return fmt.Errorf("%w: starts_at required", ErrInvalidActivity)
	}
	return nil
}

type LodgingKind string

const (
	Hotel      LodgingKind = "hotel"
	Hostel     LodgingKind = "hostel"
	Apartments LodgingKind = "apartments"
	Flat       LodgingKind = "flat"
)

func (k LodgingKind) Valid() bool {
	switch k {
	case Hotel, Hostel, Apartments, Flat:
		return true
	}
	return false
}

const (
	maxLodgingName    = 100
	maxLodgingAddress = 50
	maxRating         = 5
)

type Lodging struct {
	ID         string      `json:"id"`
	WaypointID string      `json:"waypoint_id,omitempty"`
	Name       string      `json:"name"`
	Kind       LodgingKind `json:"kind"`
	Address    string      `json:"address"`
	Price      int64       `json:"price"`
	Rating     int         `json:"rating"`
	CheckIn    time.Time   `json:"check_in"`
	CheckOut   time.Time   `json:"check_out"`
}

func (l Lodging) validate() error {
	if n := utf8.RuneCountInString(l.Name); n < 1 || n > maxLodgingName {
		return fmt.Errorf("%w: name must be 1 to %d characters", ErrInvalidLodging, maxLodgingName)
	}
	if n := utf8.RuneCountInString(l.Address); n < 1 || n > maxLodgingAddress {
		return fmt.Errorf("%w: address must be 1 to %d characters", ErrInvalidLodging, maxLodgingAddress)
	}
	switch {
	case !l.Kind.Valid():
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidLodging, l.Kind)
	case l.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidLodging)
	case l.Rating < 1 || l.Rating > maxRating:
		return fmt.Errorf("%w: rating must be between 1 and %d", ErrInvalidLodging, maxRating)
	case !l.CheckOut.After(l.CheckIn):
		return fmt.Errorf("%w: check_out must be after check_in", ErrInvalidLodging)
	}
	return nil
}
