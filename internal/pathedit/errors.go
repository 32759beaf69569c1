package pathedit

import (
	"errors"

	"backend-tripline/internal/itinerary"
)

var (
	ErrEmptyPath            = errors.New("itinerary has no legs")
	ErrWaypointNotInPath    = errors.New("waypoint is not on the itinerary path")
	ErrLegNotFound          = itinerary.ErrLegNotFound
	ErrNoSuchRoute          = errors.New("no route edge for the requested endpoints and mode")
	ErrItineraryNotEditable = errors.New("itinerary is not active")
	ErrInvalidExtension     = errors.New("new end time must be after the current end time")
)
