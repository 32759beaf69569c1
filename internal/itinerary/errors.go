package itinerary

import "errors"

var (
	ErrNotFound          = errors.New("itinerary not found")
	ErrLegNotFound       = errors.New("leg not found")
	ErrInvalidLeg        = errors.New("invalid leg")
	ErrInvalidStatus     = errors.New("unknown itinerary status")
	ErrInvalidTransition = errors.New("itinerary status transition not allowed")
	ErrUnknownReference  = errors.New("linked record does not exist")
)
