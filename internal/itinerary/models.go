package itinerary

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(input string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(input))); s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, input)
	}
}

// Editable reports whether legs may still be added, removed or changed.
func (s Status) Editable() bool {
	return s == StatusActive
}

type Itinerary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       Status    `json:"status"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	Participants []string  `json:"participants"`
	Activities   []string  `json:"activities"`
	Lodgings     []string  `json:"lodgings"`
}
