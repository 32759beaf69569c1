package waypoint

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrNotFound      = errors.New("waypoint not found")
	ErrDuplicateName = errors.New("waypoint name already taken")
	ErrInvalidName   = errors.New("waypoint name must be 1 to 50 characters")
	ErrInUse         = errors.New("waypoint is referenced by route edges or extras")
)

const maxNameLength = 50

type Waypoint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
