package legstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/itinerary"
	"backend-tripline/internal/pathedit"
)

// Memory keeps legs in process. Each itinerary has its own mutex held for
// the whole Mutate call, and edits are applied to a copy that replaces the
// stored legs only when fn succeeds. With a nil StatusReader every
// itinerary is treated as active. Itinerary ids are cloned before they are
// kept, since callers may pass strings backed by a reused request buffer.
type Memory struct {
	status StatusReader

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	legs  map[string]map[string]itinerary.Leg
	owner map[string]string
}

func NewMemory(status StatusReader) *Memory {
	return &Memory{
		status: status,
		locks:  map[string]*sync.Mutex{},
		legs:   map[string]map[string]itinerary.Leg{},
		owner:  map[string]string{},
	}
}

// Seed stores legs as-is, bypassing the mutation scope.
func (m *Memory) Seed(itineraryID string, legs ...itinerary.Leg) {
	itineraryID = strings.Clone(itineraryID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.legs[itineraryID] == nil {
		m.legs[itineraryID] = map[string]itinerary.Leg{}
	}
	for _, leg := range legs {
		leg.ItineraryID = itineraryID
		m.legs[itineraryID][leg.ID] = leg
		m.owner[leg.ID] = itineraryID
	}
}

func (m *Memory) Mutate(ctx context.Context, itineraryID string, fn func(ctx context.Context, tx pathedit.Tx) error) error {
	itineraryID = strings.Clone(itineraryID)
	lock := m.lockFor(itineraryID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	working := make(map[string]itinerary.Leg, len(m.legs[itineraryID]))
	for id, leg := range m.legs[itineraryID] {
		working[id] = leg
	}
	m.mu.Unlock()

	if err := fn(ctx, &memoryTx{store: m, itineraryID: itineraryID, legs: working}); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.legs[itineraryID] {
		delete(m.owner, id)
	}
	for id := range working {
		m.owner[id] = itineraryID
	}
	m.legs[itineraryID] = working
	return nil
}

func (m *Memory) ItineraryOfLeg(_ context.Context, legID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.owner[legID]
	if !ok {
		return "", itinerary.ErrLegNotFound
	}
	return id, nil
}

func (m *Memory) Legs(ctx context.Context, itineraryID string) ([]itinerary.Leg, error) {
	if m.status != nil {
		if _, err := m.status.Status(ctx, itineraryID); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedLegs(m.legs[itineraryID]), nil
}

func (m *Memory) Purge(_ context.Context, itineraryID string) error {
	itineraryID = strings.Clone(itineraryID)
	lock := m.lockFor(itineraryID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.legs[itineraryID] {
		delete(m.owner, id)
	}
	delete(m.legs, itineraryID)
	return nil
}

func (m *Memory) lockFor(itineraryID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[itineraryID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[itineraryID] = lock
	}
	return lock
}

type memoryTx struct {
	store       *Memory
	itineraryID string
	legs        map[string]itinerary.Leg
}

func (tx *memoryTx) Status(ctx context.Context) (itinerary.Status, error) {
	if tx.store.status == nil {
		return itinerary.StatusActive, nil
	}
	return tx.store.status.Status(ctx, tx.itineraryID)
}

func (tx *memoryTx) OrderedLegs(context.Context) ([]itinerary.Leg, error) {
	return sortedLegs(tx.legs), nil
}

func (tx *memoryTx) AddLeg(_ context.Context, edge catalog.Edge, start, end time.Time, class itinerary.Classification) (itinerary.Leg, error) {
	leg, err := itinerary.NewLeg(tx.itineraryID, edge, start, end, class)
	if err != nil {
		return itinerary.Leg{}, err
	}
	tx.legs[leg.ID] = leg
	return leg, nil
}

func (tx *memoryTx) DeleteLeg(_ context.Context, legID string) error {
	if _, ok := tx.legs[legID]; !ok {
		return itinerary.ErrLegNotFound
	}
	delete(tx.legs, legID)
	return nil
}

func (tx *memoryTx) GetLeg(_ context.Context, legID string) (itinerary.Leg, error) {
	leg, ok := tx.legs[legID]
	if !ok {
		return itinerary.Leg{}, itinerary.ErrLegNotFound
	}
	return leg, nil
}

func (tx *memoryTx) UpdateLegEdge(_ context.Context, legID string, edge catalog.Edge, newEnd time.Time) (itinerary.Leg, error) {
	leg, ok := tx.legs[legID]
	if !ok {
		return itinerary.Leg{}, itinerary.ErrLegNotFound
	}
	if err := checkEnd(leg, newEnd); err != nil {
		return itinerary.Leg{}, err
	}
	leg.Edge = edge
	leg.EndTime = newEnd.UTC()
	tx.legs[legID] = leg
	return leg, nil
}

func sortedLegs(byID map[string]itinerary.Leg) []itinerary.Leg {
	out := make([]itinerary.Leg, 0, len(byID))
	for _, leg := range byID {
		out = append(out, leg)
	}
	itinerary.SortLegs(out)
	return out
}
