package itinerary

import (
	"errors"
	"testing"
	"time"

	"backend-tripline/internal/catalog"
)

var testEdge = catalog.Edge{ID: "edge-1", OriginID: "wp-a", DestinationID: "wp-b", Mode: catalog.Bus, Cost: 10, Distance: 20}

func TestNewLeg(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	leg, err := NewLeg("it-1", testEdge, start, start.Add(time.Hour), Official)
	if err != nil {
		t.Fatalf("new leg: %v", err)
	}
	if leg.ID == "" || leg.ItineraryID != "it-1" || leg.Edge.ID != "edge-1" {
		t.Fatalf("unexpected leg %+v", leg)
	}

	if _, err := NewLeg("it-1", testEdge, start, start, Official); !errors.Is(err, ErrInvalidLeg) {
		t.Fatalf("expected invalid leg for empty window, got %v", err)
	}
	if _, err := NewLeg("it-1", testEdge, start, start.Add(-time.Minute), Official); !errors.Is(err, ErrInvalidLeg) {
		t.Fatalf("expected invalid leg for reversed window, got %v", err)
	}
	if _, err := NewLeg("it-1", testEdge, start, start.Add(time.Hour), "vip"); !errors.Is(err, ErrInvalidLeg) {
		t.Fatalf("expected invalid leg for classification, got %v", err)
	}
	if _, err := NewLeg("it-1", catalog.Edge{}, start, start.Add(time.Hour), Personal); !errors.Is(err, ErrInvalidLeg) {
		t.Fatalf("expected invalid leg without edge, got %v", err)
	}
}

func TestNewLegIDsFollowCreationOrder(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	prev := ""
	for i := 0; i < 50; i++ {
		leg, err := NewLeg("it-1", testEdge, start, start.Add(time.Hour), Official)
		if err != nil {
			t.Fatalf("new leg: %v", err)
		}
		if leg.ID <= prev {
			t.Fatalf("id %s does not sort after %s", leg.ID, prev)
		}
		prev = leg.ID
	}
}

func TestSortLegsBreaksTiesOnID(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	legs := []Leg{
		{ID: "c", StartTime: t0.Add(time.Hour)},
		{ID: "b", StartTime: t0},
		{ID: "a", StartTime: t0},
	}
	SortLegs(legs)
	got := []string{legs[0].ID, legs[1].ID, legs[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	SortLegs(legs)
	if legs[0].ID != "a" || legs[2].ID != "c" {
		t.Fatalf("sorting is not idempotent: %v", legs)
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus(" Completed "); err != nil || s != StatusCompleted {
		t.Fatalf("parse status: %v %q", err, s)
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if !StatusActive.Editable() || StatusCancelled.Editable() || StatusCompleted.Editable() {
		t.Fatalf("only active itineraries are editable")
	}
}
