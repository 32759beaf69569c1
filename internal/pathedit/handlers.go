package pathedit

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/itinerary"

	"github.com/gofiber/fiber/v2"
)

// Notifier receives a JSON change event after every successful edit.
type Notifier interface {
	Broadcast(itineraryID string, payload []byte)
}

type change struct {
	ItineraryID string    `json:"itinerary_id"`
	Op          string    `json:"op"`
	LegID       string    `json:"leg_id,omitempty"`
	At          time.Time `json:"at"`
}

// RegisterRoutes mounts the path editing endpoints on the app root since
// they span both /itineraries and /legs.
func RegisterRoutes(r fiber.Router, editor *Editor, notifier Notifier, guard fiber.Handler) {
	notify := func(itineraryID, op, legID string) {
		if notifier == nil {
			return
		}
		payload, err := json.Marshal(change{ItineraryID: itineraryID, Op: op, LegID: legID, At: time.Now().UTC()})
		if err != nil {
			slog.Error("encode change event", slog.String("error", err.Error()))
			return
		}
		notifier.Broadcast(itineraryID, payload)
	}

	r.Get("/itineraries/:id/legs", func(c *fiber.Ctx) error {
		view, err := editor.Path(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(view)
	})

	r.Post("/itineraries/:id/legs", guard, func(c *fiber.Ctx) error {
		var body struct {
			EdgeID         string    `json:"edge_id"`
			StartTime      time.Time `json:"start_time"`
			EndTime        time.Time `json:"end_time"`
			Classification string    `json:"classification"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.EdgeID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "edge_id required")
		}
		leg, err := editor.AppendLeg(c.Context(), c.Params("id"), body.EdgeID, body.StartTime, body.EndTime, itinerary.Classification(body.Classification))
		if err != nil {
			return httpError(err)
		}
		notify(leg.ItineraryID, "append_leg", leg.ID)
		return c.Status(fiber.StatusCreated).JSON(leg)
	})

	r.Post("/itineraries/:id/waypoints", guard, func(c *fiber.Ctx) error {
		var body struct {
			WaypointID      string `json:"waypoint_id"`
			AfterWaypointID string `json:"after_waypoint_id"`
			Mode            string `json:"mode"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.WaypointID == "" || body.AfterWaypointID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "waypoint_id and after_waypoint_id required")
		}
		mode, err := catalog.ParseMode(body.Mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		id := c.Params("id")
		leg, err := editor.InsertWaypointAfter(c.Context(), id, body.WaypointID, body.AfterWaypointID, mode)
		if err != nil {
			return httpError(err)
		}
		notify(id, "insert_waypoint", leg.ID)
		return c.Status(fiber.StatusCreated).JSON(leg)
	})

	r.Delete("/itineraries/:id/waypoints/:waypointID", guard, func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := editor.DeleteWaypoint(c.Context(), id, c.Params("waypointID")); err != nil {
			return httpError(err)
		}
		notify(id, "delete_waypoint", "")
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/legs/:legID/mode", guard, func(c *fiber.Ctx) error {
		var body struct {
			Mode string `json:"mode"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		mode, err := catalog.ParseMode(body.Mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		leg, err := editor.ChangeTransportMode(c.Context(), c.Params("legID"), mode)
		if err != nil {
			return httpError(err)
		}
		notify(leg.ItineraryID, "change_mode", leg.ID)
		return c.JSON(leg)
	})

	r.Put("/legs/:legID/end", guard, func(c *fiber.Ctx) error {
		var body struct {
			EndTime time.Time `json:"end_time"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.EndTime.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "end_time required")
		}
		leg, err := editor.ExtendLeg(c.Context(), c.Params("legID"), body.EndTime)
		if err != nil {
			return httpError(err)
		}
		notify(leg.ItineraryID, "extend_leg", leg.ID)
		return c.JSON(leg)
	})

	r.Delete("/legs/:legID", guard, func(c *fiber.Ctx) error {
		removed, err := editor.RemoveLeg(c.Context(), c.Params("legID"))
		if err != nil {
			return httpError(err)
		}
		notify(removed.ItineraryID, "remove_leg", removed.ID)
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrEmptyPath), errors.Is(err, ErrItineraryNotEditable), errors.Is(err, itinerary.ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrWaypointNotInPath), errors.Is(err, ErrLegNotFound), errors.Is(err, itinerary.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoSuchRoute):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidExtension), errors.Is(err, itinerary.ErrInvalidLeg), errors.Is(err, catalog.ErrInvalidMode):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
