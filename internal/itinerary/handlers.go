package itinerary

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// LegPurger drops every leg stored for an itinerary. Stores without
// cascading deletes rely on it when an itinerary is removed.
type LegPurger interface {
	Purge(ctx context.Context, itineraryID string) error
}

func RegisterRoutes(r fiber.Router, svc *Service, legs LegPurger, guard fiber.Handler) {
	r.Post("/", guard, func(c *fiber.Ctx) error {
		var req struct {
			Name      string `json:"name"`
			CreatedBy string `json:"created_by"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		it, err := svc.Create(c.Context(), req.Name, req.CreatedBy)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(it)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		status, err := statusQuery(c)
		if err != nil {
			return err
		}
		list, err := svc.List(c.Context(), status)
		if err != nil {
			return httpError(err)
		}
		if list == nil {
			list = []Itinerary{}
		}
		return c.JSON(list)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		it, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(it)
	})

	r.Delete("/:id", guard, func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.Context(), id); err != nil {
			return httpError(err)
		}
		if legs != nil {
			if err := legs.Purge(c.Context(), id); err != nil {
				slog.ErrorContext(c.Context(), "purge legs failed", slog.String("itinerary_id", id), slog.String("error", err.Error()))
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/complete", guard, func(c *fiber.Ctx) error {
		if err := svc.Complete(c.Context(), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"id": c.Params("id"), "status": StatusCompleted})
	})

	r.Post("/:id/cancel", guard, func(c *fiber.Ctx) error {
		if err := svc.Cancel(c.Context(), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"id": c.Params("id"), "status": StatusCancelled})
	})

	links := map[string]func(context.Context, string, []string) error{
		"participants": svc.LinkParticipants,
		"activities":   svc.LinkActivities,
		"lodgings":     svc.LinkLodgings,
	}
	for name, linkFn := range links {
		linkFn := linkFn
		r.Put("/:id/"+name, guard, func(c *fiber.Ctx) error {
			var body struct {
				IDs []string `json:"ids"`
			}
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			if err := linkFn(c.Context(), c.Params("id"), body.IDs); err != nil {
				return httpError(err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		})
	}
}

// RegisterParticipantRoutes serves the per-user view of itineraries.
func RegisterParticipantRoutes(r fiber.Router, svc *Service) {
	r.Get("/:userID/itineraries", func(c *fiber.Ctx) error {
		status, err := statusQuery(c)
		if err != nil {
			return err
		}
		list, err := svc.ListForParticipant(c.Context(), c.Params("userID"), status)
		if err != nil {
			return httpError(err)
		}
		if list == nil {
			list = []Itinerary{}
		}
		return c.JSON(list)
	})
}

func statusQuery(c *fiber.Ctx) (Status, error) {
	raw := c.Query("status")
	if raw == "" {
		return "", nil
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return status, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLegNotFound), errors.Is(err, ErrUnknownReference):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidLeg), errors.Is(err, ErrInvalidStatus):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
