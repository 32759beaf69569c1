package waypoint

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, guard fiber.Handler) {
	r.Post("/", guard, func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		wp, err := svc.CreateWaypoint(c.Context(), req.Name)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(wp)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		wps, err := svc.ListWaypoints(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if wps == nil {
			wps = []Waypoint{}
		}
		return c.JSON(wps)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		wp, err := svc.GetWaypoint(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(wp)
	})

	r.Put("/:id", guard, func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		wp, err := svc.RenameWaypoint(c.Context(), c.Params("id"), req.Name)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(wp)
	})

	r.Delete("/:id", guard, func(c *fiber.Ctx) error {
		if err := svc.DeleteWaypoint(c.Context(), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrInUse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidName):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
