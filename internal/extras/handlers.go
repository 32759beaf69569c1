package extras

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterActivityRoutes(r fiber.Router, svc *Service, guard fiber.Handler) {
	r.Post("/", guard, func(c *fiber.Ctx) error {
		var req Activity
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		a, err := svc.CreateActivity(c.Context(), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		list, err := svc.ListActivities(c.Context(), c.Query("waypoint_id"))
		if err != nil {
			return httpError(err)
		}
		if list == nil {
			list = []Activity{}
		}
		return c.JSON(list)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		a, err := svc.GetActivity(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(a)
	})

	r.Delete("/:id", guard, func(c *fiber.Ctx) error {
		if err := svc.DeleteActivity(c.Context(), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func RegisterLodgingRoutes(r fiber.Router, svc *Service, guard fiber.Handler) {
	r.Post("/", guard, func(c *fiber.Ctx) error {
		var req Lodging
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		l, err := svc.CreateLodging(c.Context(), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		list, err := svc.ListLodgings(c.Context(), c.Query("waypoint_id"))
		if err != nil {
			return httpError(err)
		}
		if list == nil {
			list = []Lodging{}
		}
		return c.JSON(list)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		l, err := svc.GetLodging(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(l)
	})

	r.Delete("/:id", guard, func(c *fiber.Ctx) error {
		if err := svc.DeleteLodging(c.Context(), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidActivity), errors.Is(err, ErrInvalidLodging):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
