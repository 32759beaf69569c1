package catalog

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, guard fiber.Handler) {
	r.Post("/", guard, func(c *fiber.Ctx) error {
		var body struct {
			OriginID      string `json:"origin_id"`
			DestinationID string `json:"destination_id"`
			Mode          string `json:"mode"`
			Cost          int64  `json:"cost"`
			Distance      int64  `json:"distance"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		mode, err := ParseMode(body.Mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		edge, err := svc.CreateEdge(c.Context(), Edge{
			OriginID:      body.OriginID,
			DestinationID: body.DestinationID,
			Mode:          mode,
			Cost:          body.Cost,
			Distance:      body.Distance,
		})
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(edge)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		f := Filter{OriginID: c.Query("origin_id"), DestinationID: c.Query("destination_id")}
		if raw := c.Query("mode"); raw != "" {
			mode, err := ParseMode(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			f.Mode = mode
		}
		edges, err := svc.ListEdges(c.Context(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if edges == nil {
			edges = []Edge{}
		}
		return c.JSON(edges)
	})

	r.Get("/lookup", func(c *fiber.Ctx) error {
		mode, err := ParseMode(c.Query("mode"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		edge, err := svc.LookupExact(c.Context(), c.Query("origin_id"), c.Query("destination_id"), mode)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(edge)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		edge, err := svc.Edge(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(edge)
	})

	r.Put("/:id", guard, func(c *fiber.Ctx) error {
		var body struct {
			Cost     int64 `json:"cost"`
			Distance int64 `json:"distance"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Cost < 0 || body.Distance < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "cost and distance must be positive")
		}
		edge, err := svc.UpdateEdge(c.Context(), c.Params("id"), body.Cost, body.Distance)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(edge)
	})

	r.Delete("/:id", guard, func(c *fiber.Ctx) error {
		if err := svc.DeleteEdge(c.Context(), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateEdge), errors.Is(err, ErrEdgeInUse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidEdge), errors.Is(err, ErrInvalidMode):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
