package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"finagent/internal/service"
)

type queryRequest struct {
	Query string `json:"query"`
}

// New builds the HTTP surface over the agent service. Transport stays
// thin: the service response is the wire contract.
func New(svc *service.AgentService, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "finagent",
		DisableStartupMessage: true,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/query", func(c *fiber.Ctx) error {
		var req queryRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Query == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
		}
		log.Info("query received", zap.String("query", req.Query))
		return c.JSON(svc.Run(c.Context(), req.Query))
	})

	return app
}
