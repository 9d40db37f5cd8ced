// Package status exposes fleet state and metrics over HTTP.
package status

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/station"
)

type Server struct {
	app *fiber.App
	cfg Config
}

func NewServer(cfg Config, fleet *station.Fleet) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fleet == nil {
		return nil, errors.WithData(ErrInvalidConfig, "a fleet is required")
	}

	app := fiber.New(fiber.Config{
		AppName:               "envstation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "envstation",
			"stations": fleet.Size(),
		})
	})

	app.Get("/stations", func(c *fiber.Ctx) error {
		return c.JSON(fleet.Snapshots())
	})

	app.Get("/stations/:id", func(c *fiber.Ctx) error {
		snapshot, ok := fleet.Station(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown station")
		}
		return c.JSON(snapshot)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return &Server{app: app, cfg: cfg}, nil
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	if err := s.app.Listen(s.cfg.Addr); err != nil {
		return errors.Wrap(ErrServerFailed, err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return errors.Wrap(ErrServerFailed, err)
	}

	return nil
}
