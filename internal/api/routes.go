package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/freeride"
	"github.com/bobby-s-dev/freeride-assistant/internal/models"
	"github.com/bobby-s-dev/freeride-assistant/internal/resorts"
	"github.com/bobby-s-dev/freeride-assistant/internal/services"
)

// SetupRoutes registers middleware and routes. metricsHandler serves the
// Prometheus exposition and may be nil.
func SetupRoutes(app *fiber.App, handler *Handler, metricsHandler http.Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	if metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	// API v1 routes
	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/metrics", handler.GetMetrics)
	api.Get("/resorts", handler.GetResorts)
	api.Get("/conditions", handler.GetConditions)
	api.Get("/compare", handler.GetCompare)
	api.Get("/map", handler.GetMap)
	api.Post("/map/refresh", handler.RefreshMap)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})

	log.Debug("Routes registered", zap.Int("handlers", int(app.HandlersCount())))
}

// ErrorHandler maps errors returned by handlers to status codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{
		"error":   err.Error(),
		"success": false,
	}

	var fe *fiber.Error
	var reqErr *RequestError
	var batchErr *services.BatchError
	var resortErr *services.ResortError

	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &reqErr):
		code = fiber.StatusBadRequest
		body["error"] = "Invalid request"
		body["errors"] = reqErr.Errors
	case errors.Is(err, resorts.ErrUnknownResort):
		code = fiber.StatusNotFound
	case errors.Is(err, models.ErrInvalidWindow):
		code = fiber.StatusBadRequest
	case errors.As(err, &batchErr):
		code = fiber.StatusBadGateway
		body["error"] = freeride.ErrNoResorts.Error()
		failures := make([]models.ResortFailure, 0, len(batchErr.Failures))
		for _, f := range batchErr.Failures {
			failures = append(failures, models.ResortFailure{Resort: f.Resort, Error: f.Err.Error()})
		}
		body["failures"] = failures
	case errors.As(err, &resortErr):
		code = fiber.StatusBadGateway
		body["resort"] = resortErr.Resort
	}

	if code >= fiber.StatusInternalServerError {
		zap.L().Error("HTTP error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err))
	} else {
		zap.L().Debug("HTTP client error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err))
	}

	return c.Status(code).JSON(body)
}
