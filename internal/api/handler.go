package api

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/scheduler"
	"github.com/bobby-s-dev/freeride-assistant/internal/services"
)

type Handler struct {
	assistant *services.Assistant
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewHandler builds the HTTP handlers. The scheduler is optional.
func NewHandler(assistant *services.Assistant, sched *scheduler.Scheduler, logger *zap.Logger) *Handler {
	return &Handler{
		assistant: assistant,
		scheduler: sched,
		logger:    logger,
	}
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":     "healthy",
		"timestamp":  time.Now(),
		"last_fetch": h.assistant.GetLastFetchTime(),
		"uptime":     time.Since(startTime).String(),
		"stats":      h.assistant.GetStats(),
	}
	if h.scheduler != nil {
		resp["scheduler"] = h.scheduler.GetStatus()
	}

	return c.JSON(resp)
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"metrics":   h.assistant.GetStats(),
		"timestamp": time.Now(),
	})
}

// GetResorts handles GET /api/v1/resorts
func (h *Handler) GetResorts(c *fiber.Ctx) error {
	var req ResortsRequest
	if err := parseQuery(c, &req); err != nil {
		return err
	}

	list := h.assistant.Directory().All()
	if req.Sort == "country" {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Country < list[j].Country
		})
	}

	return c.JSON(fiber.Map{
		"resorts": list,
		"count":   len(list),
	})
}

// GetConditions handles GET /api/v1/conditions
func (h *Handler) GetConditions(c *fiber.Ctx) error {
	var req ConditionsRequest
	if err := parseQuery(c, &req); err != nil {
		return err
	}

	window, err := h.assistant.ResolveWindow(req.Start, req.End)
	if err != nil {
		return err
	}

	h.logger.Info("Fetching resort conditions",
		zap.String("resort", req.Resort),
		zap.String("window", window.String()))

	report, err := h.assistant.ResortConditions(c.UserContext(), req.Resort, window)
	if err != nil {
		return err
	}

	return c.JSON(report)
}

// GetCompare handles GET /api/v1/compare
func (h *Handler) GetCompare(c *fiber.Ctx) error {
	var req CompareRequest
	if err := parseQuery(c, &req); err != nil {
		return err
	}

	window, err := h.assistant.ResolveWindow(req.Start, req.End)
	if err != nil {
		return err
	}

	h.logger.Info("Comparing resorts",
		zap.Strings("resorts", req.Resorts),
		zap.String("window", window.String()))

	comparison, err := h.assistant.Compare(c.UserContext(), req.Resorts, window)
	if err != nil {
		return err
	}

	return c.JSON(comparison)
}

// GetMap handles GET /api/v1/map
func (h *Handler) GetMap(c *fiber.Ctx) error {
	if overview, ok := h.assistant.LatestOverview(); ok {
		return c.JSON(overview)
	}

	h.logger.Info("No map overview yet, building on demand")

	overview, err := h.assistant.MapOverview(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(overview)
}

// RefreshMap handles POST /api/v1/map/refresh
func (h *Handler) RefreshMap(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Map refresh scheduler is not running")
	}

	if !h.scheduler.ForceRun() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Map refresh scheduler is not running")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "refresh scheduled",
	})
}

var startTime = time.Now()
