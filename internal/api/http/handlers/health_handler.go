package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cockpit-service/internal/observability"
	"github.com/spec-kit/cockpit-service/internal/persistence"
	"github.com/spec-kit/cockpit-service/internal/service"
)

// HealthHandler responds to liveness/readiness probes and exposes upstream
// integration health plus in-process request metrics.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	tracker     *service.HealthTracker
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, tracker *service.HealthTracker, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, tracker: tracker, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking local dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		depStatus["postgres"] = err.Error()
		ready = false
	} else {
		depStatus["postgres"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Integrations GET /api/v1/health/integrations: probes every upstream now.
func (h *HealthHandler) Integrations(c *fiber.Ctx) error {
	results := h.tracker.CheckAll(c.UserContext())
	return c.JSON(fiber.Map{"data": results})
}

// IntegrationStats GET /api/v1/health/integrations/:service.
func (h *HealthHandler) IntegrationStats(c *fiber.Ctx) error {
	hours, _ := strconv.Atoi(c.Query("hours"))
	stats := h.tracker.UptimeStats(c.Params("service"), hours)
	return c.JSON(fiber.Map{"data": stats})
}

// Metrics GET /api/v1/metrics: request counters and latency aggregates.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	requests, errors := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests": requests,
		"errors":   errors,
	}})
}
