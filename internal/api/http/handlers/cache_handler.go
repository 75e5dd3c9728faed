package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cockpit-service/internal/cache"
)

// CacheHandler exposes response-cache administration.
type CacheHandler struct {
	store cache.Store
}

// NewCacheHandler constructs handler.
func NewCacheHandler(store cache.Store) *CacheHandler {
	return &CacheHandler{store: store}
}

// Stats GET /api/v1/cache/stats.
func (h *CacheHandler) Stats(c *fiber.Ctx) error {
	stats := h.store.Stats(c.UserContext())
	return c.JSON(fiber.Map{"data": fiber.Map{
		"size":      stats.Size,
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"sets":      stats.Sets,
		"evictions": stats.Evictions,
		"hit_rate":  stats.HitRate(),
	}})
}

// Clear DELETE /api/v1/cache/clear.
func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	h.store.Clear(c.UserContext())
	return c.JSON(fiber.Map{"data": fiber.Map{"cleared": true}})
}

// DeletePattern DELETE /api/v1/cache/pattern/:pattern.
func (h *CacheHandler) DeletePattern(c *fiber.Ctx) error {
	removed := h.store.DeletePattern(c.UserContext(), c.Params("pattern"))
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": removed}})
}
