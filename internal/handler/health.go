package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"whiteboard-backend/internal/cache"
	"whiteboard-backend/internal/realtime"
)

// HealthHandler reports service and dependency health
type HealthHandler struct {
	db    *gorm.DB
	redis *cache.RedisClient
	hub   *realtime.Hub
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db *gorm.DB, redis *cache.RedisClient, hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, hub: hub}
}

// Check reports overall health with per-dependency detail
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	checks := fiber.Map{}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
		status = "degraded"
		checks["database"] = "down"
	} else {
		checks["database"] = "up"
	}

	if h.redis == nil {
		checks["redis"] = "disabled"
	} else if err := h.redis.Health(c.Context()); err != nil {
		status = "degraded"
		checks["redis"] = "down"
	} else {
		checks["redis"] = "up"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":            status,
		"checks":            checks,
		"activeConnections": h.hub.ConnectionCount(),
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}
