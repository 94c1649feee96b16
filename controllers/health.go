package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthController reports service and dependency status.
type HealthController struct {
	db        *gorm.DB
	cache     *redis.Client
	aiEnabled bool
}

func NewHealthController(db *gorm.DB, cache *redis.Client, aiEnabled bool) *HealthController {
	return &HealthController{db: db, cache: cache, aiEnabled: aiEnabled}
}

// Check pings each dependency. The service reports degraded when any check
// fails; it never reports down while it can still answer.
func (h *HealthController) Check(c *fiber.Ctx) error {
	dbOK := false
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err == nil {
			dbOK = sqlDB.Ping() == nil
		}
	}

	cacheOK := false
	if h.cache != nil {
		cacheOK = h.cache.Ping(c.UserContext()).Err() == nil
	}

	status := "ok"
	if !dbOK || !cacheOK || !h.aiEnabled {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  status,
		"checks": fiber.Map{
			"database": dbOK,
			"cache":    cacheOK,
			"ai":       h.aiEnabled,
		},
	})
}
