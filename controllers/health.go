package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"classtrack_go/database"
)

type HealthController struct{}

// GetHealthStatus probes the database and Redis and reports overall health.
func (hc *HealthController) GetHealthStatus(c *fiber.Ctx) error {
	status := fiber.StatusOK
	checks := fiber.Map{}

	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		checks["database"] = "down"
		status = fiber.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if rdb := database.GetRedisClient(); rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":    overall,
		"service":   "ClassTrack API",
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}
