package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"classtrack_go/services"
)

// ReminderController exposes the on-demand trigger for a scheduler cycle,
// used for manual admin runs and health checks.
type ReminderController struct {
	scheduler *services.ReminderScheduler
}

// NewReminderController constructs a controller backed by the shared scheduler.
func NewReminderController(scheduler *services.ReminderScheduler) *ReminderController {
	return &ReminderController{scheduler: scheduler}
}

// RunCycle runs one reminder cycle and returns its aggregate counts.
func (rc *ReminderController) RunCycle(c *fiber.Ctx) error {
	stats, err := rc.scheduler.RunCycle(c.Context(), time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"stats": stats,
		})
	}
	return c.JSON(stats)
}
