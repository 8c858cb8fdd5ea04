package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"classtrack_go/models"
	"classtrack_go/services"
	"classtrack_go/utils"
)

type CheckInController struct{}

// CreateCheckIn records a check-in for a scanned QR token.
func (cc *CheckInController) CreateCheckIn(c *fiber.Ctx) error {
	var req struct {
		Token     string   `json:"token"`
		StudentID uint     `json:"student_id"`
		Method    string   `json:"method"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	req.Token = utils.SanitizeString(req.Token)
	if req.Token == "" || req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token and student_id are required"})
	}
	if req.Method == "" {
		req.Method = models.MethodQrScan
	}
	if !utils.IsValidCheckInMethod(req.Method) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid check-in method"})
	}

	var loc *services.Coordinates
	if req.Latitude != nil && req.Longitude != nil {
		loc = &services.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	result, err := services.NewCheckInService().RecordCheckIn(req.StudentID, req.Token, loc, req.Method)
	if err != nil {
		return checkInError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"check_in":       result.CheckIn,
		"window_ordinal": result.WindowOrdinal,
		"window_count":   result.WindowCount,
		"message":        checkInMessage(result),
	})
}

func checkInMessage(result *services.CheckInResult) string {
	if result.WindowCount > 1 {
		return fmt.Sprintf("window %d of %d confirmed", result.WindowOrdinal, result.WindowCount)
	}
	return "check-in confirmed"
}

// checkInError maps the check-in error taxonomy onto HTTP statuses; every
// one of these is user-correctable and surfaced verbatim.
func checkInError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrWindowNotActive):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrOutOfRange), errors.Is(err, services.ErrNotEnrolled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record check-in"})
	}
}
