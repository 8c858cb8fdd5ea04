package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"classtrack_go/services"
	"classtrack_go/utils"
)

type QrCodeController struct{}

// IssueQrCode mints a QR code with validity windows for a (session, week).
func (qc *QrCodeController) IssueQrCode(c *fiber.Ctx) error {
	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	var req struct {
		Week            int                   `json:"week"`
		GeofenceRadiusM *float64              `json:"geofence_radius_m"`
		Windows         []services.WindowSpec `json:"windows"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	code, err := services.NewWindowService().IssueQrCode(uint(sessionID), req.Week, req.GeofenceRadiusM, req.Windows)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(code)
}

// GetQrCodeStatus reports whether a token currently accepts check-ins and
// which ordinal window is open.
func (qc *QrCodeController) GetQrCodeStatus(c *fiber.Ctx) error {
	token := utils.SanitizeString(c.Params("token"))
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token is required"})
	}

	ws := services.NewWindowService()
	code, err := ws.ResolveToken(token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve token"})
	}

	now := time.Now()
	resp := fiber.Map{
		"session_id":    code.SessionID,
		"week":          code.Week,
		"window_count":  len(code.Windows),
		"fully_expired": services.AllExpired(code.Windows, now),
	}
	// Re-issued codes can push the week's expiry past this code's own
	// windows; report the latest across all of them.
	if latest, ok, err := ws.LatestExpiry(code.SessionID, code.Week); err == nil && ok {
		resp["week_closes_at"] = latest
	}
	if active := services.PickActiveWindow(code.Windows, now); active != nil {
		resp["active"] = true
		resp["active_ordinal"] = active.Ordinal
		resp["closes_at"] = active.EndsAt
	} else {
		resp["active"] = false
	}
	return c.JSON(resp)
}
