package controllers

import (
	"github.com/gofiber/fiber/v2"

	"classtrack_go/services"
)

type AttendanceController struct{}

// GetSessionAttendance returns every required attendee's weekly score for
// (session, week).
func (ac *AttendanceController) GetSessionAttendance(c *fiber.Ctx) error {
	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	week := c.QueryInt("week")
	if week <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "week query parameter is required"})
	}

	scores, err := services.NewScorerService().SessionAttendance(uint(sessionID), week)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"week":       week,
		"scores":     scores,
	})
}

// GetSubjectAttendance returns a student's aggregate standing in a subject.
func (ac *AttendanceController) GetSubjectAttendance(c *fiber.Ctx) error {
	studentID, err := c.ParamsInt("student_id")
	if err != nil || studentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}
	subjectID, err := c.ParamsInt("subject_id")
	if err != nil || subjectID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject ID"})
	}

	standing, err := services.NewScorerService().SubjectStanding(uint(studentID), uint(subjectID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(standing)
}
