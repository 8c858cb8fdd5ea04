package routes

import (
	"classtrack_go/config"
	"classtrack_go/controllers"
	"classtrack_go/middleware"
	"classtrack_go/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, scheduler *services.ReminderScheduler) {
	// Initialize controllers
	checkInController := &controllers.CheckInController{}
	qrCodeController := &controllers.QrCodeController{}
	attendanceController := &controllers.AttendanceController{}
	healthController := &controllers.HealthController{}
	reminderController := controllers.NewReminderController(scheduler)

	// API group
	api := app.Group("/api")

	// Public routes (no authentication required)
	public := api.Group("/public")

	// Check-in - PUBLIC endpoint, rate limited; the QR token is the capability
	public.Post("/checkins",
		middleware.RateLimitMiddleware(config.AppConfig.CheckinRateLimit, config.AppConfig.CheckinRateWindow),
		checkInController.CreateCheckIn)
	public.Get("/qrcodes/:token/status", qrCodeController.GetQrCodeStatus)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// QR code issuance (admin/lecturer)
	sessions := protected.Group("/sessions")
	sessions.Post("/:id/qrcodes", middleware.RequireStaff(), qrCodeController.IssueQrCode)

	// Attendance queries
	attendance := protected.Group("/attendance")
	attendance.Get("/sessions/:id", middleware.RequireStaff(), attendanceController.GetSessionAttendance)
	attendance.Get("/students/:student_id/subjects/:subject_id", attendanceController.GetSubjectAttendance)

	// On-demand reminder cycle (admin only)
	reminders := protected.Group("/reminders", middleware.RequireAdmin())
	reminders.Post("/run", reminderController.RunCycle)

	// Health check
	app.Get("/health", healthController.GetHealthStatus)
}
