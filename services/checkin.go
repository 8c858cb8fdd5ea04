package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"classtrack_go/config"
	"classtrack_go/database"
	"classtrack_go/models"
	"classtrack_go/utils"
)

// CheckInService validates and records check-ins. Recording is idempotent:
// the unique constraint on (student, window) decides races, not this code.
type CheckInService struct {
	db      *gorm.DB
	windows *WindowService
}

// NewCheckInService creates a CheckInService on the shared connection.
func NewCheckInService() *CheckInService {
	return &CheckInService{db: database.DB, windows: NewWindowService()}
}

// Coordinates is a WGS84 point reported by the client.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CheckInResult carries the recorded check-in plus enough window context for
// the caller to report "window 1 of 2 confirmed".
type CheckInResult struct {
	CheckIn       models.CheckIn `json:"check_in"`
	WindowOrdinal int            `json:"window_ordinal"`
	WindowCount   int            `json:"window_count"`
}

// RecordCheckIn resolves the token, finds the active window, applies the
// geofence and roster checks, and inserts at most one check-in per
// (student, window). Manual and online methods bypass the geofence; online
// retries are recorded distinctly but scored identically.
func (cs *CheckInService) RecordCheckIn(studentID uint, token string, loc *Coordinates, method string) (*CheckInResult, error) {
	now := time.Now()

	code, err := cs.windows.ResolveToken(token)
	if err != nil {
		return nil, err
	}

	window := PickActiveWindow(code.Windows, now)
	if window == nil {
		return nil, ErrWindowNotActive
	}

	if code.GeofenceRadiusM != nil && method != models.MethodManual && method != models.MethodOnline {
		if err := cs.checkGeofence(code, loc); err != nil {
			return nil, err
		}
	}

	resolver := ResolverForSession(cs.db, code.Session)
	required, err := resolver.Requires(studentID)
	if err != nil {
		return nil, err
	}
	if !required {
		return nil, ErrNotEnrolled
	}

	checkIn := models.CheckIn{
		UUID:             uuid.NewString(),
		StudentID:        studentID,
		ValidityWindowID: window.ID,
		QrCodeID:         code.ID,
		CheckedInAt:      now,
		Method:           method,
	}
	if loc != nil {
		checkIn.Latitude = &loc.Latitude
		checkIn.Longitude = &loc.Longitude
	}

	if err := cs.db.Create(&checkIn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}

	return &CheckInResult{
		CheckIn:       checkIn,
		WindowOrdinal: window.Ordinal,
		WindowCount:   len(code.Windows),
	}, nil
}

// checkGeofence rejects check-ins originating outside the allowed radius of
// the bound room. A missing location cannot be verified and counts as out
// of range; the caller may retry with method=online.
func (cs *CheckInService) checkGeofence(code *models.QrCode, loc *Coordinates) error {
	room := code.Room
	if room == nil {
		room = &code.Session.Room
	}
	if room.ID == 0 {
		// No room bound anywhere; nothing to measure against.
		return nil
	}
	if loc == nil {
		return ErrOutOfRange
	}

	radius := *code.GeofenceRadiusM
	if radius <= 0 {
		radius = config.AppConfig.DefaultGeofenceRadiusM
	}

	distance := utils.DistanceMeters(loc.Latitude, loc.Longitude, room.Latitude, room.Longitude)
	if distance > radius {
		return ErrOutOfRange
	}
	return nil
}
