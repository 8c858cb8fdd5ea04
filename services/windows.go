package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"classtrack_go/database"
	"classtrack_go/models"
	"classtrack_go/utils"
)

const qrTokenLength = 48

// WindowService manages the session → QR code → validity window hierarchy.
type WindowService struct {
	db *gorm.DB
}

// NewWindowService creates a WindowService on the shared connection.
func NewWindowService() *WindowService {
	return &WindowService{db: database.DB}
}

// WindowSpec describes one validity window of a code being issued.
type WindowSpec struct {
	Ordinal  int       `json:"ordinal"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ResolveToken loads the QR code a token refers to, windows and session
// included. Unknown tokens come back as ErrInvalidToken.
func (ws *WindowService) ResolveToken(token string) (*models.QrCode, error) {
	var code models.QrCode
	err := ws.db.
		Preload("Windows", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Preload("Session").
		Preload("Session.Room").
		Preload("Room").
		Where("token = ?", token).
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &code, nil
}

// PickActiveWindow returns the window with starts_at ≤ now ≤ ends_at, or nil.
// Ties (which the non-overlap invariant rules out) go to the lowest ordinal.
func PickActiveWindow(windows []models.ValidityWindow, now time.Time) *models.ValidityWindow {
	var active *models.ValidityWindow
	for i := range windows {
		w := &windows[i]
		if !w.Active(now) {
			continue
		}
		if active == nil || w.Ordinal < active.Ordinal {
			active = w
		}
	}
	return active
}

// AllExpired reports whether every window has closed. A code with zero
// windows is never active and never expired; it is skipped by the scheduler.
func AllExpired(windows []models.ValidityWindow, now time.Time) bool {
	if len(windows) == 0 {
		return false
	}
	for _, w := range windows {
		if !w.Expired(now) {
			return false
		}
	}
	return true
}

// ActiveWindow answers "which ordinal window is open right now" for a code id.
func (ws *WindowService) ActiveWindow(qrCodeID uint, now time.Time) (*models.ValidityWindow, error) {
	var windows []models.ValidityWindow
	if err := ws.db.Where("qr_code_id = ?", qrCodeID).Order("ordinal ASC").Find(&windows).Error; err != nil {
		return nil, err
	}
	return PickActiveWindow(windows, now), nil
}

// IsFullyExpired reports whether every window of the code has end < now.
func (ws *WindowService) IsFullyExpired(qrCodeID uint, now time.Time) (bool, error) {
	var windows []models.ValidityWindow
	if err := ws.db.Where("qr_code_id = ?", qrCodeID).Find(&windows).Error; err != nil {
		return false, err
	}
	return AllExpired(windows, now), nil
}

// LatestExpiry returns the maximum ends_at across every QR code bound to
// (session, week) — the reminder scheduler's trigger point. The second
// return is false when the week has no windows at all; re-issued codes
// push the expiry to the latest of them.
func (ws *WindowService) LatestExpiry(sessionID uint, week int) (time.Time, bool, error) {
	var row struct {
		Latest *time.Time
	}
	err := ws.db.Model(&models.ValidityWindow{}).
		Select("MAX(validity_windows.ends_at) AS latest").
		Joins("JOIN qr_codes ON qr_codes.id = validity_windows.qr_code_id").
		Where("qr_codes.session_id = ? AND qr_codes.week = ? AND qr_codes.deleted_at IS NULL", sessionID, week).
		Scan(&row).Error
	if err != nil {
		return time.Time{}, false, err
	}
	if row.Latest == nil {
		return time.Time{}, false, nil
	}
	return *row.Latest, true, nil
}

// IssueQrCode mints a capability token for (session, week) and attaches its
// validity windows in one transaction.
func (ws *WindowService) IssueQrCode(sessionID uint, week int, geofenceRadiusM *float64, specs []WindowSpec) (*models.QrCode, error) {
	var session models.Session
	if err := ws.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %d not found", sessionID)
		}
		return nil, err
	}
	if week < 1 {
		return nil, fmt.Errorf("week must be positive, got %d", week)
	}
	if err := validateWindowSpecs(specs); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(qrTokenLength)
	if err != nil {
		return nil, err
	}

	code := models.QrCode{
		SessionID:       sessionID,
		Week:            week,
		Token:           token,
		GeofenceRadiusM: geofenceRadiusM,
	}

	err = ws.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&code).Error; err != nil {
			return err
		}
		for _, spec := range specs {
			window := models.ValidityWindow{
				QrCodeID: code.ID,
				Ordinal:  spec.Ordinal,
				StartsAt: spec.StartsAt,
				EndsAt:   spec.EndsAt,
			}
			if err := tx.Create(&window).Error; err != nil {
				return err
			}
			code.Windows = append(code.Windows, window)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// validateWindowSpecs enforces the window invariants: at most two windows,
// ordinals strictly 1 then 2, starts_at < ends_at, window 1 closed before
// window 2 opens.
func validateWindowSpecs(specs []WindowSpec) error {
	if len(specs) == 0 {
		return errors.New("at least one validity window is required")
	}
	if len(specs) > 2 {
		return fmt.Errorf("at most two validity windows are allowed, got %d", len(specs))
	}

	sorted := make([]WindowSpec, len(specs))
	copy(sorted, specs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })

	for i, spec := range sorted {
		if spec.Ordinal != i+1 {
			return fmt.Errorf("window ordinals must be 1 then 2, got %d", spec.Ordinal)
		}
		if !spec.StartsAt.Before(spec.EndsAt) {
			return fmt.Errorf("window %d must start before it ends", spec.Ordinal)
		}
	}
	if len(sorted) == 2 && sorted[1].StartsAt.Before(sorted[0].EndsAt) {
		return errors.New("validity windows must not overlap")
	}
	return nil
}
