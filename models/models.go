package models

import (
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Session kinds
const (
	SessionKindLecture  = "lecture"
	SessionKindLab      = "lab"
	SessionKindTutorial = "tutorial"
)

// Check-in methods
const (
	MethodQrScan   = "qr_scan"
	MethodGeofence = "geofence"
	MethodManual   = "manual"
	MethodOnline   = "online"
)

// Reminder tiers, ordered by severity
const (
	TierFirstAbsence    = "first_absence"
	TierSecondAbsence   = "second_absence"
	TierCriticalAbsence = "critical_absence"
)

// Reminder statuses
const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// Room model
type Room struct {
	BaseModel
	Name      string  `json:"name" gorm:"size:100;not null"`
	Building  string  `json:"building" gorm:"size:100"`
	Latitude  float64 `json:"latitude" gorm:"not null"`
	Longitude float64 `json:"longitude" gorm:"not null"`
	Capacity  int     `json:"capacity"`
}

// Subject model
type Subject struct {
	BaseModel
	Code string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name string `json:"name" gorm:"size:255;not null"`
	// Fraction of the maximum weekly score a student must hold, e.g. 0.80
	AttendanceThreshold float64 `json:"attendance_threshold" gorm:"not null;default:0.8"`
	PlannedWeeks        int     `json:"planned_weeks" gorm:"not null;default:12"`

	// Relationships
	Sessions []Session `json:"sessions,omitempty" gorm:"foreignKey:SubjectID"`
}

// Session model. A recurring class meeting; immutable once QR codes
// reference it for a given week.
type Session struct {
	BaseModel
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`
	Kind      string `json:"kind" gorm:"size:50;not null;type:enum('lecture','lab','tutorial')"` // lecture, lab, tutorial
	Weekday   int    `json:"weekday" gorm:"not null"`                                            // 0 = Sunday ... 6 = Saturday
	StartTime string `json:"start_time" gorm:"size:10;not null"`                                 // "10:00"
	EndTime   string `json:"end_time" gorm:"size:10;not null"`                                   // "11:50"
	RoomID    uint   `json:"room_id"`

	// Relationships
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Room    Room    `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

// QrCode model. One opaque token per (session, week); the token is a
// capability, never a sequential id. A code may be re-issued for the
// same week, in which case the week expires with the latest of them.
type QrCode struct {
	BaseModel
	SessionID uint   `json:"session_id" gorm:"not null;index:idx_qr_session_week"`
	Week      int    `json:"week" gorm:"not null;index:idx_qr_session_week"`
	Token     string `json:"token" gorm:"size:64;not null;uniqueIndex"`
	// Geofence radius in meters; nil disables the geofence check
	GeofenceRadiusM *float64 `json:"geofence_radius_m"`
	// Optional room override; falls back to the session room
	RoomID *uint `json:"room_id"`

	// Relationships
	Session Session          `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Room    *Room            `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Windows []ValidityWindow `json:"windows,omitempty" gorm:"foreignKey:QrCodeID"`
}

// ValidityWindow model. At most two per QrCode, ordinals strictly 1 then 2,
// never overlapping, starts_at < ends_at.
type ValidityWindow struct {
	BaseModel
	QrCodeID uint      `json:"qr_code_id" gorm:"not null;uniqueIndex:idx_window_qr_ordinal"`
	Ordinal  int       `json:"ordinal" gorm:"not null;uniqueIndex:idx_window_qr_ordinal"`
	StartsAt time.Time `json:"starts_at" gorm:"not null"`
	EndsAt   time.Time `json:"ends_at" gorm:"not null;index"`
}

// Active reports whether the window accepts check-ins at the given instant.
func (w ValidityWindow) Active(now time.Time) bool {
	return !now.Before(w.StartsAt) && !now.After(w.EndsAt)
}

// Expired reports whether the window has closed at the given instant.
func (w ValidityWindow) Expired(now time.Time) bool {
	return now.After(w.EndsAt)
}

// Student model
type Student struct {
	BaseModel
	FirstName string `json:"first_name" gorm:"size:100"`
	LastName  string `json:"last_name" gorm:"size:100"`
	Email     string `json:"email" gorm:"size:255;not null;uniqueIndex"`
}

// Enrolment model. (student, subject) pair; read-only input to scoring.
type Enrolment struct {
	BaseModel
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_enrolment_pair"`
	SubjectID uint `json:"subject_id" gorm:"not null;uniqueIndex:idx_enrolment_pair"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

// SessionAssignment model. Direct roster membership for tutorial sessions.
type SessionAssignment struct {
	BaseModel
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_assignment_pair"`
	SessionID uint `json:"session_id" gorm:"not null;uniqueIndex:idx_assignment_pair"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Session Session `json:"session,omitempty" gorm:"foreignKey:SessionID"`
}

// CheckIn model. Never mutated, never deleted by the engine. The unique
// index on (student_id, validity_window_id) is the anti-double-counting
// guarantee; concurrent inserts race on the constraint, not in app code.
type CheckIn struct {
	BaseModel
	UUID             string    `json:"uuid" gorm:"size:36;not null;uniqueIndex"`
	StudentID        uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_checkin_student_window"`
	ValidityWindowID uint      `json:"validity_window_id" gorm:"not null;uniqueIndex:idx_checkin_student_window"`
	QrCodeID         uint      `json:"qr_code_id" gorm:"not null;index"`
	CheckedInAt      time.Time `json:"checked_in_at" gorm:"not null"`
	Method           string    `json:"method" gorm:"size:50;not null;type:enum('qr_scan','geofence','manual','online')"` // qr_scan, geofence, manual, online
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`

	// Relationships
	Student        Student        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	ValidityWindow ValidityWindow `json:"validity_window,omitempty" gorm:"foreignKey:ValidityWindowID"`
	QrCode         QrCode         `json:"qr_code,omitempty" gorm:"foreignKey:QrCodeID"`
}

// ReminderLog model. Append-only audit trail of every reminder attempt and
// the idempotency guard against duplicate sends: dedup_key collapses
// (student, subject, tier) onto a time bucket the size of the dedup window,
// so only one of two concurrent inserts for the same bucket can succeed.
type ReminderLog struct {
	BaseModel
	StudentID uint      `json:"student_id" gorm:"not null;index"`
	SubjectID uint      `json:"subject_id" gorm:"not null;index"`
	Tier      string    `json:"tier" gorm:"size:50;not null;type:enum('first_absence','second_absence','critical_absence')"` // first_absence, second_absence, critical_absence
	Status    string    `json:"status" gorm:"size:50;not null;type:enum('sent','failed')"`                                   // sent, failed
	SentAt    time.Time `json:"sent_at" gorm:"not null;index"`
	DedupKey  string    `json:"dedup_key" gorm:"size:128;not null;uniqueIndex"`
	Error     string    `json:"error" gorm:"type:text"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}
