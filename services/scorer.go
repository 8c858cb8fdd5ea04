package services

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"classtrack_go/config"
	"classtrack_go/database"
	"classtrack_go/models"
	"classtrack_go/utils"
)

// ScorerService converts recorded check-ins into weekly scores and
// per-subject percentages. Everything here is read-only.
type ScorerService struct {
	db *gorm.DB
}

// NewScorerService creates a ScorerService on the shared connection.
func NewScorerService() *ScorerService {
	return &ScorerService{db: database.DB}
}

// WeeklyHalfFull returns the half and full scores for a session kind:
// 45/90 for lectures and labs, 50/100 otherwise.
func WeeklyHalfFull(kind string) (half, full int) {
	switch kind {
	case models.SessionKindLecture, models.SessionKindLab:
		return 45, 90
	default:
		return 50, 100
	}
}

// WeeklyScore maps a check-in count onto the weekly score. Counts outside
// {0,1,2} cannot occur given the per-window uniqueness constraint, but score
// zero rather than trusting that here.
func WeeklyScore(count int, kind string) int {
	half, full := WeeklyHalfFull(kind)
	switch count {
	case 1:
		return half
	case 2:
		return full
	default:
		return 0
	}
}

// SubjectAttendance is the derived standing of one student in one subject.
type SubjectAttendance struct {
	StudentID       uint    `json:"student_id"`
	SubjectID       uint    `json:"subject_id"`
	AttendedWeeks   int     `json:"attended_weeks"`
	TotalWeeks      int     `json:"total_weeks"`
	Percentage      float64 `json:"percentage"`
	IsLowAttendance bool    `json:"is_low_attendance"`
	ClassesCanMiss  int     `json:"classes_can_miss"`
}

// MissedWeeks is the number of considered weeks without a single check-in.
func (a SubjectAttendance) MissedWeeks() int {
	return a.TotalWeeks - a.AttendedWeeks
}

// aggregateAttendance folds per-week check-in counts into the subject
// standing. Pure: weeklyCounts holds one entry per week that has at least
// one QR code issued, plannedWeeks is the subject's full teaching length,
// threshold the required fraction of the maximum score.
func aggregateAttendance(weeklyCounts []int, kind string, plannedWeeks int, threshold float64) SubjectAttendance {
	_, full := WeeklyHalfFull(kind)

	var points, attended int
	for _, count := range weeklyCounts {
		score := WeeklyScore(count, kind)
		points += score
		if count > 0 {
			attended++
		}
	}

	total := len(weeklyCounts)
	if plannedWeeks < total {
		plannedWeeks = total
	}

	var percentage float64
	if total > 0 {
		percentage = utils.Round1(float64(points) / float64(total*full) * 100)
	}

	return SubjectAttendance{
		AttendedWeeks:   attended,
		TotalWeeks:      total,
		Percentage:      percentage,
		IsLowAttendance: percentage < threshold*100,
		ClassesCanMiss:  classesCanMiss(points, total, plannedWeeks, full, threshold),
	}
}

// classesCanMiss solves (points + remaining*full) / (planned*full) ≥ threshold
// for the number of additional zero-score weeks, assuming every remaining
// week would otherwise be fully attended. Floored at 0, capped at the weeks
// actually remaining.
func classesCanMiss(points, totalWeeks, plannedWeeks, full int, threshold float64) int {
	remaining := plannedWeeks - totalWeeks
	if remaining < 0 {
		remaining = 0
	}
	needed := threshold * float64(plannedWeeks*full)
	slack := math.Floor((float64(points+remaining*full) - needed + 1e-9) / float64(full))
	if slack < 0 {
		return 0
	}
	if int(slack) > remaining {
		return remaining
	}
	return int(slack)
}

// SessionAttendance maps every required attendee of (session, week) onto
// their weekly score for that week's QR code windows.
func (s *ScorerService) SessionAttendance(sessionID uint, week int) (map[uint]int, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %d not found", sessionID)
		}
		return nil, err
	}

	students, err := ResolverForSession(s.db, session).List()
	if err != nil {
		return nil, err
	}

	type row struct {
		StudentID uint
		Count     int
	}
	var rows []row
	err = s.db.Model(&models.CheckIn{}).
		Select("check_ins.student_id AS student_id, COUNT(check_ins.id) AS count").
		Joins("JOIN validity_windows ON validity_windows.id = check_ins.validity_window_id").
		Joins("JOIN qr_codes ON qr_codes.id = validity_windows.qr_code_id").
		Where("qr_codes.session_id = ? AND qr_codes.week = ?", sessionID, week).
		Group("check_ins.student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.StudentID] = r.Count
	}

	scores := make(map[uint]int, len(students))
	for _, student := range students {
		scores[student.ID] = WeeklyScore(counts[student.ID], session.Kind)
	}
	return scores, nil
}

// SubjectStanding aggregates one student's attendance across every week of
// the subject's lecture sessions that has a QR code issued.
func (s *ScorerService) SubjectStanding(studentID, subjectID uint) (*SubjectAttendance, error) {
	var subject models.Subject
	if err := s.db.First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subject %d not found", subjectID)
		}
		return nil, err
	}

	threshold := subject.AttendanceThreshold
	if threshold <= 0 {
		threshold = config.AppConfig.DefaultAttendanceThreshold
	}

	// One row per week that has at least one QR code; the student's
	// check-ins are joined in so absent weeks still count with zero.
	type row struct {
		Week  int
		Count int
	}
	var rows []row
	err := s.db.Model(&models.QrCode{}).
		Select("qr_codes.week AS week, COUNT(check_ins.id) AS count").
		Joins("JOIN sessions ON sessions.id = qr_codes.session_id").
		Joins("LEFT JOIN validity_windows ON validity_windows.qr_code_id = qr_codes.id").
		Joins("LEFT JOIN check_ins ON check_ins.validity_window_id = validity_windows.id AND check_ins.student_id = ?", studentID).
		Where("sessions.subject_id = ? AND sessions.kind = ?", subjectID, models.SessionKindLecture).
		Group("qr_codes.week").
		Order("qr_codes.week ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]int, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, r.Count)
	}

	standing := aggregateAttendance(counts, models.SessionKindLecture, subject.PlannedWeeks, threshold)
	standing.StudentID = studentID
	standing.SubjectID = subjectID
	return &standing, nil
}
