package services

import (
	"gorm.io/gorm"

	"classtrack_go/models"
)

// AttendeeResolver answers "who is required to attend this session". The
// two variants replace the per-query kind branching the call sites would
// otherwise repeat: lectures and labs draw on subject enrolment, tutorials
// on direct session assignment.
type AttendeeResolver interface {
	Requires(studentID uint) (bool, error)
	List() ([]models.Student, error)
}

// ResolverForSession selects the variant once, by session kind.
func ResolverForSession(db *gorm.DB, session models.Session) AttendeeResolver {
	if session.Kind == models.SessionKindTutorial {
		return &directAssignmentResolver{db: db, sessionID: session.ID}
	}
	return &enrolmentBasedResolver{db: db, subjectID: session.SubjectID}
}

type enrolmentBasedResolver struct {
	db        *gorm.DB
	subjectID uint
}

func (r *enrolmentBasedResolver) Requires(studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Enrolment{}).
		Where("student_id = ? AND subject_id = ?", studentID, r.subjectID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrolmentBasedResolver) List() ([]models.Student, error) {
	var students []models.Student
	err := r.db.
		Joins("JOIN enrolments ON enrolments.student_id = students.id").
		Where("enrolments.subject_id = ? AND enrolments.deleted_at IS NULL", r.subjectID).
		Find(&students).Error
	return students, err
}

type directAssignmentResolver struct {
	db        *gorm.DB
	sessionID uint
}

func (r *directAssignmentResolver) Requires(studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SessionAssignment{}).
		Where("student_id = ? AND session_id = ?", studentID, r.sessionID).
		Count(&count).Error
	return count > 0, err
}

func (r *directAssignmentResolver) List() ([]models.Student, error) {
	var students []models.Student
	err := r.db.
		Joins("JOIN session_assignments ON session_assignments.student_id = students.id").
		Where("session_assignments.session_id = ? AND session_assignments.deleted_at IS NULL", r.sessionID).
		Find(&students).Error
	return students, err
}
