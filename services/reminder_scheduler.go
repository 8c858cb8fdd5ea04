package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"classtrack_go/config"
	"classtrack_go/database"
	"classtrack_go/models"
	"classtrack_go/services/mailer"
)

// ReminderScheduler periodically scans for lecture weeks whose validity
// windows have all expired and emails students about their standing. It
// keeps no in-memory "already handled" state: the reminder log is the
// single source of truth, so concurrent instances (rolling deploys) cannot
// double-send — the dedup_key constraint decides the race.
type ReminderScheduler struct {
	db     *gorm.DB
	scorer *ScorerService
	mailer mailer.Mailer

	interval    time.Duration
	slack       time.Duration
	dedupWindow time.Duration
	sendTimeout time.Duration

	cron *cron.Cron
}

// NewReminderScheduler wires a scheduler from the app config.
func NewReminderScheduler(m mailer.Mailer) *ReminderScheduler {
	cfg := config.AppConfig
	return &ReminderScheduler{
		db:          database.DB,
		scorer:      NewScorerService(),
		mailer:      m,
		interval:    cfg.ReminderInterval,
		slack:       cfg.ReminderLookbackSlack,
		dedupWindow: cfg.ReminderDedupWindow,
		sendTimeout: cfg.ReminderSendTimeout,
	}
}

// CycleStats is the aggregate outcome of one scheduler cycle.
type CycleStats struct {
	Processed int       `json:"processed"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}

// Start runs RunCycle on the configured interval until Stop is called.
func (rs *ReminderScheduler) Start() {
	rs.cron = cron.New()
	_, err := rs.cron.AddFunc(fmt.Sprintf("@every %s", rs.interval), func() {
		stats, err := rs.RunCycle(context.Background(), time.Now())
		if err != nil {
			logrus.WithError(err).Error("reminder cycle failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"processed": stats.Processed,
			"sent":      stats.Sent,
			"failed":    stats.Failed,
			"skipped":   stats.Skipped,
		}).Info("reminder cycle completed")
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to schedule reminder cycle")
	}
	rs.cron.Start()
	logrus.WithField("interval", rs.interval.String()).Info("reminder scheduler started")
}

// Stop halts the periodic runs; an in-flight cycle finishes on its own.
func (rs *ReminderScheduler) Stop() {
	if rs.cron != nil {
		rs.cron.Stop()
	}
}

// LookbackStart returns the lower bound of the scan range for a cycle at
// now. The slack stretches the range past one interval so jittered cycles
// overlap instead of leaving gaps; overlap is harmless because the dedup
// check makes re-processing a no-op.
func LookbackStart(now time.Time, interval, slack time.Duration) time.Time {
	return now.Add(-(interval + slack))
}

// DedupKey buckets (student, subject, tier) onto the dedup window so the
// unique constraint lets exactly one of two concurrent inserts through.
func DedupKey(studentID, subjectID uint, tier string, at time.Time, window time.Duration) string {
	bucket := int64(0)
	if window > 0 {
		bucket = at.Unix() / int64(window.Seconds())
	}
	return fmt.Sprintf("%d:%d:%s:%d", studentID, subjectID, tier, bucket)
}

// ClassifyTier maps a student's standing onto a reminder tier. Severity
// wins ties: a below-threshold standing near the end of the subject's
// planned weeks is critical regardless of the missed count.
func ClassifyTier(standing SubjectAttendance, plannedWeeks int, threshold float64) (string, bool) {
	if standing.IsLowAttendance && plannedWeeks-standing.TotalWeeks <= 2 {
		return models.TierCriticalAbsence, true
	}
	switch standing.MissedWeeks() {
	case 2:
		return models.TierSecondAbsence, true
	case 1:
		return models.TierFirstAbsence, true
	default:
		return "", false
	}
}

type expiredWeek struct {
	SessionID uint
	SubjectID uint
	Week      int
	Latest    time.Time
}

// RunCycle performs one scan. Each student's classify → dedup-check → send
// → log sequence is the unit of atomicity; one student's failure never
// aborts the rest of the roster. The scan itself is stateless and
// re-derived from timestamps, so a crashed cycle is simply re-covered by
// the next one.
func (rs *ReminderScheduler) RunCycle(ctx context.Context, now time.Time) (CycleStats, error) {
	stats := CycleStats{Timestamp: now}
	from := LookbackStart(now, rs.interval, rs.slack)

	var weeks []expiredWeek
	err := rs.db.Model(&models.ValidityWindow{}).
		Select("qr_codes.session_id AS session_id, sessions.subject_id AS subject_id, qr_codes.week AS week, MAX(validity_windows.ends_at) AS latest").
		Joins("JOIN qr_codes ON qr_codes.id = validity_windows.qr_code_id").
		Joins("JOIN sessions ON sessions.id = qr_codes.session_id").
		Where("sessions.kind = ?", models.SessionKindLecture).
		Group("qr_codes.session_id, sessions.subject_id, qr_codes.week").
		Having("latest >= ? AND latest < ?", from, now).
		Scan(&weeks).Error
	if err != nil {
		return stats, fmt.Errorf("scanning expired weeks: %w", err)
	}

	for _, week := range weeks {
		var session models.Session
		if err := rs.db.Preload("Subject").First(&session, week.SessionID).Error; err != nil {
			logrus.WithError(err).WithField("session_id", week.SessionID).Error("reminder scan: session load failed")
			continue
		}

		students, err := ResolverForSession(rs.db, session).List()
		if err != nil {
			logrus.WithError(err).WithField("session_id", week.SessionID).Error("reminder scan: roster load failed")
			continue
		}

		for _, student := range students {
			stats.Processed++
			rs.processStudent(ctx, &stats, student, session.Subject, now)
		}
	}

	return stats, nil
}

// processStudent runs one student's classify → dedup → send → log sequence.
func (rs *ReminderScheduler) processStudent(ctx context.Context, stats *CycleStats, student models.Student, subject models.Subject, now time.Time) {
	standing, err := rs.scorer.SubjectStanding(student.ID, subject.ID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"student_id": student.ID,
			"subject_id": subject.ID,
		}).Error("reminder: scoring failed")
		return
	}

	threshold := subject.AttendanceThreshold
	if threshold <= 0 {
		threshold = config.AppConfig.DefaultAttendanceThreshold
	}
	tier, eligible := ClassifyTier(*standing, subject.PlannedWeeks, threshold)
	if !eligible {
		return
	}

	// The log is the idempotency guard; an entry of the same tier inside
	// the dedup window means another cycle (or instance) handled this.
	var existing models.ReminderLog
	err = rs.db.
		Where("student_id = ? AND subject_id = ? AND tier = ? AND sent_at > ?",
			student.ID, subject.ID, tier, now.Add(-rs.dedupWindow)).
		First(&existing).Error
	if err == nil {
		stats.Skipped++
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).WithField("student_id", student.ID).Error("reminder: dedup lookup failed")
		return
	}

	// A slow or hung mailbox must not stall the rest of the roster.
	sendCtx, cancel := context.WithTimeout(ctx, rs.sendTimeout)
	defer cancel()

	subjectLine, bodyHTML := composeReminder(student, subject, *standing, tier)
	sendErr := rs.mailer.Send(sendCtx, student.FirstName+" "+student.LastName, student.Email, subjectLine, bodyHTML)

	entry := models.ReminderLog{
		StudentID: student.ID,
		SubjectID: subject.ID,
		Tier:      tier,
		SentAt:    now,
		DedupKey:  DedupKey(student.ID, subject.ID, tier, now, rs.dedupWindow),
	}
	if sendErr != nil {
		// Failures still count toward dedup so a broken mailbox is not
		// hammered every cycle; retry happens after the window elapses.
		entry.Status = models.ReminderStatusFailed
		entry.Error = sendErr.Error()
	} else {
		entry.Status = models.ReminderStatusSent
	}

	if err := rs.db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent instance won the insert race.
			stats.Skipped++
			return
		}
		logrus.WithError(err).WithField("student_id", student.ID).Error("reminder: log write failed")
		return
	}

	if sendErr != nil {
		stats.Failed++
		logrus.WithError(sendErr).WithFields(logrus.Fields{
			"student_id": student.ID,
			"subject_id": subject.ID,
			"tier":       tier,
		}).Warn("reminder email failed")
		return
	}
	stats.Sent++
}

// composeReminder renders the subject line and HTML body for a tier.
func composeReminder(student models.Student, subject models.Subject, standing SubjectAttendance, tier string) (string, string) {
	var subjectLine, lead string
	switch tier {
	case models.TierCriticalAbsence:
		subjectLine = fmt.Sprintf("Attendance warning for %s", subject.Name)
		lead = "Your attendance has fallen below the required threshold and the semester is nearly over."
	case models.TierSecondAbsence:
		subjectLine = fmt.Sprintf("Second missed class in %s", subject.Name)
		lead = "You have now missed two weeks of this subject."
	default:
		subjectLine = fmt.Sprintf("Missed class in %s", subject.Name)
		lead = "You missed this week's session."
	}

	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s</p><p>%s (%s): you attended %d of %d weeks, current attendance %.1f%%. "+
			"You can still miss %d more week(s) and stay above the requirement.</p>",
		student.FirstName, lead, subject.Name, subject.Code,
		standing.AttendedWeeks, standing.TotalWeeks, standing.Percentage, standing.ClassesCanMiss,
	)
	return subjectLine, body
}
