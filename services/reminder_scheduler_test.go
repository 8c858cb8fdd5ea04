package services

import (
	"testing"
	"time"

	"classtrack_go/models"
)

func TestClassifyTier(t *testing.T) {
	standing := func(attended, total int, percentage float64, low bool) SubjectAttendance {
		return SubjectAttendance{
			AttendedWeeks:   attended,
			TotalWeeks:      total,
			Percentage:      percentage,
			IsLowAttendance: low,
		}
	}

	tests := []struct {
		name     string
		standing SubjectAttendance
		planned  int
		expTier  string
		eligible bool
	}{
		{"no misses", standing(6, 6, 100, false), 12, "", false},
		{"first missed week", standing(5, 6, 83.3, false), 12, models.TierFirstAbsence, true},
		{"second missed week", standing(4, 6, 66.7, true), 12, models.TierSecondAbsence, true},
		{"three misses mid-semester stays quiet", standing(3, 6, 50, true), 12, "", false},
		{"below threshold near the end", standing(7, 10, 70, true), 12, models.TierCriticalAbsence, true},
		{"below threshold at the final week", standing(9, 12, 75, true), 12, models.TierCriticalAbsence, true},
		{"critical outranks second", standing(8, 10, 72, true), 12, models.TierCriticalAbsence, true},
		{"one miss near the end but healthy", standing(10, 11, 90.9, false), 12, models.TierFirstAbsence, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tier, eligible := ClassifyTier(tc.standing, tc.planned, 0.80)
			if eligible != tc.eligible {
				t.Fatalf("eligible = %v, expected %v", eligible, tc.eligible)
			}
			if tier != tc.expTier {
				t.Fatalf("tier = %q, expected %q", tier, tc.expTier)
			}
		})
	}
}

func TestLookbackCoversJitteredCycle(t *testing.T) {
	// A session's only QR code expires at 14:15:00; the scheduler runs
	// every 5 minutes with a 1 minute slack. The 14:20:30 cycle must cover
	// the expiry, the 14:25:30 cycle must not.
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	expiry := day.Add(14*time.Hour + 15*time.Minute)
	interval := 5 * time.Minute
	slack := time.Minute

	inRange := func(cycle time.Time) bool {
		from := LookbackStart(cycle, interval, slack)
		return !expiry.Before(from) && expiry.Before(cycle)
	}

	firstCycle := day.Add(14*time.Hour + 20*time.Minute + 30*time.Second)
	if !inRange(firstCycle) {
		t.Fatalf("cycle at 14:20:30 must pick up the 14:15:00 expiry")
	}

	secondCycle := day.Add(14*time.Hour + 25*time.Minute + 30*time.Second)
	if inRange(secondCycle) {
		t.Fatalf("cycle at 14:25:30 must not rescan the 14:15:00 expiry")
	}
}

func TestLookbackWindowsOverlap(t *testing.T) {
	// Consecutive cycles must overlap by the slack so jitter cannot open a
	// gap between scans.
	interval := 5 * time.Minute
	slack := time.Minute
	first := time.Date(2026, 3, 2, 14, 20, 0, 0, time.UTC)
	second := first.Add(interval)

	if !LookbackStart(second, interval, slack).Before(first) {
		t.Fatalf("the second scan must reach back past the first scan's cycle time")
	}
}

func TestDedupKey(t *testing.T) {
	window := 6 * time.Hour
	at := time.Date(2026, 3, 2, 14, 20, 30, 0, time.UTC)

	key := DedupKey(7, 3, models.TierFirstAbsence, at, window)
	if key != DedupKey(7, 3, models.TierFirstAbsence, at, window) {
		t.Fatalf("dedup key must be deterministic")
	}

	// Two concurrent scheduler instances land in the same bucket and
	// collide on the unique constraint.
	if key != DedupKey(7, 3, models.TierFirstAbsence, at.Add(time.Second), window) {
		t.Fatalf("near-simultaneous cycles must produce the same key")
	}

	if key == DedupKey(7, 3, models.TierFirstAbsence, at.Add(window+window), window) {
		t.Fatalf("cycles a full window apart must produce different keys")
	}
	if key == DedupKey(7, 3, models.TierSecondAbsence, at, window) {
		t.Fatalf("different tiers must produce different keys")
	}
	if key == DedupKey(8, 3, models.TierFirstAbsence, at, window) {
		t.Fatalf("different students must produce different keys")
	}
	if key == DedupKey(7, 4, models.TierFirstAbsence, at, window) {
		t.Fatalf("different subjects must produce different keys")
	}
}
