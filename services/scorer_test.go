package services

import "testing"

func TestWeeklyScore(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		kind     string
		expected int
	}{
		{"lecture zero", 0, "lecture", 0},
		{"lecture one window", 1, "lecture", 45},
		{"lecture both windows", 2, "lecture", 90},
		{"lab one window", 1, "lab", 45},
		{"lab both windows", 2, "lab", 90},
		{"tutorial one window", 1, "tutorial", 50},
		{"tutorial both windows", 2, "tutorial", 100},
		{"tutorial zero", 0, "tutorial", 0},
		{"negative count scores zero", -1, "lecture", 0},
		{"impossible count scores zero", 3, "lecture", 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := WeeklyScore(tc.count, tc.kind); got != tc.expected {
				t.Fatalf("WeeklyScore(%d, %q) = %d, expected %d", tc.count, tc.kind, got, tc.expected)
			}
		})
	}
}

func TestAggregateAttendanceNineOfTen(t *testing.T) {
	// Ten planned lecture weeks at an 80% threshold; the student attended
	// both windows in eight of the nine weeks run so far.
	counts := []int{2, 2, 2, 0, 2, 2, 2, 2, 2}

	standing := aggregateAttendance(counts, "lecture", 10, 0.80)

	if standing.TotalWeeks != 9 {
		t.Fatalf("expected 9 weeks considered, got %d", standing.TotalWeeks)
	}
	if standing.AttendedWeeks != 8 {
		t.Fatalf("expected 8 attended weeks, got %d", standing.AttendedWeeks)
	}
	if standing.Percentage != 88.9 {
		t.Fatalf("expected 88.9%%, got %f", standing.Percentage)
	}
	if standing.IsLowAttendance {
		t.Fatalf("88.9%% against an 80%% threshold must not be low")
	}
	if standing.MissedWeeks() != 1 {
		t.Fatalf("expected 1 missed week, got %d", standing.MissedWeeks())
	}
	// 720 points banked, one week left: missing it still leaves exactly 80%.
	if standing.ClassesCanMiss != 1 {
		t.Fatalf("expected 1 class can miss, got %d", standing.ClassesCanMiss)
	}
}

func TestAggregateAttendanceSingleWindowWeek(t *testing.T) {
	// One check-in against window 2 only scores the half value for lectures.
	standing := aggregateAttendance([]int{1}, "lecture", 12, 0.80)
	if standing.Percentage != 50.0 {
		t.Fatalf("expected 50.0%%, got %f", standing.Percentage)
	}
	if standing.AttendedWeeks != 1 {
		t.Fatalf("a single-window week still counts as attended, got %d", standing.AttendedWeeks)
	}
}

func TestAggregateAttendanceNoWeeks(t *testing.T) {
	standing := aggregateAttendance(nil, "lecture", 12, 0.80)
	if standing.TotalWeeks != 0 || standing.Percentage != 0 {
		t.Fatalf("empty history should score zero over zero weeks, got %+v", standing)
	}
	// Nothing has happened yet; the whole planned slack is available.
	if standing.ClassesCanMiss != 2 {
		t.Fatalf("expected 2 classes can miss for a fresh subject, got %d", standing.ClassesCanMiss)
	}
}

func TestClassesCanMiss(t *testing.T) {
	tests := []struct {
		name         string
		points       int
		totalWeeks   int
		plannedWeeks int
		threshold    float64
		expected     int
	}{
		{"perfect record halfway", 6 * 90, 6, 12, 0.80, 2},
		{"already at the floor", 8 * 90, 10, 10, 0.80, 0},
		{"below threshold", 4 * 90, 9, 10, 0.80, 0},
		{"slack capped by remaining weeks", 5 * 90, 5, 6, 0.50, 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := classesCanMiss(tc.points, tc.totalWeeks, tc.plannedWeeks, 90, tc.threshold)
			if got != tc.expected {
				t.Fatalf("classesCanMiss(%d, %d, %d, 90, %.2f) = %d, expected %d",
					tc.points, tc.totalWeeks, tc.plannedWeeks, tc.threshold, got, tc.expected)
			}
		})
	}
}
