package services

import (
	"testing"
	"time"

	"classtrack_go/models"
)

func mkWindow(id uint, ordinal int, start, end time.Time) models.ValidityWindow {
	w := models.ValidityWindow{Ordinal: ordinal, StartsAt: start, EndsAt: end}
	w.ID = id
	return w
}

func TestPickActiveWindow(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	// The standard confirm-twice pattern: 10:00-10:05 and 10:50-10:55.
	windows := []models.ValidityWindow{
		mkWindow(1, 1, at(10, 0), at(10, 5)),
		mkWindow(2, 2, at(10, 50), at(10, 55)),
	}

	tests := []struct {
		name       string
		now        time.Time
		expOrdinal int // 0 = none
	}{
		{"before first window", at(9, 59), 0},
		{"first window open", at(10, 2), 1},
		{"inclusive start", at(10, 0), 1},
		{"inclusive end", at(10, 5), 1},
		{"between windows", at(10, 20), 0},
		{"second window open", at(10, 52), 2},
		{"after everything", at(11, 0), 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := PickActiveWindow(windows, tc.now)
			if tc.expOrdinal == 0 {
				if got != nil {
					t.Fatalf("expected no active window, got ordinal %d", got.Ordinal)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected ordinal %d, got none", tc.expOrdinal)
			}
			if got.Ordinal != tc.expOrdinal {
				t.Fatalf("expected ordinal %d, got %d", tc.expOrdinal, got.Ordinal)
			}
		})
	}
}

func TestPickActiveWindowTieGoesToLowestOrdinal(t *testing.T) {
	// Overlap violates the invariant, but resolution must still be stable.
	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	windows := []models.ValidityWindow{
		mkWindow(2, 2, day, day.Add(10*time.Minute)),
		mkWindow(1, 1, day, day.Add(10*time.Minute)),
	}
	got := PickActiveWindow(windows, day.Add(5*time.Minute))
	if got == nil || got.Ordinal != 1 {
		t.Fatalf("expected the lowest ordinal to win the tie, got %+v", got)
	}
}

func TestAllExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	past := mkWindow(1, 1, now.Add(-2*time.Hour), now.Add(-time.Hour))
	open := mkWindow(2, 2, now.Add(-time.Minute), now.Add(time.Minute))
	future := mkWindow(3, 2, now.Add(time.Hour), now.Add(2*time.Hour))

	tests := []struct {
		name     string
		windows  []models.ValidityWindow
		expected bool
	}{
		{"no windows is never expired", nil, false},
		{"all in the past", []models.ValidityWindow{past}, true},
		{"one still open", []models.ValidityWindow{past, open}, false},
		{"one still ahead", []models.ValidityWindow{past, future}, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := AllExpired(tc.windows, now); got != tc.expected {
				t.Fatalf("AllExpired = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestValidateWindowSpecs(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	spec := func(ordinal, startMin, endMin int) WindowSpec {
		return WindowSpec{
			Ordinal:  ordinal,
			StartsAt: base.Add(time.Duration(startMin) * time.Minute),
			EndsAt:   base.Add(time.Duration(endMin) * time.Minute),
		}
	}

	tests := []struct {
		name    string
		specs   []WindowSpec
		wantErr bool
	}{
		{"single window", []WindowSpec{spec(1, 0, 5)}, false},
		{"confirm twice", []WindowSpec{spec(1, 0, 5), spec(2, 50, 55)}, false},
		{"windows given out of order", []WindowSpec{spec(2, 50, 55), spec(1, 0, 5)}, false},
		{"back to back is allowed", []WindowSpec{spec(1, 0, 5), spec(2, 5, 10)}, false},
		{"no windows", nil, true},
		{"three windows", []WindowSpec{spec(1, 0, 5), spec(2, 10, 15), spec(3, 20, 25)}, true},
		{"wrong ordinals", []WindowSpec{spec(2, 0, 5)}, true},
		{"duplicate ordinals", []WindowSpec{spec(1, 0, 5), spec(1, 10, 15)}, true},
		{"start after end", []WindowSpec{spec(1, 5, 0)}, true},
		{"zero length", []WindowSpec{spec(1, 5, 5)}, true},
		{"overlapping windows", []WindowSpec{spec(1, 0, 10), spec(2, 5, 15)}, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := validateWindowSpecs(tc.specs)
			if tc.wantErr && err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
