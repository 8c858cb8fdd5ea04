package utils

import (
	"math"
	"testing"
)

func TestDistanceMetersZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{-37.799541, 144.963926},
		{89.9, 179.9},
	}
	for _, p := range points {
		if d := DistanceMeters(p[0], p[1], p[0], p[1]); d != 0 {
			t.Fatalf("expected zero distance for identical points %v, got %f", p, d)
		}
	}
}

func TestDistanceMetersKnown(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
		tolerance              float64
	}{
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lon1: 0, lat2: 0, lon2: 1,
			expected:  111195,
			tolerance: 5,
		},
		{
			name: "equator to pole",
			lat1: 0, lon1: 0, lat2: 90, lon2: 0,
			expected:  10007543,
			tolerance: 10,
		},
		{
			name: "across a lecture theatre",
			lat1: -37.799541, lon1: 144.963926, lat2: -37.799541, lon2: 144.964500,
			expected:  50.5,
			tolerance: 1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := DistanceMeters(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(d-tc.expected) > tc.tolerance {
				t.Fatalf("expected ~%f m, got %f m", tc.expected, d)
			}
		})
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	d1 := DistanceMeters(-37.8, 144.9, -37.9, 145.1)
	d2 := DistanceMeters(-37.9, 145.1, -37.8, 144.9)
	if math.Abs(d1-d2) > 1e-6 {
		t.Fatalf("distance is not symmetric: %f vs %f", d1, d2)
	}
}

func TestDistanceMetersMonotonic(t *testing.T) {
	// Larger angular separation must never yield a smaller distance.
	prev := 0.0
	for _, dLon := range []float64{0.001, 0.01, 0.1, 1, 10} {
		d := DistanceMeters(0, 0, 0, dLon)
		if d <= prev {
			t.Fatalf("distance not monotonic at dLon=%f: %f <= %f", dLon, d, prev)
		}
		prev = d
	}
}
