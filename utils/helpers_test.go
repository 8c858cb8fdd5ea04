package utils

import "testing"

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken(48)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(token) != 48 {
			t.Fatalf("expected 48 chars, got %d", len(token))
		}
		for _, r := range token {
			if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
				t.Fatalf("token contains non-hex char %q", r)
			}
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{88.888, 88.9},
		{88.844, 88.8},
		{0, 0},
		{100, 100},
		{66.666, 66.7},
	}
	for _, tc := range tests {
		if got := Round1(tc.input); got != tc.expected {
			t.Fatalf("Round1(%f) = %f, expected %f", tc.input, got, tc.expected)
		}
	}
}

func TestIsValidSessionKind(t *testing.T) {
	for _, kind := range []string{"lecture", "lab", "tutorial"} {
		if !IsValidSessionKind(kind) {
			t.Fatalf("expected %q to be valid", kind)
		}
	}
	for _, kind := range []string{"", "seminar", "Lecture"} {
		if IsValidSessionKind(kind) {
			t.Fatalf("expected %q to be invalid", kind)
		}
	}
}

func TestIsValidCheckInMethod(t *testing.T) {
	for _, method := range []string{"qr_scan", "geofence", "manual", "online"} {
		if !IsValidCheckInMethod(method) {
			t.Fatalf("expected %q to be valid", method)
		}
	}
	if IsValidCheckInMethod("carrier_pigeon") {
		t.Fatalf("expected unknown method to be invalid")
	}
}
