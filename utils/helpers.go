package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"strings"
	"time"
)

// GenerateToken generates an unguessable hex token of the given length.
// QR tokens are capabilities: knowing one is the only way to reference it.
func GenerateToken(length int) (string, error) {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// Round1 rounds to one decimal place.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// PtrTime returns a pointer to t.
func PtrTime(t time.Time) *time.Time { return &t }

// PtrFloat returns a pointer to f.
func PtrFloat(f float64) *float64 { return &f }

// IsValidSessionKind checks if a session kind is valid
func IsValidSessionKind(kind string) bool {
	validKinds := []string{"lecture", "lab", "tutorial"}
	for _, validKind := range validKinds {
		if kind == validKind {
			return true
		}
	}
	return false
}

// IsValidCheckInMethod checks if a check-in method is valid
func IsValidCheckInMethod(method string) bool {
	validMethods := []string{"qr_scan", "geofence", "manual", "online"}
	for _, validMethod := range validMethods {
		if method == validMethod {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
