package services

import "errors"

// Check-in failures, surfaced to the caller verbatim. All of them are
// user-correctable; none is fatal to the host process.
var (
	ErrInvalidToken     = errors.New("qr token not recognized")
	ErrWindowNotActive  = errors.New("no validity window is active for this code")
	ErrOutOfRange       = errors.New("location is outside the allowed radius")
	ErrNotEnrolled      = errors.New("student is not required to attend this session")
	ErrAlreadyCheckedIn = errors.New("already checked in for this window")
)
