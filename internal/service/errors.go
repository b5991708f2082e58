package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for them; the API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidCredentials indicates a login attempt with an unknown
	// account, a wrong password or an invalid login code. Callers cannot
	// tell the cases apart.
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
)

// Field messages for uniqueness conflicts.
const (
	msgEmailTaken = "user with this email already exists."
	msgPhoneTaken = "user with this phone number already exists."
)
