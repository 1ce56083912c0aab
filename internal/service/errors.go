package service

import "errors"

// Service-level errors. Handlers map these onto HTTP statuses; anything
// else coming out of a service is an internal error.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrMissingFields      = errors.New("missing required fields")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("unauthorized")
	ErrPastDate           = errors.New("cannot book appointments in the past")
	ErrSlotConflict       = errors.New("doctor is not available at this time")
	ErrInvalidState       = errors.New("appointment is no longer active")
)
