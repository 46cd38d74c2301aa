package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPlanExists        = errors.New("plan already exists")
	ErrProgressTooLow    = errors.New("progress too low to save")
	ErrAlreadySubmitted  = errors.New("session already saved today")
	ErrSessionNotRunning = errors.New("session is not running")
)
