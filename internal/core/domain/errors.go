package domain

import "errors"

// Common domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrStatusChanged     = errors.New("status changed concurrently")
)

// Lookup errors. All of them wrap ErrNotFound so callers can test either.
var (
	ErrUserNotFound    = notFound("user not found")
	ErrCardNotFound    = notFound("card not found")
	ErrZoneNotFound    = notFound("access zone not found")
	ErrProfileNotFound = notFound("access profile not found")
	ErrStatusNotFound  = notFound("user status not found")
	ErrScannerNotFound = notFound("scanner not found")
)

// ErrCardInactive is returned when an operation needs an active card
var ErrCardInactive = errors.New("card is not active")

type notFoundError struct{ msg string }

func notFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Unwrap() error { return ErrNotFound }
