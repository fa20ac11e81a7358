// Package repository implements data access against MySQL.  It defines
// sentinel error values that are reused across multiple repositories so
// that higher layers such as the booking service and the HTTP handlers
// can distinguish between failure scenarios with errors.Is.
package repository

import "errors"

// ErrScheduleNotFound is returned when no schedule exists with the
// requested identifier.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrStopNotFound is returned when no stop exists with the requested
// identifier.
var ErrStopNotFound = errors.New("stop not found")

// ErrSeatNotFound is returned when a seat number does not exist on the
// requested schedule.
var ErrSeatNotFound = errors.New("seat not found")

// ErrBookingNotFound is returned when no booking exists with the
// requested identifier.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering with an email address that
// already has an account.
var ErrEmailTaken = errors.New("email already registered")
