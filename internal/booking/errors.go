// Package booking implements the booking lifecycle controller: it
// orchestrates reservation, confirmation and cancellation and owns the
// PENDING → CONFIRMED/CANCELLED/EXPIRED state machine.
package booking

import "errors"

// ErrSeatUnavailable is returned when an explicitly requested seat
// already overlaps a CONFIRMED or PENDING segment, or when
// auto-assignment finds no free seat.  Callers may retry with other
// seats.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrConcurrencyConflict is returned when a segment lock could not be
// acquired because another reservation attempt holds it.  Callers may
// retry.
var ErrConcurrencyConflict = errors.New("concurrent reservation in progress")

// ErrInvalidState is returned when an operation is not valid for the
// booking's current status, e.g. confirming a CANCELLED booking or
// user-cancelling a PENDING one.
var ErrInvalidState = errors.New("operation not valid for booking state")

// ErrExpired is returned when a confirmation arrives after the hold
// lapsed.  The booking is transitioned to EXPIRED as a side effect;
// the caller must start a new reservation.
var ErrExpired = errors.New("booking hold expired")

// ErrPaymentFailure is returned when the payment reference is missing
// or blank at confirmation time.
var ErrPaymentFailure = errors.New("payment failed")
