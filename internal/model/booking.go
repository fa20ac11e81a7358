package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus enumerates the booking state machine.  PENDING is the
// only non-terminal state: it may move to CONFIRMED or EXPIRED, and a
// CONFIRMED booking may move to CANCELLED.  Nothing leaves CANCELLED
// or EXPIRED.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingExpired   BookingStatus = "EXPIRED"
)

// Booking records a user's reservation of one or more seat-segments on
// a schedule.  The ID is an opaque UUID so booking references are not
// guessable.  ExpirationTime is meaningful only while the status is
// PENDING; it is not cleared on transition but is no longer consulted
// once the status leaves PENDING.
//
// Fields:
//  ID             – UUID primary key.
//  UserID         – user who made the booking.
//  ScheduleID     – schedule being booked.
//  StartStopID    – first stop of the booked segment.
//  EndStopID      – last stop of the booked segment.
//  Status         – current state, see BookingStatus.
//  FinalPrice     – total price after demand factor and add-on fees.
//  BookingTime    – when the booking was created.
//  ExpirationTime – BookingTime plus the configured hold duration.
//  Seats          – reserved seat-segment records.
//  Addons         – add-ons selected at reservation time.
type Booking struct {
	ID             string          // bookings.id (UUID)
	UserID         uint64          // bookings.user_id
	ScheduleID     uint64          // bookings.schedule_id
	StartStopID    uint64          // bookings.start_stop_id
	EndStopID      uint64          // bookings.end_stop_id
	Status         BookingStatus   // bookings.status
	FinalPrice     decimal.Decimal // bookings.final_price
	BookingTime    time.Time       // bookings.booking_time
	ExpirationTime time.Time       // bookings.expiration_time
	Seats          []BookingSeat
	Addons         []Addon
}

// BookingSeat links a booking to one seat and records the exact segment
// reserved for that seat.  This is the unit the overlap algorithm
// reasons about.  Rows are never deleted when the owning booking is
// cancelled or expires; overlap checks filter by the owning booking's
// status instead.
//
// Fields:
//  ID                 – primary key identifier.
//  BookingID          – owning booking (UUID).
//  SeatID             – reserved seat.
//  SeatNumber         – seat label (joined, for responses and events).
//  SegmentStartStopID – first stop of the reserved segment.
//  SegmentEndStopID   – last stop of the reserved segment.
type BookingSeat struct {
	ID                 uint64 // booking_seats.id
	BookingID          string // booking_seats.booking_id
	SeatID             uint64 // booking_seats.seat_id
	SeatNumber         string // seats.seat_number (joined)
	SegmentStartStopID uint64 // booking_seats.segment_start_stop_id
	SegmentEndStopID   uint64 // booking_seats.segment_end_stop_id
}

// BookedSegment is the projection of a BookingSeat used by overlap
// checks: which seat, which stop-order interval, nothing else.  The
// orders are resolved against the schedule's stop list at query time.
type BookedSegment struct {
	SeatID      uint64
	StartStopID uint64
	EndStopID   uint64
}
