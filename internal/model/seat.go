package model

import "github.com/shopspring/decimal"

// Seat classes.  The class only carries pricing and display semantics;
// availability logic treats all classes the same.
const (
	SeatClassSeater  = "SEATER"
	SeatClassSleeper = "SLEEPER"
	SeatClassPremium = "PREMIUM"
)

// Seat is a physical seat on one schedule's bus.  The seat number is
// unique within the schedule; the class and multiplier are fixed once
// the schedule is authored.
//
// Fields:
//  ID         – primary key identifier.
//  ScheduleID – schedule this seat belongs to.
//  SeatNumber – human readable label (e.g. "A1").
//  SeatClass  – one of the SeatClass* constants.
//  Multiplier – price multiplier applied to the schedule's base fare.
type Seat struct {
	ID         uint64          // seats.id
	ScheduleID uint64          // seats.schedule_id
	SeatNumber string          // seats.seat_number
	SeatClass  string          // seats.seat_class
	Multiplier decimal.Decimal // seats.multiplier
}
