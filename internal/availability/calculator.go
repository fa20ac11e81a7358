// Package availability implements the segment availability calculator:
// given a schedule and a query segment it determines which seats are
// free for that segment.  Segments are half-open stop-order intervals
// [startOrder, endOrder); two segments overlap iff
// start1 < end2 && start2 < end1, so back-to-back segments such as
// [1,2) and [2,3) never conflict.
package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// ErrInvalidSegment is returned when a requested stop pair does not
// resolve to a valid, forward-ordered segment on the schedule.
var ErrInvalidSegment = errors.New("invalid segment")

// Segment is a resolved half-open stop-order interval on one schedule.
type Segment struct {
	StartOrder int
	EndOrder   int
}

// Overlaps reports whether two half-open stop-order intervals
// intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// ResolveSegment maps a (source, destination) stop pair onto the
// schedule's stop orders.  It returns ErrInvalidSegment when either
// stop is not part of the itinerary or when the source does not
// strictly precede the destination.
func ResolveSegment(stops []model.ScheduleStop, sourceStopID, destStopID uint64) (Segment, error) {
	var (
		start, end     int
		foundS, foundE bool
	)
	for _, ss := range stops {
		if ss.StopID == sourceStopID {
			start, foundS = ss.StopOrder, true
		}
		if ss.StopID == destStopID {
			end, foundE = ss.StopOrder, true
		}
	}
	if !foundS || !foundE {
		return Segment{}, fmt.Errorf("%w: stop is not part of the route for this schedule", ErrInvalidSegment)
	}
	if start >= end {
		return Segment{}, fmt.Errorf("%w: source must precede destination", ErrInvalidSegment)
	}
	return Segment{StartOrder: start, EndOrder: end}, nil
}

// StopOrderMap indexes a schedule's itinerary by stop ID for overlap
// resolution.
func StopOrderMap(stops []model.ScheduleStop) map[uint64]int {
	m := make(map[uint64]int, len(stops))
	for _, ss := range stops {
		m[ss.StopID] = ss.StopOrder
	}
	return m
}

// ScheduleStore supplies the ordered itinerary of a schedule.
type ScheduleStore interface {
	StopsBySchedule(ctx context.Context, scheduleID uint64) ([]model.ScheduleStop, error)
}

// SeatStore supplies the full seat roster of a schedule.
type SeatStore interface {
	ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error)
}

// BookingStore supplies the seat-segment records whose owning booking
// has one of the given statuses.
type BookingStore interface {
	BookedSegments(ctx context.Context, scheduleID uint64, statuses ...model.BookingStatus) ([]model.BookedSegment, error)
}

// Result describes seat availability for one query segment.  Total is
// always the schedule's full roster size, independent of the segment.
type Result struct {
	TotalSeats     int               `json:"total_seats"`
	BookedSeats    []string          `json:"booked_seats"`
	AvailableSeats []string          `json:"available_seats"`
	SeatClasses    map[string]string `json:"seat_classes"`
}

// Calculator answers segment availability queries.  It is read-only
// and safe to call concurrently with reservations: it reflects only
// CONFIRMED bookings, so it may be optimistic relative to in-flight
// PENDING holds.  The reservation path applies the stricter
// CONFIRMED-or-PENDING check; the two deliberately disagree.
type Calculator struct {
	schedules ScheduleStore
	seats     SeatStore
	bookings  BookingStore
}

// NewCalculator constructs a Calculator from its stores.
func NewCalculator(schedules ScheduleStore, seats SeatStore, bookings BookingStore) *Calculator {
	return &Calculator{schedules: schedules, seats: seats, bookings: bookings}
}

// GetSegmentAvailability resolves the query segment and reports which
// seats are booked and which are free for it.  A seat is unavailable
// iff any of its CONFIRMED segments overlaps the query segment.
func (c *Calculator) GetSegmentAvailability(ctx context.Context, scheduleID, sourceStopID, destStopID uint64) (*Result, error) {
	stops, err := c.schedules.StopsBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	query, err := ResolveSegment(stops, sourceStopID, destStopID)
	if err != nil {
		return nil, err
	}
	orders := StopOrderMap(stops)

	booked, err := c.bookings.BookedSegments(ctx, scheduleID, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	unavailable := make(map[uint64]bool)
	for _, seg := range booked {
		bStart, okS := orders[seg.StartStopID]
		bEnd, okE := orders[seg.EndStopID]
		if !okS || !okE {
			continue
		}
		if Overlaps(query.StartOrder, query.EndOrder, bStart, bEnd) {
			unavailable[seg.SeatID] = true
		}
	}

	seats, err := c.seats.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	res := &Result{
		TotalSeats:     len(seats),
		BookedSeats:    []string{},
		AvailableSeats: []string{},
		SeatClasses:    make(map[string]string, len(seats)),
	}
	for _, s := range seats {
		res.SeatClasses[s.SeatNumber] = s.SeatClass
		if unavailable[s.ID] {
			res.BookedSeats = append(res.BookedSeats, s.SeatNumber)
		} else {
			res.AvailableSeats = append(res.AvailableSeats, s.SeatNumber)
		}
	}
	return res, nil
}
