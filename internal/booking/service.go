package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/availability"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/lock"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/pricing"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/repository"
)

// DefaultHoldDuration is how long a PENDING booking holds its seats
// before it expires.  The segment locks use the same TTL so an
// abandoned hold releases itself without intervention.
const DefaultHoldDuration = 10 * time.Minute

// ScheduleStore supplies schedules and their itineraries.
type ScheduleStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
	StopsBySchedule(ctx context.Context, scheduleID uint64) ([]model.ScheduleStop, error)
}

// SeatStore supplies a schedule's seat roster.
type SeatStore interface {
	ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error)
}

// BookingStore persists bookings and answers overlap queries.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
	BookedSegments(ctx context.Context, scheduleID uint64, statuses ...model.BookingStatus) ([]model.BookedSegment, error)
}

// AddonStore resolves add-on selections.
type AddonStore interface {
	ListByIDs(ctx context.Context, ids []uint64) ([]model.Addon, error)
}

// Notifier receives lifecycle events.  Implementations must not block
// the request path on delivery problems; failures are logged and
// ignored by the caller.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b *model.Booking, sch *model.Schedule)
}

// ReserveRequest describes one reservation attempt.  SeatNumbers may
// be empty, in which case one free seat is auto-assigned.
type ReserveRequest struct {
	UserID      uint64
	ScheduleID  uint64
	StartStopID uint64
	EndStopID   uint64
	SeatNumbers []string
	AddonIDs    []uint64
}

// Service is the booking lifecycle controller.  All mutual exclusion
// between concurrent reservation attempts comes from the injected
// Locker; the service itself keeps no shared mutable state.
type Service struct {
	schedules ScheduleStore
	seats     SeatStore
	bookings  BookingStore
	addons    AddonStore
	locker    lock.Locker
	pricer    *pricing.Engine
	hold      time.Duration
	notifier  Notifier
	now       func() time.Time
}

// NewService constructs the lifecycle controller.  notifier may be nil
// when no event publishing is wanted (e.g. in tests).
func NewService(schedules ScheduleStore, seats SeatStore, bookings BookingStore, addons AddonStore,
	locker lock.Locker, pricer *pricing.Engine, hold time.Duration, notifier Notifier) *Service {
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return &Service{
		schedules: schedules,
		seats:     seats,
		bookings:  bookings,
		addons:    addons,
		locker:    locker,
		pricer:    pricer,
		hold:      hold,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Reserve validates the requested segment, resolves seats, acquires
// one segment lock per seat and persists a PENDING booking priced with
// the selected add-ons.  Locks are acquired sequentially in seat
// order with zero wait; on the first contended seat all locks taken by
// this attempt are released and the whole reservation fails.  This is
// not atomic across the seat set; the simplicity is a deliberate
// trade-off over a two-phase protocol.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	sch, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	stops, err := s.schedules.StopsBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if _, err := availability.ResolveSegment(stops, req.StartStopID, req.EndStopID); err != nil {
		return nil, err
	}

	roster, err := s.seats.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	selected, err := s.selectSeats(ctx, req, stops, roster)
	if err != nil {
		return nil, err
	}

	// The booking ID doubles as the lock owner so that confirmation,
	// running in a later request, can release the same keys.
	bookingID := uuid.NewString()

	var held []string
	release := func() {
		for _, key := range held {
			if err := s.locker.Release(ctx, key, bookingID); err != nil {
				log.Printf("booking: release lock %s: %v", key, err)
			}
		}
	}
	for _, seat := range selected {
		key := lock.SegmentKey(req.ScheduleID, seat.ID, req.StartStopID, req.EndStopID)
		if err := s.locker.Acquire(ctx, key, bookingID, s.hold); err != nil {
			release()
			if errors.Is(err, lock.ErrNotAcquired) {
				return nil, fmt.Errorf("%w: seat %s", ErrConcurrencyConflict, seat.SeatNumber)
			}
			// Store errors and interrupted acquisitions map to the
			// same retryable kind as a contested lock.
			return nil, fmt.Errorf("%w: seat %s: %v", ErrConcurrencyConflict, seat.SeatNumber, err)
		}
		held = append(held, key)
	}

	addons, err := s.addons.ListByIDs(ctx, req.AddonIDs)
	if err != nil {
		release()
		return nil, err
	}

	now := s.now().UTC()
	b := &model.Booking{
		ID:             bookingID,
		UserID:         req.UserID,
		ScheduleID:     req.ScheduleID,
		StartStopID:    req.StartStopID,
		EndStopID:      req.EndStopID,
		Status:         model.BookingPending,
		FinalPrice:     s.pricer.Price(sch, selected, addons),
		BookingTime:    now,
		ExpirationTime: now.Add(s.hold),
		Addons:         addons,
	}
	for _, seat := range selected {
		b.Seats = append(b.Seats, model.BookingSeat{
			BookingID:          bookingID,
			SeatID:             seat.ID,
			SeatNumber:         seat.SeatNumber,
			SegmentStartStopID: req.StartStopID,
			SegmentEndStopID:   req.EndStopID,
		})
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		release()
		return nil, err
	}
	log.Printf("booking: %s created PENDING, %d seat(s), expires %s", b.ID, len(b.Seats), b.ExpirationTime.Format(time.RFC3339))
	return b, nil
}

// selectSeats resolves explicit seat numbers against the roster, or
// auto-assigns the first seat free for the whole segment.  The
// auto-assignment path proposes exactly one seat per call.
//
// Unlike the read-only availability calculator, the overlap check here
// counts PENDING holds as well as CONFIRMED bookings.
func (s *Service) selectSeats(ctx context.Context, req ReserveRequest, stops []model.ScheduleStop, roster []model.Seat) ([]model.Seat, error) {
	booked, err := s.bookings.BookedSegments(ctx, req.ScheduleID, model.BookingConfirmed, model.BookingPending)
	if err != nil {
		return nil, err
	}
	orders := availability.StopOrderMap(stops)
	reqStart, reqEnd := orders[req.StartStopID], orders[req.EndStopID]

	taken := make(map[uint64]bool)
	for _, seg := range booked {
		bStart, okS := orders[seg.StartStopID]
		bEnd, okE := orders[seg.EndStopID]
		if !okS || !okE {
			continue
		}
		if availability.Overlaps(reqStart, reqEnd, bStart, bEnd) {
			taken[seg.SeatID] = true
		}
	}

	if len(req.SeatNumbers) == 0 {
		for _, seat := range roster {
			if !taken[seat.ID] {
				return []model.Seat{seat}, nil
			}
		}
		return nil, fmt.Errorf("%w: no free seat for the requested segment", ErrSeatUnavailable)
	}

	byNumber := make(map[string]model.Seat, len(roster))
	for _, seat := range roster {
		byNumber[seat.SeatNumber] = seat
	}
	selected := make([]model.Seat, 0, len(req.SeatNumbers))
	for _, num := range req.SeatNumbers {
		seat, ok := byNumber[num]
		if !ok {
			return nil, fmt.Errorf("%w: %s", repository.ErrSeatNotFound, num)
		}
		if taken[seat.ID] {
			return nil, fmt.Errorf("%w: seat %s is already reserved", ErrSeatUnavailable, num)
		}
		selected = append(selected, seat)
	}
	return selected, nil
}

// Confirm transitions a PENDING booking to CONFIRMED after a
// successful payment and releases the booking's segment locks early.
// Confirmation catches lapsed holds the sweeper has not yet seen: a
// booking past its expiration time is transitioned to EXPIRED here and
// ErrExpired is returned.
func (s *Service) Confirm(ctx context.Context, bookingID, paymentRef string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingPending {
		return nil, fmt.Errorf("%w: cannot confirm a %s booking", ErrInvalidState, b.Status)
	}
	if !s.now().UTC().Before(b.ExpirationTime) {
		if err := s.bookings.UpdateStatus(ctx, b.ID, model.BookingExpired); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: expired at %s", ErrExpired, b.ExpirationTime.Format(time.RFC3339))
	}
	if paymentRef == "" {
		return nil, fmt.Errorf("%w: missing payment reference", ErrPaymentFailure)
	}

	if err := s.bookings.UpdateStatus(ctx, b.ID, model.BookingConfirmed); err != nil {
		return nil, err
	}
	b.Status = model.BookingConfirmed

	// Free the keys before their natural timeout so the next
	// reservation on these seat-segments does not see stale locks.
	s.releaseLocks(ctx, b)

	if s.notifier != nil {
		if sch, err := s.schedules.GetByID(ctx, b.ScheduleID); err == nil {
			s.notifier.BookingConfirmed(ctx, b, sch)
		} else {
			log.Printf("booking: load schedule for confirmation event: %v", err)
		}
	}
	log.Printf("booking: %s confirmed (payment %s)", b.ID, paymentRef)
	return b, nil
}

// Cancel transitions a CONFIRMED booking to CANCELLED.  Cancelling an
// already CANCELLED or EXPIRED booking is an idempotent no-op that
// returns the current state.  PENDING bookings cannot be
// user-cancelled; they either get confirmed or expire.
//
// Locks are deliberately not touched: cancellation only applies to
// CONFIRMED bookings, whose locks were already released at
// confirmation or have long since timed out.
func (s *Service) Cancel(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case model.BookingCancelled, model.BookingExpired:
		log.Printf("booking: cancel of already %s booking %s, no-op", b.Status, b.ID)
		return b, nil
	case model.BookingPending:
		return nil, fmt.Errorf("%w: only CONFIRMED bookings can be cancelled", ErrInvalidState)
	}
	if err := s.bookings.UpdateStatus(ctx, b.ID, model.BookingCancelled); err != nil {
		return nil, err
	}
	b.Status = model.BookingCancelled
	log.Printf("booking: %s cancelled", b.ID)
	return b, nil
}

// Get loads a booking by ID.
func (s *Service) Get(ctx context.Context, bookingID string) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

// releaseLocks drops every segment lock belonging to the booking.
// Release verifies ownership, so a key that expired and was taken by a
// newer attempt is left alone.
func (s *Service) releaseLocks(ctx context.Context, b *model.Booking) {
	for _, bs := range b.Seats {
		key := lock.SegmentKey(b.ScheduleID, bs.SeatID, bs.SegmentStartStopID, bs.SegmentEndStopID)
		if err := s.locker.Release(ctx, key, b.ID); err != nil {
			log.Printf("booking: release lock %s: %v", key, err)
		}
	}
}
