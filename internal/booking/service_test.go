package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/availability"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/lock"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/pricing"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/repository"
)

// ----- fakes -----

type fakeScheduleStore struct {
	sch   *model.Schedule
	stops []model.ScheduleStop
}

func (f *fakeScheduleStore) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	if f.sch == nil || f.sch.ID != id {
		return nil, repository.ErrScheduleNotFound
	}
	return f.sch, nil
}

func (f *fakeScheduleStore) StopsBySchedule(ctx context.Context, scheduleID uint64) ([]model.ScheduleStop, error) {
	return f.stops, nil
}

type fakeSeatStore struct{ seats []model.Seat }

func (f *fakeSeatStore) ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error) {
	return f.seats, nil
}

// fakeBookingStore keeps bookings in memory and derives segment rows
// from their seats, filtered by status like the SQL query does.
type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[string]*model.Booking{}}
}

func (f *fakeBookingStore) Create(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBookingStore) BookedSegments(ctx context.Context, scheduleID uint64, statuses ...model.BookingStatus) ([]model.BookedSegment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[model.BookingStatus]bool)
	for _, st := range statuses {
		want[st] = true
	}
	var out []model.BookedSegment
	for _, b := range f.bookings {
		if b.ScheduleID != scheduleID || !want[b.Status] {
			continue
		}
		for _, bs := range b.Seats {
			out = append(out, model.BookedSegment{
				SeatID:      bs.SeatID,
				StartStopID: bs.SegmentStartStopID,
				EndStopID:   bs.SegmentEndStopID,
			})
		}
	}
	return out, nil
}

type fakeAddonStore struct{ addons []model.Addon }

func (f *fakeAddonStore) ListByIDs(ctx context.Context, ids []uint64) ([]model.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return f.addons, nil
}

// fakeLocker is an in-memory Locker with the same owner semantics as
// the Redis manager.
type fakeLocker struct {
	mu     sync.Mutex
	owners map[string]string
}

func newFakeLocker() *fakeLocker { return &fakeLocker{owners: map[string]string{}} }

func (l *fakeLocker) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owners[key]; held {
		return lock.ErrNotAcquired
	}
	l.owners[key] = owner
	return nil
}

func (l *fakeLocker) Release(ctx context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owners[key] == owner {
		delete(l.owners, key)
	}
	return nil
}

func (l *fakeLocker) IsHeld(ctx context.Context, key, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owners[key] == owner, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []string
}

func (n *fakeNotifier) BookingConfirmed(ctx context.Context, b *model.Booking, sch *model.Schedule) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, b.ID)
}

// ----- fixtures -----

// Itinerary: Mumbai(1) -> Pune(2) -> Bangalore(3); seats A1, A2.
func newFixture() (*Service, *fakeBookingStore, *fakeLocker, *fakeNotifier) {
	schedules := &fakeScheduleStore{
		sch: &model.Schedule{ID: 7, BusID: 1, Operator: "BlueLine", BaseFare: decimal.NewFromInt(1000)},
		stops: []model.ScheduleStop{
			{ScheduleID: 7, StopID: 1, StopName: "Mumbai", StopOrder: 1},
			{ScheduleID: 7, StopID: 2, StopName: "Pune", StopOrder: 2},
			{ScheduleID: 7, StopID: 3, StopName: "Bangalore", StopOrder: 3},
		},
	}
	seats := &fakeSeatStore{seats: []model.Seat{
		{ID: 11, ScheduleID: 7, SeatNumber: "A1", SeatClass: model.SeatClassSeater, Multiplier: decimal.NewFromInt(1)},
		{ID: 12, ScheduleID: 7, SeatNumber: "A2", SeatClass: model.SeatClassSleeper, Multiplier: decimal.RequireFromString("1.5")},
	}}
	bookings := newFakeBookingStore()
	locker := newFakeLocker()
	notifier := &fakeNotifier{}
	svc := NewService(schedules, seats, bookings, &fakeAddonStore{},
		locker, pricing.NewEngine(pricing.FixedPrice), 10*time.Minute, notifier)
	return svc, bookings, locker, notifier
}

func reserve(t *testing.T, svc *Service, seatNumbers ...string) *model.Booking {
	t.Helper()
	b, err := svc.Reserve(context.Background(), ReserveRequest{
		UserID: 42, ScheduleID: 7, StartStopID: 1, EndStopID: 3, SeatNumbers: seatNumbers,
	})
	require.NoError(t, err)
	return b
}

// ----- tests -----

func TestReserve_AutoAssignsExactlyOneSeat(t *testing.T) {
	svc, _, locker, _ := newFixture()

	b := reserve(t, svc)
	require.Len(t, b.Seats, 1)
	assert.Equal(t, "A1", b.Seats[0].SeatNumber)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, b.BookingTime.Add(10*time.Minute), b.ExpirationTime)
	assert.Equal(t, "1000", b.FinalPrice.String())

	held, err := locker.IsHeld(context.Background(), lock.SegmentKey(7, 11, 1, 3), b.ID)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestReserve_PendingHoldBlocksOverlap(t *testing.T) {
	svc, _, _, _ := newFixture()

	reserve(t, svc, "A1")

	// Same seat, overlapping segment, while the first hold is PENDING.
	_, err := svc.Reserve(context.Background(), ReserveRequest{
		UserID: 43, ScheduleID: 7, StartStopID: 2, EndStopID: 3, SeatNumbers: []string{"A1"},
	})
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}

func TestReserve_NonOverlappingSegmentsShareSeat(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		UserID: 42, ScheduleID: 7, StartStopID: 1, EndStopID: 2, SeatNumbers: []string{"A1"},
	})
	require.NoError(t, err)

	// Back-to-back segment on the same seat is fine.
	_, err = svc.Reserve(context.Background(), ReserveRequest{
		UserID: 43, ScheduleID: 7, StartStopID: 2, EndStopID: 3, SeatNumbers: []string{"A1"},
	})
	require.NoError(t, err)
}

func TestReserve_ContendedLockRollsBack(t *testing.T) {
	svc, _, locker, _ := newFixture()

	// Another attempt holds A2's lock but has not persisted a booking
	// yet, so the overlap query cannot see it.
	require.NoError(t, locker.Acquire(context.Background(), lock.SegmentKey(7, 12, 1, 3), "rival", time.Minute))

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		UserID: 42, ScheduleID: 7, StartStopID: 1, EndStopID: 3, SeatNumbers: []string{"A1", "A2"},
	})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)

	// A1's lock, acquired before the conflict, must have been released.
	locker.mu.Lock()
	_, a1Held := locker.owners[lock.SegmentKey(7, 11, 1, 3)]
	locker.mu.Unlock()
	assert.False(t, a1Held)
}

func TestReserve_UnknownSeatNumber(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		UserID: 42, ScheduleID: 7, StartStopID: 1, EndStopID: 3, SeatNumbers: []string{"Z9"},
	})
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
}

func TestReserve_InvalidSegment(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		UserID: 42, ScheduleID: 7, StartStopID: 3, EndStopID: 1,
	})
	assert.ErrorIs(t, err, availability.ErrInvalidSegment)
}

func TestConfirm_ReleasesLocksAndNotifies(t *testing.T) {
	svc, bookings, locker, notifier := newFixture()

	b := reserve(t, svc, "A1")
	key := lock.SegmentKey(7, 11, 1, 3)

	got, err := svc.Confirm(context.Background(), b.ID, "pay-123")
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, got.Status)

	stored, err := bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, stored.Status)

	held, err := locker.IsHeld(context.Background(), key, b.ID)
	require.NoError(t, err)
	assert.False(t, held, "confirmation must release the segment lock early")

	assert.Equal(t, []string{b.ID}, notifier.confirmed)
}

func TestConfirm_AfterExpiryMarksExpired(t *testing.T) {
	svc, bookings, _, notifier := newFixture()

	b := reserve(t, svc, "A1")
	svc.now = func() time.Time { return b.ExpirationTime.Add(time.Second) }

	_, err := svc.Confirm(context.Background(), b.ID, "pay-123")
	assert.ErrorIs(t, err, ErrExpired)

	stored, err := bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingExpired, stored.Status)
	assert.Empty(t, notifier.confirmed)
}

func TestConfirm_MissingPaymentRef(t *testing.T) {
	svc, bookings, _, _ := newFixture()

	b := reserve(t, svc, "A1")
	_, err := svc.Confirm(context.Background(), b.ID, "")
	assert.ErrorIs(t, err, ErrPaymentFailure)

	// Failed payment leaves the hold intact for a retry.
	stored, err := bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, stored.Status)
}

func TestConfirm_NonPending(t *testing.T) {
	svc, _, _, _ := newFixture()

	b := reserve(t, svc, "A1")
	_, err := svc.Confirm(context.Background(), b.ID, "pay-1")
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), b.ID, "pay-2")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel(t *testing.T) {
	svc, _, _, _ := newFixture()

	b := reserve(t, svc, "A1")

	// PENDING bookings cannot be user-cancelled.
	_, err := svc.Cancel(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Confirm(context.Background(), b.ID, "pay-1")
	require.NoError(t, err)

	got, err := svc.Cancel(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)

	// Cancelling again is an idempotent no-op.
	got, err = svc.Cancel(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)
}

func TestCancel_FreesSeatForRebooking(t *testing.T) {
	svc, _, _, _ := newFixture()

	b := reserve(t, svc, "A1")
	_, err := svc.Confirm(context.Background(), b.ID, "pay-1")
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), b.ID)
	require.NoError(t, err)

	// The seat-segment rows are still stored, but a cancelled booking
	// no longer blocks the segment.
	_, err = svc.Reserve(context.Background(), ReserveRequest{
		UserID: 43, ScheduleID: 7, StartStopID: 1, EndStopID: 3, SeatNumbers: []string{"A1"},
	})
	require.NoError(t, err)
}

func TestReserve_NoFreeSeat(t *testing.T) {
	svc, _, _, _ := newFixture()

	reserve(t, svc, "A1", "A2")

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		UserID: 43, ScheduleID: 7, StartStopID: 1, EndStopID: 3,
	})
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}
