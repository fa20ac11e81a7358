package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

type fakeBookingStore struct {
	expired   []model.Booking
	queryErr  error
	failIDs   map[string]bool
	statusFor map[string]model.BookingStatus
}

func (f *fakeBookingStore) ExpiredPending(ctx context.Context, now time.Time) ([]model.Booking, error) {
	return f.expired, f.queryErr
}

func (f *fakeBookingStore) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	if f.failIDs[id] {
		return errors.New("write failed")
	}
	if f.statusFor == nil {
		f.statusFor = map[string]model.BookingStatus{}
	}
	f.statusFor[id] = status
	return nil
}

func TestSweep_ExpiresAllLapsedBookings(t *testing.T) {
	store := &fakeBookingStore{expired: []model.Booking{
		{ID: "b1", Status: model.BookingPending},
		{ID: "b2", Status: model.BookingPending},
	}}
	s := New(store, time.Minute)

	n := s.Sweep(context.Background())
	assert.Equal(t, 2, n)
	assert.Equal(t, model.BookingExpired, store.statusFor["b1"])
	assert.Equal(t, model.BookingExpired, store.statusFor["b2"])
}

func TestSweep_ContinuesPastFailures(t *testing.T) {
	store := &fakeBookingStore{
		expired: []model.Booking{
			{ID: "b1", Status: model.BookingPending},
			{ID: "b2", Status: model.BookingPending},
			{ID: "b3", Status: model.BookingPending},
		},
		failIDs: map[string]bool{"b2": true},
	}
	s := New(store, time.Minute)

	n := s.Sweep(context.Background())
	assert.Equal(t, 2, n)
	assert.Equal(t, model.BookingExpired, store.statusFor["b1"])
	assert.Equal(t, model.BookingExpired, store.statusFor["b3"])
	assert.NotContains(t, store.statusFor, "b2")
}

func TestSweep_QueryErrorReturnsZero(t *testing.T) {
	store := &fakeBookingStore{queryErr: errors.New("db down")}
	s := New(store, time.Minute)

	assert.Equal(t, 0, s.Sweep(context.Background()))
}

func TestSweep_NothingToDo(t *testing.T) {
	s := New(&fakeBookingStore{}, time.Minute)
	assert.Equal(t, 0, s.Sweep(context.Background()))
}

func TestNew_DefaultsInterval(t *testing.T) {
	s := New(&fakeBookingStore{}, 0)
	assert.Equal(t, time.Minute, s.interval)
}
