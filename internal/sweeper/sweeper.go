// Package sweeper runs the periodic reclamation of unconfirmed holds:
// PENDING bookings whose expiration time has passed are transitioned
// to EXPIRED.  The sweeper never touches the segment locks; those
// carry the same TTL as the hold and expire on their own, so lock
// release and booking expiration are only loosely coupled in time.
// Keeping the two apart is what keeps the sweeper a plain status
// writer.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// BookingStore is the slice of the booking repository the sweeper
// needs.
type BookingStore interface {
	ExpiredPending(ctx context.Context, now time.Time) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// Sweeper expires lapsed PENDING bookings on a fixed interval.
type Sweeper struct {
	bookings BookingStore
	interval time.Duration
	now      func() time.Time
}

// New constructs a Sweeper.  interval defaults to one minute when
// non-positive.
func New(bookings BookingStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{bookings: bookings, interval: interval, now: time.Now}
}

// Run blocks until ctx is cancelled, sweeping once per interval.  The
// first sweep is aligned to the next interval boundary so runs land on
// round timestamps.
func (s *Sweeper) Run(ctx context.Context) {
	first := time.NewTimer(time.Until(s.now().Truncate(s.interval).Add(s.interval)))
	defer first.Stop()
	log.Printf("sweeper: started, interval %s", s.interval)

	select {
	case <-ctx.Done():
		log.Println("sweeper: stopped")
		return
	case <-first.C:
		s.Sweep(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass: every lapsed PENDING booking is
// independently transitioned to EXPIRED.  A failure on one booking is
// logged and does not abort the rest of the batch.  It returns the
// number of bookings expired.
func (s *Sweeper) Sweep(ctx context.Context) int {
	expired, err := s.bookings.ExpiredPending(ctx, s.now().UTC())
	if err != nil {
		log.Printf("sweeper: query expired bookings: %v", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}
	log.Printf("sweeper: found %d expired PENDING booking(s)", len(expired))

	n := 0
	for _, b := range expired {
		if err := s.bookings.UpdateStatus(ctx, b.ID, model.BookingExpired); err != nil {
			log.Printf("sweeper: expire booking %s: %v", b.ID, err)
			continue
		}
		n++
		log.Printf("sweeper: booking %s EXPIRED, seats released for re-booking", b.ID)
	}
	return n
}
