package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// BookingRepo provides access to bookings, their seat-segment records
// and their selected add-ons.  Booking rows carry the full state
// machine; booking_seats rows are written once at reservation time and
// are never deleted, so every availability or overlap query joins back
// to bookings and filters by status.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create persists a booking together with its booking_seats and
// booking_addons rows in a single transaction.  The booking must carry
// its UUID; seats and add-ons are taken from the embedded slices.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO bookings
	           (id, user_id, schedule_id, start_stop_id, end_stop_id, status, final_price, booking_time, expiration_time)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		b.ID, b.UserID, b.ScheduleID, b.StartStopID, b.EndStopID,
		string(b.Status), b.FinalPrice.String(), b.BookingTime.UTC(), b.ExpirationTime.UTC(),
	); err != nil {
		return err
	}

	if len(b.Seats) > 0 {
		query := `INSERT INTO booking_seats (booking_id, seat_id, segment_start_stop_id, segment_end_stop_id) VALUES `
		args := make([]interface{}, 0, len(b.Seats)*4)
		for i, bs := range b.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, b.ID, bs.SeatID, bs.SegmentStartStopID, bs.SegmentEndStopID)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if len(b.Addons) > 0 {
		query := `INSERT INTO booking_addons (booking_id, addon_id) VALUES `
		args := make([]interface{}, 0, len(b.Addons)*2)
		for i, a := range b.Addons {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, b.ID, a.ID)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a booking with its seat-segment records and add-ons.
// ErrBookingNotFound is returned when the identifier does not exist.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, user_id, schedule_id, start_stop_id, end_stop_id, status, final_price, booking_time, expiration_time
	           FROM bookings WHERE id = ?`
	var (
		b      model.Booking
		status string
		price  string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.ScheduleID, &b.StartStopID, &b.EndStopID,
		&status, &price, &b.BookingTime, &b.ExpirationTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if b.FinalPrice, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}

	const seatQ = `SELECT bs.id, bs.booking_id, bs.seat_id, se.seat_number, bs.segment_start_stop_id, bs.segment_end_stop_id
	               FROM booking_seats bs
	               JOIN seats se ON se.id = bs.seat_id
	               WHERE bs.booking_id = ?
	               ORDER BY se.seat_number`
	rows, err := r.db.QueryContext(ctx, seatQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var bs model.BookingSeat
		if err := rows.Scan(&bs.ID, &bs.BookingID, &bs.SeatID, &bs.SeatNumber, &bs.SegmentStartStopID, &bs.SegmentEndStopID); err != nil {
			return nil, err
		}
		b.Seats = append(b.Seats, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const addonQ = `SELECT a.id, a.name, a.description, a.price
	                FROM booking_addons ba
	                JOIN addons a ON a.id = ba.addon_id
	                WHERE ba.booking_id = ?`
	arows, err := r.db.QueryContext(ctx, addonQ, id)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var (
			a     model.Addon
			price string
		)
		if err := arows.Scan(&a.ID, &a.Name, &a.Description, &price); err != nil {
			return nil, err
		}
		if a.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		b.Addons = append(b.Addons, a)
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatus transitions a booking to the given status.  The caller
// is responsible for having validated the transition; the repository
// does not re-check the state machine.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, string(status), id)
	return err
}

// ExpiredPending returns every booking that is still PENDING but whose
// expiration time has passed the supplied instant.  Only the columns
// the sweeper needs are loaded.
func (r *BookingRepo) ExpiredPending(ctx context.Context, now time.Time) ([]model.Booking, error) {
	const q = `SELECT id, user_id, schedule_id, expiration_time
	           FROM bookings
	           WHERE status = ? AND expiration_time < ?`
	rows, err := r.db.QueryContext(ctx, q, string(model.BookingPending), now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b := model.Booking{Status: model.BookingPending}
		if err := rows.Scan(&b.ID, &b.UserID, &b.ScheduleID, &b.ExpirationTime); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BookedSegments returns the seat-segment records on a schedule whose
// owning booking currently has one of the given statuses.  The
// availability calculator passes CONFIRMED only; the reservation path
// passes CONFIRMED and PENDING.  Rows belonging to CANCELLED or
// EXPIRED bookings are filtered out here, never deleted.
func (r *BookingRepo) BookedSegments(ctx context.Context, scheduleID uint64, statuses ...model.BookingStatus) ([]model.BookedSegment, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, 0, len(statuses)+1)
	args = append(args, scheduleID)
	for i, st := range statuses {
		placeholders[i] = "?"
		args = append(args, string(st))
	}
	q := `SELECT bs.seat_id, bs.segment_start_stop_id, bs.segment_end_stop_id
	      FROM booking_seats bs
	      JOIN bookings b ON b.id = bs.booking_id
	      WHERE b.schedule_id = ? AND b.status IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var segs []model.BookedSegment
	for rows.Next() {
		var s model.BookedSegment
		if err := rows.Scan(&s.SeatID, &s.StartStopID, &s.EndStopID); err != nil {
			return nil, err
		}
		segs = append(segs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}
