package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// SeatRepo provides access to the per-schedule seat roster.  The
// multiplier column is DECIMAL and is scanned through a string.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// ListBySchedule returns every seat on the schedule ordered by seat
// number.  The roster size is the schedule's total capacity regardless
// of any query segment.
func (r *SeatRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error) {
	const q = `SELECT id, schedule_id, seat_number, seat_class, multiplier
	           FROM seats
	           WHERE schedule_id = ?
	           ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var (
			s    model.Seat
			mult string
		)
		if err := rows.Scan(&s.ID, &s.ScheduleID, &s.SeatNumber, &s.SeatClass, &mult); err != nil {
			return nil, err
		}
		if s.Multiplier, err = decimal.NewFromString(mult); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// CreateBulkTx inserts the seat roster for a schedule within an
// existing transaction.  Passing an empty slice has no effect.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (schedule_id, seat_number, seat_class, multiplier) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, scheduleID, s.SeatNumber, s.SeatClass, s.Multiplier.String())
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
