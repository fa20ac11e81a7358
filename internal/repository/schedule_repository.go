package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// ScheduleRepo provides access to schedules and their ordered stop
// lists.  Fares are stored as DECIMAL columns and scanned through
// strings to keep decimal precision intact.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span multiple repositories.
func (r *ScheduleRepo) DB() *sql.DB { return r.db }

// GetByID loads a schedule together with the operator name of its bus.
// ErrScheduleNotFound is returned when the identifier does not exist.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT s.id, s.bus_id, b.operator, s.route_id, s.departure_time, s.base_fare, s.created_at
	           FROM schedules s
	           JOIN buses b ON b.id = s.bus_id
	           WHERE s.id = ?`
	var (
		sch  model.Schedule
		fare string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&sch.ID, &sch.BusID, &sch.Operator, &sch.RouteID, &sch.DepartureTime, &fare, &sch.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	if sch.BaseFare, err = decimal.NewFromString(fare); err != nil {
		return nil, err
	}
	return &sch, nil
}

// StopsBySchedule returns the schedule's itinerary ordered by stop
// order, with stop names joined in.  An empty slice means the schedule
// has no stops (or does not exist); callers that need to distinguish
// should call GetByID first.
func (r *ScheduleRepo) StopsBySchedule(ctx context.Context, scheduleID uint64) ([]model.ScheduleStop, error) {
	const q = `SELECT ss.id, ss.schedule_id, ss.stop_id, st.name, ss.stop_order, ss.arrival_time
	           FROM schedule_stops ss
	           JOIN stops st ON st.id = ss.stop_id
	           WHERE ss.schedule_id = ?
	           ORDER BY ss.stop_order`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stops []model.ScheduleStop
	for rows.Next() {
		var ss model.ScheduleStop
		if err := rows.Scan(&ss.ID, &ss.ScheduleID, &ss.StopID, &ss.StopName, &ss.StopOrder, &ss.ArrivalTime); err != nil {
			return nil, err
		}
		stops = append(stops, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stops, nil
}

// ListIDs returns the identifiers of every schedule.  Used by the
// search mirror's full synchronisation.
func (r *ScheduleRepo) ListIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM schedules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateTx inserts a schedule within an existing transaction and
// populates the generated ID.  The caller commits or rolls back.
func (r *ScheduleRepo) CreateTx(ctx context.Context, tx *sql.Tx, sch *model.Schedule) error {
	const q = `INSERT INTO schedules (bus_id, route_id, departure_time, base_fare) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, sch.BusID, sch.RouteID, sch.DepartureTime.UTC(), sch.BaseFare.String())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sch.ID = uint64(id)
	return nil
}

// AddStopsTx bulk-inserts the itinerary rows for a schedule within an
// existing transaction.  Passing an empty slice has no effect.
func (r *ScheduleRepo) AddStopsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, stops []model.ScheduleStop) error {
	if len(stops) == 0 {
		return nil
	}
	query := `INSERT INTO schedule_stops (schedule_id, stop_id, stop_order, arrival_time) VALUES `
	args := make([]interface{}, 0, len(stops)*4)
	for i, ss := range stops {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, scheduleID, ss.StopID, ss.StopOrder, ss.ArrivalTime.UTC())
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
