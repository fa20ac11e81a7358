package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// StopRepo provides access to the stops table.  Stops are simple
// reference data; the interesting columns are name and city.
type StopRepo struct {
	db *sql.DB
}

// NewStopRepo returns a new StopRepo bound to the given database.
func NewStopRepo(db *sql.DB) *StopRepo { return &StopRepo{db: db} }

// GetByID loads a single stop.  ErrStopNotFound is returned when the
// identifier does not exist.
func (r *StopRepo) GetByID(ctx context.Context, id uint64) (*model.Stop, error) {
	const q = `SELECT id, name, city, created_at FROM stops WHERE id = ?`
	var s model.Stop
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.City, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStopNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new stop and populates the generated ID.
func (r *StopRepo) Create(ctx context.Context, s *model.Stop) error {
	const q = `INSERT INTO stops (name, city) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.City)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update renames a stop.  ErrStopNotFound is returned when no row was
// affected.
func (r *StopRepo) Update(ctx context.Context, s *model.Stop) error {
	const q = `UPDATE stops SET name = ?, city = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.City, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStopNotFound
	}
	return nil
}
