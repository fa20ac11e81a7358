package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// AddonRepo provides access to the add-on catalogue.
type AddonRepo struct {
	db *sql.DB
}

// NewAddonRepo returns a new AddonRepo bound to the given database.
func NewAddonRepo(db *sql.DB) *AddonRepo { return &AddonRepo{db: db} }

// ListByIDs loads the add-ons with the given identifiers.  Unknown IDs
// are silently skipped; the reservation path treats the result as the
// authoritative set of selected add-ons.
func (r *AddonRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT id, name, description, price FROM addons WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var addons []model.Addon
	for rows.Next() {
		var (
			a     model.Addon
			desc  sql.NullString
			price string
		)
		if err := rows.Scan(&a.ID, &a.Name, &desc, &price); err != nil {
			return nil, err
		}
		a.Description = desc.String
		if a.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return addons, nil
}
