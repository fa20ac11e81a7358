package model

import "time"

// Stop is a named boarding point that schedules may pass through.
// Stops are immutable once referenced by a schedule; the admin API
// only allows renaming before any schedule uses them.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable stop name (e.g. "Mumbai Central").
//  City      – city the stop belongs to.
//  CreatedAt – creation timestamp.
type Stop struct {
	ID        uint64    // stops.id
	Name      string    // stops.name
	City      string    // stops.city
	CreatedAt time.Time // stops.created_at
}
