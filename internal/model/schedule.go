package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Schedule represents one scheduled run of a bus over a route.  The
// ordered list of stops the run passes through lives in the
// schedule_stops table and defines the total order used for all
// segment arithmetic.
//
// Fields:
//  ID            – primary key identifier.
//  BusID         – bus performing the run.
//  Operator      – operator name denormalised from the bus for display.
//  RouteID       – route the run serves.
//  DepartureTime – when the run leaves its first stop.
//  BaseFare      – base fare for the full route, per seat, before the
//                  seat multiplier and demand factor are applied.
//  CreatedAt     – creation timestamp.
type Schedule struct {
	ID            uint64          // schedules.id
	BusID         uint64          // schedules.bus_id
	Operator      string          // buses.operator (joined)
	RouteID       uint64          // schedules.route_id
	DepartureTime time.Time       // schedules.departure_time
	BaseFare      decimal.Decimal // schedules.base_fare
	CreatedAt     time.Time       // schedules.created_at
}

// ScheduleStop places a stop on a schedule's itinerary.  StopOrder is a
// positive integer, unique and strictly increasing within a schedule;
// ArrivalTime increases with StopOrder.  Rows are created at schedule
// authoring time and are immutable afterwards.
//
// Fields:
//  ID          – primary key identifier.
//  ScheduleID  – owning schedule.
//  StopID      – referenced stop.
//  StopName    – stop name (joined, for responses and search documents).
//  StopOrder   – sequence index of the stop within the itinerary.
//  ArrivalTime – when the bus reaches this stop.
type ScheduleStop struct {
	ID          uint64    // schedule_stops.id
	ScheduleID  uint64    // schedule_stops.schedule_id
	StopID      uint64    // schedule_stops.stop_id
	StopName    string    // stops.name (joined)
	StopOrder   int       // schedule_stops.stop_order
	ArrivalTime time.Time // schedule_stops.arrival_time
}
