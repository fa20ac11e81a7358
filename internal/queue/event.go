// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// confirmed.  It carries enough information for downstream consumers
// to log, notify or feed analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	ScheduleID  uint64   `json:"schedule_id"`
	Operator    string   `json:"operator"`
	StartStopID uint64   `json:"start_stop_id"`
	EndStopID   uint64   `json:"end_stop_id"`
	SeatNumbers []string `json:"seats"`
	FinalPrice  string   `json:"final_price"`
	ConfirmedAt string   `json:"confirmed_at"`
}
