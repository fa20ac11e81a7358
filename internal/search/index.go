// Package search maintains a Redis mirror of schedule data for
// discovery queries.  Every schedule is stored as a JSON document and
// indexed under one set per ordered stop pair it serves, so a search
// for "schedules from stop X to stop Y" is a set lookup plus a bulk
// document fetch.  The mirror is derived data; MySQL stays
// authoritative and the index is rebuilt with FullSync.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// ScheduleStore supplies the authoritative schedule data to mirror.
type ScheduleStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
	StopsBySchedule(ctx context.Context, scheduleID uint64) ([]model.ScheduleStop, error)
	ListIDs(ctx context.Context) ([]uint64, error)
}

// SeatStore supplies the roster for the document's capacity field.
type SeatStore interface {
	ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error)
}

// StopDetail is one itinerary entry inside a Document.
type StopDetail struct {
	StopID      uint64 `json:"stop_id"`
	StopName    string `json:"stop_name"`
	StopOrder   int    `json:"stop_order"`
	ArrivalUnix int64  `json:"arrival_unix"`
}

// Document is the denormalised search view of one schedule.
type Document struct {
	ScheduleID    uint64       `json:"schedule_id"`
	BusID         uint64       `json:"bus_id"`
	Operator      string       `json:"operator"`
	DepartureUnix int64        `json:"departure_unix"`
	BaseFare      string       `json:"base_fare"`
	TotalSeats    int          `json:"total_seats"`
	Stops         []StopDetail `json:"stops"`
}

// Index is the Redis-backed schedule mirror.
type Index struct {
	client    *redis.Client
	schedules ScheduleStore
	seats     SeatStore
}

// NewIndex constructs an Index.  client may be nil, in which case
// every operation degrades to a logged no-op so the core service keeps
// working without the mirror.
func NewIndex(client *redis.Client, schedules ScheduleStore, seats SeatStore) *Index {
	return &Index{client: client, schedules: schedules, seats: seats}
}

func docKey(scheduleID uint64) string { return fmt.Sprintf("schedule:doc:%d", scheduleID) }

func routeKey(sourceStopID, destStopID uint64) string {
	return fmt.Sprintf("schedule:route:%d:%d", sourceStopID, destStopID)
}

// SyncSchedule writes (or rewrites) one schedule's document and its
// route-set memberships.  Every ordered stop pair the schedule serves
// gets an entry, so multi-stop runs are discoverable for any
// sub-journey.
func (i *Index) SyncSchedule(ctx context.Context, scheduleID uint64) error {
	if i.client == nil {
		log.Printf("search: no redis client, skipping sync of schedule %d", scheduleID)
		return nil
	}
	doc, err := i.buildDocument(ctx, scheduleID)
	if err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	pipe := i.client.TxPipeline()
	pipe.Set(ctx, docKey(scheduleID), body, 0)
	for _, src := range doc.Stops {
		for _, dst := range doc.Stops {
			if src.StopOrder < dst.StopOrder {
				pipe.SAdd(ctx, routeKey(src.StopID, dst.StopID), scheduleID)
			}
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index schedule %d: %w", scheduleID, err)
	}
	return nil
}

// Delete removes a schedule's document and route-set memberships.
func (i *Index) Delete(ctx context.Context, scheduleID uint64) error {
	if i.client == nil {
		return nil
	}
	raw, err := i.client.Get(ctx, docKey(scheduleID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return err
	}
	pipe := i.client.TxPipeline()
	for _, src := range doc.Stops {
		for _, dst := range doc.Stops {
			if src.StopOrder < dst.StopOrder {
				pipe.SRem(ctx, routeKey(src.StopID, dst.StopID), scheduleID)
			}
		}
	}
	pipe.Del(ctx, docKey(scheduleID))
	_, err = pipe.Exec(ctx)
	return err
}

// FullSync re-indexes every schedule and returns how many documents
// were written.  Failures on individual schedules are logged and do
// not abort the rest.
func (i *Index) FullSync(ctx context.Context) (int, error) {
	if i.client == nil {
		return 0, nil
	}
	ids, err := i.schedules.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if err := i.SyncSchedule(ctx, id); err != nil {
			log.Printf("search: full sync of schedule %d: %v", id, err)
			continue
		}
		n++
	}
	log.Printf("search: full sync complete, %d schedule(s) indexed", n)
	return n, nil
}

// Search returns the documents of every schedule serving the ordered
// (source, destination) stop pair.
func (i *Index) Search(ctx context.Context, sourceStopID, destStopID uint64) ([]Document, error) {
	if i.client == nil {
		return nil, nil
	}
	ids, err := i.client.SMembers(ctx, routeKey(sourceStopID, destStopID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}
	keys := make([]string, len(ids))
	for n, id := range ids {
		keys[n] = "schedule:doc:" + id
	}
	raws, err := i.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue // document evicted; the set entry is stale
		}
		var doc Document
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (i *Index) buildDocument(ctx context.Context, scheduleID uint64) (*Document, error) {
	sch, err := i.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	stops, err := i.schedules.StopsBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	seats, err := i.seats.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		ScheduleID:    sch.ID,
		BusID:         sch.BusID,
		Operator:      sch.Operator,
		DepartureUnix: sch.DepartureTime.UTC().Unix(),
		BaseFare:      sch.BaseFare.String(),
		TotalSeats:    len(seats),
	}
	for _, ss := range stops {
		doc.Stops = append(doc.Stops, StopDetail{
			StopID:      ss.StopID,
			StopName:    ss.StopName,
			StopOrder:   ss.StopOrder,
			ArrivalUnix: ss.ArrivalTime.UTC().Unix(),
		})
	}
	return doc, nil
}
