package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/repository"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/search"
)

// AdminHandler groups the repositories used by schedule and stop
// authoring endpoints.  All routes require the ADMIN role.
type AdminHandler struct {
	Stops     *repository.StopRepo
	Schedules *repository.ScheduleRepo
	Seats     *repository.SeatRepo
	Index     *search.Index
}

func NewAdminHandler(stops *repository.StopRepo, schedules *repository.ScheduleRepo, seats *repository.SeatRepo, idx *search.Index) *AdminHandler {
	return &AdminHandler{Stops: stops, Schedules: schedules, Seats: seats, Index: idx}
}

// ----- DTOs -----

type stopReq struct {
	Name string `json:"name" validate:"required"`
	City string `json:"city" validate:"required"`
}

type scheduleStopReq struct {
	StopID      uint64 `json:"stop_id" validate:"required"`
	StopOrder   int    `json:"stop_order" validate:"required,min=1"`
	ArrivalTime string `json:"arrival_time" validate:"required"` // RFC3339
}

type createScheduleReq struct {
	BusID         uint64            `json:"bus_id" validate:"required"`
	RouteID       uint64            `json:"route_id" validate:"required"`
	DepartureTime string            `json:"departure_time" validate:"required"` // RFC3339
	BaseFare      string            `json:"base_fare" validate:"required"`
	Stops         []scheduleStopReq `json:"stops" validate:"required,min=2"`
	Seats         []seatReq         `json:"seats" validate:"required,min=1"`
}

type seatReq struct {
	SeatNumber string `json:"seat_number" validate:"required"`
	SeatClass  string `json:"seat_class" validate:"required"`
	Multiplier string `json:"multiplier" validate:"required"`
}

// CreateStop handles POST /v1/admin/stops.
func (h *AdminHandler) CreateStop(c echo.Context) error {
	var req stopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and city are required"})
	}
	s := &model.Stop{Name: req.Name, City: req.City}
	if err := h.Stops.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create stop failed"})
	}
	return c.JSON(http.StatusCreated, s)
}

// UpdateStop handles PUT /v1/admin/stops/:id.
func (h *AdminHandler) UpdateStop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid stop id"})
	}
	var req stopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and city are required"})
	}
	s := &model.Stop{ID: id, Name: req.Name, City: req.City}
	if err := h.Stops.Update(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrStopNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "stop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update stop failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// CreateSchedule handles POST /v1/admin/schedules.  The schedule, its
// itinerary and its seat roster are inserted in one transaction; stop
// orders must be strictly increasing and arrival times must follow the
// stop order.  On success the search index is refreshed.
func (h *AdminHandler) CreateSchedule(c echo.Context) error {
	var req createScheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bus_id, route_id, departure_time, base_fare, at least 2 stops and 1 seat are required"})
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departure_time format"})
	}
	baseFare, err := decimal.NewFromString(req.BaseFare)
	if err != nil || baseFare.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid base_fare"})
	}

	stops := make([]model.ScheduleStop, 0, len(req.Stops))
	var prevOrder int
	var prevArrival time.Time
	for i, sr := range req.Stops {
		arrival, err := time.Parse(time.RFC3339, sr.ArrivalTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrival_time format"})
		}
		if i > 0 {
			if sr.StopOrder <= prevOrder {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "stop_order must be strictly increasing"})
			}
			if !arrival.After(prevArrival) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrival_time must increase with stop_order"})
			}
		}
		prevOrder, prevArrival = sr.StopOrder, arrival
		stops = append(stops, model.ScheduleStop{
			StopID:      sr.StopID,
			StopOrder:   sr.StopOrder,
			ArrivalTime: arrival.UTC(),
		})
	}

	seats := make([]model.Seat, 0, len(req.Seats))
	seen := make(map[string]bool, len(req.Seats))
	for _, sr := range req.Seats {
		if seen[sr.SeatNumber] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate seat_number " + sr.SeatNumber})
		}
		seen[sr.SeatNumber] = true
		mult, err := decimal.NewFromString(sr.Multiplier)
		if err != nil || mult.LessThanOrEqual(decimal.Zero) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid multiplier for seat " + sr.SeatNumber})
		}
		seats = append(seats, model.Seat{
			SeatNumber: sr.SeatNumber,
			SeatClass:  sr.SeatClass,
			Multiplier: mult,
		})
	}

	ctx := c.Request().Context()
	tx, err := h.Schedules.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sch := &model.Schedule{
		BusID:         req.BusID,
		RouteID:       req.RouteID,
		DepartureTime: departure.UTC(),
		BaseFare:      baseFare,
	}
	if err := h.Schedules.CreateTx(ctx, tx, sch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create schedule failed"})
	}
	if err := h.Schedules.AddStopsTx(ctx, tx, sch.ID, stops); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create schedule stops failed"})
	}
	if err := h.Seats.CreateBulkTx(ctx, tx, sch.ID, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create seats failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	// Index refresh is best effort; the schedule exists either way.
	if err := h.Index.SyncSchedule(ctx, sch.ID); err != nil {
		log.Printf("admin: sync schedule %d to search index: %v", sch.ID, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":             sch.ID,
		"bus_id":         sch.BusID,
		"route_id":       sch.RouteID,
		"departure_time": sch.DepartureTime,
		"base_fare":      sch.BaseFare.StringFixed(2),
		"stops":          len(stops),
		"seats":          len(seats),
	})
}

// FullSync handles POST /v1/admin/search/sync: rebuild the search index
// for every schedule.
func (h *AdminHandler) FullSync(c echo.Context) error {
	n, err := h.Index.FullSync(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "full sync failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"indexed": n})
}
