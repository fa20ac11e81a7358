package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/availability"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/booking"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/repository"
)

// BookingHandler exposes the booking lifecycle over HTTP.  All routes
// assume JWT authentication has already run.
type BookingHandler struct {
	Svc *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// ----- DTOs -----

type reserveReq struct {
	ScheduleID  uint64   `json:"schedule_id" validate:"required"`
	StartStopID uint64   `json:"start_stop_id" validate:"required"`
	EndStopID   uint64   `json:"end_stop_id" validate:"required"`
	SeatNumbers []string `json:"seat_numbers"` // empty -> auto-assign one seat
	AddonIDs    []uint64 `json:"addon_ids"`
}

type confirmReq struct {
	PaymentRef string `json:"payment_ref"`
}

type bookingSeatPart struct {
	SeatNumber  string `json:"seat_number"`
	StartStopID uint64 `json:"start_stop_id"`
	EndStopID   uint64 `json:"end_stop_id"`
}

type bookingResp struct {
	ID             string            `json:"id"`
	UserID         uint64            `json:"user_id"`
	ScheduleID     uint64            `json:"schedule_id"`
	StartStopID    uint64            `json:"start_stop_id"`
	EndStopID      uint64            `json:"end_stop_id"`
	Status         string            `json:"status"`
	FinalPrice     string            `json:"final_price"`
	BookingTime    time.Time         `json:"booking_time"`
	ExpirationTime time.Time         `json:"expiration_time"`
	Seats          []bookingSeatPart `json:"seats"`
	Addons         []string          `json:"addons,omitempty"`
}

func toBookingResp(b *model.Booking) bookingResp {
	resp := bookingResp{
		ID:             b.ID,
		UserID:         b.UserID,
		ScheduleID:     b.ScheduleID,
		StartStopID:    b.StartStopID,
		EndStopID:      b.EndStopID,
		Status:         string(b.Status),
		FinalPrice:     b.FinalPrice.StringFixed(2),
		BookingTime:    b.BookingTime,
		ExpirationTime: b.ExpirationTime,
		Seats:          []bookingSeatPart{},
	}
	for _, bs := range b.Seats {
		resp.Seats = append(resp.Seats, bookingSeatPart{
			SeatNumber:  bs.SeatNumber,
			StartStopID: bs.SegmentStartStopID,
			EndStopID:   bs.SegmentEndStopID,
		})
	}
	for _, a := range b.Addons {
		resp.Addons = append(resp.Addons, a.Name)
	}
	return resp
}

// bookingError maps service and repository sentinels onto HTTP codes.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrScheduleNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrStopNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, availability.ErrInvalidSegment):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrSeatUnavailable),
		errors.Is(err, booking.ErrConcurrencyConflict),
		errors.Is(err, booking.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrPaymentFailure):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Reserve handles POST /v1/bookings: create a PENDING hold on one or
// more seats for a segment of a schedule.
func (h *BookingHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id, start_stop_id and end_stop_id are required"})
	}

	b, err := h.Svc.Reserve(c.Request().Context(), booking.ReserveRequest{
		UserID:      userID,
		ScheduleID:  req.ScheduleID,
		StartStopID: req.StartStopID,
		EndStopID:   req.EndStopID,
		SeatNumbers: req.SeatNumbers,
		AddonIDs:    req.AddonIDs,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// Confirm handles POST /v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	b, err := h.Svc.Confirm(c.Request().Context(), id, req.PaymentRef)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}
