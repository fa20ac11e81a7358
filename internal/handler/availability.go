package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/availability"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/repository"
)

// AvailabilityHandler answers read-only seat availability queries.
type AvailabilityHandler struct {
	Calc *availability.Calculator
}

func NewAvailabilityHandler(calc *availability.Calculator) *AvailabilityHandler {
	return &AvailabilityHandler{Calc: calc}
}

// GetAvailability handles
// GET /v1/schedules/:id/availability?source=<stopID>&destination=<stopID>.
// The result reflects confirmed bookings only; a seat shown as free may
// still be held by an in-flight reservation.
func (h *AvailabilityHandler) GetAvailability(c echo.Context) error {
	scheduleID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	source, err := queryID(c, "source")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source query param required"})
	}
	dest, err := queryID(c, "destination")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "destination query param required"})
	}

	res, err := h.Calc.GetSegmentAvailability(c.Request().Context(), scheduleID, source, dest)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidSegment):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrScheduleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, res)
}
