package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/search"
)

// SearchHandler serves schedule search queries from the Redis-backed
// search index.
type SearchHandler struct {
	Idx *search.Index
}

func NewSearchHandler(idx *search.Index) *SearchHandler {
	return &SearchHandler{Idx: idx}
}

// Search handles GET /v1/search/schedules?source=<stopID>&destination=<stopID>.
// A nil search backend returns an empty result rather than an error so
// the API degrades when Redis is down.
func (h *SearchHandler) Search(c echo.Context) error {
	source, err := queryID(c, "source")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source query param required"})
	}
	dest, err := queryID(c, "destination")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "destination query param required"})
	}

	docs, err := h.Idx.Search(c.Request().Context(), source, dest)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	if docs == nil {
		docs = []search.Document{}
	}
	return c.JSON(http.StatusOK, echo.Map{"schedules": docs})
}
