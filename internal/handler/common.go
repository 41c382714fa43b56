package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

var errInvalidBody = errors.New("invalid request body")

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errBody("invalid_body", errInvalidBody))
}

// showID parses the :id path parameter.
func showID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func badShowID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_show_id", "message": "invalid show id"})
}

// viewer returns the caller's user id, 0 for anonymous viewers.
func viewer(c echo.Context) uint64 {
	id, _ := middleware.UserID(c)
	return id
}

// parseSelection builds a pending selection from seat labels.  Empty
// labels are skipped so "A1,,B2" and a trailing comma are accepted.
func parseSelection(labels []string) (reservation.Selection, error) {
	keys := make([]model.SeatKey, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		k, err := model.ParseSeatKey(l)
		if err != nil {
			return reservation.Selection{}, err
		}
		keys = append(keys, k)
	}
	return reservation.NewSelection(keys...), nil
}
