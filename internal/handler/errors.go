package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// retryAfterBusy is the Retry-After hint, in seconds, sent with 503 Busy.
const retryAfterBusy = "1"

// errBody is the JSON shape of every rejection.
func errBody(code string, err error) echo.Map {
	return echo.Map{"error": code, "message": err.Error()}
}

// writeError maps domain errors to HTTP responses.  Unknown errors are
// handed to Echo's error handler as a 500 so the request logger records
// the cause.
func writeError(c echo.Context, err error) error {
	var ve validator.ValidationErrors
	switch {
	case errors.Is(err, reservation.ErrSeatConflict):
		body := errBody("seat_conflict", err)
		body["conflicts"] = model.SeatLabels(reservation.ConflictingSeats(err))
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, reservation.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, errBody("seat_unavailable", err))
	case errors.Is(err, reservation.ErrAlreadyBooked):
		return c.JSON(http.StatusConflict, errBody("already_booked", err))
	case errors.Is(err, reservation.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, errBody("already_cancelled", err))
	case errors.Is(err, reservation.ErrEmptySelection):
		return c.JSON(http.StatusUnprocessableEntity, errBody("empty_selection", err))
	case errors.Is(err, reservation.ErrSeatOutOfRange):
		return c.JSON(http.StatusUnprocessableEntity, errBody("seat_out_of_range", err))
	case errors.Is(err, model.ErrInvalidSeat):
		return c.JSON(http.StatusBadRequest, errBody("invalid_seat", err))
	case errors.Is(err, reservation.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, errBody("show_not_found", err))
	case errors.Is(err, reservation.ErrNotFound):
		return c.JSON(http.StatusNotFound, errBody("booking_not_found", err))
	case errors.Is(err, reservation.ErrForbidden):
		return c.JSON(http.StatusForbidden, errBody("forbidden", err))
	case errors.Is(err, reservation.ErrBusy):
		c.Response().Header().Set("Retry-After", retryAfterBusy)
		return c.JSON(http.StatusServiceUnavailable, errBody("busy", err))
	case errors.As(err, &ve):
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "fields": fields})
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}
