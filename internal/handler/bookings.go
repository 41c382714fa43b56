package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// BookingHandler serves seat grids, pending selections and bookings.  The
// pending selection lives with the client: every request carries it and
// every response returns the updated one.
type BookingHandler struct {
	Svc *reservation.Service
	// Closing, when set, ends open seat streams once it is closed.  The
	// HTTP server does not cancel request contexts on shutdown.
	Closing <-chan struct{}
}

func NewBookingHandler(svc *reservation.Service) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type gridResp struct {
	Pending []string   `json:"pending"`
	Grid    model.Grid `json:"grid"`
}

type toggleReq struct {
	Seat    string   `json:"seat" validate:"required,max=16"`
	Pending []string `json:"pending" validate:"max=1024,dive,max=16"`
}

type confirmReq struct {
	Seats []string `json:"seats" validate:"max=1024,dive,max=16"`
}

// Seats handles GET /v1/shows/:id/seats?pending=A1,A2.  Anonymous viewers
// see every booking as BOOKED_BY_OTHER.
func (h *BookingHandler) Seats(c echo.Context) error {
	id, ok := showID(c)
	if !ok {
		return badShowID(c)
	}
	var labels []string
	if q := c.QueryParam("pending"); q != "" {
		labels = strings.Split(q, ",")
	}
	pending, err := parseSelection(labels)
	if err != nil {
		return writeError(c, err)
	}
	grid, err := h.Svc.Grid(c.Request().Context(), id, viewer(c), pending)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, gridResp{Pending: model.SeatLabels(pending.Seats()), Grid: grid})
}

// Toggle handles POST /v1/shows/:id/toggle.  A rejected toggle answers
// with the unchanged pending selection alongside the error.
func (h *BookingHandler) Toggle(c echo.Context) error {
	id, ok := showID(c)
	if !ok {
		return badShowID(c)
	}
	var req toggleReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	seat, err := model.ParseSeatKey(req.Seat)
	if err != nil {
		return writeError(c, err)
	}
	pending, err := parseSelection(req.Pending)
	if err != nil {
		return writeError(c, err)
	}
	uid, _ := middleware.UserID(c)
	next, grid, err := h.Svc.Toggle(c.Request().Context(), id, uid, pending, seat)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, gridResp{Pending: model.SeatLabels(next.Seats()), Grid: grid})
}

// Confirm handles POST /v1/shows/:id/confirm.  On a seat conflict the
// response lists the conflicting seats and the remaining pending seats
// the client may retry with.
func (h *BookingHandler) Confirm(c echo.Context) error {
	id, ok := showID(c)
	if !ok {
		return badShowID(c)
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	pending, err := parseSelection(req.Seats)
	if err != nil {
		return writeError(c, err)
	}
	uid, _ := middleware.UserID(c)
	b, err := h.Svc.Confirm(c.Request().Context(), id, uid, pending)
	if err != nil {
		if conflicts := reservation.ConflictingSeats(err); conflicts != nil {
			body := errBody("seat_conflict", err)
			body["conflicts"] = model.SeatLabels(conflicts)
			body["pending"] = model.SeatLabels(pending.Without(conflicts...).Seats())
			return c.JSON(http.StatusConflict, body)
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// bookingID validates the :id path parameter.  Malformed ids cannot
// exist, so they are reported as not found.
func bookingID(c echo.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Cancel handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return writeError(c, reservation.ErrNotFound)
	}
	uid, _ := middleware.UserID(c)
	b, err := h.Svc.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := bookingID(c)
	if !ok {
		return writeError(c, reservation.ErrNotFound)
	}
	uid, _ := middleware.UserID(c)
	b, err := h.Svc.Booking(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Mine handles GET /v1/my-bookings, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	return c.JSON(http.StatusOK, echo.Map{"bookings": h.Svc.MyBookings(c.Request().Context(), uid)})
}
