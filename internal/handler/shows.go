package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// ShowLister lists upcoming shows.  repository.ShowRepo and
// reservation.MemoryCatalog implement it.
type ShowLister interface {
	Upcoming(ctx context.Context, from time.Time, limit int) ([]model.Show, error)
}

// ShowHandler serves public show metadata.  Responses carry no per-user
// state so they can be cached.
type ShowHandler struct {
	Svc   *reservation.Service
	Shows ShowLister
}

func NewShowHandler(svc *reservation.Service, shows ShowLister) *ShowHandler {
	return &ShowHandler{Svc: svc, Shows: shows}
}

// showResp is a show with its seat layout summary.
type showResp struct {
	model.Show
	Capacity int `json:"capacity"`
}

// List handles GET /v1/shows?from=RFC3339&limit=N.  from defaults to now.
func (h *ShowHandler) List(c echo.Context) error {
	from := time.Now().UTC()
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_from", "message": "from must be RFC3339"})
		}
		from = t
	}
	limit := 20
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_limit", "message": "limit must be a positive integer"})
		}
		limit = n
	}
	shows, err := h.Shows.Upcoming(c.Request().Context(), from, limit)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]showResp, len(shows))
	for i, s := range shows {
		out[i] = showResp{Show: s, Capacity: s.Capacity()}
	}
	return c.JSON(http.StatusOK, echo.Map{"shows": out})
}

// Get handles GET /v1/shows/:id.
func (h *ShowHandler) Get(c echo.Context) error {
	id, ok := showID(c)
	if !ok {
		return badShowID(c)
	}
	s, err := h.Svc.Show(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, showResp{Show: s, Capacity: s.Capacity()})
}
