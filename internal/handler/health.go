package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/gateway"
)

// HealthHandler answers load balancer probes.  When a stats source is set
// the response also reports the sync gateway counters.
type HealthHandler struct {
	Stats func() gateway.Stats
}

// Health returns 200 with {"status":"ok"} while the process serves
// requests.
func (h *HealthHandler) Health(c echo.Context) error {
	body := echo.Map{"status": "ok"}
	if h != nil && h.Stats != nil {
		body["sync"] = h.Stats()
	}
	return c.JSON(http.StatusOK, body)
}
