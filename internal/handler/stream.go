package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// streamKeepAlive is how often an idle stream sends a comment line so
// proxies keep the connection open.
var streamKeepAlive = 15 * time.Second

type versionEvent struct {
	ShowID  uint64 `json:"show_id"`
	Version uint64 `json:"version"`
}

// Stream handles GET /v1/shows/:id/stream as server-sent events.  The
// first event carries the current ledger version; every later one is sent
// after a change.  Bursts of changes collapse into the newest version, so
// clients refetch the grid rather than count events.
func (h *BookingHandler) Stream(c echo.Context) error {
	id, ok := showID(c)
	if !ok {
		return badShowID(c)
	}
	ctx := c.Request().Context()
	changes, stop, err := h.Svc.Subscribe(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	defer stop()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(v uint64) error {
		data, _ := json.Marshal(versionEvent{ShowID: id, Version: v})
		if _, err := fmt.Fprintf(w, "id: %d\nevent: version\ndata: %s\n\n", v, data); err != nil {
			return err
		}
		w.Flush()
		return nil
	}
	if err := send(h.Svc.Ledger().Version(id)); err != nil {
		return nil
	}

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.Closing:
			return nil
		case v, ok := <-changes:
			if !ok {
				return nil
			}
			if err := send(v); err != nil {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
