package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/api/middleware"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

const defaultKeepAlive = 25 * time.Second

// SessionHandler exposes the authorization gate to the admin shell.
type SessionHandler struct {
	access    ports.AccessService
	watchers  ports.WatcherFactory
	keepAlive time.Duration
	log       zerolog.Logger
}

func NewSessionHandler(access ports.AccessService, watchers ports.WatcherFactory, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		access:    access,
		watchers:  watchers,
		keepAlive: defaultKeepAlive,
		log:       log,
	}
}

// Current reports the gate decision for the caller's token. A missing or
// invalid token is a normal "unauthenticated" answer, not an error.
//
// @Summary      Current admin gate decision
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  gateResponse
// @Router       /admin/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	token, _ := c.Get(middleware.ContextToken).(string)

	var d ports.Decision
	if token == "" {
		d = ports.Decision{State: domain.GateUnauthenticated}
	} else {
		d = h.access.Evaluate(c.Request().Context(), token)
	}
	return c.JSON(http.StatusOK, toGateResponse(d.State, d.Profile, 0))
}

// Stream keeps a gate open for the lifetime of the connection and pushes
// every state change as a server-sent event. The stream ends once the
// session is gone.
//
// @Summary      Stream admin gate changes
// @Tags         session
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        access_token  query  string  false  "Access token for clients that cannot set headers"
// @Success      200
// @Router       /admin/session/stream [get]
func (h *SessionHandler) Stream(c echo.Context) error {
	token, _ := c.Get(middleware.ContextToken).(string)
	ctx := c.Request().Context()

	watcher := h.watchers(token)
	defer watcher.Close()

	metrics.SessionStreamsOpen.Inc()
	defer metrics.SessionStreamsOpen.Dec()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	snap := watcher.Start(ctx)
	if err := writeGateEvent(res, snap); err != nil {
		return nil
	}
	last := snap.Seq
	if snap.State == domain.GateUnauthenticated {
		return nil
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-watcher.Changes():
			if !ok {
				return nil
			}
			if snap.Seq <= last {
				continue
			}
			last = snap.Seq
			if err := writeGateEvent(res, snap); err != nil {
				h.log.Debug().Err(err).Msg("session stream: write failed")
				return nil
			}
			if snap.State == domain.GateUnauthenticated {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeGateEvent(res *echo.Response, snap ports.GateSnapshot) error {
	payload, err := json.Marshal(toGateResponse(snap.State, snap.Profile, snap.Seq))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "id: %d\nevent: gate\ndata: %s\n\n", snap.Seq, payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}
