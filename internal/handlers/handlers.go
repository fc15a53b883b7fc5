package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/events"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

const (
	loginPath    = "/login"
	userPath     = "/user"
	adminPath    = "/admin"
	productsPath = "/admin/products"
)

type Handlers struct {
	API      *apiclient.Client
	Sessions session.Store
	Events   events.Publisher
}

func (h *Handlers) publish(c echo.Context, topic string, ev events.Event) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := h.Events.Publish(ctx, topic, ev); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("topic", topic).Str("event", ev.Type).Msg("event_publish_failed")
	}
}

// backendFailed reports a failed backend call made on behalf of a signed-in
// user. A 401 means the stored session is no longer accepted.
func (h *Handlers) backendFailed(c echo.Context, err error, notice, back string) error {
	if apiclient.IsUnauthorized(err) {
		return h.expire(c)
	}
	return fail(c, backendStatus(err), notice, back)
}

func (h *Handlers) expire(c echo.Context) error {
	if err := h.Sessions.Clear(c); err != nil {
		logging.FromContext(c.Request().Context()).Error().Err(err).Msg("session_clear_failed")
	}
	return redirect(c, loginPath, "Session expired. Please login again.")
}
