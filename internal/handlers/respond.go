package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/models"
)

const flashCookie = "flash"

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// setFlash stores a notice for the next full page render.
func setFlash(c echo.Context, msg string) {
	if msg == "" {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(c echo.Context) string {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ""
	}
	return msg
}

// notify raises the "notice" event on the htmx client.
func notify(c echo.Context, msg string) {
	b, _ := json.Marshal(map[string]string{"notice": msg})
	c.Response().Header().Set("HX-Trigger", asciiJSON(b))
}

// asciiJSON escapes every non-ASCII rune as \uXXXX. Browsers decode header
// values as Latin-1, so raw UTF-8 would be garbled.
func asciiJSON(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, r := range string(b) {
		switch {
		case r < utf8.RuneSelf:
			sb.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&sb, `\u%04x`, r)
		}
	}
	return sb.String()
}

func redirect(c echo.Context, to, notice string) error {
	if isHTMX(c) {
		if notice != "" {
			notify(c, notice)
		}
		c.Response().Header().Set("HX-Redirect", to)
		return c.NoContent(http.StatusOK)
	}
	setFlash(c, notice)
	return c.Redirect(http.StatusSeeOther, to)
}

// fail ends an action without changing the page. htmx gets the notice with
// an error status so nothing is swapped; plain forms go back with a flash.
func fail(c echo.Context, code int, notice, back string) error {
	if isHTMX(c) {
		notify(c, notice)
		return c.NoContent(code)
	}
	setFlash(c, notice)
	return c.Redirect(http.StatusSeeOther, back)
}

// done ends a successful action by swapping in fragment, or by sending a
// plain form back to the page it came from.
func done(c echo.Context, notice, back, fragment string, data any) error {
	if isHTMX(c) {
		if notice != "" {
			notify(c, notice)
		}
		return c.Render(http.StatusOK, fragment, data)
	}
	setFlash(c, notice)
	return c.Redirect(http.StatusSeeOther, back)
}

func backendStatus(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

// serverText prefers the backend's own error text over fallback.
func serverText(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return apiErr.Body
	}
	return fallback
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func RedirectFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return adminPath
	case models.RoleCustomer:
		return userPath
	default:
		return loginPath
	}
}
