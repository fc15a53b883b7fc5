package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

const (
	CookieName = "feedbackUser"
	contextKey = "session"
)

var ErrNoSession = errors.New("session: no session")

// Session is the signed-in user as last returned by the backend. It is
// trusted for routing without any freshness check.
type Session struct {
	User models.User
}

func (s *Session) HasRole(role models.Role) bool {
	return s != nil && s.User.Role == role
}

// Store persists at most one session per browser.
type Store interface {
	// Load returns ErrNoSession when nothing usable is stored.
	Load(c echo.Context) (*Session, error)
	// Save replaces whatever session was stored before.
	Save(c echo.Context, user models.User) error
	Clear(c echo.Context) error
}

func IntoContext(c echo.Context, s *Session) {
	c.Set(contextKey, s)
}

func FromContext(c echo.Context) *Session {
	s, _ := c.Get(contextKey).(*Session)
	return s
}

type CookieOptions struct {
	Name   string
	Path   string
	Secure bool
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = CookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

// CreateCookie builds a browser-session cookie; there is no expiry.
func CreateCookie(o CookieOptions, value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(o CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     o.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func sanitize(u models.User) models.User {
	u.Password = ""
	return u
}
