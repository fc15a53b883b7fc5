package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/models"
	"github.com/Skotchmaster/feedback_web/internal/render"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

// Page is a protected page: the role it requires and how its content is
// loaded. Init only runs after the guard accepted the session.
type Page struct {
	Name  string
	Title string
	Path  string
	Role  models.Role
	Init  func(c echo.Context, s *session.Session, v *View) error
}

// View collects a page's content and the notices raised while loading it.
type View struct {
	Content any
	notices []string
}

func (v *View) Notify(msg string) {
	v.notices = append(v.notices, msg)
}

func (h *Handlers) Pages() []Page {
	return []Page{
		{Name: "user", Title: "My feedback", Path: userPath, Role: models.RoleCustomer, Init: h.initUserPage},
		{Name: "admin", Title: "Feedback queue", Path: adminPath, Role: models.RoleAdmin, Init: h.initAdminPage},
		{Name: "products", Title: "Products", Path: productsPath, Role: models.RoleAdmin, Init: h.initProductsPage},
	}
}

func loginNotice(role models.Role) string {
	if role == models.RoleAdmin {
		return "Please login as admin."
	}
	return "Please login as user."
}

// RequireRole sends requests without a session of the given role to the
// login page before any handler runs.
func RequireRole(store session.Store, role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context())

			s, err := store.Load(c)
			if err != nil && !errors.Is(err, session.ErrNoSession) {
				l.Error().Err(err).Msg("session_load_failed")
			}
			if err != nil || !s.HasRole(role) {
				l.Info().Str("required_role", string(role)).Str("path", c.Path()).Msg("access_denied")
				return redirect(c, loginPath, loginNotice(role))
			}

			session.IntoContext(c, s)
			return next(c)
		}
	}
}

func (h *Handlers) ServePage(p Page) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With().Str("handler", "page."+p.Name).Logger()

		s := session.FromContext(c)
		if s == nil {
			return redirect(c, loginPath, loginNotice(p.Role))
		}

		v := &View{}
		if notice := popFlash(c); notice != "" {
			v.Notify(notice)
		}
		if err := p.Init(c, s, v); err != nil {
			if apiclient.IsUnauthorized(err) {
				return h.expire(c)
			}
			l.Error().Int("status", 500).Str("reason", "cannot load page").Err(err).Msg("page_init_failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot load page")
		}

		user := s.User
		return c.Render(http.StatusOK, p.Name, render.PageData{
			Title:   p.Title,
			User:    &user,
			Notice:  strings.Join(v.notices, "\n"),
			Content: v.Content,
		})
	}
}
