package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/events"
	"github.com/Skotchmaster/feedback_web/internal/forms"
	"github.com/Skotchmaster/feedback_web/internal/logging"
	"github.com/Skotchmaster/feedback_web/internal/render"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

// signedIn returns the stored session when its role has a home page.
func (h *Handlers) signedIn(c echo.Context) (*session.Session, bool) {
	s, err := h.Sessions.Load(c)
	if err != nil || RedirectFor(s.User.Role) == loginPath {
		return nil, false
	}
	return s, true
}

func (h *Handlers) Home(c echo.Context) error {
	if s, ok := h.signedIn(c); ok {
		return c.Redirect(http.StatusSeeOther, RedirectFor(s.User.Role))
	}
	return c.Redirect(http.StatusSeeOther, loginPath)
}

func (h *Handlers) renderLogin(c echo.Context, code int, notice string, view render.LoginView) error {
	return c.Render(code, "login", render.PageData{Title: "Login", Notice: notice, Content: view})
}

func (h *Handlers) renderRegister(c echo.Context, code int, notice string, view render.RegisterView) error {
	return c.Render(code, "register", render.PageData{Title: "Register", Notice: notice, Content: view})
}

func (h *Handlers) LoginPage(c echo.Context) error {
	if s, ok := h.signedIn(c); ok {
		return c.Redirect(http.StatusSeeOther, RedirectFor(s.User.Role))
	}
	return h.renderLogin(c, http.StatusOK, popFlash(c), render.LoginView{})
}

func (h *Handlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "auth.login").Logger()

	var form forms.LoginForm
	if err := c.Bind(&form); err != nil {
		l.Warn().Int("status", 400).Str("reason", "invalid form").Err(err).Msg("login_failed")
		return h.renderLogin(c, http.StatusBadRequest, "Invalid form", render.LoginView{})
	}
	if err := form.Validate(); err != nil {
		l.Info().Int("status", 422).Str("reason", err.Error()).Msg("login_failed")
		return h.renderLogin(c, http.StatusUnprocessableEntity, err.Error(), render.LoginView{Email: form.Email})
	}

	user, err := h.API.Login(ctx, form.Email, form.Password)
	if err != nil {
		code := backendStatus(err)
		l.Warn().Int("status", code).Str("reason", "backend rejected login").Err(err).Msg("login_failed")
		return h.renderLogin(c, code, serverText(err, "Login failed"), render.LoginView{Email: form.Email})
	}

	if err := h.Sessions.Save(c, *user); err != nil {
		l.Error().Int("status", 500).Str("reason", "cannot store session").Err(err).Msg("login_failed")
		return h.renderLogin(c, http.StatusInternalServerError, "Login failed", render.LoginView{Email: form.Email})
	}

	h.publish(c, events.TopicUser, events.Event{Type: "user_logged_in", UserID: user.ID})
	l.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("login_success")

	setFlash(c, "Login successful")
	return c.Redirect(http.StatusSeeOther, RedirectFor(user.Role))
}

func (h *Handlers) RegisterPage(c echo.Context) error {
	if s, ok := h.signedIn(c); ok {
		return c.Redirect(http.StatusSeeOther, RedirectFor(s.User.Role))
	}
	return h.renderRegister(c, http.StatusOK, popFlash(c), render.RegisterView{})
}

func (h *Handlers) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("handler", "auth.register").Logger()

	var form forms.RegisterForm
	if err := c.Bind(&form); err != nil {
		l.Warn().Int("status", 400).Str("reason", "invalid form").Err(err).Msg("register_failed")
		return h.renderRegister(c, http.StatusBadRequest, "Invalid form", render.RegisterView{})
	}
	view := render.RegisterView{Name: form.Name, Email: form.Email}
	if err := form.Validate(); err != nil {
		l.Info().Int("status", 422).Str("reason", err.Error()).Msg("register_failed")
		return h.renderRegister(c, http.StatusUnprocessableEntity, err.Error(), view)
	}

	if err := h.API.Register(ctx, form.Name, form.Email, form.Password); err != nil {
		code := backendStatus(err)
		l.Warn().Int("status", code).Str("reason", "backend rejected registration").Err(err).Msg("register_failed")
		return h.renderRegister(c, code, serverText(err, "Registration failed"), view)
	}

	l.Info().Msg("register_success")
	setFlash(c, "Registration successful. Please login.")
	return c.Redirect(http.StatusSeeOther, loginPath)
}

func (h *Handlers) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With().Str("handler", "auth.logout").Logger()

	s, _ := h.Sessions.Load(c)
	if err := h.Sessions.Clear(c); err != nil {
		l.Error().Err(err).Msg("logout_failed")
	}
	if s != nil {
		h.publish(c, events.TopicUser, events.Event{Type: "user_logged_out", UserID: s.User.ID})
	}
	return redirect(c, loginPath, "Logged out")
}
