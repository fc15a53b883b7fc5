package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/feedback_web/internal/apiclient"
	"github.com/Skotchmaster/feedback_web/internal/events"
	"github.com/Skotchmaster/feedback_web/internal/handlers"
	"github.com/Skotchmaster/feedback_web/internal/models"
	"github.com/Skotchmaster/feedback_web/internal/render"
	"github.com/Skotchmaster/feedback_web/internal/session"
	httpserver "github.com/Skotchmaster/feedback_web/internal/transport/http"
)

var (
	jane  = models.User{ID: 42, Name: "Jane", Email: "jane@x.io", Role: models.RoleCustomer}
	admin = models.User{ID: 1, Name: "Admin", Email: "admin@x.io", Role: models.RoleAdmin}
	guest = models.User{ID: 7, Name: "Odd", Email: "odd@x.io", Role: "guest"}
)

type call struct {
	Method string
	Path   string
	Body   string
}

type failure struct {
	code int
	body string
}

// backend is an in-memory stand-in for the REST API.
type backend struct {
	mu        sync.Mutex
	calls     []call
	failures  map[string]failure
	passwords map[string]string
	users     map[string]models.User
	products  []models.Product
	feedback  []models.Feedback
	nextID    uint
}

func newBackend() *backend {
	discount := 10
	return &backend{
		failures:  map[string]failure{},
		passwords: map[string]string{jane.Email: "secret1", admin.Email: "admin123", guest.Email: "guest123"},
		users:     map[string]models.User{jane.Email: jane, admin.Email: admin, guest.Email: guest},
		products: []models.Product{
			{ID: 5, Name: "Lamp", Description: "desk lamp", Price: decimal.RequireFromString("19.99"), Discount: &discount},
			{ID: 6, Name: "Mug", Description: "tea mug", Price: decimal.RequireFromString("4.5")},
		},
		feedback: []models.Feedback{
			{ID: 1, User: &models.Ref{ID: 42, Name: "Jane"}, Product: &models.Ref{ID: 5, Name: "Lamp"}, Rating: 4, Comment: "bright", Status: models.StatusPending},
			{ID: 2, User: &models.Ref{ID: 43, Name: "Bob"}, Product: &models.Ref{ID: 6, Name: "Mug"}, Rating: 2, Comment: "chipped", Status: models.StatusPending},
		},
		nextID: 100,
	}
}

// fail makes the route answer with code and body, e.g. "PUT /api/feedback/update/:id".
func (b *backend) fail(route string, code int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{code: code, body: body}
}

func (b *backend) recorded() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]call(nil), b.calls...)
}

func (b *backend) routes() []string {
	var out []string
	for _, c := range b.recorded() {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

func (b *backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, _ := io.ReadAll(c.Request().Body)
		c.Request().Body = io.NopCloser(bytes.NewReader(raw))

		b.mu.Lock()
		b.calls = append(b.calls, call{Method: c.Request().Method, Path: c.Request().URL.Path, Body: string(raw)})
		f, ok := b.failures[c.Request().Method+" "+c.Path()]
		b.mu.Unlock()

		if ok {
			return c.String(f.code, f.body)
		}
		return next(c)
	}
}

func (b *backend) server(t *testing.T) *httptest.Server {
	t.Helper()

	e := echo.New()
	e.Use(b.record)
	api := e.Group("/api")

	api.POST("/users/login", func(c echo.Context) error {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.Bind(&in); err != nil {
			return c.String(http.StatusBadRequest, "bad request")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		u, ok := b.users[in.Email]
		if !ok || b.passwords[in.Email] != in.Password {
			return c.String(http.StatusUnauthorized, "Invalid email or password")
		}
		u.Password = "$2a$hash"
		return c.JSON(http.StatusOK, u)
	})
	api.POST("/users/register", func(c echo.Context) error {
		var in struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.Bind(&in); err != nil {
			return c.String(http.StatusBadRequest, "bad request")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.users[in.Email]; ok {
			return c.String(http.StatusBadRequest, "Email already registered")
		}
		b.nextID++
		b.users[in.Email] = models.User{ID: b.nextID, Name: in.Name, Email: in.Email, Role: models.RoleCustomer}
		b.passwords[in.Email] = in.Password
		return c.String(http.StatusOK, "User registered successfully")
	})

	api.GET("/products", func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return c.JSON(http.StatusOK, b.products)
	})
	api.GET("/products/:id", func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if i := b.productIndex(c.Param("id")); i >= 0 {
			return c.JSON(http.StatusOK, b.products[i])
		}
		return c.String(http.StatusNotFound, "Product not found")
	})
	api.POST("/products", func(c echo.Context) error {
		var p models.Product
		if err := c.Bind(&p); err != nil {
			return c.String(http.StatusBadRequest, "bad request")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		p.ID = b.nextID
		b.products = append(b.products, p)
		return c.JSON(http.StatusOK, p)
	})
	api.PUT("/products/:id", func(c echo.Context) error {
		var p models.Product
		if err := json.NewDecoder(c.Request().Body).Decode(&p); err != nil {
			return c.String(http.StatusBadRequest, "bad request")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.productIndex(c.Param("id"))
		if i < 0 {
			return c.String(http.StatusNotFound, "Product not found")
		}
		p.ID = b.products[i].ID
		b.products[i] = p
		return c.JSON(http.StatusOK, p)
	})
	api.DELETE("/products/:id", func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.productIndex(c.Param("id"))
		if i < 0 {
			return c.String(http.StatusNotFound, "Product not found")
		}
		b.products = append(b.products[:i], b.products[i+1:]...)
		return c.NoContent(http.StatusNoContent)
	})

	api.GET("/feedback/all", func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return c.JSON(http.StatusOK, b.feedback)
	})
	api.GET("/feedback/user/:id", func(c echo.Context) error {
		id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []models.Feedback{}
		for _, fb := range b.feedback {
			if fb.User != nil && fb.User.ID == uint(id) {
				out = append(out, fb)
			}
		}
		return c.JSON(http.StatusOK, out)
	})
	api.POST("/feedback/submit", func(c echo.Context) error {
		var in models.NewFeedback
		if err := json.NewDecoder(c.Request().Body).Decode(&in); err != nil {
			return c.String(http.StatusBadRequest, "bad request")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		fb := models.Feedback{ID: b.nextID, User: &in.User, Product: &in.Product, Rating: in.Rating, Comment: in.Comment, Status: in.Status}
		for _, p := range b.products {
			if p.ID == in.Product.ID {
				fb.Product.Name = p.Name
			}
		}
		b.feedback = append(b.feedback, fb)
		return c.JSON(http.StatusOK, fb)
	})
	api.PUT("/feedback/update/:id", func(c echo.Context) error {
		var upd models.FeedbackUpdate
		if err := json.NewDecoder(c.Request().Body).Decode(&upd); err != nil {
			return c.String(http.StatusBadRequest, "bad request")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.feedbackIndex(c.Param("id"))
		if i < 0 {
			return c.String(http.StatusNotFound, "Feedback not found")
		}
		if upd.Status != nil {
			b.feedback[i].Status = *upd.Status
		}
		if upd.Comment != nil {
			b.feedback[i].Comment = *upd.Comment
		}
		if upd.AdminComment != nil {
			b.feedback[i].AdminComment = *upd.AdminComment
		}
		return c.NoContent(http.StatusOK)
	})
	api.DELETE("/feedback/delete/:id", func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.feedbackIndex(c.Param("id"))
		if i < 0 {
			return c.String(http.StatusNotFound, "Feedback not found")
		}
		b.feedback = append(b.feedback[:i], b.feedback[i+1:]...)
		return c.NoContent(http.StatusNoContent)
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func (b *backend) productIndex(raw string) int {
	for i, p := range b.products {
		if strconv.FormatUint(uint64(p.ID), 10) == raw {
			return i
		}
	}
	return -1
}

func (b *backend) feedbackIndex(raw string) int {
	for i, fb := range b.feedback {
		if strconv.FormatUint(uint64(fb.ID), 10) == raw {
			return i
		}
	}
	return -1
}

type publisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *publisher) Publish(_ context.Context, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *publisher) Close() error { return nil }

func (p *publisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	e        *echo.Echo
	backend  *backend
	sessions *session.CookieStore
	events   *publisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	b := newBackend()
	srv := b.server(t)

	store, err := session.NewCookieStore([]byte("test-secret"), session.CookieOptions{})
	require.NoError(t, err)
	r, err := render.New(render.Options{HTMXSrc: "/htmx.min.js"})
	require.NoError(t, err)

	pub := &publisher{}
	h := &handlers.Handlers{
		API:      apiclient.NewClient(srv.URL + "/api"),
		Sessions: store,
		Events:   pub,
	}

	e := echo.New()
	e.Renderer = r
	httpserver.Register(e, &httpserver.Deps{Handlers: h, Sessions: store})

	return &testEnv{e: e, backend: b, sessions: store, events: pub}
}

type request struct {
	method  string
	path    string
	form    url.Values
	htmx    bool
	as      *models.User
	cookies []*http.Cookie
}

func (env *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if r.htmx {
		req.Header.Set("HX-Request", "true")
	}
	if r.as != nil {
		req.AddCookie(env.sessionCookie(t, *r.as))
	}
	for _, ck := range r.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) sessionCookie(t *testing.T, u models.User) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	c := env.e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, env.sessions.Save(c, u))
	return findCookie(t, rec, session.CookieName)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", name)
	return nil
}

func hasCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return true
		}
	}
	return false
}

func flash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, err := url.QueryUnescape(findCookie(t, rec, "flash").Value)
	require.NoError(t, err)
	return msg
}

// notice reads the message sent to the htmx client.
func notice(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	raw := rec.Header().Get("HX-Trigger")
	require.NotEmpty(t, raw, "no HX-Trigger header")
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload["notice"]
}
