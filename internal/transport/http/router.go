package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/handlers"
	"github.com/Skotchmaster/feedback_web/internal/models"
	"github.com/Skotchmaster/feedback_web/internal/session"
)

type Deps struct {
	Handlers *handlers.Handlers
	Sessions session.Store
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	h := d.Handlers

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	e.GET("/", h.Home)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.GET("/register", h.RegisterPage)
	e.POST("/register", h.Register)
	e.POST("/logout", h.Logout)
	e.GET("/logout", h.Logout)

	customer := handlers.RequireRole(d.Sessions, models.RoleCustomer)
	admin := handlers.RequireRole(d.Sessions, models.RoleAdmin)

	user := e.Group("/user", customer)

	user.POST("/feedback", h.SubmitFeedback)
	user.DELETE("/feedback/:id", h.DeleteFeedback)
	user.POST("/feedback/:id/delete", h.DeleteFeedback)
	user.GET("/feedback/:id/comment/edit", h.EditComment)
	user.PUT("/feedback/:id/comment", h.UpdateComment)

	adm := e.Group("/admin", admin)

	adm.PUT("/feedback/:id/status", h.UpdateStatus)
	adm.POST("/feedback/:id/status", h.UpdateStatus)
	adm.GET("/products/new", h.NewProductForm)
	adm.GET("/products/:id/edit", h.EditProductForm)
	adm.POST("/products", h.SaveProduct)
	adm.DELETE("/products/:id", h.DeleteProduct)
	adm.POST("/products/:id/delete", h.DeleteProduct)

	for _, p := range h.Pages() {
		e.GET(p.Path, h.ServePage(p), handlers.RequireRole(d.Sessions, p.Role))
	}
}
