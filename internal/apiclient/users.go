package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

var (
	epLogin    = endpoint{http.MethodPost, "/users/login"}
	epRegister = endpoint{http.MethodPost, "/users/register"}
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login returns the authenticated user with the password cleared.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, epLogin, epLogin.route, loginRequest{Email: email, Password: password}, &u); err != nil {
		return nil, err
	}
	u.Password = ""
	return &u, nil
}

// Register creates an account; the backend assigns the role.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, epRegister, epRegister.route, registerRequest{Name: name, Email: email, Password: password}, nil)
}
