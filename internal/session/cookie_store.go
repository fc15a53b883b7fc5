package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

type userClaims struct {
	User models.User `json:"user"`
	jwt.RegisteredClaims
}

// CookieStore keeps the session user in an HS256-signed cookie.
type CookieStore struct {
	secret []byte
	opts   CookieOptions
}

func NewCookieStore(secret []byte, opts CookieOptions) (*CookieStore, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: empty secret")
	}
	return &CookieStore{secret: secret, opts: opts.withDefaults()}, nil
}

func (s *CookieStore) Load(c echo.Context) (*Session, error) {
	ck, err := c.Cookie(s.opts.Name)
	if err != nil || ck.Value == "" {
		return nil, ErrNoSession
	}

	var claims userClaims
	tkn, err := jwt.ParseWithClaims(ck.Value, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return &Session{User: claims.User}, nil
}

func (s *CookieStore) Save(c echo.Context, user models.User) error {
	claims := userClaims{
		User: sanitize(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: fmt.Sprint(user.ID),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.SetCookie(CreateCookie(s.opts, signed))
	return nil
}

func (s *CookieStore) Clear(c echo.Context) error {
	c.SetCookie(DeleteCookie(s.opts))
	return nil
}
