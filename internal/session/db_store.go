package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

type record struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (record) TableName() string { return "web_sessions" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&record{})
}

// DBStore keeps the session user in the web_sessions table; the cookie
// only carries the row id.
type DBStore struct {
	db   *gorm.DB
	opts CookieOptions
}

func NewDBStore(db *gorm.DB, opts CookieOptions) (*DBStore, error) {
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return &DBStore{db: db, opts: opts.withDefaults()}, nil
}

func (s *DBStore) sessionID(c echo.Context) (string, bool) {
	ck, err := c.Cookie(s.opts.Name)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(ck.Value); err != nil {
		return "", false
	}
	return ck.Value, true
}

func (s *DBStore) Load(c echo.Context) (*Session, error) {
	id, ok := s.sessionID(c)
	if !ok {
		return nil, ErrNoSession
	}

	var rec record
	err := s.db.WithContext(c.Request().Context()).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &Session{User: models.User{
		ID:    rec.UserID,
		Name:  rec.Name,
		Email: rec.Email,
		Role:  models.Role(rec.Role),
	}}, nil
}

func (s *DBStore) Save(c echo.Context, user models.User) error {
	ctx := c.Request().Context()
	user = sanitize(user)

	rec := record{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if old, ok := s.sessionID(c); ok {
			if err := tx.Delete(&record{}, "id = ?", old).Error; err != nil {
				return err
			}
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	c.SetCookie(CreateCookie(s.opts, rec.ID))
	return nil
}

func (s *DBStore) Clear(c echo.Context) error {
	if id, ok := s.sessionID(c); ok {
		if err := s.db.WithContext(c.Request().Context()).Delete(&record{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	c.SetCookie(DeleteCookie(s.opts))
	return nil
}
