package forms

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	validate     = newValidator()
)

// ValidationError is the first failing field of a form together with the
// message shown to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	rules := map[string]validator.Func{
		"simple_email": func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		},
		"entity_id": func(fl validator.FieldLevel) bool {
			id, err := strconv.ParseUint(fl.Field().String(), 10, 64)
			return err == nil && id > 0
		},
		"rating": func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Field().String())
			return err == nil && n >= 1 && n <= 5
		},
		"positive_decimal": func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && d.IsPositive()
		},
		"non_negative_decimal": func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative()
		},
		"status": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseStatus(fl.Field().String())
			return ok
		},
		"percent": func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Field().String())
			return err == nil && n >= 0 && n <= 100
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// check validates form and reports only its first failing field. Messages
// are looked up as "Field.tag" first, then "Field".
func check(form any, messages map[string]string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = messages[fe.Field()]
	}
	if msg == "" {
		msg = "Invalid " + strings.ToLower(fe.Field())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

func parseID(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 64)
	return uint(id)
}

type LoginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (f *LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return check(f, map[string]string{
		"Email":    "Fill email and password.",
		"Password": "Fill email and password.",
	})
}

// RegisterForm fields are declared in the order they are reported.
type RegisterForm struct {
	Name     string `form:"name" validate:"min=3"`
	Email    string `form:"email" validate:"simple_email"`
	Password string `form:"password" validate:"min=6"`
}

func (f *RegisterForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return check(f, map[string]string{
		"Name":     "Name must be at least 3 characters.",
		"Email":    "Invalid email.",
		"Password": "Password must be at least 6 characters.",
	})
}

type FeedbackForm struct {
	ProductID string `form:"product_id" validate:"entity_id"`
	Rating    string `form:"rating" validate:"rating"`
	Comment   string `form:"comment" validate:"required,max=2000"`
}

func (f *FeedbackForm) Validate() error {
	f.ProductID = strings.TrimSpace(f.ProductID)
	f.Rating = strings.TrimSpace(f.Rating)
	f.Comment = strings.TrimSpace(f.Comment)
	return check(f, map[string]string{
		"ProductID":   "Please select a product.",
		"Rating":      "Rating must be between 1 and 5",
		"Comment":     "Comment is required",
		"Comment.max": "Comment is too long",
	})
}

// Submission must only be called after Validate succeeded.
func (f FeedbackForm) Submission(userID uint) models.NewFeedback {
	rating, _ := strconv.Atoi(f.Rating)
	return models.NewFeedback{
		Rating:  rating,
		Comment: f.Comment,
		User:    models.Ref{ID: userID},
		Product: models.Ref{ID: parseID(f.ProductID)},
		Status:  models.StatusPending,
	}
}

// CommentForm is an inline comment edit. Original is the text the cell
// showed when editing started.
type CommentForm struct {
	Comment  string `form:"comment" validate:"max=2000"`
	Original string `form:"original"`
}

func (f *CommentForm) Validate() error {
	f.Comment = strings.TrimSpace(f.Comment)
	return check(f, map[string]string{"Comment": "Comment is too long"})
}

// Changed reports whether the edit should reach the backend: an empty or
// unchanged value restores the original text.
func (f CommentForm) Changed() bool {
	c := strings.TrimSpace(f.Comment)
	return c != "" && c != f.Original
}

// StatusForm carries the new status plus the row's displayed fields so the
// row can be rebuilt without reloading the list.
type StatusForm struct {
	Status       string `form:"status" validate:"status"`
	AdminComment string `form:"admin_comment" validate:"max=2000"`
	User         string `form:"user"`
	Product      string `form:"product"`
	Rating       string `form:"rating"`
	Comment      string `form:"comment"`
}

func (f *StatusForm) Validate() error {
	f.AdminComment = strings.TrimSpace(f.AdminComment)
	return check(f, map[string]string{
		"Status":       "Unknown status",
		"AdminComment": "Admin comment is too long",
	})
}

func (f StatusForm) Update() models.FeedbackUpdate {
	st, _ := models.ParseStatus(f.Status)
	upd := models.FeedbackUpdate{Status: &st}
	if f.AdminComment != "" {
		ac := f.AdminComment
		upd.AdminComment = &ac
	}
	return upd
}

func (f StatusForm) RatingValue() int {
	n, _ := strconv.Atoi(f.Rating)
	return n
}

type ProductForm struct {
	ID          string `form:"id" validate:"omitempty,entity_id"`
	Name        string `form:"name" validate:"required,max=255"`
	Description string `form:"description" validate:"required"`
	Price       string `form:"price" validate:"positive_decimal"`
	Cost        string `form:"cost" validate:"omitempty,non_negative_decimal"`
	Discount    string `form:"discount" validate:"omitempty,percent"`
	Category    string `form:"category" validate:"max=255"`
	Image       string `form:"image" validate:"max=1024"`
}

func (f *ProductForm) Validate() error {
	for _, s := range []*string{&f.ID, &f.Name, &f.Description, &f.Price, &f.Cost, &f.Discount, &f.Category, &f.Image} {
		*s = strings.TrimSpace(*s)
	}
	return check(f, map[string]string{
		"ID":          "Invalid product id",
		"Name":        "Product name is required.",
		"Name.max":    "Product name is too long.",
		"Description": "Description is required.",
		"Price":       "Price must be a positive number.",
		"Cost":        "Valid cost is required",
		"Discount":    "Discount must be 0-100",
		"Category":    "Category is too long.",
		"Image":       "Image reference is too long.",
	})
}

// ProductID is zero in add mode.
func (f ProductForm) ProductID() uint {
	return parseID(f.ID)
}

func (f ProductForm) Product() models.Product {
	p := models.Product{
		ID:          f.ProductID(),
		Name:        f.Name,
		Description: f.Description,
		Price:       decimal.RequireFromString(f.Price),
		Category:    f.Category,
		Image:       f.Image,
	}
	if f.Cost != "" {
		cost := decimal.RequireFromString(f.Cost)
		p.Cost = &cost
	}
	if f.Discount != "" {
		d, _ := strconv.Atoi(f.Discount)
		p.Discount = &d
	}
	return p
}
