package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// the backend reads prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusResolved Status = "Resolved"
	StatusRejected Status = "Rejected"
)

var Statuses = []Status{StatusPending, StatusResolved, StatusRejected}

func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type User struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
}

type Product struct {
	ID          uint             `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Discount    *int             `json:"discount,omitempty"`
	Category    string           `json:"category,omitempty"`
	Image       string           `json:"image,omitempty"`
}

// Ref is a nested {id, name} reference as the backend embeds users and products.
type Ref struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

// Feedback accepts both the nested entity shape and the flat DTO shape.
type Feedback struct {
	ID           uint   `json:"id,omitempty"`
	User         *Ref   `json:"user,omitempty"`
	Product      *Ref   `json:"product,omitempty"`
	UserID       uint   `json:"userId,omitempty"`
	UserName     string `json:"userName,omitempty"`
	ProductID    uint   `json:"productId,omitempty"`
	ProductName  string `json:"productName,omitempty"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	Status       Status `json:"status,omitempty"`
	AdminComment string `json:"adminComment,omitempty"`
}

func (f Feedback) UserLabel() string {
	if f.User != nil && f.User.Name != "" {
		return f.User.Name
	}
	return f.UserName
}

func (f Feedback) ProductLabel() string {
	if f.Product != nil && f.Product.Name != "" {
		return f.Product.Name
	}
	return f.ProductName
}

func (f Feedback) EffectiveStatus() Status {
	if f.Status == "" {
		return StatusPending
	}
	return f.Status
}

// NewFeedback is the body of a feedback submission.
type NewFeedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	User    Ref    `json:"user"`
	Product Ref    `json:"product"`
	Status  Status `json:"status"`
}

// FeedbackUpdate is a partial update; nil fields are left untouched.
type FeedbackUpdate struct {
	Status       *Status `json:"status,omitempty"`
	Comment      *string `json:"comment,omitempty"`
	AdminComment *string `json:"adminComment,omitempty"`
}
