package render

import (
	"strconv"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

// PageData is what the layout renders; Content is the page's own view.
type PageData struct {
	Title   string
	User    *models.User
	Notice  string
	Content any
}

type FeedbackRow struct {
	ID             uint
	Product        string
	User           string
	Rating         int
	Comment        string
	AdminComment   string
	Status         models.Status
	StatusEditable bool
}

// ApplyStatus records a saved status: the row shows it as static text.
func (r *FeedbackRow) ApplyStatus(s models.Status) {
	r.Status = s
	r.StatusEditable = false
}

type FeedbackTable struct {
	Rows []FeedbackRow
}

func feedbackRow(fb models.Feedback) FeedbackRow {
	return FeedbackRow{
		ID:           fb.ID,
		Product:      fb.ProductLabel(),
		User:         fb.UserLabel(),
		Rating:       fb.Rating,
		Comment:      fb.Comment,
		AdminComment: fb.AdminComment,
		Status:       fb.EffectiveStatus(),
	}
}

func UserFeedbackTable(list []models.Feedback) FeedbackTable {
	rows := make([]FeedbackRow, 0, len(list))
	for _, fb := range list {
		rows = append(rows, feedbackRow(fb))
	}
	return FeedbackTable{Rows: rows}
}

func AdminFeedbackTable(list []models.Feedback) FeedbackTable {
	rows := make([]FeedbackRow, 0, len(list))
	for _, fb := range list {
		r := feedbackRow(fb)
		r.StatusEditable = true
		rows = append(rows, r)
	}
	return FeedbackTable{Rows: rows}
}

func (t FeedbackTable) Row(id uint) (FeedbackRow, bool) {
	for _, r := range t.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return FeedbackRow{}, false
}

type ProductOption struct {
	ID   uint
	Name string
}

func ProductOptions(list []models.Product) []ProductOption {
	out := make([]ProductOption, 0, len(list))
	for _, p := range list {
		out = append(out, ProductOption{ID: p.ID, Name: p.Name})
	}
	return out
}

type UserPage struct {
	Products []ProductOption
	Table    FeedbackTable
}

type ProductRow struct {
	ID          uint
	Name        string
	Description string
	Price       string
	Cost        string
	Discount    string
	Image       string
}

func ProductRows(list []models.Product) []ProductRow {
	rows := make([]ProductRow, 0, len(list))
	for _, p := range list {
		r := ProductRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.StringFixed(2),
			Image:       p.Image,
		}
		if p.Cost != nil {
			r.Cost = p.Cost.StringFixed(2)
		}
		if p.Discount != nil {
			r.Discount = strconv.Itoa(*p.Discount) + "%"
		}
		rows = append(rows, r)
	}
	return rows
}

// ProductFormView backs the shared add/edit form. An empty ID means add.
type ProductFormView struct {
	Title       string
	ID          string
	Name        string
	Description string
	Price       string
	Cost        string
	Discount    string
	Category    string
	Image       string
}

func NewProductForm() *ProductFormView {
	return &ProductFormView{Title: "Add Product"}
}

func EditProductForm(p models.Product) *ProductFormView {
	v := &ProductFormView{
		Title:       "Edit Product",
		ID:          strconv.FormatUint(uint64(p.ID), 10),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Category:    p.Category,
		Image:       p.Image,
	}
	if p.Cost != nil {
		v.Cost = p.Cost.String()
	}
	if p.Discount != nil {
		v.Discount = strconv.Itoa(*p.Discount)
	}
	return v
}

type CatalogView struct {
	Products []ProductRow
	Form     *ProductFormView
}

type LoginView struct {
	Email string
}

type RegisterView struct {
	Name  string
	Email string
}

func StatusClass(s models.Status) string {
	switch s {
	case models.StatusResolved:
		return "status-resolved"
	case models.StatusRejected:
		return "status-rejected"
	default:
		return "status-pending"
	}
}
