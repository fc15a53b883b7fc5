package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feedback_web/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "register", "user", "admin", "products"}

type Options struct {
	HTMXSrc string
}

// Renderer implements echo.Renderer. Page names render inside the layout;
// any other name is looked up among the fragments.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

func New(opts Options) (*Renderer, error) {
	funcs := template.FuncMap{
		"htmxSrc":     func() string { return opts.HTMXSrc },
		"statusClass": StatusClass,
		"statuses":    func() []models.Status { return models.Statuses },
	}

	fragments, err := template.New("fragments").Funcs(funcs).ParseFS(templateFS, "templates/fragments.html")
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/fragments.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, fragments: fragments}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	if t, ok := r.pages[name]; ok {
		return t.ExecuteTemplate(w, "layout", data)
	}
	if r.fragments.Lookup(name) == nil {
		return fmt.Errorf("render: unknown template %q", name)
	}
	return r.fragments.ExecuteTemplate(w, name, data)
}
