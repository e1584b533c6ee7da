// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	Login      = "login"
	Dashboard  = "dashboard"
	EditTodo   = "edit"
	Categories = "categories"
	Settings   = "settings"
	Error      = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Page is the data every template receives.
type Page struct {
	Title         string
	Flashes       []Flash
	Authenticated bool
	Data          interface{}
}

var funcs = template.FuncMap{
	"date": domain.FormatDate,
	"day": func(t time.Time) string {
		return t.Format(domain.DateLayout)
	},
	"stamp": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
	"selected": func(id *int64, want int64) bool {
		return id != nil && *id == want
	},
	"priorities": func() []domain.Priority {
		return []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow}
	},
}

// Renderer holds one parsed template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range []string{Login, Dashboard, EditTodo, Categories, Settings, Error} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// MustNew panics if the embedded templates do not parse.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes the named page. The page is rendered to a buffer first so a
// template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
