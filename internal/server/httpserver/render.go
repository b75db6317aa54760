package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const baseTemplate = "base.html"

var pages = []string{
	"home.html",
	"login.html",
	"register.html",
	"history.html",
	"dashboard.html",
	"chat.html",
}

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
}

// Renderer executes pages inside the shared base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the base layout up front.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.New(baseTemplate).Funcs(funcs).
			ParseFS(templateFS, "templates/"+baseTemplate, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Execute renders page name into a buffer so a template error never
// produces a half-written response.
func (r *Renderer) Execute(name string, data any) (*bytes.Buffer, error) {
	tmpl, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseTemplate, data); err != nil {
		return nil, err
	}
	return &buf, nil
}
