// Package views renders the HTML pages of the bookmark UI.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/flash"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	Index       = "index"
	Edit        = "edit"
	NotFound    = "404"
	ServerError = "500"
)

// ─── View models ───────────────────────────────────────────────────────────

type IndexData struct {
	Flashes []flash.Message
	Page    domain.Page
}

type EditData struct {
	Flashes  []flash.Message
	Bookmark *domain.Bookmark
}

type StaticData struct {
	Flashes []flash.Message
}

// ─── Renderer ──────────────────────────────────────────────────────────────

// Renderer holds one parsed template set per page, each extending the layout.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page against the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, 4)}
	for _, name := range []string{Index, Edit, NotFound, ServerError} {
		t, err := template.ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer and writes it with status.
// Nothing is written when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
