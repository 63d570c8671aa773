package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"thriftmart/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplatePage    = "page"
	TemplateResults = "results"
)

// Renderer satisfies echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// RenderResults renders the results section alone, for websocket pushes.
func (r *Renderer) RenderResults(pv PageView) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, TemplateResults, pv); err != nil {
		return "", errors.Internal("Failed to render results", err)
	}
	return buf.String(), nil
}

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400" viewBox="0 0 400 400">` +
	`<rect width="400" height="400" fill="#e5e7eb"/>` +
	`<path d="M150 250l40-50 30 35 20-25 60 70H100z" fill="#9ca3af"/>` +
	`<circle cx="250" cy="160" r="20" fill="#9ca3af"/></svg>`

// PlaceholderSVG serves the fallback product image.
func PlaceholderSVG(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(placeholderSVG))
}
