package antenna

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"
)

var (
	_ View = (ViewFunc)(nil)
	_ View = (*templateView)(nil)
)

// ViewData is passed to the View when a page is rendered as an HTML document.
type ViewData struct {
	// Request is the request being served.
	Request *http.Request

	// Data is custom view data set with PageResponse.WithViewData.
	Data map[string]any

	// Head contains SSR-generated head elements (title, meta tags, etc.).
	// Empty when SSR is not configured.
	Head template.HTML

	// Body contains the root element the client mounts on, or the
	// SSR-rendered markup.
	Body template.HTML
}

// View renders the full HTML document for first visits.
type View interface {
	RenderView(context.Context, *ViewData) (string, error)
}

// ViewFunc is a function adapter that implements the View interface.
type ViewFunc func(context.Context, *ViewData) (string, error)

// RenderView calls fn.
func (fn ViewFunc) RenderView(ctx context.Context, data *ViewData) (string, error) {
	return fn(ctx, data)
}

type templateView struct {
	t *template.Template
}

// TemplateView returns a View executing t with a *ViewData.
//
// Within the template, use {{ .Head }} and {{ .Body }} to place the page
// and {{ .Data }} to access custom view data.
func TemplateView(t *template.Template) View {
	debug.Assert(t != nil, "expected t to be defined")

	return &templateView{t}
}

func (v *templateView) RenderView(_ context.Context, data *ViewData) (string, error) {
	var w strings.Builder
	if err := v.t.Execute(&w, data); err != nil {
		return "", fmt.Errorf("antenna: failed to execute HTML template: %w", err)
	}

	return w.String(), nil
}

// ViewFromFS creates a template View by loading an HTML template from a file system.
func ViewFromFS(fsys fs.FS, path string) (View, error) {
	debug.Assert(fsys != nil, "expected fsys to be defined")
	debug.Assert(path != "", "expected path to be defined")

	// The view executes the template named after the first matched file.
	t, err := template.ParseFS(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("antenna: failed to parse templates: %w", err)
	}

	return TemplateView(t), nil
}

// MustViewFromFS is like ViewFromFS, but panics if an error occurs.
func MustViewFromFS(fsys fs.FS, path string) View {
	return must.Must(ViewFromFS(fsys, path))
}
