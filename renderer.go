package antenna

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"runtime"
	"strings"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go.inout.gg/antenna/internal/inertiabase"
	"go.inout.gg/antenna/internal/inertiaheader"
)

const (
	// DefaultRootViewID is the default root HTML element ID to which
	// the Inertia.js app is mounted.
	DefaultRootViewID = "app"

	tracerName = "go.inout.gg/antenna"
)

// DefaultConcurrency is the default number of top-level props resolved concurrently.
var DefaultConcurrency = runtime.GOMAXPROCS(0) //nolint:gochecknoglobals

// ErrViewNotConfigured is returned when a page must be rendered as HTML
// but no View is available.
var ErrViewNotConfigured = errors.New("antenna: view is not configured")

// Page represents an Inertia.js page that is sent to the client.
type Page = inertiabase.Page

// VersionFunc returns the current asset version. An empty string means
// the application is not versioned.
type VersionFunc func(*http.Request) (string, error)

// StaticVersion returns a VersionFunc that always reports version.
func StaticVersion(version string) VersionFunc {
	return func(*http.Request) (string, error) { return version, nil }
}

// ShareFunc returns props shared with every page rendered for a request.
type ShareFunc func(*http.Request) Props

// Config configures the Renderer behavior and capabilities.
type Config struct {
	// View renders the HTML document on first visits.
	//
	// If nil, pages can only be rendered for Inertia requests unless a
	// session sets its own view.
	View View

	// SSRClient enables server-side rendering of pages.
	//
	// If nil, only client-side rendering is used.
	SSRClient SSRClient

	// Version reports the current asset version (e.g., build hash).
	//
	// If nil, the application is not versioned.
	Version VersionFunc

	// Share computes props shared with every page of a request.
	Share ShareFunc

	// TracerProvider is used to trace page rendering.
	//
	// Defaults to the global OpenTelemetry tracer provider.
	TracerProvider trace.TracerProvider

	// RootViewID is the HTML element ID where the Inertia app mounts.
	//
	// Defaults to "app" if not specified.
	RootViewID string

	// JSONMarshalOptions configures JSON serialization of pages.
	JSONMarshalOptions []json.Options

	// Concurrency sets the maximum number of top-level props resolved concurrently.
	// 1 resolves props sequentially, negative values mean no limit.
	//
	// Defaults to runtime.GOMAXPROCS(0).
	Concurrency int
}

func (c *Config) defaults() {
	c.RootViewID = cmp.Or(c.RootViewID, DefaultRootViewID)
	c.Concurrency = max(cmp.Or(c.Concurrency, DefaultConcurrency), 0)

	if c.Version == nil {
		c.Version = StaticVersion("")
	}

	if c.Share == nil {
		c.Share = func(*http.Request) Props { return nil }
	}

	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}

	debug.Assert(c.RootViewID != "", "RootViewID must be non-empty string")
}

// Renderer holds process-wide configuration and turns pages into responses.
//
// A Renderer is immutable after creation and safe for concurrent use.
// Per-request state lives in a Session.
type Renderer struct {
	view               View
	ssrClient          SSRClient
	version            VersionFunc
	share              ShareFunc
	tracer             trace.Tracer
	rootViewID         string
	jsonMarshalOptions []json.Options
	concurrency        int
}

// New creates a Renderer with the provided configuration.
//
// If config is nil, default values are used:
//   - RootViewID: "app"
//   - Concurrency: GOMAXPROCS(0)
//   - Version: unversioned
func New(config *Config) *Renderer {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	opts := make([]json.Options, 0, len(config.JSONMarshalOptions)+1)
	opts = append(opts, json.Deterministic(true))
	opts = append(opts, config.JSONMarshalOptions...)

	return &Renderer{
		view:               config.View,
		ssrClient:          config.SSRClient,
		version:            config.Version,
		share:              config.Share,
		tracer:             config.TracerProvider.Tracer(tracerName),
		rootViewID:         config.RootViewID,
		jsonMarshalOptions: opts,
		concurrency:        config.Concurrency,
	}
}

// Version returns the current asset version for the request.
func (r *Renderer) Version(req *http.Request) (string, error) {
	return r.version(req)
}

// RootViewID returns the ID of the element the client app mounts on.
func (r *Renderer) RootViewID() string { return r.rootViewID }

// respond turns a page into a JSON response for Inertia requests and into
// an HTML document otherwise.
func (r *Renderer) respond(
	ctx context.Context,
	req *http.Request,
	page *Page,
	view View,
	viewData map[string]any,
) (*Response, error) {
	if isInertiaRequest(req) {
		d("Received inertia request, sending JSON response for %s", page.Component)

		body, err := json.Marshal(page, r.jsonMarshalOptions...)
		if err != nil {
			return nil, fmt.Errorf("antenna: failed to encode JSON response: %w", err)
		}

		h := make(http.Header)
		h.Set(inertiaheader.HeaderXInertia, "true")
		h.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)

		return NewResponse(http.StatusOK, h, body), nil
	}

	if view == nil {
		return nil, ErrViewNotConfigured
	}

	data := ViewData{Request: req, Data: viewData, Head: "", Body: ""}

	if r.ssrClient != nil {
		ssrData, err := r.renderSSR(ctx, page)
		if err != nil {
			return nil, err
		}

		data.Head = template.HTML(ssrData.Head) //nolint:gosec
		data.Body = template.HTML(ssrData.Body) //nolint:gosec
	} else {
		body, err := r.makeRootView(page)
		if err != nil {
			return nil, fmt.Errorf("antenna: failed to create an HTML container: %w", err)
		}

		data.Body = body
	}

	html, err := view.RenderView(ctx, &data)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	h := make(http.Header)
	h.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeHTML)

	return NewResponse(http.StatusOK, h, []byte(html)), nil
}

func (r *Renderer) renderSSR(ctx context.Context, page *Page) (*SSRTemplateData, error) {
	ctx, span := r.tracer.Start(ctx, "antenna.ssr",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("antenna.component", page.Component)),
	)
	defer span.End()

	data, err := r.ssrClient.Render(ctx, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("antenna: failed to render SSR data: %w", err)
	}

	return data, nil
}

// makeRootView creates the element the client app mounts on, carrying
// the HTML-escaped page in its data-page attribute.
func (r *Renderer) makeRootView(page *Page) (template.HTML, error) {
	pageBytes, err := json.Marshal(page, r.jsonMarshalOptions...)
	if err != nil {
		return "", fmt.Errorf("antenna: an error occurred while rendering page: %w", err)
	}

	var w strings.Builder

	_ = must.Must(w.WriteString(`<div id="`))
	template.HTMLEscape(&w, []byte(r.rootViewID))
	_ = must.Must(w.WriteString(`" data-page="`))
	template.HTMLEscape(&w, pageBytes)
	_ = must.Must(w.WriteString(`"></div>`))

	//nolint:gosec
	return template.HTML(w.String()), nil
}

// isInertiaRequest checks if the request is made by Inertia.js.
func isInertiaRequest(req *http.Request) bool {
	return req.Header.Get(inertiaheader.HeaderXInertia) != ""
}

// partialReload reports whether the request is a partial reload of
// componentName and returns the requested keys.
//
// A non-empty X-Inertia-Partial-Data header makes the request partial even
// when it lists no key, in which case no prop is selected.
func partialReload(req *http.Request, componentName string) ([]string, bool) {
	raw := req.Header.Get(inertiaheader.HeaderXInertiaPartialData)
	if raw == "" {
		return nil, false
	}

	if req.Header.Get(inertiaheader.HeaderXInertiaPartialComponent) != componentName {
		return nil, false
	}

	return extractHeaderValueList(raw), true
}

// extractHeaderValueList extracts a list of values from a comma-separated header value.
// Blank entries are dropped.
func extractHeaderValueList(h string) []string {
	if h == "" {
		return nil
	}

	fields := strings.Split(h, ",")
	values := make([]string, 0, len(fields))

	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			values = append(values, f)
		}
	}

	return values
}
