package antenna

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PageResponse describes a page to render: the component, its props,
// custom view data and the view.
//
// Nothing is resolved until Finalize is called. Each call to Finalize
// resolves the props again, so non-deterministic props may produce
// different results.
type PageResponse struct {
	session   *Session
	view      View
	props     Props
	viewData  Props
	component string
}

// Component returns the name of the component to render.
func (p *PageResponse) Component() string { return p.component }

// With adds a prop. Dotted keys are assigned into nested maps.
func (p *PageResponse) With(key string, value any) *PageResponse {
	p.props = p.props.Set(key, value)
	return p
}

// WithProps shallowly merges props into the page props.
func (p *PageResponse) WithProps(props Props) *PageResponse {
	p.props = p.props.Merge(props)
	return p
}

// WithViewData adds custom data passed to the View.
// Dotted keys are assigned into nested maps.
func (p *PageResponse) WithViewData(key string, value any) *PageResponse {
	p.viewData = p.viewData.Set(key, value)
	return p
}

// WithViewDataProps shallowly merges data into the view data.
func (p *PageResponse) WithViewDataProps(data Props) *PageResponse {
	p.viewData = p.viewData.Merge(data)
	return p
}

// View overrides the View used to render this page.
func (p *PageResponse) View(view View) *PageResponse {
	p.view = view
	return p
}

// Page resolves the props and builds the page object for req.
//
// On a partial reload of this component only the requested props are
// resolved; otherwise every prop except lazy props is.
func (p *PageResponse) Page(req *http.Request) (*Page, error) {
	ctx := req.Context()
	only, partial := partialReload(req, p.component)

	props, err := resolveProps(ctx, p.props, only, partial, p.session.renderer.concurrency)
	if err != nil {
		return nil, err
	}

	version, err := p.session.renderer.Version(req)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	page := &Page{
		Component: p.component,
		Props:     props,
		URL:       req.URL.RequestURI(),
		Version:   nil,
	}

	if version != "" {
		page.Version = &version
	}

	return page, nil
}

// Finalize resolves the page and renders it: as JSON for Inertia requests
// and as an HTML document otherwise.
func (p *PageResponse) Finalize(req *http.Request) (*Response, error) {
	r := p.session.renderer

	ctx, span := r.tracer.Start(req.Context(), "antenna.render",
		trace.WithAttributes(
			attribute.String("antenna.component", p.component),
			attribute.Bool("antenna.inertia", isInertiaRequest(req)),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)

	resp, err := p.finalize(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	return resp, nil
}

func (p *PageResponse) finalize(req *http.Request) (*Response, error) {
	page, err := p.Page(req)
	if err != nil {
		return nil, err
	}

	return p.session.renderer.respond(req.Context(), req, page, p.view, p.viewData)
}

// Send finalizes the page and writes it to w.
//
// Under the middleware, a later Send replaces the output of an earlier one.
func (p *PageResponse) Send(w http.ResponseWriter, req *http.Request) error {
	resp, err := p.Finalize(req)
	if err != nil {
		return err
	}

	return resp.Write(w)
}
