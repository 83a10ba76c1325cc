package antenna

import (
	"context"
	"errors"
	"net/http"

	"go.inout.gg/foundations/must"
)

type ctxKey struct{}

//nolint:gochecknoglobals
var kCtxKey = ctxKey{}

// ErrMissingMiddleware is returned when a request has no Session attached.
var ErrMissingMiddleware = errors.New(
	"antenna: session not found in request context - did you forget to use the middleware?",
)

// Session is the per-request rendering state: props shared across the
// pages of a request, the view, and the process-wide Renderer.
//
// A Session is created by the middleware for every request and must not
// be shared between requests.
type Session struct {
	renderer *Renderer
	req      *http.Request
	view     View
	shared   Props
}

// NewSession creates a Session for req, seeded with the renderer's shared props.
func (r *Renderer) NewSession(req *http.Request) *Session {
	return &Session{
		renderer: r,
		req:      req,
		view:     r.view,
		shared:   r.share(req).Clone(),
	}
}

// FromRequest returns the Session attached to r by the middleware.
func FromRequest(r *http.Request) (*Session, error) {
	return FromContext(r.Context())
}

// FromContext returns the Session stored in ctx.
func FromContext(ctx context.Context) (*Session, error) {
	sess, ok := ctx.Value(kCtxKey).(*Session)
	if !ok || sess == nil {
		return nil, ErrMissingMiddleware
	}

	return sess, nil
}

// WithSession returns a copy of r carrying sess.
func WithSession(r *http.Request, sess *Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), kCtxKey, sess))
}

// Share shares a prop with every page rendered during this request.
// Dotted keys are assigned into nested maps.
func (s *Session) Share(key string, value any) {
	s.shared = s.shared.Set(key, value)
}

// ShareProps shallowly merges props into the shared props; for each
// top-level key the new value wins.
func (s *Session) ShareProps(props Props) {
	s.shared = s.shared.Merge(props)
}

// Shared returns the shared prop stored under a possibly dotted key.
func (s *Session) Shared(key string) (any, bool) {
	return s.shared.Get(key)
}

// SharedProps returns a copy of all shared props.
func (s *Session) SharedProps() Props { return s.shared.Clone() }

// FlushShared removes all shared props.
func (s *Session) FlushShared() { s.shared = Props{} }

// Version returns the current asset version.
func (s *Session) Version() (string, error) {
	return s.renderer.Version(s.req)
}

// RootViewID returns the ID of the element the client app mounts on.
func (s *Session) RootViewID() string { return s.renderer.rootViewID }

// SetView overrides the View for pages rendered during this request.
func (s *Session) SetView(view View) { s.view = view }

// Render creates a PageResponse for component. The page props are the
// shared props overlaid with props.
func (s *Session) Render(component string, props Props) *PageResponse {
	return &PageResponse{
		session:   s,
		component: component,
		props:     s.shared.Merge(props),
		viewData:  Props{},
		view:      s.view,
	}
}

// Render renders component with props and writes the result to w.
//
// It requires the middleware to be installed in the request chain.
func Render(w http.ResponseWriter, r *http.Request, component string, props Props) error {
	sess, err := FromRequest(r)
	if err != nil {
		return err
	}

	return sess.Render(component, props).Send(w, r)
}

// MustRender is like Render, but panics if an error occurs.
func MustRender(w http.ResponseWriter, r *http.Request, component string, props Props) {
	must.Must1(Render(w, r, component, props))
}

// Share shares a prop with every page rendered during the request.
func Share(r *http.Request, key string, value any) error {
	sess, err := FromRequest(r)
	if err != nil {
		return err
	}

	sess.Share(key, value)

	return nil
}
