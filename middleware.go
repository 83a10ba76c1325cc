package antenna

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/http/httperror"

	"go.inout.gg/antenna/internal/inertiaheader"
)

// https://inertiajs.com/redirects#303-response-code
//
//nolint:gochecknoglobals
var seeOtherMethods = []string{http.MethodPatch, http.MethodPut, http.MethodDelete}

// Outcome describes how the middleware treated a request.
type Outcome string

const (
	// OutcomePassthrough is reported for non-Inertia requests.
	OutcomePassthrough Outcome = "passthrough"

	// OutcomeRendered is reported when the handler's response is sent as is.
	OutcomeRendered Outcome = "rendered"

	// OutcomeVersionMismatch is reported when the client's asset version is stale.
	OutcomeVersionMismatch Outcome = "version_mismatch"

	// OutcomeEmptyResponse is reported when the handler produced an empty 200 response.
	OutcomeEmptyResponse Outcome = "empty_response"

	// OutcomeSeeOther is reported when a 302 was rewritten to a 303.
	OutcomeSeeOther Outcome = "see_other"
)

// ResponseHandler replaces a response during negotiation.
type ResponseHandler func(*http.Request, *Response) *Response

//nolint:gochecknoglobals
var (
	// DefaultEmptyResponseHandler redirects the client back to the
	// referring page, or to the current URL if there is no referer.
	DefaultEmptyResponseHandler ResponseHandler = func(r *http.Request, resp *Response) *Response {
		url := r.Header.Get(inertiaheader.HeaderReferer)
		if strings.TrimSpace(url) == "" {
			url = r.URL.RequestURI()
		}

		return LocationResponse(url, resp)
	}

	// DefaultVersionMismatchHandler makes the client visit the current URL
	// again to reload the page with fresh assets.
	DefaultVersionMismatchHandler ResponseHandler = func(r *http.Request, resp *Response) *Response {
		return LocationResponse(r.URL.RequestURI(), resp)
	}

	// DefaultErrorHandler handles errors raised while negotiating a response.
	DefaultErrorHandler httperror.ErrorHandler = httperror.ErrorHandlerFunc(httperror.DefaultErrorHandler)
)

// MiddlewareConfig configures the behavior of the Inertia.js middleware.
type MiddlewareConfig struct {
	// EmptyResponseHandler replaces a 200 response whose body is empty.
	//
	// If nil, defaults to DefaultEmptyResponseHandler.
	EmptyResponseHandler ResponseHandler

	// VersionMismatchHandler replaces the response of a GET request whose
	// asset version doesn't match the server's.
	//
	// If nil, defaults to DefaultVersionMismatchHandler.
	VersionMismatchHandler ResponseHandler

	// ErrorHandler handles errors that occur while computing the asset version.
	//
	// If nil, defaults to DefaultErrorHandler.
	ErrorHandler httperror.ErrorHandler

	// OnNegotiate, if set, is called once per request with its outcome.
	OnNegotiate func(*http.Request, Outcome)
}

func (m *MiddlewareConfig) defaults() {
	if m.EmptyResponseHandler == nil {
		m.EmptyResponseHandler = DefaultEmptyResponseHandler
	}

	if m.VersionMismatchHandler == nil {
		m.VersionMismatchHandler = DefaultVersionMismatchHandler
	}

	if m.ErrorHandler == nil {
		m.ErrorHandler = DefaultErrorHandler
	}

	if m.OnNegotiate == nil {
		m.OnNegotiate = func(*http.Request, Outcome) {}
	}

	debug.Assert(m.EmptyResponseHandler != nil, "EmptyResponseHandler must be set")
	debug.Assert(m.VersionMismatchHandler != nil, "VersionMismatchHandler must be set")
}

// NewMiddleware creates an HTTP middleware that enables Inertia.js protocol handling.
//
// Every request gets its own Session, available to handlers through
// FromRequest and used by Render. Responses to Inertia requests are
// buffered and negotiated before being sent:
//   - a GET request with a stale asset version gets a location response
//     to the current URL;
//   - an empty 200 response becomes a redirect to the referer;
//   - a 302 redirect after a PUT, PATCH or DELETE request becomes a 303.
//
// Non-Inertia requests pass through untouched apart from the Vary header.
func NewMiddleware(renderer *Renderer, opts ...func(*MiddlewareConfig)) func(http.Handler) http.Handler {
	debug.Assert(renderer != nil, "renderer must be set")

	//nolint:exhaustruct
	config := MiddlewareConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	config.defaults()

	handleError := httperror.WithErrorHandler(config.ErrorHandler)

	return func(next http.Handler) http.Handler {
		negotiated := handleError(httperror.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			sess, err := FromRequest(r)
			if err != nil {
				return err
			}

			buf := newResponseBuffer(w)
			next.ServeHTTP(buf, r)

			var version string
			if r.Method == http.MethodGet {
				version, err = sess.Version()
				if err != nil {
					return fmt.Errorf("antenna: failed to compute asset version: %w", err)
				}
			}

			resp, outcome := negotiate(&config, r, buf.response(), version)

			d("Negotiated %s %s: %s (%d)", r.Method, r.URL.Path, outcome, resp.StatusCode)
			config.OnNegotiate(r, outcome)

			return resp.Write(w)
		}))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = WithSession(r, renderer.NewSession(r))

			if !isInertiaRequest(r) {
				w.Header().Set(inertiaheader.HeaderVary, inertiaheader.HeaderXInertia)
				next.ServeHTTP(w, r)
				config.OnNegotiate(r, OutcomePassthrough)

				return
			}

			negotiated.ServeHTTP(w, r)
		})
	}
}

// negotiate post-processes the handler's response. Each step sees the
// response produced by the previous one.
//
// version is the current asset version; it is only consulted for GET requests.
func negotiate(config *MiddlewareConfig, r *http.Request, resp *Response, version string) (*Response, Outcome) {
	resp = NewResponse(resp.StatusCode, resp.Header.Clone(), resp.Body)
	resp.Header.Set(inertiaheader.HeaderVary, inertiaheader.HeaderXInertia)

	if !isInertiaRequest(r) {
		return resp, OutcomePassthrough
	}

	outcome := OutcomeRendered

	if r.Method == http.MethodGet && r.Header.Get(inertiaheader.HeaderXInertiaVersion) != version {
		d("Version mismatch: client %q, server %q",
			r.Header.Get(inertiaheader.HeaderXInertiaVersion), version)

		resp = config.VersionMismatchHandler(r, resp)
		outcome = OutcomeVersionMismatch
	}

	if resp.StatusCode == http.StatusOK && resp.Empty() {
		resp = config.EmptyResponseHandler(r, resp)
		outcome = OutcomeEmptyResponse
	}

	if resp.StatusCode == http.StatusFound && slices.Contains(seeOtherMethods, r.Method) {
		resp = NewResponse(http.StatusSeeOther, resp.Header, resp.Body)
		outcome = OutcomeSeeOther
	}

	return resp, outcome
}
