// inertiaframe implements an opinionated framework around Go's HTTP and the
// antenna library, abstracting out protocol-level details and providing
// a simple message-based API.
package inertiaframe

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-playground/form/v4"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/http/httperror"
	"go.inout.gg/foundations/http/httpmiddleware"
	"go.inout.gg/foundations/must"

	"go.inout.gg/antenna"
	"go.inout.gg/antenna/internal/inertiaheader"
)

var d = debug.Debuglog("inertiaframe") //nolint:gochecknoglobals

var DefaultFormDecoder = form.NewDecoder() //nolint:gochecknoglobals

var ErrEmptyResponse = errors.New("inertiaframe: empty response")

// ErrorsProp is the name of the prop holding flashed validation errors.
const ErrorsProp = "errors"

var (
	_ RawResponseWriter = (*redirectMessage)(nil)
	_ RawResponseWriter = (*redirectBackMessage)(nil)
	_ RawResponseWriter = (*externalRedirectMessage)(nil)

	_ Proper = (*pageMessage)(nil)
)

// RedirectBack redirects the user back to the previous page.
//
// The previous page is determined from the Referer header and
// falls back to the last visited page if the header is not present.
func RedirectBack(w http.ResponseWriter, r *http.Request) {
	referer := r.Header.Get(inertiaheader.HeaderReferer)
	if referer == "" {
		f, err := flashFromRequest(r)
		referer = "/"

		if err != nil {
			d("failed to get flash from request, using default '/'")
		} else if path := f.Referer(); path != "" {
			referer = path
		}
	}

	d("redirecting back to %s", referer)

	antenna.Redirect(w, r, referer)
}

// ErrorBagFromRequest returns the error bag requested by the client,
// or an empty string for the default bag.
func ErrorBagFromRequest(r *http.Request) string {
	return r.Header.Get(inertiaheader.HeaderXInertiaErrorBag)
}

// DefaultValidationErrorHandler is a default error handler for validation errors.
//
// It flashes the errors and redirects back to the previous page.
func DefaultValidationErrorHandler(w http.ResponseWriter, r *http.Request, errorer ValidationErrorer) {
	f, err := flashFromRequest(r)
	if err != nil {
		//nolint:exhaustruct
		f = &flash{}
	}

	f.ErrorBag = ErrorBagFromRequest(r)
	f.Errors = errorMap(errorer)

	must.Must1(f.Save(w))

	RedirectBack(w, r)
}

//nolint:gochecknoglobals
var DefaultErrorHandler httperror.ErrorHandler = httperror.ErrorHandlerFunc(
	func(w http.ResponseWriter, r *http.Request, err error) {
		var errorer ValidationErrorer
		if errors.As(err, &errorer) {
			DefaultValidationErrorHandler(w, r, errorer)
			return
		}

		httperror.DefaultErrorHandler(w, r, err)
	},
)

const (
	mediaTypeJSON      = "application/json"
	mediaTypeForm      = "application/x-www-form-urlencoded"
	mediaTypeMultipart = "multipart/form-data"
)

// Request is a request sent by a client.
type Request[M any] struct {
	// Message is a decoded message sent by a client.
	//
	// Message can implement RawRequestExtractor to intercept request data extraction.
	Message *M

	// Request is the underlying HTTP request.
	Request *http.Request
}

func newRequest[M any](m M, r *http.Request) *Request[M] {
	return &Request[M]{Message: &m, Request: r}
}

// Response is a response sent by a server to a client.
//
// Use NewResponse to create a new response.
type Response struct {
	m        Message
	viewData antenna.Props
}

// NewResponse creates a new response.
//
// The msg can be a struct with props tagged with `inertia:"key"`,
// a message implementing Proper, or a message implementing
// RawResponseWriter for custom response handling.
func NewResponse(msg Message) *Response {
	return &Response{m: msg, viewData: nil}
}

// WithViewData adds custom data passed to the view when the page is
// rendered as an HTML document.
func (resp *Response) WithViewData(key string, value any) *Response {
	resp.viewData = resp.viewData.Set(key, value)
	return resp
}

type pageMessage struct {
	props     antenna.Props
	component string
}

func (m *pageMessage) Component() string    { return m.component }
func (m *pageMessage) Props() antenna.Props { return m.props }

// NewPageResponse creates a new response rendering component with props.
func NewPageResponse(component string, props antenna.Props) *Response {
	return NewResponse(&pageMessage{component: component, props: props})
}

type externalRedirectMessage struct{ url string }

func (m *externalRedirectMessage) Component() string { return "" }

func (m *externalRedirectMessage) Write(w http.ResponseWriter, r *http.Request) error {
	antenna.Location(w, r, m.url)
	return nil
}

// NewExternalRedirectResponse creates a new response that redirects the client to an
// external URL.
//
// External URL is any URL that is not powered by Inertia.js.
func NewExternalRedirectResponse(url string) *Response {
	return NewResponse(&externalRedirectMessage{url: url})
}

type redirectBackMessage struct{}

func (m *redirectBackMessage) Component() string { return "" }

func (m *redirectBackMessage) Write(w http.ResponseWriter, r *http.Request) error {
	RedirectBack(w, r)
	return nil
}

// NewRedirectBackResponse creates a new response that redirects the client
// back to the previous page.
func NewRedirectBackResponse() *Response {
	return NewResponse(&redirectBackMessage{})
}

type redirectMessage struct{ url string }

func (m *redirectMessage) Component() string { return "" }

func (m *redirectMessage) Write(w http.ResponseWriter, r *http.Request) error {
	antenna.Redirect(w, r, m.url)
	return nil
}

// NewRedirectResponse creates a new response that redirects the client to the
// specified URL.
func NewRedirectResponse(url string) *Response {
	return NewResponse(&redirectMessage{url: url})
}

// Message is used to send a message to the client. It can be
// used to guide the client to render a component or redirect to a
// specific URL.
//
// The Component() method must return a non-empty string.
type Message interface {
	// Component returns the component name to be rendered.
	//
	// The handler panics if Component returns an empty string,
	// unless the message implements RawResponseWriter.
	Component() string
}

// Proper is a message that provides its props directly instead of
// through struct tags.
type Proper interface {
	Props() antenna.Props
}

// RawRequestExtractor allows to extract data from the raw http.Request.
// If a request message implements RawRequestExtractor, the default
// behavior is prevented and the extractor is used instead to
// extract the request data.
type RawRequestExtractor interface {
	// Extract extracts data from the raw http.Request.
	Extract(*http.Request) error
}

// RawResponseWriter allows to write data to the http.ResponseWriter.
// If a response message implements RawResponseWriter, the default
// behavior is prevented and the writer is used instead to
// write the response data.
type RawResponseWriter interface {
	Write(http.ResponseWriter, *http.Request) error
}

// Meta is the metadata of an endpoint.
type Meta struct {
	// HTTP method of the endpoint.
	Method string

	// HTTP path of the endpoint. It supports the same path pattern as
	// the http.ServeMux.
	Path string
}

// Validator validates decoded request messages.
type Validator interface {
	Validate(any) error
}

// ValidatorFunc is an adapter to allow the use of ordinary functions as Validator.
type ValidatorFunc func(any) error

func (f ValidatorFunc) Validate(v any) error { return f(v) }

type Endpoint[R any] interface {
	// Execute executes the endpoint for the given request.
	//
	// If the returned error is a ValidationErrorer, the errors are
	// flashed and the client is redirected back.
	Execute(context.Context, *Request[R]) (*Response, error)

	// Meta returns the metadata of the endpoint. It is used to configure
	// the endpoint's behavior when mounted on a given mux.
	Meta() *Meta
}

// Mux is a universal interface for routing HTTP requests.
type Mux interface {
	// Handle handles the given HTTP request at the specified path.
	//
	// The pattern is a string following the http.ServeMux format:
	// "<http-method> <path>".
	Handle(pattern string, h http.Handler)
}

type MountOpts struct {
	Middleware           httpmiddleware.Middleware
	Validator            Validator
	ErrorHandler         httperror.ErrorHandler
	FormDecoder          *form.Decoder
	JSONUnmarshalOptions []json.Options
}

// Mount mounts the endpoint on the given mux.
//
// Endpoint must specify the HTTP method and path via Endpoint.Meta().
// The mounted endpoint automatically handles requests with JSON and form
// data. The antenna middleware must run before the endpoint.
//
// The message M is validated using the validator specified in the MountOpts,
// if any. Validation errors are automatically handled and passed to the client
// according to Inertia protocol.
func Mount[M any](mux Mux, e Endpoint[M], opts *MountOpts) {
	if opts == nil {
		//nolint:exhaustruct
		opts = &MountOpts{}
	}

	opts.ErrorHandler = cmp.Or(opts.ErrorHandler, DefaultErrorHandler)
	opts.FormDecoder = cmp.Or(opts.FormDecoder, DefaultFormDecoder)

	debug.Assert(e != nil, "Endpoint must not be nil")

	m := e.Meta()

	debug.Assert(m.Method != "", "Endpoint must specify the HTTP method")
	debug.Assert(m.Path != "", "Endpoint must specify the HTTP path")

	pattern := fmt.Sprintf("%s %s", m.Method, m.Path)

	d("Mounting endpoint on pattern: %s", pattern)

	h := newHandler(e, opts.ErrorHandler, opts.Validator, opts.FormDecoder, opts.JSONUnmarshalOptions)
	if opts.Middleware != nil {
		h = opts.Middleware.Middleware(h)
	}

	mux.Handle(pattern, h)
}

// newHandler creates a new http.Handler for the given endpoint.
func newHandler[M any](
	endpoint Endpoint[M],
	errorHandler httperror.ErrorHandler,
	validator Validator,
	formDecoder *form.Decoder,
	jsonUnmarshalOptions []json.Options,
) http.Handler {
	handleError := httperror.WithErrorHandler(errorHandler)

	return handleError(httperror.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		var msg M

		ctx := r.Context()

		if err := decodeRequest(r, &msg, formDecoder, jsonUnmarshalOptions); err != nil {
			return err
		}

		if validator != nil {
			if err := validator.Validate(&msg); err != nil {
				d("failed to validate request")

				return fmt.Errorf("inertiaframe: failed to validate request: %w", err)
			}
		}

		resp, err := endpoint.Execute(ctx, newRequest(msg, r))
		if err != nil {
			return fmt.Errorf("inertiaframe: failed to execute: %w", err)
		}

		if resp == nil || resp.m == nil {
			d("received empty response")

			return ErrEmptyResponse
		}

		if writer, ok := resp.m.(RawResponseWriter); ok {
			if err := writer.Write(w, r); err != nil {
				return fmt.Errorf("inertiaframe: failed to write response: %w", err)
			}

			return nil
		}

		return render(w, r, resp)
	}))
}

// decodeRequest decodes the request data into msg.
//
// GET requests are decoded from the query string, other requests from
// a JSON or form body.
func decodeRequest(
	r *http.Request,
	msg any,
	formDecoder *form.Decoder,
	jsonUnmarshalOptions []json.Options,
) error {
	if extract, ok := msg.(RawRequestExtractor); ok {
		if err := extract.Extract(r); err != nil {
			return fmt.Errorf("inertiaframe: failed to extract request data: %w", err)
		}

		return nil
	}

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		query := r.URL.Query()
		if len(query) == 0 {
			return nil
		}

		if err := formDecoder.Decode(msg, query); err != nil {
			return fmt.Errorf("inertiaframe: failed to decode query: %w", err)
		}

		return nil
	}

	contentType := r.Header.Get(inertiaheader.HeaderContentType)
	if contentType == "" {
		return nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("inertiaframe: failed to parse Content-Type header: %w", err)
	}

	// Inertia sends either JSON or form data.
	switch mediaType {
	case mediaTypeJSON:
		d("received JSON request")

		if err := json.UnmarshalRead(r.Body, msg, jsonUnmarshalOptions...); err != nil {
			return fmt.Errorf("inertiaframe: failed to decode request: %w", err)
		}
	case mediaTypeForm, mediaTypeMultipart:
		d("received form request")

		if mediaType == mediaTypeMultipart {
			if err := r.ParseMultipartForm(32 << 20); err != nil { //nolint:mnd
				return fmt.Errorf("inertiaframe: failed to parse multipart form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return fmt.Errorf("inertiaframe: failed to parse form data: %w", err)
		}

		if err := formDecoder.Decode(msg, r.Form); err != nil {
			return fmt.Errorf("inertiaframe: failed to decode form data: %w", err)
		}
	default:
		d("unsupported media type %s, skipping decoding", mediaType)
	}

	return nil
}

// render renders the page described by resp, sharing flashed
// validation errors with it.
func render(w http.ResponseWriter, r *http.Request, resp *Response) error {
	sess, err := antenna.FromRequest(r)
	if err != nil {
		return fmt.Errorf("inertiaframe: %w", err)
	}

	props, err := extractProps(resp.m)
	if err != nil {
		return fmt.Errorf("inertiaframe: failed to extract props: %w", err)
	}

	f, err := flashFromRequest(r)
	if err != nil {
		d("discarding malformed flash: %v", err)

		//nolint:exhaustruct
		f = &flash{}
		f.Clear(w, r)
	}

	errs, bag := f.takeErrors()
	sess.Share(ErrorsProp, errorsProp(errs, bag))

	if r.Method == http.MethodGet {
		f.Path = r.URL.RequestURI()
	}

	if err := f.Save(w); err != nil {
		return err
	}

	componentName := resp.m.Component()
	debug.Assert(componentName != "", "component must not be empty, when using non RawResponseWriter")

	if err := sess.Render(componentName, props).WithViewDataProps(resp.viewData).Send(w, r); err != nil {
		return fmt.Errorf("inertiaframe: failed to render: %w", err)
	}

	return nil
}

// errorsProp shapes flashed errors into the errors prop, nesting them
// under bag when a named error bag was requested.
func errorsProp(errs map[string]string, bag string) map[string]any {
	out := make(map[string]any, len(errs))
	for field, msg := range errs {
		out[field] = msg
	}

	if bag != "" {
		return map[string]any{bag: out}
	}

	return out
}

// extractProps extracts props from the given message.
//
// If the message implements the Proper interface,
// it returns the props from the message.
// Otherwise, it attempts to parse the message as a struct and
// returns the props from the struct.
func extractProps(msg any) (antenna.Props, error) {
	if proper, ok := msg.(Proper); ok {
		return proper.Props(), nil
	}

	props, err := antenna.ParseStruct(msg)
	if err != nil {
		return nil, fmt.Errorf("inertiaframe: failed to parse props: %w", err)
	}

	return props, nil
}
