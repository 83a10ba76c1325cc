package antenna

import (
	"bytes"
	"fmt"
	"net/http"

	"go.inout.gg/antenna/internal/inertiaheader"
)

var _ http.ResponseWriter = (*responseBuffer)(nil)

// Response is a fully materialized HTTP response.
//
// Responses are produced by PageResponse.Finalize and LocationResponse and
// are what the middleware negotiates on.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// NewResponse creates a Response. A nil header is replaced with an empty one.
func NewResponse(statusCode int, header http.Header, body []byte) *Response {
	if header == nil {
		header = make(http.Header)
	}

	return &Response{Header: header, Body: body, StatusCode: statusCode}
}

// IsInertia reports whether the response carries the X-Inertia marker header.
func (resp *Response) IsInertia() bool {
	return resp.Header.Get(inertiaheader.HeaderXInertia) != ""
}

// Empty reports whether the body is empty once surrounding whitespace is trimmed.
func (resp *Response) Empty() bool {
	return len(bytes.TrimSpace(resp.Body)) == 0
}

// Write writes the response to w. Headers already present on w are kept
// unless the response overrides them.
//
// If w is, or wraps, the middleware's buffer, the buffered output is
// replaced instead, so that the last written response wins.
func (resp *Response) Write(w http.ResponseWriter) error {
	if buf, ok := findBuffer(w); ok {
		buf.replace(resp)
		return nil
	}

	h := w.Header()
	for key, values := range resp.Header {
		h[key] = values
	}

	w.WriteHeader(resp.StatusCode)

	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			return fmt.Errorf("antenna: failed to write response body: %w", err)
		}
	}

	return nil
}

// findBuffer follows the Unwrap chain of w, as http.ResponseController
// does, looking for a responseBuffer.
func findBuffer(w http.ResponseWriter) (*responseBuffer, bool) {
	for {
		switch t := w.(type) {
		case *responseBuffer:
			return t, true
		case interface{ Unwrap() http.ResponseWriter }:
			w = t.Unwrap()
		default:
			return nil, false
		}
	}
}

// responseBuffer captures a handler's response so that it can be
// negotiated before anything reaches the client.
type responseBuffer struct {
	w           http.ResponseWriter
	header      http.Header
	body        bytes.Buffer
	statusCode  int
	wroteHeader bool
}

func newResponseBuffer(w http.ResponseWriter) *responseBuffer {
	//nolint:exhaustruct
	return &responseBuffer{w: w, header: make(http.Header)}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(statusCode int) {
	if b.wroteHeader {
		d("superfluous WriteHeader call with status %d", statusCode)
		return
	}

	b.statusCode = statusCode
	b.wroteHeader = true
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}

	return b.body.Write(p) //nolint:wrapcheck
}

// Unwrap returns the underlying writer, for use by http.ResponseController.
func (b *responseBuffer) Unwrap() http.ResponseWriter { return b.w }

// replace discards the body and status written so far and installs resp
// instead. Headers set before the call are kept unless resp overrides them.
func (b *responseBuffer) replace(resp *Response) {
	for key, values := range resp.Header {
		b.header[key] = values
	}

	b.body.Reset()
	b.body.Write(resp.Body)
	b.statusCode = resp.StatusCode
	b.wroteHeader = true
}

// response returns the captured response. A handler that wrote nothing
// yields an empty 200 response, as net/http would send.
func (b *responseBuffer) response() *Response {
	statusCode := b.statusCode
	if !b.wroteHeader {
		statusCode = http.StatusOK
	}

	return NewResponse(statusCode, b.header, bytes.Clone(b.body.Bytes()))
}
