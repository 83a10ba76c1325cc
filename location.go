package antenna

import (
	"net/http"

	"go.inout.gg/antenna/internal/inertiaheader"
	"go.inout.gg/antenna/internal/inertiaredirect"
)

// LocationResponse returns a response forcing a full browser visit to url.
//
// If current is an Inertia response, the client is told to navigate with
// a 409 Conflict carrying X-Inertia-Location. Otherwise a plain 302 redirect
// is returned.
func LocationResponse(url string, current *Response) *Response {
	h := make(http.Header)

	if current != nil && current.IsInertia() {
		h.Set(inertiaheader.HeaderXInertiaLocation, url)
		return NewResponse(http.StatusConflict, h, nil)
	}

	return redirectResponse(url)
}

// redirectResponse returns a plain 302 redirect to url.
func redirectResponse(url string) *Response {
	h := make(http.Header)
	h.Set(inertiaheader.HeaderLocation, url)

	return NewResponse(http.StatusFound, h, nil)
}

// Location redirects to an external URL outside of the Inertia app.
//
// For Inertia requests, it uses a 409 Conflict response with X-Inertia-Location header.
// For regular requests, it performs a standard HTTP redirect.
func Location(w http.ResponseWriter, r *http.Request, url string) {
	if isInertiaRequest(r) {
		w.Header().Del(inertiaheader.HeaderVary)
		w.Header().Del(inertiaheader.HeaderXInertia)

		h := make(http.Header)
		h.Set(inertiaheader.HeaderXInertiaLocation, url)

		_ = NewResponse(http.StatusConflict, h, nil).Write(w) // no body, cannot fail

		return
	}

	inertiaredirect.Redirect(w, r, url)
}

// Redirect sends a redirect response to a page of the Inertia app.
//
// GET requests are redirected with 302, other methods with 303.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	inertiaredirect.Redirect(w, r, url)
}
