package inertiatest

import (
	"cmp"
	"net/http"
	"net/http/httptest"
	"strings"

	"go.inout.gg/antenna/internal/inertiaheader"
)

// RequestConfig describes the Inertia headers of a test request.
// Zero fields leave their header unset.
type RequestConfig struct {
	Version          string   // X-Inertia-Version
	PartialComponent string   // X-Inertia-Partial-Component
	Referer          string   // Referer
	ErrorBag         string   // X-Inertia-Error-Bag
	Whitelist        []string // X-Inertia-Partial-Data, comma-joined
	Inertia          bool     // X-Inertia: true
}

// NewRequest creates a new request with an empty body.
func NewRequest(
	method string,
	target string,
	config *RequestConfig,
) (*http.Request, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(method, target, nil)

	//nolint:exhaustruct
	config = cmp.Or(config, &RequestConfig{})

	if config.Inertia {
		r.Header.Set(inertiaheader.HeaderXInertia, "true")
	}

	if config.Version != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaVersion, config.Version)
	}

	if len(config.Whitelist) > 0 {
		r.Header.Set(inertiaheader.HeaderXInertiaPartialData, strings.Join(config.Whitelist, ","))
	}

	if config.PartialComponent != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaPartialComponent, config.PartialComponent)
	}

	if config.Referer != "" {
		r.Header.Set(inertiaheader.HeaderReferer, config.Referer)
	}

	if config.ErrorBag != "" {
		r.Header.Set(inertiaheader.HeaderXInertiaErrorBag, config.ErrorBag)
	}

	return r, httptest.NewRecorder()
}
