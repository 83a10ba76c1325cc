package antenna

import (
	"net/http"

	"go.inout.gg/antenna/internal/inertiassr"
)

type (
	// SSRClient communicates with a server-side rendering service to pre-render pages.
	SSRClient = inertiassr.SSRClient

	// SSRFunc is a function adapter implementing SSRClient.
	SSRFunc = inertiassr.SSRFunc

	// SSRTemplateData contains the HTML head and body sections returned by SSR rendering.
	SSRTemplateData = inertiassr.SSRTemplateData
)

// NewHTTPSsrClient creates an HTTP-based SSR client that sends render requests to the specified URL.
// If client is nil, http.DefaultClient is used.
func NewHTTPSsrClient(url string, client *http.Client) SSRClient {
	if client == nil {
		client = http.DefaultClient
	}

	return inertiassr.NewHTTPSsrClient(url, client)
}
