package inertiassr

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"

	"go.inout.gg/antenna/internal/inertiabase"
	"go.inout.gg/antenna/internal/inertiaheader"
)

var (
	_ SSRClient = (*ssr)(nil)
	_ SSRClient = (SSRFunc)(nil)
)

//nolint:gochecknoglobals
var d = debug.Debuglog("antenna/ssr")

// SSRTemplateData is the result of server-side rendering a page.
type SSRTemplateData struct {
	Head string `json:"head"`
	Body string `json:"body"`
}

//go:generate mockgen -destination ssr_mock.go -package inertiassr . SSRClient
type SSRClient interface {
	// Render renders the given page into its head and body sections.
	Render(context.Context, *inertiabase.Page) (*SSRTemplateData, error)
}

// SSRFunc is a function adapter implementing SSRClient.
type SSRFunc func(context.Context, *inertiabase.Page) (*SSRTemplateData, error)

// Render calls fn.
func (fn SSRFunc) Render(ctx context.Context, p *inertiabase.Page) (*SSRTemplateData, error) {
	return fn(ctx, p)
}

// ssr renders pages by POSTing the JSON page object to an SSR service,
// which answers 200 with a {"head": ..., "body": ...} JSON document.
type ssr struct {
	client *http.Client
	url    string
}

// NewHTTPSsrClient returns an SSRClient POSTing pages to url with client.
// Any status other than 200 is reported as an error.
func NewHTTPSsrClient(url string, client *http.Client) SSRClient {
	debug.Assert(url != "", "url must be provided")
	debug.Assert(client != nil, "client must be provided")

	return &ssr{client, url}
}

func (s *ssr) Render(ctx context.Context, p *inertiabase.Page) (*SSRTemplateData, error) {
	debug.Assert(p != nil, "page must be set")

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("antenna: failed to marshal page: %w", err)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("antenna: failed to create HTTP request: %w", err)
	}

	r.Header.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)

	d("Rendering component %s via %s", p.Component, s.url)

	resp, err := s.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("antenna: failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("antenna: unexpected HTTP status code: %d", resp.StatusCode)
	}

	var data SSRTemplateData
	if err := json.UnmarshalRead(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("antenna: failed to decode JSON response: %w", err)
	}

	return &data, nil
}
