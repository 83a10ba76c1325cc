package antenna

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.inout.gg/foundations/http/httperror"

	"go.inout.gg/antenna/internal/inertiaheader"
	"go.inout.gg/antenna/internal/inertiatest"
)

func newMiddleware(h http.Handler, renderer *Renderer, opts ...func(*MiddlewareConfig)) http.Handler {
	if renderer == nil {
		renderer = New(&Config{View: testView})
	}

	mux := http.NewServeMux()
	middleware := NewMiddleware(renderer, opts...)(mux)

	mux.Handle("/inertia", h)

	return middleware
}

func renderHandler(component string, props Props) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MustRender(w, r, component, props)
	})
}

func TestMiddleware_RedirectToSeeOther(t *testing.T) {
	t.Parallel()

	redirectHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "kept")
		http.Redirect(w, r, "/somewhere", http.StatusFound)
	})

	testCases := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{"PATCH should redirect with 303", http.MethodPatch, http.StatusSeeOther},
		{"PUT should redirect with 303", http.MethodPut, http.StatusSeeOther},
		{"DELETE should redirect with 303", http.MethodDelete, http.StatusSeeOther},
		{"GET should redirect with 302", http.MethodGet, http.StatusFound},
		{"POST should redirect with 302", http.MethodPost, http.StatusFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r, w := inertiatest.NewRequest(tc.method, "/inertia", &inertiatest.RequestConfig{
				Inertia: true,
			})

			middleware := newMiddleware(redirectHandler, nil)
			middleware.ServeHTTP(w, r)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, "/somewhere", w.Header().Get("Location"))
			assert.Equal(t, "kept", w.Header().Get("X-Custom"))
		})
	}
}

func TestMiddleware_NonInertiaRequestPassesThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		handler        http.HandlerFunc
		name           string
		method         string
		expectedStatus int
	}{
		{
			name:           "empty response is kept",
			method:         http.MethodGet,
			handler:        func(http.ResponseWriter, *http.Request) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "302 after DELETE is kept",
			method: http.MethodDelete,
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/somewhere", http.StatusFound)
			},
			expectedStatus: http.StatusFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var outcome Outcome

			r, w := inertiatest.NewRequest(tt.method, "/inertia", &inertiatest.RequestConfig{Version: "stale"})
			newMiddleware(tt.handler, New(&Config{Version: StaticVersion("fresh")}),
				func(c *MiddlewareConfig) { c.OnNegotiate = func(_ *http.Request, o Outcome) { outcome = o } },
			).ServeHTTP(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, inertiaheader.HeaderXInertia, w.Header().Get(inertiaheader.HeaderVary))
			assert.Equal(t, OutcomePassthrough, outcome)
		})
	}
}

func TestMiddleware_VersionMismatch(t *testing.T) {
	t.Parallel()

	renderer := New(&Config{Version: StaticVersion("v2")})

	t.Run("inertia response becomes 409", func(t *testing.T) {
		t.Parallel()

		r, w := inertiatest.NewRequest(http.MethodGet, "/inertia?page=2", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "v1",
		})

		newMiddleware(renderHandler("Users/Index", nil), renderer).ServeHTTP(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "/inertia?page=2", w.Header().Get(inertiaheader.HeaderXInertiaLocation))
		assert.Empty(t, w.Body.String())
	})

	t.Run("plain response becomes 302", func(t *testing.T) {
		t.Parallel()

		r, w := inertiatest.NewRequest(http.MethodGet, "/inertia?page=2", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "v1",
		})

		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "hello")
		})
		newMiddleware(handler, renderer).ServeHTTP(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/inertia?page=2", w.Header().Get("Location"))
	})

	t.Run("non-GET requests are not checked", func(t *testing.T) {
		t.Parallel()

		r, w := inertiatest.NewRequest(http.MethodPost, "/inertia", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "v1",
		})

		newMiddleware(renderHandler("Users/Index", nil), renderer).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get(inertiaheader.HeaderXInertia))
	})

	t.Run("matching version renders", func(t *testing.T) {
		t.Parallel()

		r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "v2",
		})

		newMiddleware(renderHandler("Users/Index", Props{"count": 3}), renderer).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, inertiaheader.HeaderXInertia, w.Header().Get(inertiaheader.HeaderVary))
		assert.JSONEq(t,
			`{"component":"Users/Index","props":{"count":3},"url":"/inertia","version":"v2"}`,
			w.Body.String(),
		)
	})

	t.Run("unversioned app with no client version", func(t *testing.T) {
		t.Parallel()

		r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{Inertia: true})

		newMiddleware(renderHandler("Home", nil), nil).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMiddleware_EmptyResponse(t *testing.T) {
	t.Parallel()

	emptyHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, " \n\t ")
	})

	tests := []struct {
		name     string
		referer  string
		expected string
	}{
		{name: "redirects to referer", referer: "https://example.com/prev", expected: "https://example.com/prev"},
		{name: "falls back to the request URL", referer: "", expected: "/inertia?tab=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, w := inertiatest.NewRequest(http.MethodGet, "/inertia?tab=1", &inertiatest.RequestConfig{
				Inertia: true,
				Referer: tt.referer,
			})

			newMiddleware(emptyHandler, nil).ServeHTTP(w, r)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.expected, w.Header().Get("Location"))
		})
	}
}

func TestMiddleware_LastRenderWins(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MustRender(w, r, "First", Props{"n": 1})
		MustRender(w, r, "Second", Props{"n": 2})
	})

	r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{Inertia: true})
	newMiddleware(handler, nil).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var page map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "Second", page["component"])
}

func TestMiddleware_LastRenderWinsThroughWrappedWriter(t *testing.T) {
	t.Parallel()

	renderTwice := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MustRender(w, r, "First", Props{"n": 1})
		MustRender(w, r, "Second", Props{"n": 2})
	})

	wrap := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(middleware.NewWrapResponseWriter(w, r.ProtoMajor), r)
		})
	}

	r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{Inertia: true})
	newMiddleware(wrap(renderTwice), nil).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var page map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page), "body must hold a single page: %s", w.Body.String())
	assert.Equal(t, "Second", page["component"])
	assert.Equal(t, map[string]any{"n": float64(2)}, page["props"])
}

func TestMiddleware_SharedProps(t *testing.T) {
	t.Parallel()

	renderer := New(&Config{
		Share: func(r *http.Request) Props {
			return Props{"app": "antenna", "path": r.URL.Path}
		},
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, Share(r, "auth.user", "ada"))
		MustRender(w, r, "Home", Props{"app": "overridden"})
	})

	r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{Inertia: true})
	newMiddleware(handler, renderer).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Props map[string]any `json:"props"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, map[string]any{
		"app":  "overridden",
		"path": "/inertia",
		"auth": map[string]any{"user": "ada"},
	}, page.Props)
}

func TestMiddleware_Location(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Location(w, r, "https://example.com/external")
	})

	r, w := inertiatest.NewRequest(http.MethodPost, "/inertia", &inertiatest.RequestConfig{Inertia: true})
	newMiddleware(handler, nil).ServeHTTP(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "https://example.com/external", w.Header().Get(inertiaheader.HeaderXInertiaLocation))
}

func TestMiddleware_VersionError(t *testing.T) {
	t.Parallel()

	errVersion := errors.New("version unavailable")

	var (
		mu     sync.Mutex
		gotErr error
	)

	renderer := New(&Config{Version: func(*http.Request) (string, error) { return "", errVersion }})
	errorHandler := httperror.ErrorHandlerFunc(func(w http.ResponseWriter, _ *http.Request, err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()

		w.WriteHeader(http.StatusServiceUnavailable)
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "body")
	})

	r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{Inertia: true})
	newMiddleware(handler, renderer, func(c *MiddlewareConfig) { c.ErrorHandler = errorHandler }).ServeHTTP(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	mu.Lock()
	defer mu.Unlock()
	require.ErrorIs(t, gotErr, errVersion)
}

func TestMiddleware_VersionErrorDefaultHandler(t *testing.T) {
	t.Parallel()

	renderer := New(&Config{Version: func(*http.Request) (string, error) {
		return "", errors.New("version unavailable")
	}})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "body")
	})

	r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{Inertia: true})
	newMiddleware(handler, renderer).ServeHTTP(w, r)

	assert.GreaterOrEqual(t, w.Code, http.StatusInternalServerError)
	assert.NotContains(t, w.Body.String(), "body")
}

func TestRender_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/", nil)

	err := Render(w, r, "Home", nil)
	require.ErrorIs(t, err, ErrMissingMiddleware)

	assert.Panics(t, func() { MustRender(w, r, "Home", nil) })
	assert.ErrorIs(t, Share(r, "key", "value"), ErrMissingMiddleware)
}

func TestNegotiate(t *testing.T) {
	t.Parallel()

	//nolint:exhaustruct
	config := MiddlewareConfig{}
	config.defaults()

	jsonHeader := func() http.Header {
		h := make(http.Header)
		h.Set(inertiaheader.HeaderXInertia, "true")
		h.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)

		return h
	}

	tests := []struct {
		resp            *Response
		check           func(t *testing.T, resp *Response)
		name            string
		method          string
		clientVersion   string
		serverVersion   string
		expectedOutcome Outcome
		expectedStatus  int
		inertia         bool
	}{
		{
			name:            "non-inertia request only gets Vary",
			method:          http.MethodGet,
			resp:            NewResponse(http.StatusOK, nil, nil),
			clientVersion:   "a",
			serverVersion:   "b",
			expectedOutcome: OutcomePassthrough,
			expectedStatus:  http.StatusOK,
		},
		{
			name:            "version mismatch short-circuits the empty check",
			method:          http.MethodGet,
			inertia:         true,
			resp:            NewResponse(http.StatusOK, jsonHeader(), []byte(`{}`)),
			clientVersion:   "v1",
			serverVersion:   "v2",
			expectedOutcome: OutcomeVersionMismatch,
			expectedStatus:  http.StatusConflict,
			check: func(t *testing.T, resp *Response) {
				t.Helper()

				assert.Equal(t, "/page?x=1", resp.Header.Get(inertiaheader.HeaderXInertiaLocation))
				assert.Empty(t, resp.Body)
			},
		},
		{
			name:            "302 after DELETE keeps body and headers",
			method:          http.MethodDelete,
			inertia:         true,
			resp:            NewResponse(http.StatusFound, http.Header{"Location": {"/next"}, "X-A": {"b"}}, []byte("moved")),
			expectedOutcome: OutcomeSeeOther,
			expectedStatus:  http.StatusSeeOther,
			check: func(t *testing.T, resp *Response) {
				t.Helper()

				assert.Equal(t, "/next", resp.Header.Get("Location"))
				assert.Equal(t, "b", resp.Header.Get("X-A"))
				assert.Equal(t, "moved", string(resp.Body))
			},
		},
		{
			name:            "302 after GET is kept",
			method:          http.MethodGet,
			inertia:         true,
			resp:            NewResponse(http.StatusFound, http.Header{"Location": {"/next"}}, nil),
			expectedOutcome: OutcomeRendered,
			expectedStatus:  http.StatusFound,
		},
		{
			name:            "empty response after POST redirects",
			method:          http.MethodPost,
			inertia:         true,
			resp:            NewResponse(http.StatusOK, nil, []byte("  ")),
			expectedOutcome: OutcomeEmptyResponse,
			expectedStatus:  http.StatusFound,
			check: func(t *testing.T, resp *Response) {
				t.Helper()

				assert.Equal(t, "/page?x=1", resp.Header.Get("Location"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, _ := inertiatest.NewRequest(tt.method, "/page?x=1", &inertiatest.RequestConfig{
				Inertia: tt.inertia,
				Version: tt.clientVersion,
			})
			original := tt.resp.Header.Clone()

			resp, outcome := negotiate(&config, r, tt.resp, tt.serverVersion)

			assert.Equal(t, tt.expectedOutcome, outcome)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, original, tt.resp.Header, "input response must not be modified")

			if tt.expectedOutcome == OutcomePassthrough || tt.expectedOutcome == OutcomeRendered {
				assert.Equal(t, inertiaheader.HeaderXInertia, resp.Header.Get(inertiaheader.HeaderVary))
			}

			if tt.check != nil {
				tt.check(t, resp)
			}
		})
	}
}
