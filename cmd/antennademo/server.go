package main

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.inout.gg/antenna"
	"go.inout.gg/antenna/contrib/inertiaprom"
	"go.inout.gg/antenna/contrib/templview"
	"go.inout.gg/antenna/contrib/vite"
	"go.inout.gg/antenna/inertiaframe"
)

//go:embed templates/*.html
var templates embed.FS

// NewServer builds the demo HTTP handler from cfg.
func NewServer(cfg *Config) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	rendererConfig := &antenna.Config{
		RootViewID:  cfg.RootViewID,
		Concurrency: cfg.Concurrency,
		Version:     antenna.StaticVersion(cfg.Version),
		Share: func(r *http.Request) antenna.Props {
			return antenna.Props{"app": antenna.Props{"name": "antennademo", "path": r.URL.Path}}
		},
	}

	view, version, err := newView(cfg)
	if err != nil {
		return nil, err
	}

	rendererConfig.View = view
	if version != nil {
		rendererConfig.Version = version
	}

	if cfg.SSRURL != "" {
		rendererConfig.SSRClient = antenna.NewHTTPSsrClient(cfg.SSRURL, nil)
	}

	renderer := antenna.New(rendererConfig)
	obs := inertiaprom.New(reg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})) //nolint:exhaustruct

	r.Group(func(r chi.Router) {
		r.Use(antenna.NewMiddleware(renderer, func(c *antenna.MiddlewareConfig) {
			c.OnNegotiate = obs.Observe
		}))

		r.Get("/", homeHandler)
		r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
			antenna.Location(w, r, "https://inertiajs.com")
		})

		inertiaframe.Mount(r, &contactPageEndpoint{}, nil)
		inertiaframe.Mount(r, &submitContactEndpoint{}, &inertiaframe.MountOpts{
			Validator: inertiaframe.ValidatorFunc(validateContact),
		})
	})

	return r, nil
}

// newView returns the root view for cfg and, when a Vite manifest is
// configured, a version derived from it.
func newView(cfg *Config) (antenna.View, antenna.VersionFunc, error) {
	if cfg.Layout == LayoutTempl {
		return templview.New(templLayout), nil, nil
	}

	if cfg.Manifest == "" {
		view, err := antenna.ViewFromFS(templates, "templates/app.html")
		if err != nil {
			return nil, nil, fmt.Errorf("antennademo: %w", err)
		}

		return view, nil, nil
	}

	manifest, err := vite.ParseManifestFromFS(os.DirFS(filepath.Dir(cfg.Manifest)), filepath.Base(cfg.Manifest))
	if err != nil {
		return nil, nil, fmt.Errorf("antennademo: %w", err)
	}

	t, err := vite.FromFS(templates, "templates/vite.html", &vite.Config{Manifest: manifest}) //nolint:exhaustruct
	if err != nil {
		return nil, nil, fmt.Errorf("antennademo: %w", err)
	}

	return antenna.TemplateView(t), vite.VersionFunc(manifest), nil
}

func templLayout(data *antenna.ViewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8" />`); err != nil {
			return err //nolint:wrapcheck
		}

		if err := templview.Head(data).Render(ctx, w); err != nil {
			return err //nolint:wrapcheck
		}

		if _, err := io.WriteString(w, `</head><body>`); err != nil {
			return err //nolint:wrapcheck
		}

		if err := templview.Body(data).Render(ctx, w); err != nil {
			return err //nolint:wrapcheck
		}

		_, err := io.WriteString(w, `</body></html>`)

		return err //nolint:wrapcheck
	})
}
