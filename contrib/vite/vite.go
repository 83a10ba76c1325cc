// Package vite provides a minimal integration for Vite.
// It adds support for Vite Client and Vite React Refresh in development mode.
// It also provides a support for bundling Vite resources declared
// in the Vite manifest file.
package vite

import (
	"cmp"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	pathpkg "path"
	"strings"

	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"
)

var d = debug.Debuglog("antenna/vite") //nolint:gochecknoglobals

const DefaultViteAddress = "http://localhost:5173"

var ErrMissingManifest = errors.New("vite: manifest is required outside of development mode")

type Config struct {
	// Manifest is the parsed build manifest. Required unless Dev is set.
	Manifest *Manifest

	// TemplateName is the name of the template created by NewTemplate.
	//
	// Defaults to "antenna".
	TemplateName string

	// ViteAddress is the address of the Vite dev server.
	//
	// Defaults to DefaultViteAddress.
	ViteAddress string

	// Base is the public path built assets are served from.
	//
	// Defaults to "/".
	Base string

	// Dev makes the template load resources from the Vite dev server.
	Dev bool
}

func (c *Config) defaults() {
	c.ViteAddress = strings.TrimSuffix(cmp.Or(c.ViteAddress, DefaultViteAddress), "/")
	c.TemplateName = cmp.Or(c.TemplateName, "antenna")
	c.Base = cmp.Or(c.Base, "/")

	if !strings.HasSuffix(c.Base, "/") {
		c.Base += "/"
	}
}

// NewTemplate creates a new template from a string.
//
// The resulting template will have built-in support for Vite.
// To include Vite React Refresh, use {{viteReactRefresh}}
// and Vite client, use {{viteClient}}.
// To include a Vite resource, use {{viteResource "path/to/resource.js"}}.
// Outside of development mode "viteClient" and "viteReactRefresh" are blank
// and resources are resolved through the manifest.
func NewTemplate(content string, config *Config) (*template.Template, error) {
	config, err := prepare(config)
	if err != nil {
		return nil, err
	}

	t := newTemplate(config.TemplateName, config)
	if _, err := t.Parse(content); err != nil {
		return nil, fmt.Errorf("vite: failed to parse template: %w", err)
	}

	return t, nil
}

// Must is like NewTemplate but panics on error.
func Must(content string, c *Config) *template.Template {
	return must.Must(NewTemplate(content, c))
}

// FromFS creates a new template from a file system.
// The returned template is named after the first file matching path,
// so that it can be executed directly.
// See NewTemplate for more information.
func FromFS(fsys fs.FS, path string, config *Config) (*template.Template, error) {
	config, err := prepare(config)
	if err != nil {
		return nil, err
	}

	matches, err := fs.Glob(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("vite: invalid template pattern: %w", err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("vite: pattern matches no files: %s", path)
	}

	t := newTemplate(pathpkg.Base(matches[0]), config)
	if _, err := t.ParseFS(fsys, path); err != nil {
		return nil, fmt.Errorf("vite: failed to parse template: %w", err)
	}

	return t, nil
}

func prepare(config *Config) (*Config, error) {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	if !config.Dev && config.Manifest == nil {
		return nil, ErrMissingManifest
	}

	return config, nil
}

func newTemplate(name string, config *Config) *template.Template {
	return template.New(name).Funcs(template.FuncMap{
		"viteClient": func() template.HTML {
			if !config.Dev {
				return ""
			}

			//nolint:gosec
			return template.HTML(fmt.Sprintf(
				`<script type="module" src="%s/@vite/client"></script>`,
				template.HTMLEscapeString(config.ViteAddress)))
		},
		"viteReactRefresh": func() template.HTML {
			if !config.Dev {
				return ""
			}

			//nolint:gosec
			return template.HTML(fmt.Sprintf(reactRefreshPreamble,
				template.HTMLEscapeString(config.ViteAddress)))
		},
		"viteResource": func(name string) (template.HTML, error) {
			if config.Dev {
				//nolint:gosec
				return template.HTML(fmt.Sprintf(
					`<script type="module" src="%s/%s"></script>`,
					template.HTMLEscapeString(config.ViteAddress),
					template.HTMLEscapeString(strings.TrimPrefix(name, "/")))), nil
			}

			css, js, err := config.Manifest.HTML(name, config.Base)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			for _, tag := range append(css, js...) {
				b.WriteString(string(tag))
			}

			return template.HTML(b.String()), nil //nolint:gosec
		},
	})
}

const reactRefreshPreamble = `<script type="module">
import RefreshRuntime from "%s/@react-refresh"
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true
</script>`
