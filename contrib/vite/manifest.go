package vite

import (
	"fmt"
	"html/template"
	"io/fs"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/go-json-experiment/json"

	"go.inout.gg/antenna"
)

type rawManifest = map[string]*ManifestEntry

// Manifest represents a parsed Vite build manifest (manifest.json).
// It maps entry points to their compiled assets and dependencies.
type Manifest struct {
	raw     rawManifest
	version string
}

// ManifestEntry describes a single asset in the Vite build manifest.
// It contains the asset's output path, dependencies, and metadata.
type ManifestEntry struct {
	Source         string   `json:"src"`
	File           string   `json:"file"`
	Name           string   `json:"name"`
	CSS            []string `json:"css"`
	Assets         []string `json:"assets"`
	Imports        []string `json:"imports"`
	DynamicImports []string `json:"dynamicImports"`
	IsEntry        bool     `json:"isEntry"`
	IsDynamicEntry bool     `json:"isDynamicEntry"`
}

// HTML resolves a manifest entry and returns all required CSS and JS tags.
//
// It recursively walks the static import graph to include all dependencies:
// stylesheets of every visited chunk, the entry script and modulepreload
// links for imported chunks. Paths are prefixed with base.
func (m *Manifest) HTML(name string, base string) ([]template.HTML, []template.HTML, error) {
	entry, ok := m.raw[name]
	if !ok {
		return nil, nil, fmt.Errorf("vite: entry %s not found in manifest", name)
	}

	var (
		css []template.HTML
		js  []template.HTML
	)

	//nolint:gosec
	js = append(js, template.HTML(fmt.Sprintf(
		`<script type="module" src="%s"></script>`, template.HTMLEscapeString(base+entry.File))))

	seen := map[string]bool{name: true}
	seenCSS := make(map[string]bool)

	var walk func(*ManifestEntry, bool)

	walk = func(e *ManifestEntry, isEntry bool) {
		for _, link := range e.CSS {
			if seenCSS[link] {
				continue
			}

			seenCSS[link] = true

			//nolint:gosec
			css = append(css, template.HTML(fmt.Sprintf(
				`<link rel="stylesheet" href="%s" />`, template.HTMLEscapeString(base+link))))
		}

		if !isEntry {
			//nolint:gosec
			js = append(js, template.HTML(fmt.Sprintf(
				`<link rel="modulepreload" href="%s" />`, template.HTMLEscapeString(base+e.File))))
		}

		for _, i := range e.Imports {
			if seen[i] {
				continue
			}

			seen[i] = true

			imported, ok := m.raw[i]
			if !ok {
				d("import %s of %s is missing from the manifest", i, name)
				continue
			}

			walk(imported, false)
		}
	}

	walk(entry, true)

	return css, js, nil
}

// Version returns a hash of the raw manifest, suitable as an asset version.
// It changes whenever a build produces different assets.
func (m *Manifest) Version() string { return m.version }

// VersionFunc returns an antenna.VersionFunc reporting the manifest version.
func VersionFunc(m *Manifest) antenna.VersionFunc {
	return antenna.StaticVersion(m.Version())
}

// ParseManifest parses a Vite build manifest from JSON bytes.
//
// The manifest maps entry point names to their compiled assets and dependencies.
func ParseManifest(b []byte) (*Manifest, error) {
	var raw rawManifest

	err := json.Unmarshal(b, &raw)
	if err != nil {
		return nil, fmt.Errorf("vite: failed to unmarshal manifest: %w", err)
	}

	return &Manifest{
		raw:     raw,
		version: strconv.FormatUint(xxhash.Sum64(b), 16),
	}, nil
}

// ParseManifestFromFS reads and parses a Vite manifest from a file system.
func ParseManifestFromFS(fsys fs.FS, path string) (*Manifest, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("vite: failed to read manifest file: %w", err)
	}

	return ParseManifest(b)
}
