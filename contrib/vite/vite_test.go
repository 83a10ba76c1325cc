package vite

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
  "src/main.tsx": {
    "file": "assets/main-4f2a.js",
    "name": "main",
    "src": "src/main.tsx",
    "isEntry": true,
    "imports": ["_vendor-9c1d.js", "_shared-77aa.js"],
    "css": ["assets/main-1b2c.css"]
  },
  "_vendor-9c1d.js": {
    "file": "assets/vendor-9c1d.js",
    "name": "vendor",
    "imports": ["_shared-77aa.js"],
    "css": ["assets/vendor-aa01.css"]
  },
  "_shared-77aa.js": {
    "file": "assets/shared-77aa.js",
    "name": "shared",
    "css": ["assets/vendor-aa01.css"]
  }
}`

func TestManifest_HTML(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	css, js, err := m.HTML("src/main.tsx", "/build/")
	require.NoError(t, err)

	assert.Len(t, css, 2)
	assert.Contains(t, string(css[0]), `href="/build/assets/main-1b2c.css"`)
	assert.Contains(t, string(css[1]), `href="/build/assets/vendor-aa01.css"`)

	require.Len(t, js, 3)
	assert.Equal(t, `<script type="module" src="/build/assets/main-4f2a.js"></script>`, string(js[0]))
	assert.Contains(t, string(js[1]), `rel="modulepreload" href="/build/assets/vendor-9c1d.js"`)
	assert.Contains(t, string(js[2]), `rel="modulepreload" href="/build/assets/shared-77aa.js"`)

	_, _, err = m.HTML("src/missing.tsx", "/")
	require.Error(t, err)
}

func TestManifest_Version(t *testing.T) {
	t.Parallel()

	a, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	b, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	c, err := ParseManifest([]byte(`{}`))
	require.NoError(t, err)

	assert.NotEmpty(t, a.Version())
	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())

	v, err := VersionFunc(a)(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, a.Version(), v)
}

func TestParseManifestFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{".vite/manifest.json": {Data: []byte(testManifest)}}

	m, err := ParseManifestFromFS(fsys, ".vite/manifest.json")
	require.NoError(t, err)
	assert.NotEmpty(t, m.Version())

	_, err = ParseManifestFromFS(fsys, "missing.json")
	require.Error(t, err)

	_, err = ParseManifest([]byte(`not json`))
	require.Error(t, err)
}

const testLayout = `<head>{{viteReactRefresh}}{{viteClient}}{{viteResource "src/main.tsx"}}</head>`

func TestNewTemplate(t *testing.T) {
	t.Parallel()

	t.Run("development", func(t *testing.T) {
		t.Parallel()

		tpl, err := NewTemplate(testLayout, &Config{Dev: true, ViteAddress: "http://localhost:3000/"})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, tpl.Execute(&buf, nil))

		out := buf.String()
		assert.Contains(t, out, `<script type="module" src="http://localhost:3000/@vite/client"></script>`)
		assert.Contains(t, out, `import RefreshRuntime from "http://localhost:3000/@react-refresh"`)
		assert.Contains(t, out, `<script type="module" src="http://localhost:3000/src/main.tsx"></script>`)
	})

	t.Run("production", func(t *testing.T) {
		t.Parallel()

		m, err := ParseManifest([]byte(testManifest))
		require.NoError(t, err)

		tpl, err := NewTemplate(testLayout, &Config{Manifest: m})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, tpl.Execute(&buf, nil))

		out := buf.String()
		assert.NotContains(t, out, "@vite/client")
		assert.NotContains(t, out, "RefreshRuntime")
		assert.Contains(t, out, `<script type="module" src="/assets/main-4f2a.js"></script>`)
		assert.Contains(t, out, `<link rel="stylesheet" href="/assets/main-1b2c.css" />`)
	})

	t.Run("missing manifest", func(t *testing.T) {
		t.Parallel()

		_, err := NewTemplate(testLayout, nil)
		require.ErrorIs(t, err, ErrMissingManifest)
	})

	t.Run("unknown resource", func(t *testing.T) {
		t.Parallel()

		m, err := ParseManifest([]byte(testManifest))
		require.NoError(t, err)

		tpl := Must(`{{viteResource "src/other.tsx"}}`, &Config{Manifest: m})
		require.Error(t, tpl.Execute(&bytes.Buffer{}, nil))
	})

	t.Run("from fs", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{"index.html": {Data: []byte(testLayout)}}

		tpl, err := FromFS(fsys, "index.html", &Config{Dev: true})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, tpl.Execute(&buf, nil))
		assert.Contains(t, buf.String(), DefaultViteAddress+"/@vite/client")

		_, err = FromFS(fsys, "missing/*.html", &Config{Dev: true})
		require.Error(t, err)
	})
}
