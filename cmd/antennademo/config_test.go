package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig("")
		require.NoError(t, err)

		assert.Equal(t, DefaultAddr, cfg.Addr)
		assert.Equal(t, "app", cfg.RootViewID)
		assert.Equal(t, LayoutTemplate, cfg.Layout)
	})

	t.Run("yaml file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "antenna.yaml", `
addr: ":9000"
root_view_id: root
version: "v42"
ssr_url: http://localhost:13714/render
layout: templ
concurrency: 2
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, &Config{
			Addr:        ":9000",
			RootViewID:  "root",
			Version:     "v42",
			SSRURL:      "http://localhost:13714/render",
			Layout:      LayoutTempl,
			Concurrency: 2,
		}, cfg)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)

		_, err = LoadConfig(writeFile(t, "bad.yaml", "addr: [unclosed"))
		require.Error(t, err)

		_, err = LoadConfig(writeFile(t, "layout.yaml", "layout: jsx"))
		require.Error(t, err)
	})
}
