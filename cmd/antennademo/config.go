package main

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"go.inout.gg/antenna"
)

const DefaultAddr = ":8080"

const (
	LayoutTemplate = "template"
	LayoutTempl    = "templ"
)

// Config is the demo server configuration.
type Config struct {
	// Addr is the address to listen on.
	Addr string `yaml:"addr"`

	// RootViewID is the ID of the element the client app mounts on.
	RootViewID string `yaml:"root_view_id"`

	// Version is a static asset version. Ignored when Manifest is set.
	Version string `yaml:"version"`

	// SSRURL is the address of the SSR server. SSR is disabled if empty.
	SSRURL string `yaml:"ssr_url"`

	// Manifest is the path to a Vite manifest. When set, assets are
	// loaded through the manifest and the asset version is its hash.
	Manifest string `yaml:"manifest"`

	// Layout selects the root view: "template" or "templ".
	Layout string `yaml:"layout"`

	// Concurrency limits concurrent prop resolution.
	Concurrency int `yaml:"concurrency"`
}

func (c *Config) defaults() {
	c.Addr = cmp.Or(c.Addr, DefaultAddr)
	c.RootViewID = cmp.Or(c.RootViewID, antenna.DefaultRootViewID)
	c.Layout = cmp.Or(c.Layout, LayoutTemplate)
}

func (c *Config) validate() error {
	if c.Layout != LayoutTemplate && c.Layout != LayoutTempl {
		return fmt.Errorf("antennademo: unknown layout %q", c.Layout)
	}

	return nil
}

// LoadConfig reads the YAML configuration at path. An empty path
// yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	//nolint:exhaustruct
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("antennademo: config file %s does not exist", path)
			}

			return nil, fmt.Errorf("antennademo: failed to read config: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("antennademo: failed to parse config: %w", err)
		}
	}

	cfg.defaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
