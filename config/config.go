// Package config loads window settings from TOML and applies them to a webview.
package config

import (
	"encoding/json"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/wippyai/webview"
	"github.com/wippyai/webview/errors"
)

// Config describes one window.
//
//	title = "Demo"
//	url = "https://example.com"
//	width = 1024
//	height = 768
//	hint = "min"
//	init = ["window.demo = true"]
//
//	[bindings]
//	version = '"1.0.0"'
type Config struct {
	Title    string           `toml:"title"`
	URL      string           `toml:"url"`
	Width    int              `toml:"width"`
	Height   int              `toml:"height"`
	Hint     webview.SizeHint `toml:"hint"`
	Debug    bool             `toml:"debug"`
	Headless bool             `toml:"headless"`

	// Library is the path of libwebview. Empty means the default search.
	Library string `toml:"library,omitempty"`

	// Init scripts run before every page, in order.
	Init []string `toml:"init,omitempty"`

	// Bindings maps a global function name to the JSON value it resolves with.
	Bindings map[string]string `toml:"bindings,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Title:  "webview",
		Width:  800,
		Height: 600,
		Hint:   webview.HintNone,
	}
}

// Load reads and validates a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return Parse(data)
}

// Parse decodes TOML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse TOML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindEncoding, err, "encode TOML")
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from WEBVIEW_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("WEBVIEW_TITLE"); v != "" {
		c.Title = v
	}
	if v := os.Getenv("WEBVIEW_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("WEBVIEW_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Width = n
		}
	}
	if v := os.Getenv("WEBVIEW_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Height = n
		}
	}
	if v := os.Getenv("WEBVIEW_DEBUG"); v == "true" || v == "1" {
		c.Debug = true
	}
	if v := os.Getenv("WEBVIEW_HEADLESS"); v == "true" || v == "1" {
		c.Headless = true
	}
}

// Validate checks ranges and enum values.
func (c *Config) Validate() error {
	if c.Width < 0 {
		return invalid("width", c.Width, "must not be negative")
	}
	if c.Height < 0 {
		return invalid("height", c.Height, "must not be negative")
	}
	if !c.Hint.Valid() {
		return errors.InvalidEnum(errors.PhaseConfig, []string{"hint"}, int32(c.Hint), "SizeHint")
	}
	for name, value := range c.Bindings {
		if name == "" {
			return invalid("bindings", name, "empty function name")
		}
		if !json.Valid([]byte(value)) {
			return invalid("bindings."+name, value, "value is not JSON")
		}
	}
	return nil
}

func invalid(field string, value any, detail string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(field).
		Value(value).
		Detail("%s", detail).
		Build()
}

// Apply configures w: title, size, init scripts, bindings and finally the URL.
// It stops at the first failing call.
func (c *Config) Apply(w *webview.Webview) error {
	if c.Title != "" {
		if err := w.SetTitle(c.Title); err != nil {
			return err
		}
	}
	if c.Width > 0 || c.Height > 0 {
		if err := w.SetSize(c.Width, c.Height, c.Hint); err != nil {
			return err
		}
	}
	for _, js := range c.Init {
		if err := w.Init(js); err != nil {
			return err
		}
	}

	weak := w.Downgrade()
	for _, name := range slices.Sorted(maps.Keys(c.Bindings)) {
		value := c.Bindings[name]
		if err := w.Bind(name, func(seq, _ string) {
			weak.Return(seq, webview.StatusResolve, value)
		}); err != nil {
			return err
		}
	}

	if c.URL != "" {
		return w.Navigate(c.URL)
	}
	return nil
}
