// Package config loads the server configuration from a TOML file with
// environment overrides.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ironsheep/image-transform-mcp/internal/imaging"
	"github.com/ironsheep/image-transform-mcp/internal/pipeline"
	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/pkg/errors"
)

// Environment variables read by Load.
const (
	EnvConfigFile = "IMAGE_TRANSFORM_CONFIG"
	EnvLogLevel   = "IMAGE_TRANSFORM_LOG_LEVEL"
)

// ErrNoConfigFile is returned by Load when the named file does not exist.
var ErrNoConfigFile = errors.New("configuration file not found")

// Config is the server configuration. Field names follow the TOML keys.
type Config struct {
	LogLevel string `toml:"log_level"`

	// [transform]
	Transform struct {
		DefaultContentType string `toml:"default_content_type"`
		Background         string `toml:"background"`
		Quality            int    `toml:"quality"`
		AutoOrient         bool   `toml:"auto_orient"`
		AllowUpscale       bool   `toml:"allow_upscale"`
		MaxDimension       int    `toml:"max_dimension"`
	} `toml:"transform"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cf := &Config{LogLevel: "info"}
	cf.Transform.DefaultContentType = string(raster.DefaultContentType)
	cf.Transform.Background = "#ffffff"
	cf.Transform.Quality = 100
	cf.Transform.AutoOrient = true
	cf.Transform.MaxDimension = 16384
	return cf
}

// Load reads the TOML file at path over the defaults. An empty path falls
// back to $IMAGE_TRANSFORM_CONFIG; if that is empty too, the defaults are
// used. $IMAGE_TRANSFORM_LOG_LEVEL overrides log_level either way.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	cf := Default()
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.Wrap(ErrNoConfigFile, path)
		}
		if _, err := toml.DecodeFile(path, cf); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cf.LogLevel = lvl
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

// Validate checks every field and reports the first problem.
func (cf *Config) Validate() error {
	if _, err := cf.Level(); err != nil {
		return err
	}
	if _, err := raster.ParseContentType(cf.Transform.DefaultContentType); err != nil {
		return errors.Wrap(err, "default_content_type")
	}
	if _, err := imaging.ParseColor(cf.Transform.Background); err != nil {
		return errors.Wrap(err, "background")
	}
	if q := cf.Transform.Quality; q < 1 || q > 100 {
		return errors.Errorf("quality %d outside 1..100", q)
	}
	if cf.Transform.MaxDimension < 0 {
		return errors.Errorf("max_dimension %d is negative", cf.Transform.MaxDimension)
	}
	return nil
}

// Level maps log_level to a slog level.
func (cf *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(cf.LogLevel))); err != nil {
		return 0, errors.Errorf("unknown log_level %q", cf.LogLevel)
	}
	return lvl, nil
}

// Settings converts the [transform] table into pipeline settings. The
// config must be valid.
func (cf *Config) Settings() (pipeline.Settings, error) {
	ct, err := raster.ParseContentType(cf.Transform.DefaultContentType)
	if err != nil {
		return pipeline.Settings{}, err
	}
	bg, err := imaging.ParseColor(cf.Transform.Background)
	if err != nil {
		return pipeline.Settings{}, err
	}
	return pipeline.Settings{
		ContentType:  ct,
		Background:   bg,
		Quality:      cf.Transform.Quality,
		AutoOrient:   cf.Transform.AutoOrient,
		AllowUpscale: cf.Transform.AllowUpscale,
		MaxDimension: cf.Transform.MaxDimension,
	}, nil
}
