// Package config resolves duotone's defaults from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmylchreest/duotone/internal/colour"
	"github.com/jmylchreest/duotone/internal/encode"
	"github.com/jmylchreest/duotone/internal/tone"
)

// Environment variables read by FromEnv.
const (
	EnvPreset        = "DUOTONE_PRESET"
	EnvTone          = "DUOTONE_TONE"
	EnvFormat        = "DUOTONE_FORMAT"
	EnvQuality       = "DUOTONE_QUALITY"
	EnvCacheDir      = "DUOTONE_CACHE_DIR"
	EnvEncoderPlugin = "DUOTONE_ENCODER_PLUGIN"
)

// Config holds the settings command-line flags default to.
type Config struct {
	Preset  string
	Tone    tone.Mode
	Format  encode.Format
	Quality float64
	// CacheDir is where remote images are cached. Empty selects the
	// user cache directory.
	CacheDir string
	// EncoderPlugin is the path of an external encoder. Empty selects the
	// in-process encoder.
	EncoderPlugin string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Preset:  colour.DefaultPreset,
		Tone:    tone.ModeNone,
		Format:  encode.PNG,
		Quality: encode.DefaultQuality,
	}
}

// FromEnv returns Defaults overridden by any DUOTONE_* variables that are
// set. Values are parsed but not validated; call Validate.
func FromEnv() (Config, error) {
	cfg := Defaults()

	if v := os.Getenv(EnvPreset); v != "" {
		cfg.Preset = v
	}
	if v := os.Getenv(EnvTone); v != "" {
		mode, err := tone.ParseMode(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTone, err)
		}
		cfg.Tone = mode
	}
	if v := os.Getenv(EnvFormat); v != "" {
		format, err := encode.ParseFormat(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvFormat, err)
		}
		cfg.Format = format
	}
	if v := os.Getenv(EnvQuality); v != "" {
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid quality %q", EnvQuality, v)
		}
		cfg.Quality = q
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv(EnvEncoderPlugin); v != "" {
		cfg.EncoderPlugin = v
	}

	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if _, err := colour.LookupPreset(c.Preset); err != nil {
		return err
	}
	if _, err := tone.ParseMode(string(c.Tone)); err != nil {
		return err
	}
	if _, err := encode.ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if c.Quality <= 0 || c.Quality > 1 {
		return fmt.Errorf("quality must be in (0, 1], got %g", c.Quality)
	}
	if c.EncoderPlugin != "" {
		info, err := os.Stat(c.EncoderPlugin)
		if err != nil {
			return fmt.Errorf("encoder plugin: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("encoder plugin %s is a directory", c.EncoderPlugin)
		}
	}
	return nil
}
