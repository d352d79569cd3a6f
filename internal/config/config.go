// Package config holds runtime configuration: defaults, an optional YAML
// config file, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/backmassage/muxprobe/internal/ffmpeg"
)

// --- Enum types for validated string fields ---

// OutputFormat selects how probe reports are written.
type OutputFormat string

const (
	FormatText OutputFormat = "text" // Human-readable summary (default).
	FormatJSON OutputFormat = "json" // One JSON document for the whole run.
	FormatYAML OutputFormat = "yaml" // One YAML document for the whole run.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadFile] when a config file is given, and then mutated by
// [ParseFlags]. The koanf tags name the keys accepted in the config file.
type Config struct {
	// Inputs are paths, directories or http(s) URLs (positional args only).
	Inputs []string `koanf:"-"`

	// Tools.
	FFprobeBinary string `koanf:"ffprobe"` // Default: "ffprobe".
	FFmpegBinary  string `koanf:"ffmpeg"`  // Default: "ffmpeg".

	// Probing.
	MaxRedirects int           `koanf:"max_redirects"` // Default: 10.
	HTTPTimeout  time.Duration `koanf:"http_timeout"`  // Per remote check. Default: 15s.
	ProbeTimeout time.Duration `koanf:"probe_timeout"` // Per resource, 0 disables. Default: 2m.
	Jobs         int           `koanf:"jobs"`          // Concurrent probes. Default: 4.

	// Output.
	Format        OutputFormat `koanf:"format"`         // Default: "text".
	ScreenshotDir string       `koanf:"screenshot_dir"` // Grab one frame per valid resource when set.
	ScreenshotAt  float64      `koanf:"screenshot_at"`  // Seek offset in seconds. Default: 1.
	MetricsFile   string       `koanf:"metrics_file"`   // Prometheus textfile path.
	Presets       []string     `koanf:"presets"`        // Filter presets applied to screenshots.
	AutoPresets   bool         `koanf:"auto_presets"`   // Deinterlace/tonemap when the stream needs it. Default: true.

	// Display and logging.
	Verbose    bool      `koanf:"verbose"`
	ColorMode  ColorMode `koanf:"color"` // Default: "auto".
	LogFile    string    `koanf:"log"`   // Optional JSON log file path.
	CheckOnly  bool      `koanf:"-"`     // Run --check diagnostics and exit.
	ConfigFile string    `koanf:"-"`     // Set by --config.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadFile] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		FFprobeBinary: "ffprobe",
		FFmpegBinary:  "ffmpeg",
		MaxRedirects:  10,
		HTTPTimeout:   15 * time.Second,
		ProbeTimeout:  2 * time.Minute,
		Jobs:          4,
		Format:        FormatText,
		ScreenshotAt:  1,
		AutoPresets:   true,
		ColorMode:     ColorAuto,
	}
}

// Validate checks enum fields and numeric bounds. When not in CheckOnly
// mode it also requires at least one input.
func (c *Config) Validate() error {
	c.Format = OutputFormat(strings.ToLower(string(c.Format)))
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
		// valid
	default:
		return fmt.Errorf("invalid format %q (use 'text', 'json' or 'yaml')", c.Format)
	}

	c.ColorMode = ColorMode(strings.ToLower(string(c.ColorMode)))
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Jobs < 1 {
		return errors.New("jobs must be at least 1")
	}
	if c.MaxRedirects < 0 {
		return errors.New("max redirects must not be negative")
	}
	if c.HTTPTimeout < 0 || c.ProbeTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.ScreenshotAt < 0 {
		return errors.New("screenshot offset must not be negative")
	}
	if c.FFprobeBinary == "" {
		return errors.New("ffprobe path must not be empty")
	}
	if c.ScreenshotDir != "" && c.FFmpegBinary == "" {
		return errors.New("screenshots need an ffmpeg path")
	}
	if _, err := ffmpeg.ParsePresets(c.Presets); err != nil {
		return err
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.Inputs) == 0 {
		return errors.New("need at least one file, directory or URL")
	}
	return nil
}
