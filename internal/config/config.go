// Package config handles configuration loading, validation, and
// management for pdfnotes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	// Storage configuration for the notes database.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Autosave configuration for the notes editor.
	Autosave AutosaveConfig `toml:"autosave" json:"autosave" yaml:"autosave"`

	// View configuration for the page view.
	View ViewConfig `toml:"view" json:"view" yaml:"view"`

	// Overlay configuration for image placement.
	Overlay OverlayConfig `toml:"overlay" json:"overlay" yaml:"overlay"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// StorageConfig holds notes persistence settings.
type StorageConfig struct {
	// DataDir is where the notes database and lock file live.
	// Empty means the platform default data directory.
	DataDir string `toml:"data_dir" json:"data_dir" yaml:"data_dir"`
}

// AutosaveConfig holds the autosave timer settings.
type AutosaveConfig struct {
	// Enabled turns periodic saving on.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// IntervalSeconds between autosave checks.
	IntervalSeconds int `toml:"interval_seconds" json:"interval_seconds" yaml:"interval_seconds"`

	// Notify shows a desktop notification after each autosave.
	Notify bool `toml:"notify" json:"notify" yaml:"notify"`
}

// Interval returns the autosave interval as a duration.
func (a AutosaveConfig) Interval() time.Duration {
	return time.Duration(a.IntervalSeconds) * time.Second
}

// ViewConfig holds page view settings.
type ViewConfig struct {
	// MinZoom and MaxZoom bound the zoom factor.
	MinZoom float64 `toml:"min_zoom" json:"min_zoom" yaml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom" json:"max_zoom" yaml:"max_zoom"`

	// ZoomStep is the increment used by the zoom controls.
	ZoomStep float64 `toml:"zoom_step" json:"zoom_step" yaml:"zoom_step"`

	// Oversample is the render supersampling factor. Pages are rendered
	// at Zoom*Oversample and scaled down for crisp text.
	Oversample int `toml:"oversample" json:"oversample" yaml:"oversample"`

	// MinSelectionArea is the smallest selection accepted, in square
	// document units. Smaller drags are treated as stray clicks.
	MinSelectionArea float64 `toml:"min_selection_area" json:"min_selection_area" yaml:"min_selection_area"`
}

// OverlayConfig holds image placement settings.
type OverlayConfig struct {
	// MinSize is the smallest overlay edge in pixels.
	MinSize int `toml:"min_size" json:"min_size" yaml:"min_size"`

	// MaxInitialSize bounds the overlay's initial fit in pixels.
	MaxInitialSize int `toml:"max_initial_size" json:"max_initial_size" yaml:"max_initial_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stdout, stderr, file, or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file location when Output includes "file".
	// Empty means the platform default.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: PlatformDataDir(),
		},
		Autosave: AutosaveConfig{
			Enabled:         true,
			IntervalSeconds: 30,
			Notify:          false,
		},
		View: ViewConfig{
			MinZoom:          0.25,
			MaxZoom:          3.00,
			ZoomStep:         0.25,
			Oversample:       2,
			MinSelectionArea: 16,
		},
		Overlay: OverlayConfig{
			MinSize:        50,
			MaxInitialSize: 400,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	var errs []error

	if c.Autosave.IntervalSeconds < 1 {
		errs = append(errs, fmt.Errorf("autosave.interval_seconds must be >= 1, got %d", c.Autosave.IntervalSeconds))
	}
	if c.View.MinZoom <= 0 {
		errs = append(errs, fmt.Errorf("view.min_zoom must be > 0, got %g", c.View.MinZoom))
	}
	if c.View.MaxZoom < c.View.MinZoom {
		errs = append(errs, fmt.Errorf("view.max_zoom %g below view.min_zoom %g", c.View.MaxZoom, c.View.MinZoom))
	}
	if c.View.ZoomStep <= 0 {
		errs = append(errs, fmt.Errorf("view.zoom_step must be > 0, got %g", c.View.ZoomStep))
	}
	if c.View.Oversample < 1 || c.View.Oversample > 4 {
		errs = append(errs, fmt.Errorf("view.oversample must be in [1,4], got %d", c.View.Oversample))
	}
	if c.View.MinSelectionArea < 0 {
		errs = append(errs, fmt.Errorf("view.min_selection_area must be >= 0, got %g", c.View.MinSelectionArea))
	}
	if c.Overlay.MinSize < 1 {
		errs = append(errs, fmt.Errorf("overlay.min_size must be >= 1, got %d", c.Overlay.MinSize))
	}
	if c.Overlay.MaxInitialSize < c.Overlay.MinSize {
		errs = append(errs, fmt.Errorf("overlay.max_initial_size %d below overlay.min_size %d", c.Overlay.MaxInitialSize, c.Overlay.MinSize))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not a known level", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "stderr", "file", "both", "":
	default:
		errs = append(errs, fmt.Errorf("logging.output %q is not a known output", c.Logging.Output))
	}

	return errors.Join(errs...)
}

// ApplyEnvOverrides applies PDFNOTES_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PDFNOTES_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("PDFNOTES_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PDFNOTES_LOG_OUTPUT"); v != "" {
		c.Logging.Output = v
	}
	if v := os.Getenv("PDFNOTES_AUTOSAVE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Autosave.IntervalSeconds = n
		}
	}
}
