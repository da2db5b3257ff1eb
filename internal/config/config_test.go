package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.Autosave.Interval())
	assert.Equal(t, 0.25, cfg.View.MinZoom)
	assert.Equal(t, 3.0, cfg.View.MaxZoom)
	assert.Equal(t, 0.25, cfg.View.ZoomStep)
	assert.Equal(t, 2, cfg.View.Oversample)
	assert.Equal(t, 50, cfg.Overlay.MinSize)
	assert.Equal(t, 400, cfg.Overlay.MaxInitialSize)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero autosave interval", func(c *Config) { c.Autosave.IntervalSeconds = 0 }},
		{"negative min zoom", func(c *Config) { c.View.MinZoom = -1 }},
		{"max zoom below min", func(c *Config) { c.View.MaxZoom = 0.1 }},
		{"zero zoom step", func(c *Config) { c.View.ZoomStep = 0 }},
		{"oversample out of range", func(c *Config) { c.View.Oversample = 9 }},
		{"zero overlay min size", func(c *Config) { c.Overlay.MinSize = 0 }},
		{"max initial below min size", func(c *Config) { c.Overlay.MaxInitialSize = 10 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log output", func(c *Config) { c.Logging.Output = "syslog" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[autosave]
enabled = true
interval_seconds = 10

[view]
max_zoom = 4.0

[logging]
level = "debug"
`), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Autosave.IntervalSeconds)
	assert.Equal(t, 4.0, cfg.View.MaxZoom)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields keep defaults.
	assert.Equal(t, 0.25, cfg.View.MinZoom)
	assert.Equal(t, 50, cfg.Overlay.MinSize)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
autosave:
  interval_seconds: 5
overlay:
  min_size: 64
`), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Autosave.IntervalSeconds)
	assert.Equal(t, 64, cfg.Overlay.MinSize)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "nope.toml")).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().View, cfg.View)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[view]
zoom_step = -1.0
`), 0o644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PDFNOTES_DATA_DIR", "/tmp/custom-data")
	t.Setenv("PDFNOTES_LOG_LEVEL", "warn")
	t.Setenv("PDFNOTES_AUTOSAVE_SECONDS", "7")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "config.toml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-data", cfg.Storage.DataDir)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Autosave.IntervalSeconds)
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, cfg.Validate())

	_, err = os.Stat(path)
	require.NoError(t, err)

	_, created, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestHotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[view]\nmax_zoom = 3.0\n"), 0o644))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	loader.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	require.NoError(t, loader.Watch())
	defer loader.Close()

	require.NoError(t, os.WriteFile(path, []byte("[view]\nmax_zoom = 5.0\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 5.0, cfg.View.MaxZoom)
		assert.Equal(t, 5.0, loader.Config().View.MaxZoom)
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestHotReloadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[view]\nmax_zoom = 3.0\n"), 0o644))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, loader.Watch())
	defer loader.Close()

	require.NoError(t, os.WriteFile(path, []byte("[view]\nzoom_step = -9\n"), 0o644))

	select {
	case err := <-loader.Errors():
		assert.Error(t, err)
		assert.Equal(t, 3.0, loader.Config().View.MaxZoom, "bad config must not replace the good one")
	case <-time.After(3 * time.Second):
		t.Fatal("expected a validation error from the watch loop")
	}
}
