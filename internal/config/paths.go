package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "pdfnotes"

// PlatformDataDir returns the platform data directory for the notes
// database and instance lock.
//
//   - macOS:   ~/Library/Application Support/pdfnotes/
//   - Linux:   $XDG_DATA_HOME/pdfnotes/ or ~/.local/share/pdfnotes/
//   - Windows: %APPDATA%\pdfnotes\
//
// Falls back to ~/.pdfnotes if platform detection fails.
func PlatformDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", appName)
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		return filepath.Join(homeDir(), ".local", "share", appName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir(), "AppData", "Roaming", appName)
	default:
		return filepath.Join(homeDir(), "."+appName)
	}
}

// PlatformConfigDir returns the platform config directory.
//
//   - macOS:   ~/Library/Application Support/pdfnotes/
//   - Linux:   $XDG_CONFIG_HOME/pdfnotes/ or ~/.config/pdfnotes/
//   - Windows: %APPDATA%\pdfnotes\
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
		return filepath.Join(homeDir(), ".config", appName)
	default:
		// macOS and Windows keep config next to data.
		return PlatformDataDir()
	}
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// FindConfigFile searches the working directory and the platform config
// directory for a config file, returning the first match or "".
func FindConfigFile() string {
	dirs := []string{".", PlatformConfigDir()}
	exts := []string{"toml", "json", "yaml", "yml"}
	for _, dir := range dirs {
		for _, ext := range exts {
			path := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}
