// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"strings"

	"github.com/mwiater/latlens/internal/engine"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultSLOMs is the latency SLO boundary applied when the config omits one.
	defaultSLOMs = 800
	// defaultDesiredBins is the histogram bin count applied when the config omits one.
	defaultDesiredBins = 40
)

// Config represents the top-level application configuration. Flags override
// config values, which override defaults; the cli package materializes the
// merged result here.
type Config struct {
	Debug       bool    `json:"debug"`
	SLOMs       float64 `json:"sloMs,omitempty"`
	DesiredBins int     `json:"desiredBins,omitempty"`
	Locale      string  `json:"locale,omitempty"`
	TimeZone    string  `json:"timeZone,omitempty"`
	LogFile     string  `json:"logFile,omitempty"`
	ConfigPath  string  `json:"-"`
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "latlens.log"
}

// Settings converts the configuration into the engine's initial display
// settings, applying defaults for anything unset or out of range.
func (c Config) Settings() engine.Settings {
	settings := engine.DefaultSettings()
	if c.SLOMs > 0 {
		settings.SLOMs = c.SLOMs
	} else {
		settings.SLOMs = defaultSLOMs
	}
	if c.DesiredBins >= 1 && c.DesiredBins <= 120 {
		settings.DesiredBins = c.DesiredBins
	} else {
		settings.DesiredBins = defaultDesiredBins
	}
	if strings.TrimSpace(c.Locale) != "" {
		settings.Locale = c.Locale
	}
	if strings.TrimSpace(c.TimeZone) != "" {
		settings.TimeZone = c.TimeZone
	}
	return settings
}
