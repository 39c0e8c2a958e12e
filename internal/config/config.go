package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// APIConfig describes the upstream extraction service call.
type APIConfig struct {
	// Model is the model identifier sent to the extraction service.
	Model string `yaml:"model" json:"model"`
	// Endpoint is the service base URL. The default targets the
	// Gemini generateContent REST surface.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// TimeoutSeconds bounds a single extraction attempt.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// RetryConfig drives the bounded backoff loop around extraction calls.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, first call included.
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
	// BaseDelaySeconds is the delay before the second attempt; it
	// doubles per attempt afterwards.
	BaseDelaySeconds float64 `yaml:"base_delay_seconds" json:"base_delay_seconds"`
	// MaxBackoffSeconds caps the per-attempt delay.
	MaxBackoffSeconds float64 `yaml:"max_backoff_seconds" json:"max_backoff_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone, when set, overrides the probed system zone as the
	// default for candidates without a timezone hint (IANA name,
	// e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// ProdID is the PRODID emitted in built calendar documents.
	ProdID string `yaml:"prodid" json:"prodid"`

	// DefaultTitle is used when a candidate has no title.
	DefaultTitle string `yaml:"default_title" json:"default_title"`

	// DefaultDurationMinutes is used when a candidate has neither an
	// end time nor an explicit duration.
	DefaultDurationMinutes int `yaml:"default_duration_minutes" json:"default_duration_minutes"`

	// ReminderMinutes is the display-alarm lead time added to each
	// event block. Zero disables the alarm.
	ReminderMinutes int `yaml:"reminder_minutes" json:"reminder_minutes"`

	// LogLevel is DEBUG, INFO or ERROR.
	LogLevel string `yaml:"log_level" json:"log_level"`

	API   APIConfig   `yaml:"api" json:"api"`
	Retry RetryConfig `yaml:"retry" json:"retry"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:               "",
		ProdID:                 "-//eventcal//EN",
		DefaultTitle:           "No Title",
		DefaultDurationMinutes: 60,
		ReminderMinutes:        30,
		LogLevel:               "INFO",
		API: APIConfig{
			Model:          "gemini-1.5-flash",
			Endpoint:       "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSeconds: 60,
		},
		Retry: RetryConfig{
			MaxAttempts:       5,
			BaseDelaySeconds:  2,
			MaxBackoffSeconds: 30,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.ProdID == "" {
		c.ProdID = def.ProdID
	}
	if c.DefaultTitle == "" {
		c.DefaultTitle = def.DefaultTitle
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = def.DefaultDurationMinutes
	}
	if c.ReminderMinutes < 0 {
		c.ReminderMinutes = def.ReminderMinutes
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "ERROR":
		// ok
	default:
		c.LogLevel = def.LogLevel
	}

	if c.API.Model == "" {
		c.API.Model = def.API.Model
	}
	if c.API.Endpoint == "" {
		c.API.Endpoint = def.API.Endpoint
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = def.API.TimeoutSeconds
	}

	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if c.Retry.BaseDelaySeconds <= 0 {
		c.Retry.BaseDelaySeconds = def.Retry.BaseDelaySeconds
	}
	if c.Retry.MaxBackoffSeconds <= 0 {
		c.Retry.MaxBackoffSeconds = def.Retry.MaxBackoffSeconds
	}
}

// Load reads the YAML config at path. A missing file is treated as a
// first run: a default config is written there (0600) and returned.
// Loaded configs are normalized, so callers never see zero values for
// fields that have defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if werr := Save(path, cfg); werr != nil {
				// The defaults are still usable even when they could
				// not be persisted; let the caller decide.
				return cfg, werr
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save persists cfg as YAML at path with 0600 permissions. The write
// goes through a temp file in the same directory followed by a rename,
// so a crash mid-write never leaves a truncated config behind.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// The rename publishes the file, so the mode must be right first.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
