package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"smarttime/internal/ics"
	"smarttime/internal/validation"
)

// EnvPrefix prefixes every environment override, e.g. SMARTTIME_LISTEN or
// SMARTTIME_HOLIDAYS_PATH.
const EnvPrefix = "SMARTTIME"

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" toml:"username" json:"username" split_words:"true"`
	Password string `yaml:"password" toml:"password" json:"password" split_words:"true" validate:"required_with=Username"`
}

// Enabled reports whether credentials are configured.
func (b BasicAuthConfig) Enabled() bool { return b.Username != "" }

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" toml:"listen" json:"listen" split_words:"true" validate:"required,hostname_port"`

	// Timezone is the IANA zone naive input is read in (e.g. "America/Sao_Paulo").
	Timezone string `yaml:"timezone" toml:"timezone" json:"timezone" split_words:"true" validate:"required,timezone"`

	// Locale picks relative-time phrasing and month names ("pt_BR", "en").
	Locale string `yaml:"locale" toml:"locale" json:"locale" split_words:"true" validate:"required"`

	// WeekStart is "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" toml:"week_start" json:"week_start" split_words:"true" validate:"oneof=monday sunday"`

	// DateFormat is the strftime layout used when a command gets no format.
	DateFormat string `yaml:"date_format" toml:"date_format" json:"date_format" split_words:"true" validate:"required,strftime"`

	HolidaysPath string `yaml:"holidays_path" toml:"holidays_path" json:"holidays_path" split_words:"true" validate:"required"`
	CacheDir     string `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir" split_words:"true"`

	// RefreshCron is a standard 5-field cron schedule for re-importing
	// holiday feeds while serving.
	RefreshCron string `yaml:"refresh" toml:"refresh" json:"refresh" split_words:"true"`

	HolidayFeeds []ics.Source `yaml:"holiday_feeds" toml:"holiday_feeds" json:"holiday_feeds" ignored:"true" validate:"dive"`
	HolidayRules []ics.Rule   `yaml:"holiday_rules" toml:"holiday_rules" json:"holiday_rules" ignored:"true" validate:"dive"`

	LogLevel  string `yaml:"log_level" toml:"log_level" json:"log_level" split_words:"true" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" toml:"log_format" json:"log_format" split_words:"true" validate:"oneof=text json"`

	// BasicAuth, when Username is set, protects every endpoint except /health.
	BasicAuth BasicAuthConfig `yaml:"basic_auth,omitempty" toml:"basic_auth,omitempty" json:"basic_auth" split_words:"true"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "America/Sao_Paulo",
		Locale:       "pt_BR",
		WeekStart:    "monday",
		DateFormat:   "%Y-%m-%d",
		HolidaysPath: "./var/holidays.json",
		CacheDir:     "./var/ics-cache",
		RefreshCron:  "0 */6 * * *",
		HolidayFeeds: []ics.Source{},
		HolidayRules: []ics.Rule{},
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	c.WeekStart = strings.ToLower(c.WeekStart)
	if c.WeekStart == "" {
		c.WeekStart = def.WeekStart
	}
	if c.DateFormat == "" {
		c.DateFormat = def.DateFormat
	}
	if c.HolidaysPath == "" {
		c.HolidaysPath = def.HolidaysPath
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.HolidayFeeds == nil {
		c.HolidayFeeds = []ics.Source{}
	}
	if c.HolidayRules == nil {
		c.HolidayRules = []ics.Rule{}
	}
}

// Validate checks field constraints and that the refresh schedule parses.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("config: refresh %q: %w", c.RefreshCron, err)
		}
	}
	return nil
}

// FirstWeekday maps WeekStart to a time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// Load loads configuration from path. Files ending in .toml are TOML,
// anything else is YAML.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - SMARTTIME_* environment variables override file values; they are
//     never written back.
//   - The result is normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: create default config file.
		cfg = DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
	case err != nil:
		return nil, err
	default:
		cfg = &Config{}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// FromEnv returns the defaults with SMARTTIME_* overrides applied, for runs
// without a config file.
func FromEnv() (*Config, error) {
	return finish(DefaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func encode(path string, cfg *Config) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(cfg)
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
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

	data, err := encode(path, cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".smarttime-config-*.tmp")
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
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
