// Package config loads roster's configuration through viper.
//
// Values come from, in increasing priority: built-in defaults, the YAML
// config file, ROSTER_* environment variables, and command-line flags bound
// by the cmd package.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/roster/internal/logging"
	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/source"
)

// EnvPrefix is the prefix for environment overrides, e.g. ROSTER_SOURCE_BASE_URL.
const EnvPrefix = "ROSTER"

// Config represents the complete roster configuration
type Config struct {
	Source        SourceConfig        `mapstructure:"source" yaml:"source"`
	Refresh       RefreshConfig       `mapstructure:"refresh" yaml:"refresh"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	TUI           TUIConfig           `mapstructure:"tui" yaml:"tui"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// SourceConfig controls the remote user service
type SourceConfig struct {
	// BaseURL is the random user endpoint; size=N is appended per request
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// TimeoutMs bounds one batch request (default: 10000, 0 = no timeout)
	TimeoutMs int `mapstructure:"timeout_ms" yaml:"timeout_ms"`
	// BatchSize is how many users initialize and refresh request (default: 10)
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
	// UserAgent is sent with every request
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// RefreshConfig controls the refresh operation
type RefreshConfig struct {
	// MinLatencyMs is the pause before a refresh fetch starts (default: 1000)
	MinLatencyMs int `mapstructure:"min_latency_ms" yaml:"min_latency_ms"`
}

// NotificationsConfig controls toast placement and how long each kind stays up
type NotificationsConfig struct {
	// Position is "top" or "bottom" (default: "bottom")
	Position string `mapstructure:"position" yaml:"position"`
	// InfoVisibilityMs applies to the refresh success toast
	InfoVisibilityMs int `mapstructure:"info_visibility_ms" yaml:"info_visibility_ms"`
	// SuccessVisibilityMs applies to the add success toast
	SuccessVisibilityMs int `mapstructure:"success_visibility_ms" yaml:"success_visibility_ms"`
	// ErrorVisibilityMs applies to the refresh failure toast
	ErrorVisibilityMs int `mapstructure:"error_visibility_ms" yaml:"error_visibility_ms"`
	// AddErrorVisibilityMs applies to the add failure toast (default: 2000)
	AddErrorVisibilityMs int `mapstructure:"add_error_visibility_ms" yaml:"add_error_visibility_ms"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is the color theme (default: "default")
	Theme string `mapstructure:"theme" yaml:"theme"`
	// Align is the row alignment, "left" or "right" (default: "left")
	Align string `mapstructure:"align" yaml:"align"`
	// ShowAvatarURL renders the avatar URI under each name (default: true)
	ShowAvatarURL bool `mapstructure:"show_avatar_url" yaml:"show_avatar_url"`
	// AvatarSeed fixes avatar colors across runs; 0 picks a random seed
	AvatarSeed int64 `mapstructure:"avatar_seed" yaml:"avatar_seed"`
}

// LoggingConfig controls file logging
type LoggingConfig struct {
	// Enabled controls whether logs are written at all (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where roster.log is written (default: <config dir>/logs)
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:   source.DefaultBaseURL,
			TimeoutMs: int(source.DefaultTimeout / time.Millisecond),
			BatchSize: 10,
			UserAgent: source.DefaultUserAgent,
		},
		Refresh: RefreshConfig{
			MinLatencyMs: 1000,
		},
		Notifications: NotificationsConfig{
			Position:             string(notify.DefaultPosition),
			InfoVisibilityMs:     1000,
			SuccessVisibilityMs:  1000,
			ErrorVisibilityMs:    1000,
			AddErrorVisibilityMs: 2000,
		},
		TUI: TUIConfig{
			Theme:         "default",
			Align:         "left",
			ShowAvatarURL: true,
			AvatarSeed:    0,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// Timeout returns the request timeout as a time.Duration (0 means none)
func (c *SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// MinLatency returns the refresh delay as a time.Duration
func (c *RefreshConfig) MinLatency() time.Duration {
	return time.Duration(c.MinLatencyMs) * time.Millisecond
}

// Catalog returns the default notification copy with this config's
// position and timings applied.
func (c *NotificationsConfig) Catalog() notify.Catalog {
	cat := notify.DefaultCatalog()
	if c.Position != "" {
		cat.Position = notify.Position(c.Position)
	}
	cat.RefreshSucceeded.Visibility = ms(c.InfoVisibilityMs)
	cat.RefreshFailed.Visibility = ms(c.ErrorVisibilityMs)
	cat.AddSucceeded.Visibility = ms(c.SuccessVisibilityMs)
	cat.AddFailed.Visibility = ms(c.AddErrorVisibilityMs)
	return cat
}

// AlignRight reports whether rows are right-aligned.
func (c *TUIConfig) AlignRight() bool {
	return c.Align == "right"
}

// ResolveDir returns the log directory, defaulting to <config dir>/logs.
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(ConfigDir(), "logs")
}

// Rotation returns the rotation settings for the log writer.
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Source defaults
	viper.SetDefault("source.base_url", defaults.Source.BaseURL)
	viper.SetDefault("source.timeout_ms", defaults.Source.TimeoutMs)
	viper.SetDefault("source.batch_size", defaults.Source.BatchSize)
	viper.SetDefault("source.user_agent", defaults.Source.UserAgent)

	// Refresh defaults
	viper.SetDefault("refresh.min_latency_ms", defaults.Refresh.MinLatencyMs)

	// Notification defaults
	viper.SetDefault("notifications.position", defaults.Notifications.Position)
	viper.SetDefault("notifications.info_visibility_ms", defaults.Notifications.InfoVisibilityMs)
	viper.SetDefault("notifications.success_visibility_ms", defaults.Notifications.SuccessVisibilityMs)
	viper.SetDefault("notifications.error_visibility_ms", defaults.Notifications.ErrorVisibilityMs)
	viper.SetDefault("notifications.add_error_visibility_ms", defaults.Notifications.AddErrorVisibilityMs)

	// TUI defaults
	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.align", defaults.TUI.Align)
	viper.SetDefault("tui.show_avatar_url", defaults.TUI.ShowAvatarURL)
	viper.SetDefault("tui.avatar_seed", defaults.TUI.AvatarSeed)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Watch reloads the config whenever the file viper read changes and passes
// each valid result to onChange. Invalid edits are logged and ignored, so
// the running session keeps its last good config.
func Watch(logger *logging.Logger, onChange func(*Config)) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithComponent("config")

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load()
		if err != nil {
			logger.Warn("ignoring invalid config change", "file", e.Name, "error", err.Error())
			return
		}
		logger.Info("config reloaded", "file", e.Name, "op", e.Op.String())
		onChange(cfg)
	})
	viper.WatchConfig()
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "roster")
	}
	// Fall back to ~/.config/roster
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roster"
	}
	return filepath.Join(home, ".config", "roster")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
