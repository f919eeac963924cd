package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/tui/styles"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "source.batch_size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

const (
	maxBatchSize = 100
	maxLogSizeMB = 1000 // 1GB
	// Upper bound for any duration setting, in milliseconds.
	maxDurationMs = 10 * 60 * 1000
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidPositions returns the list of valid notification positions
func ValidPositions() []string {
	return []string{string(notify.PositionTop), string(notify.PositionBottom)}
}

// ValidAlignments returns the list of valid row alignments
func ValidAlignments() []string {
	return []string{"left", "right"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSource()...)
	errors = append(errors, c.validateRefresh()...)
	errors = append(errors, c.validateNotifications()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateSource validates the SourceConfig
func (c *Config) validateSource() []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(c.Source.BaseURL)
	switch {
	case c.Source.BaseURL == "":
		errors = append(errors, ValidationError{
			Field:   "source.base_url",
			Value:   c.Source.BaseURL,
			Message: "must not be empty",
		})
	case err != nil || !u.IsAbs() || u.Host == "":
		errors = append(errors, ValidationError{
			Field:   "source.base_url",
			Value:   c.Source.BaseURL,
			Message: "must be an absolute URL",
		})
	case u.Scheme != "http" && u.Scheme != "https":
		errors = append(errors, ValidationError{
			Field:   "source.base_url",
			Value:   c.Source.BaseURL,
			Message: "scheme must be http or https",
		})
	}

	errors = append(errors, validateDurationMs("source.timeout_ms", c.Source.TimeoutMs)...)

	if c.Source.BatchSize < 1 || c.Source.BatchSize > maxBatchSize {
		errors = append(errors, ValidationError{
			Field:   "source.batch_size",
			Value:   c.Source.BatchSize,
			Message: fmt.Sprintf("must be between 1 and %d", maxBatchSize),
		})
	}

	return errors
}

// validateRefresh validates the RefreshConfig
func (c *Config) validateRefresh() []ValidationError {
	return validateDurationMs("refresh.min_latency_ms", c.Refresh.MinLatencyMs)
}

// validateNotifications validates the NotificationsConfig
func (c *Config) validateNotifications() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidPositions(), c.Notifications.Position) {
		errors = append(errors, ValidationError{
			Field:   "notifications.position",
			Value:   c.Notifications.Position,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidPositions(), ", ")),
		})
	}

	errors = append(errors, validateDurationMs("notifications.info_visibility_ms", c.Notifications.InfoVisibilityMs)...)
	errors = append(errors, validateDurationMs("notifications.success_visibility_ms", c.Notifications.SuccessVisibilityMs)...)
	errors = append(errors, validateDurationMs("notifications.error_visibility_ms", c.Notifications.ErrorVisibilityMs)...)
	errors = append(errors, validateDurationMs("notifications.add_error_visibility_ms", c.Notifications.AddErrorVisibilityMs)...)

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !styles.IsValidTheme(c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(styles.ValidThemes(), ", ")),
		})
	}

	if !slices.Contains(ValidAlignments(), c.TUI.Align) {
		errors = append(errors, ValidationError{
			Field:   "tui.align",
			Value:   c.TUI.Align,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidAlignments(), ", ")),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func validateDurationMs(field string, value int) []ValidationError {
	if value < 0 {
		return []ValidationError{{
			Field:   field,
			Value:   value,
			Message: "must be non-negative",
		}}
	}
	if value > maxDurationMs {
		return []ValidationError{{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxDurationMs),
		}}
	}
	return nil
}
