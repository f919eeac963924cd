// Package config provides CLI commands for managing roster configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/roster/internal/config"
	"github.com/Iron-Ham/roster/internal/tui/styles"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify roster configuration",
	Long: `View or modify roster configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  roster config set notifications.position top
  roster config set refresh.min_latency_ms 0
  roster config set tui.theme nord

Run 'roster config show' to see every key and its current value.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/roster/config.yaml with all available options.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  roster config reset                        # Reset all to defaults
  roster config reset notifications.position # Reset only the toast position`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigReset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configResetCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyKind describes how a value given to 'config set' is parsed.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindInt64
	kindBool
	kindChoice
)

type keySpec struct {
	kind    keyKind
	choices func() []string
}

// settableKeys lists every key 'config set' and 'config reset' accept.
var settableKeys = map[string]keySpec{
	"source.base_url":                       {kind: kindString},
	"source.timeout_ms":                     {kind: kindInt},
	"source.batch_size":                     {kind: kindInt},
	"source.user_agent":                     {kind: kindString},
	"refresh.min_latency_ms":                {kind: kindInt},
	"notifications.position":                {kind: kindChoice, choices: appconfig.ValidPositions},
	"notifications.info_visibility_ms":      {kind: kindInt},
	"notifications.success_visibility_ms":   {kind: kindInt},
	"notifications.error_visibility_ms":     {kind: kindInt},
	"notifications.add_error_visibility_ms": {kind: kindInt},
	"tui.theme":                             {kind: kindChoice, choices: styles.ValidThemes},
	"tui.align":                             {kind: kindChoice, choices: appconfig.ValidAlignments},
	"tui.show_avatar_url":                   {kind: kindBool},
	"tui.avatar_seed":                       {kind: kindInt64},
	"logging.enabled":                       {kind: kindBool},
	"logging.level":                         {kind: kindChoice, choices: appconfig.ValidLogLevels},
	"logging.dir":                           {kind: kindString},
	"logging.max_size_mb":                   {kind: kindInt},
	"logging.max_backups":                   {kind: kindInt},
	"logging.compress":                      {kind: kindBool},
}

// SettableKeys returns the keys 'config set' accepts, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseValue converts a command-line value for key into its typed form.
func parseValue(key, value string) (any, error) {
	spec, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(SettableKeys(), ", "))
	}

	switch spec.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case kindInt64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case kindChoice:
		valid := spec.choices()
		if !slices.Contains(valid, value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(valid, ", "))
		}
		return value, nil
	default:
		return value, nil
	}
}

// defaultValues maps every settable key to its default.
func defaultValues() map[string]any {
	d := appconfig.Default()
	return map[string]any{
		"source.base_url":                       d.Source.BaseURL,
		"source.timeout_ms":                     d.Source.TimeoutMs,
		"source.batch_size":                     d.Source.BatchSize,
		"source.user_agent":                     d.Source.UserAgent,
		"refresh.min_latency_ms":                d.Refresh.MinLatencyMs,
		"notifications.position":                d.Notifications.Position,
		"notifications.info_visibility_ms":      d.Notifications.InfoVisibilityMs,
		"notifications.success_visibility_ms":   d.Notifications.SuccessVisibilityMs,
		"notifications.error_visibility_ms":     d.Notifications.ErrorVisibilityMs,
		"notifications.add_error_visibility_ms": d.Notifications.AddErrorVisibilityMs,
		"tui.theme":                             d.TUI.Theme,
		"tui.align":                             d.TUI.Align,
		"tui.show_avatar_url":                   d.TUI.ShowAvatarURL,
		"tui.avatar_seed":                       d.TUI.AvatarSeed,
		"logging.enabled":                       d.Logging.Enabled,
		"logging.level":                         d.Logging.Level,
		"logging.dir":                           d.Logging.Dir,
		"logging.max_size_mb":                   d.Logging.MaxSizeMB,
		"logging.max_backups":                   d.Logging.MaxBackups,
		"logging.compress":                      d.Logging.Compress,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintf(out, "# Invalid configuration, showing defaults:\n#   %s\n",
			strings.ReplaceAll(err.Error(), "\n", "\n#   "))
		cfg = appconfig.Default()
	}

	return writeYAML(out, cfg, nil)
}

// sectionComments annotates the top-level keys written by 'config init'.
var sectionComments = map[string]string{
	"source":        "Remote random user service",
	"refresh":       "Pull-to-refresh behavior",
	"notifications": "Toasts shown after refresh and add (position: top or bottom)",
	"tui":           "Terminal UI (theme: " + strings.Join(styles.ValidThemes(), ", ") + "; align: left or right)",
	"logging":       "File logging (level: debug, info, warn, error)",
}

// writeYAML encodes cfg, adding a comment above each top-level key that has
// one in comments.
func writeYAML(w io.Writer, cfg *appconfig.Config, comments map[string]string) error {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if doc.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if c, ok := comments[doc.Content[i].Value]; ok {
				doc.Content[i].HeadComment = c
			}
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return enc.Close()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	typedValue, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)

	// Reject values that parse but break validation (e.g. batch_size 0)
	if _, err := appconfig.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	configFile, err := saveConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// saveConfig writes viper's settings to the active config file, or to the
// default location when none was read.
func saveConfig() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = appconfig.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'roster config set' to modify values", configFile)
	}

	if err := os.MkdirAll(appconfig.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# Roster configuration")
	fmt.Fprintf(f, "# Every key can be overridden with a %s_ environment variable,\n", appconfig.EnvPrefix)
	fmt.Fprintf(f, "# e.g. %s_NOTIFICATIONS_POSITION=top\n\n", appconfig.EnvPrefix)
	if err := writeYAML(f, appconfig.Default(), sectionComments); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize roster's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", appconfig.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_SOURCE_BASE_URL)\n", appconfig.EnvPrefix, appconfig.EnvPrefix)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = appconfig.ConfigFile()
	}

	// Check if config file exists, if not create it
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "Config file doesn't exist, creating with defaults...")
		if err := runConfigInit(cmd, args); err != nil {
			return err
		}
		configFile = appconfig.ConfigFile()
	}

	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found. Set $EDITOR environment variable")
	}

	editorCmd := execCommand(editor, configFile)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file saved: %s\n", configFile)
	return nil
}

// findEditor returns $EDITOR, $VISUAL, or the first common editor on PATH.
func findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	for _, e := range []string{"vim", "nano", "vi"} {
		if _, err := execLookPath(e); err == nil {
			return e
		}
	}
	return ""
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	defaults := defaultValues()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for key, value := range defaults {
			viper.Set(key, value)
		}
		fmt.Fprintln(out, "Reset all configuration to defaults.")
	} else {
		key := args[0]
		value, ok := defaults[key]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(SettableKeys(), ", "))
		}
		viper.Set(key, value)
		fmt.Fprintf(out, "Reset %s to default: %v\n", key, value)
	}

	configFile, err := saveConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}
