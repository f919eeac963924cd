// Package cmd implements the roster command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	configcmd "github.com/Iron-Ham/roster/internal/cmd/config"
	"github.com/Iron-Ham/roster/internal/config"
	"github.com/Iron-Ham/roster/internal/event"
	"github.com/Iron-Ham/roster/internal/logging"
	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/random"
	"github.com/Iron-Ham/roster/internal/roster"
	"github.com/Iron-Ham/roster/internal/source"
	"github.com/Iron-Ham/roster/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Browse randomly generated users",
	Long: `Roster shows a list of users fetched from a random user service.

Press r to replace the list with a fresh batch, a to add one user at the
top, and / to filter by name. Run 'roster fetch' to print users without
the interactive interface.`,
	Args:         cobra.NoArgs,
	RunE:         runRoot,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/roster/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "random user endpoint (overrides source.base_url)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("source.base_url", rootCmd.PersistentFlags().Lookup("base-url"))

	rootCmd.Flags().Int64("seed", 0, "avatar color seed (overrides tui.avatar_seed, 0 = random)")
	_ = viper.BindPFlag("tui.avatar_seed", rootCmd.Flags().Lookup("seed"))

	configcmd.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// e.g., ROSTER_SOURCE_BASE_URL for source.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

func runRoot(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("roster needs an interactive terminal\nUse 'roster fetch' to print users instead")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	seed, seedSource, err := random.ResolveSeed(cfg.TUI.AvatarSeed, nil)
	if err != nil {
		return err
	}

	logger.Info("starting roster",
		"base_url", cfg.Source.BaseURL,
		"batch_size", cfg.Source.BatchSize,
		"config_file", viper.ConfigFileUsed(),
		"avatar_seed", seed,
		"seed_source", string(seedSource),
	)

	bus := event.NewBus(event.WithBusLogger(logger))
	ctrl := newController(cfg, bus, logger)
	app := tui.New(cmd.Context(), ctrl, bus, tuiOptions(cfg, seed), logger)

	if viper.ConfigFileUsed() != "" {
		config.Watch(logger, func(next *config.Config) {
			ctrl.SetCatalog(next.Notifications.Catalog())
			app.Reload(tuiOptions(next, seed))
		})
	}

	return app.Run()
}

// newLogger opens the rotating file logger, or a no-op logger when logging
// is disabled. The TUI owns the terminal, so nothing is logged to stderr.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLoggerWithRotation(cfg.Logging.ResolveDir(), cfg.Logging.Level, cfg.Logging.Rotation())
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger, nil
}

func newSource(cfg *config.Config, logger *logging.Logger) *source.HTTPSource {
	return source.NewHTTPSource(cfg.Source.BaseURL,
		source.WithTimeout(cfg.Source.Timeout()),
		source.WithUserAgent(cfg.Source.UserAgent),
		source.WithLogger(logger),
	)
}

func newController(cfg *config.Config, bus *event.Bus, logger *logging.Logger) *roster.Controller {
	return roster.New(newSource(cfg, logger), notify.NewBusSink(bus),
		roster.WithBatchSize(cfg.Source.BatchSize),
		roster.WithMinRefreshLatency(cfg.Refresh.MinLatency()),
		roster.WithCatalog(cfg.Notifications.Catalog()),
		roster.WithBus(bus),
		roster.WithLogger(logger),
	)
}

func tuiOptions(cfg *config.Config, seed int64) tui.Options {
	return tui.Options{
		Theme:         cfg.TUI.Theme,
		AlignRight:    cfg.TUI.AlignRight(),
		ShowAvatarURL: cfg.TUI.ShowAvatarURL,
		AvatarSeed:    seed,
	}
}
