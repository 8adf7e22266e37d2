// Package cli provides the command-line interface for the alert service.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Priyanshu525/trading-alert/internal/config"
	"github.com/Priyanshu525/trading-alert/internal/logging"
	"github.com/Priyanshu525/trading-alert/internal/notify"
	"github.com/Priyanshu525/trading-alert/internal/oracle"
	"github.com/Priyanshu525/trading-alert/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.AlertStore
	Oracle   oracle.Oracle
	Notifier notify.Notifier
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "alertd",
		Short: "Price alert daemon for fx instruments",
		Long: `alertd watches live fx prices and notifies a Telegram chat when a
price alert's condition is met.

Use 'alertd serve' to run the evaluation loop with the HTTP control surface,
or the 'alert' subcommands to manage alerts directly against the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			// version, help and completion need no store or providers.
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return app.initDependencies()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				app.Store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/alertd)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newAlertCmd(app))
	rootCmd.AddCommand(newQuotesCmd(app))
	rootCmd.AddCommand(newNotifyTestCmd(app))

	return rootCmd
}

// initDependencies wires the store, oracle and notifier from configuration.
func (app *App) initDependencies() error {
	dataStore, err := store.NewSQLiteStore(app.Config.Storage.Path)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	app.Store = dataStore
	app.Logger.Debug().Str("path", app.Config.Storage.Path).Msg("SQLite store initialized")

	app.Oracle = oracle.NewOandaOracle(oracle.OandaConfig{
		BaseURL: app.Config.Oanda.BaseURL(),
		Token:   app.Config.Oanda.Token,
	}, app.Logger)

	if app.Config.Telegram.BotToken != "" && app.Config.Telegram.ChatID != "" {
		app.Notifier = notify.NewTelegramNotifier(app.Config.Telegram, app.Logger)
		app.Logger.Debug().Msg("Telegram notifier initialized")
	} else {
		app.Notifier = notify.NewNoopNotifier()
		app.Logger.Warn().Msg("Telegram not configured, notifications disabled")
	}

	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("alertd v%s\n", Version)
		},
	}
}
