package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahakola/kbcenter-go/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// loadedCfg holds the effective configuration loaded by PersistentPreRunE.
// Available to all subcommands after the root pre-run phase completes.
var loadedCfg *config.Config

// httpClientTimeout bounds metadata requests so a hung connection cannot
// block a CLI command indefinitely.
const httpClientTimeout = 30 * time.Second

// defaultHTTPClient returns an HTTP client with a sensible timeout.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: httpClientTimeout}
}

// skipConfigCommands lists commands that handle config loading themselves.
// Login must work before any config file exists; logout only touches the
// credentials file. Keyed by CommandPath() for explicit matching.
var skipConfigCommands = map[string]bool{
	"kbcenter login":  true,
	"kbcenter logout": true,
}

// newRootCmd builds the fully-assembled root command with all subcommands
// registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kbcenter",
		Short:   "Help-center CLI client",
		Long:    "A CLI for managing multi-tenant help-center knowledge bases, articles, and teams.",
		Version: version,
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfigCommands[cmd.CommandPath()] {
				return nil
			}

			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	// Register subcommands.
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newKBCmd())
	cmd.AddCommand(newArticlesCmd())
	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newTeamCmd())
	cmd.AddCommand(newAnalyticsCmd())
	cmd.AddCommand(newSnowCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// loadConfig resolves the effective config file path and loads it into
// loadedCfg for use by subcommands. --config wins over KBCENTER_CONFIG,
// which wins over the platform default.
func loadConfig() error {
	path := config.ConfigPathFromEnv()
	if flagConfigPath != "" {
		path = flagConfigPath
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	loadedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger configured by the loaded config and
// CLI flags. The config log level is the baseline; --verbose and --quiet
// override it because CLI flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if loadedCfg != nil {
		switch loadedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
