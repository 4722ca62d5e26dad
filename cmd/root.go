package cmd

import (
	"fmt"
	"log/slog"

	"github.com/AutumnsGrove/gw/internal/config"
	"github.com/AutumnsGrove/gw/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Global flag values.
var (
	cfgFile    string
	verbose    bool
	logFormat  string
	jsonOutput bool
)

// Cfg holds the loaded configuration, available to all subcommands.
var Cfg *config.Config

// SetVersionInfo is called from main to inject build-time version info.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	buildDate = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(fmt.Sprintf("gw version {{.Version}} (commit: %s, built: %s)\n", commit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "gw",
	Short: "gw: safety-tiered wrapper for git, gh, wrangler and dev tools",
	Long: `gw wraps git, the GitHub CLI, wrangler and the JavaScript dev tools
behind safety tiers. Read-only operations always run; state-changing
operations require --write; destructive operations additionally ask for
confirmation when a human is at the terminal.

gw hook is the interception entry point agents' shell commands pass
through before they run.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging first so config loading can log.
		logging.Setup(logging.Options{Format: logFormat, Verbose: verbose})

		var err error
		Cfg, err = config.Load(cfgFile)
		if err != nil {
			if cmd.Name() == "hook" {
				// The hook never refuses a command because of local config.
				slog.Warn("loading config failed, using built-in defaults", "error", err)
				Cfg = nil
				return nil
			}
			return fmt.Errorf("loading config: %w", err)
		}

		format := logFormat
		if !cmd.Flags().Changed("log-format") {
			format = Cfg.Logging.Format
		}
		logging.Setup(logging.Options{Format: format, Level: Cfg.Logging.Level, Verbose: verbose})
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $GW_ROOT/.gw.yaml or ~/.config/gw/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format (text or json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit one JSON record per result (also GW_JSON=1)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("gw version {{.Version}} (commit: %s, built: %s)\n", commit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
