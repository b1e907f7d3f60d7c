package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/EricFan2002/GTOJsonExplorer/internal/cli"
	"github.com/EricFan2002/GTOJsonExplorer/internal/config"
	"github.com/spf13/cobra"
)

// app is the state shared by every command once the root pre-run loaded
// the configuration.
var app struct {
	cfg    config.Config
	logger *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "gtox",
	Short: "Browse solved poker game trees",
	Long: `gtox explores the game trees written by poker solvers.

Serve uploaded solver outputs over HTTP with "gtox serve", then browse
them lazily in the terminal with "gtox browse", print them with
"gtox tree" or hand them to an agent with "gtox mcp".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
		}

		logger, err := cli.NewLogger(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		app.cfg = cfg
		app.logger = logger
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "gtox.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
