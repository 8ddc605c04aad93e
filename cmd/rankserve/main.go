/*
Package main implements the autocomplete ranking server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

rankserve merges, deduplicates and ranks autocomplete matches coming from
several providers over successive passes. It runs as a MessagePack IPC
server for integration with a browser or launcher front end, or as a CLI
for testing and debugging ranking policy.

# Usage

Start the server with default settings:

	rankserve

Use a custom config file and enable debug mode:

	rankserve --config ./rankserve.toml -d

Run in CLI mode for interactive testing:

	rankserve -c --limit 6

Write a fresh default config:

	rankserve config rebuild

# Configuration

Ranking policy, demotions per page, server limits and the history seed
are read from a TOML file. The file is created with defaults if it does
not exist and, with watch_config set, changes apply to sessions started
after the save.

	[ranking]
	max_matches = 8
	max_url_matches = 0

	[demotions.ntp_realbox]
	search_suggest_entity = 0.5

	[history]
	seed_file = "history.toml"
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/rankserve/internal/cli"
	"github.com/bastiangx/rankserve/internal/logger"
	"github.com/bastiangx/rankserve/pkg/config"
	"github.com/bastiangx/rankserve/pkg/provider"
	"github.com/bastiangx/rankserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0-beta"
	gh      = "https://github.com/bastiangx/rankserve"
)

var (
	configPath string
	debugMode  bool
	cliMode    bool
	limit      int
)

var rootCmd = &cobra.Command{
	Use:   "rankserve",
	Short: "Ranks, merges and dedups autocomplete matches",
	Long: `rankserve merges autocomplete matches from several providers across
passes, removes duplicates and returns a stable ranked list.

By default it serves MessagePack requests on stdin/stdout.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(debugMode)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.LoadConfigWithPriority(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		providers, err := provider.Builtin(cfg)
		if err != nil {
			return fmt.Errorf("init providers: %w", err)
		}

		// CLI would be mainly used for testing and dbg purposes.
		if cliMode {
			log.SetReportTimestamp(false)
			if limit <= 0 {
				limit = cfg.CLI.DefaultLimit
			}
			return cli.NewInputHandler(cfg, providers, limit).Start()
		}

		log.Debugf("Using config file: (%s)", path)
		showStartupInfo(path)
		srv := server.NewServer(cfg, path, providers...)
		return srv.Start(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current version",
	Run: func(cmd *cobra.Command, args []string) {
		l := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)
		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		l.SetStyles(styles)

		l.Print("")
		l.Print("[ rankserve ] Ranks autocomplete matches across providers")
		l.Print("", "version", Version)
		l.Print("")
		l.Print("use -h or --help to see available options")
		l.Print("Github Repo", "gh", gh)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Overwrite the config file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		if err := config.RebuildConfigFile(path); err != nil {
			return fmt.Errorf("rebuilding %s: %w", path, err)
		}
		log.Infof("Wrote default config to %s", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug mode")
	rootCmd.Flags().BoolVarP(&cliMode, "cli", "c", false, "Run CLI -- useful for testing and debugging")
	rootCmd.Flags().IntVar(&limit, "limit", 0, "Number of matches to show in CLI mode (default from config)")

	configCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(path string) {
	l := logger.New("")
	l.SetLevel(log.InfoLevel)
	l.Infof("Version: %s", Version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	if path != "" {
		l.Infof("config: ( %s )", path)
	}
	l.Info("status: ready")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
