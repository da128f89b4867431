package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lab1702/starbattle/config"
	"github.com/lab1702/starbattle/logging"
)

var (
	// Global flags
	configPath string
	logLevel   string
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "starbattle",
		Short: "Starbattle - a deterministic rebel versus imperial space battle",
		Long: `Starbattle runs an autonomous 2D space battle between two factions.

Examples:
  starbattle serve --addr :8080
  starbattle simulate --runs 5 --ticks 3600 --seed 42
  starbattle version`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./starbattle.yaml or ./configs/starbattle.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override the configured log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// loadConfig reads configuration and builds the process logger
func loadConfig(w io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, err := logging.New(w, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
