// Package cli implements the barrot command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/harun/barrot/internal/config"
	"github.com/harun/barrot/internal/logger"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string

	// set by PersistentPreRunE for the running command
	cfg *config.Config
	lg  *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "barrot",
	Short: "barrot - tool registry, selection and execution",
	Long: `barrot keeps a registry of tools, picks the best tool for a free-text
task and executes it with result caching, running statistics and a
persistent execution log.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if lg != nil {
			return lg.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.barrot/barrot.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// setup loads the configuration and installs the logger
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		loaded.Logging.Level = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logger.New(logger.Config{
		Level:     loaded.Logging.Level,
		File:      loaded.Logging.File,
		Console:   loaded.Logging.Console,
		Pretty:    loaded.Logging.Pretty,
		Redaction: loaded.Logging.Redaction,
		MaxSize:   loaded.Logging.MaxSize,
		MaxAge:    loaded.Logging.MaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if lg != nil {
		lg.Close()
	}
	cfg, lg = loaded, l
	return nil
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}
