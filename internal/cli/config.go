package cli

import (
	"fmt"
	"os"

	"github.com/harun/barrot/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFormat string
	configForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "output format (yaml, json)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch configFormat {
	case "json":
		fmt.Fprintln(out, cfg.String())
	case "yaml":
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s\n%s", config.NewLoader(cfgFile).GetConfigPath(), data)
	default:
		return fmt.Errorf("unknown format: %s", configFormat)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	path := loader.GetConfigPath()

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", path)
	}

	created, err := config.NewWizard(cmd.InOrStdin(), cmd.OutOrStdout()).Run(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := loader.Save(created); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
