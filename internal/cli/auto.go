package cli

import (
	"github.com/spf13/cobra"
)

var (
	autoParams string
	autoJSON   bool
)

var autoCmd = &cobra.Command{
	Use:   "auto <task> [key=value...]",
	Short: "Select the best tool for a task and run it",
	Long: `Select the best tool for a task and run it with the given parameters.
Quote the task when it has more than one word.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAuto,
}

func init() {
	autoCmd.Flags().StringVar(&autoParams, "params", "", "parameters as a JSON object")
	autoCmd.Flags().BoolVar(&autoJSON, "json", false, "print the full result as JSON")

	rootCmd.AddCommand(autoCmd)
}

func runAuto(cmd *cobra.Command, args []string) error {
	manager, _, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	// Parameters are typed against the tool selection will pick.
	var types map[string]string
	if tool, err := manager.Selector().SelectTool(args[0], nil, nil); err == nil {
		types = paramTypes(tool)
	}

	params, err := parseParams(args[1:], autoParams, types)
	if err != nil {
		return err
	}

	result := manager.AutoSelectAndExecute(cmd.Context(), args[0], params)
	return printResult(cmd.OutOrStdout(), result, autoJSON)
}
