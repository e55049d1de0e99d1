package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/spf13/cobra"
)

var (
	selectCategory string
	selectChain    bool
	selectMaxTools int
	selectExplain  bool
)

var selectCmd = &cobra.Command{
	Use:   "select <task...>",
	Short: "Pick the best tool for a task without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectCategory, "category", "", "require a tool category")
	selectCmd.Flags().BoolVar(&selectChain, "chain", false, "select one tool per task word, one per category")
	selectCmd.Flags().IntVar(&selectMaxTools, "max-tools", 3, "maximum chain length")
	selectCmd.Flags().BoolVar(&selectExplain, "explain", false, "print the score of every candidate")

	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	task := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	category, err := optionalCategory(selectCategory)
	if err != nil {
		return err
	}

	manager, _, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	if selectChain {
		chain := manager.Selector().SelectToolChain(task, selectMaxTools)
		if len(chain) == 0 {
			return fmt.Errorf("No suitable tool found")
		}
		for i, tool := range chain {
			fmt.Fprintf(out, "%d. %s (%s)\n", i+1, tool.Name, tool.ID)
		}
		return nil
	}

	if selectExplain {
		candidates := manager.Registry().Search(task, category, toolregistry.SafetyDangerous)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tID\tSCORE")
		for _, tool := range candidates {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\n", tool.Name, tool.ID, manager.Selector().Score(tool, task, nil))
		}
		tw.Flush()
	}

	tool, err := manager.Selector().SelectTool(task, category, nil)
	if err != nil {
		return fmt.Errorf("No suitable tool found")
	}
	fmt.Fprintf(out, "Selected: %s (%s)\n", tool.Name, tool.ID)
	return nil
}
