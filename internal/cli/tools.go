package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/spf13/cobra"
)

var (
	toolsCategory  string
	toolsMaxSafety int
	runParams      string
	runNoCache     bool
	runJSON        bool
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List, search and run registered tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tools with their statistics",
	Args:  cobra.NoArgs,
	RunE:  runToolsList,
}

var toolsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tools by name or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsSearch,
}

var toolsRunCmd = &cobra.Command{
	Use:   "run <name|id> [key=value...]",
	Short: "Execute a tool",
	Long: `Execute a tool addressed by name or id. Parameters are given as
key=value pairs or as a JSON object with --params. Values that parse as JSON
keep their type, e.g. count=3 is a number.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runToolsRun,
}

func init() {
	toolsListCmd.Flags().StringVar(&toolsCategory, "category", "", "only list tools of this category")

	toolsSearchCmd.Flags().StringVar(&toolsCategory, "category", "", "restrict the search to a category")
	toolsSearchCmd.Flags().IntVar(&toolsMaxSafety, "max-safety", toolregistry.SafetyDangerous, "highest safety level to include (1-3)")

	toolsRunCmd.Flags().StringVar(&runParams, "params", "", "parameters as a JSON object")
	toolsRunCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "bypass the result cache")
	toolsRunCmd.Flags().BoolVar(&runJSON, "json", false, "print the full result as JSON")

	toolsCmd.AddCommand(toolsListCmd, toolsSearchCmd, toolsRunCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsList(cmd *cobra.Command, args []string) error {
	manager, _, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	tools := manager.Registry().List()
	if toolsCategory != "" {
		category, err := toolregistry.ParseCategory(toolsCategory)
		if err != nil {
			return err
		}
		tools = manager.Registry().ByCategory(category)
	}

	printTools(cmd.OutOrStdout(), tools)
	return nil
}

func runToolsSearch(cmd *cobra.Command, args []string) error {
	category, err := optionalCategory(toolsCategory)
	if err != nil {
		return err
	}

	manager, _, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	tools := manager.Registry().Search(args[0], category, toolsMaxSafety)
	if len(tools) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tools found")
		return nil
	}
	printTools(cmd.OutOrStdout(), tools)
	return nil
}

func runToolsRun(cmd *cobra.Command, args []string) error {
	manager, _, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	var types map[string]string
	if id, err := manager.Resolve(args[0]); err == nil {
		if tool, err := manager.Registry().Get(id); err == nil {
			types = paramTypes(tool)
		}
	}
	params, err := parseParams(args[1:], runParams, types)
	if err != nil {
		return err
	}

	result := manager.ExecuteByName(cmd.Context(), args[0], params, !runNoCache)
	return printResult(cmd.OutOrStdout(), result, runJSON)
}

func optionalCategory(name string) (*toolregistry.Category, error) {
	if name == "" {
		return nil, nil
	}
	category, err := toolregistry.ParseCategory(name)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func printTools(w io.Writer, tools []*toolregistry.Tool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSAFETY\tUSES\tSUCCESS\tAVG")
	for _, tool := range tools {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.0f%%\t%.3fs\n",
			tool.ID,
			tool.Name,
			tool.Category,
			tool.SafetyLevel,
			tool.UsageCount,
			tool.SuccessRate*100,
			tool.AverageDuration,
		)
	}
	tw.Flush()
}
