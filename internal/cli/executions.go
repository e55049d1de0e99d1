package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harun/barrot/pkg/toolexecutor"
	"github.com/spf13/cobra"
)

var (
	executionsLimit  int
	executionsTool   string
	executionsFollow bool
	executionsJSON   bool
)

var executionsCmd = &cobra.Command{
	Use:   "executions",
	Short: "Show the execution log",
	Long: `Show the most recent entries of the execution log. With --follow the
command keeps running and prints new entries as other processes append them.`,
	Args: cobra.NoArgs,
	RunE: runExecutions,
}

func init() {
	executionsCmd.Flags().IntVar(&executionsLimit, "limit", 20, "number of recent records to show, 0 for all")
	executionsCmd.Flags().StringVar(&executionsTool, "tool", "", "only show records of this tool id")
	executionsCmd.Flags().BoolVar(&executionsFollow, "follow", false, "watch the log and print new records")
	executionsCmd.Flags().BoolVar(&executionsJSON, "json", false, "print records as JSON")

	rootCmd.AddCommand(executionsCmd)
}

func runExecutions(cmd *cobra.Command, args []string) error {
	store, err := openLogStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open execution log: %w", err)
	}
	defer store.Close()

	records, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to read execution log: %w", err)
	}

	out := cmd.OutOrStdout()
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.ExecutionID] = true
	}

	records = filterRecords(records, executionsTool)
	if executionsLimit > 0 && len(records) > executionsLimit {
		records = records[len(records)-executionsLimit:]
	}
	if err := printRecords(out, records, executionsJSON, true); err != nil {
		return err
	}

	if !executionsFollow {
		return nil
	}

	changed := make(chan struct{}, 1)
	watcher, err := toolexecutor.NewLogWatcher(cfg.Tools.ExecutionLog.Path, lg.Component("executions"), func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch execution log: %w", err)
	}
	defer watcher.Stop()

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			records, err := store.Load()
			if err != nil {
				lg.Warn().Err(err).Msg("Could not reload execution log")
				continue
			}
			var fresh []toolexecutor.ExecutionRecord
			for _, rec := range records {
				if !seen[rec.ExecutionID] {
					seen[rec.ExecutionID] = true
					fresh = append(fresh, rec)
				}
			}
			if err := printRecords(out, filterRecords(fresh, executionsTool), executionsJSON, false); err != nil {
				return err
			}
		}
	}
}

func filterRecords(records []toolexecutor.ExecutionRecord, toolID string) []toolexecutor.ExecutionRecord {
	if toolID == "" {
		return records
	}
	filtered := records[:0:0]
	for _, rec := range records {
		if rec.ToolID == toolID {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func printRecords(w io.Writer, records []toolexecutor.ExecutionRecord, asJSON, header bool) error {
	if asJSON {
		for _, rec := range records {
			if err := writeJSON(w, rec); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if header {
		fmt.Fprintln(tw, "EXECUTION\tTOOL\tTIME\tDURATION\tSTATUS\tDETAIL")
	}
	for _, rec := range records {
		status, detail := "ok", ""
		if rec.Result != nil {
			detail = *rec.Result
		}
		if !rec.Success {
			status = "failed"
			if rec.Error != nil {
				detail = *rec.Error
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3fs\t%s\t%s\n",
			rec.ExecutionID, rec.ToolID, rec.Timestamp, rec.Duration, status, detail)
	}
	return tw.Flush()
}
