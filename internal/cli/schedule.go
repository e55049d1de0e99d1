package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/harun/barrot/internal/config"
	"github.com/harun/barrot/internal/metrics"
	"github.com/harun/barrot/pkg/scheduler"
	"github.com/harun/barrot/pkg/toolexecutor"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var scheduleOnce bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the configured tool schedules in the foreground",
	Long: `Run every entry of "schedules" from the config file on its cron
expression until interrupted. When metrics are enabled the Prometheus
endpoint is served on metrics.addr at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleOnce, "once", false, "run every job once immediately and exit")

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if len(cfg.Schedules) == 0 {
		return fmt.Errorf("no schedules configured")
	}

	manager, m, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	sched, err := buildScheduler(cfg.Schedules, manager, m)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if scheduleOnce {
		var failed int
		for _, job := range sched.Jobs() {
			result, err := sched.RunNow(ctx, job.ID)
			if err != nil {
				return err
			}
			status := "ok"
			if !result.Success {
				status = "failed: " + result.Error
				failed++
			}
			fmt.Fprintf(out, "%s: %s\n", job.Name, status)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d jobs failed", failed, len(cfg.Schedules))
		}
		return nil
	}

	var server *http.Server
	if cfg.Metrics.Enabled {
		server = serveMetrics(cfg.Metrics.Addr, m)
	}

	printJobs(cmd, sched.Jobs())
	sched.Start()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}
	return sched.Stop(shutdownCtx)
}

func buildScheduler(entries []config.ScheduleConfig, runner scheduler.Runner, m *metrics.Metrics) (*scheduler.Scheduler, error) {
	sched := scheduler.New(runner, lg.Zerolog(), scheduler.WithObserver(func(job scheduler.Job, result toolexecutor.Result) {
		m.ScheduledRun(job.Name, result.Success)
	}))

	for _, entry := range entries {
		if _, err := sched.Add(scheduler.JobSpec{
			Name:       entry.Name,
			Schedule:   entry.Cron,
			Tool:       entry.Tool,
			Parameters: entry.Parameters,
			UseCache:   entry.UseCache,
		}); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()

	lg.Info().Str("addr", addr).Msg("Serving metrics")
	return server
}

func printJobs(cmd *cobra.Command, jobs []*scheduler.Job) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tSCHEDULE\tTOOL\tNEXT RUN")
	for _, job := range jobs {
		next := "-"
		if job.NextRun != nil {
			next = job.NextRun.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", job.Name, job.Schedule, job.Tool, next)
	}
	tw.Flush()
}
