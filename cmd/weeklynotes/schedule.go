package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/weeklynotes/internal/week"
)

var (
	cronSpec   string
	runOnStart bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run every week on a cron schedule until interrupted",
	Long: "schedule stays in the foreground and summarizes the previous week each time the\n" +
		"cron expression fires. A trigger that arrives while a run is still going is skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := cronSpec
		if spec == "" {
			spec = cfg.Schedule.Cron
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		job := func() {
			window := week.LastWeek(time.Now())
			log.Printf("Cron triggered, summarizing %s", window.Display())
			result, err := runWeek(ctx, window)
			if err != nil {
				log.Printf("Scheduled run failed: %s", describeError(err))
				return
			}
			printResult(result)
		}

		c := newScheduler()
		if _, err := c.AddFunc(spec, job); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
		}

		if runOnStart {
			log.Println("Running initial summary...")
			job()
		}

		c.Start()
		log.Printf("Scheduled weekly summary with cron expression: %s", spec)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down...", sig)

		cancel()
		<-c.Stop().Done()
		log.Println("Shutdown complete")
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&cronSpec, "cron", "", `Cron expression (default: config, "0 9 * * 1")`)
	scheduleCmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Also run once immediately")
	addRunFlags(scheduleCmd.Flags())
	// The window always follows the clock when scheduled.
	scheduleCmd.Flags().MarkHidden("week-start")
}

// newScheduler returns a cron runner that drops overlapping triggers.
func newScheduler() *cron.Cron {
	logger := cron.PrintfLogger(log.Default())
	if verbose {
		logger = cron.VerbosePrintfLogger(log.Default())
	}
	return cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
}
