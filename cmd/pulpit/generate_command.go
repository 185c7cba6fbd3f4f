package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pulpit/internal/api"
	"pulpit/internal/daemonrun"
	"pulpit/internal/logging"
	"pulpit/internal/notifications"
	"pulpit/internal/queue"
	"pulpit/internal/workflow"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var runDate string
	var seedTopic string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline once, without the daemon",
		Long: "Generate runs script generation, narration, rendering, and publication " +
			"for a single date in the current process. The daemon must not be running.",
		RunE: func(cmd *cobra.Command, args []string) error {
			date := strings.TrimSpace(runDate)
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("run date must be YYYY-MM-DD, got %q", date)
			}

			if client, err := ctx.dialClient(); err == nil {
				client.Close()
				return fmt.Errorf("daemon is running; use `pulpit enqueue` instead, or stop it first")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			item, err := resolveRunItem(cmd, store, date, strings.TrimSpace(seedTopic))
			if err != nil {
				return err
			}

			mgr := workflow.NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
			if err := daemonrun.RegisterStages(mgr, cfg, store, logger); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Running pipeline for %s (item #%d)\n", item.RunDate, item.ID)
			if err := mgr.RunItem(cmd.Context(), item); err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, api.QueueItemResponse{Item: api.FromQueueItem(item)})
			}
			switch {
			case item.Status == queue.StatusCompleted:
				final := item.FinalFile
				if final == "" {
					final = item.VideoFile
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Run completed: %s\n", final)
			case item.Status == queue.StatusReview || item.NeedsReview:
				fmt.Fprintf(cmd.OutOrStdout(), "Run needs review: %s\n", item.ReviewReason)
			case item.Status == queue.StatusFailed:
				return fmt.Errorf("run failed: %s", item.ErrorMessage)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Run stopped at status %s\n", item.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&runDate, "date", "d", "", "Run date in YYYY-MM-DD form (defaults to today)")
	cmd.Flags().StringVarP(&seedTopic, "topic", "t", "", "Seed topic passed to script generation")
	return cmd
}

// resolveRunItem reuses an in-flight item for the date so repeating the
// command resumes where the last attempt left off.
func resolveRunItem(cmd *cobra.Command, store *queue.Store, date, topic string) (*queue.Item, error) {
	active, err := store.ActiveRunDates(cmd.Context())
	if err != nil {
		return nil, err
	}
	if _, ok := active[date]; ok {
		item, err := store.FindByRunDate(cmd.Context(), date)
		if err != nil {
			return nil, err
		}
		if item != nil {
			switch item.Status {
			case queue.StatusCompleted:
				return nil, fmt.Errorf("run for %s already completed (item #%d)", date, item.ID)
			case queue.StatusFailed:
				return nil, fmt.Errorf("run for %s previously failed; retry it with `pulpit queue retry %d`", date, item.ID)
			case queue.StatusReview:
				return nil, fmt.Errorf("run for %s is awaiting review (item #%d)", date, item.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resuming existing run for %s\n", date)
			return item, nil
		}
	}
	return store.NewRun(cmd.Context(), date, topic)
}
