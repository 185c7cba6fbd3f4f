package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pulpit/internal/ipc"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var runDate string
	var seedTopic string

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a sermon run for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			date := strings.TrimSpace(runDate)
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("run date must be YYYY-MM-DD, got %q", date)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EnqueueRun(date, strings.TrimSpace(seedTopic))
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued run %s as item #%d\n", resp.Item.RunDate, resp.Item.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&runDate, "date", "d", "", "Run date in YYYY-MM-DD form (defaults to today)")
	cmd.Flags().StringVarP(&seedTopic, "topic", "t", "", "Seed topic passed to script generation")
	return cmd
}
