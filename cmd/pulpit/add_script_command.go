package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pulpit/internal/ipc"
)

func newAddScriptCommand(ctx *commandContext) *cobra.Command {
	var runDate string

	cmd := &cobra.Command{
		Use:   "add-script <path>",
		Short: "Queue a hand-written script, skipping generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("script does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect script: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			if ext := strings.ToLower(filepath.Ext(info.Name())); ext != ".json" {
				return fmt.Errorf("unsupported script extension %q; scripts are JSON documents", ext)
			}

			date := strings.TrimSpace(runDate)
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("run date must be YYYY-MM-DD, got %q", date)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AddScript(date, absPath)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued script for %s as item #%d (%s)\n", resp.Item.RunDate, resp.Item.ID, filepath.Base(absPath))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&runDate, "date", "d", "", "Run date in YYYY-MM-DD form (defaults to today)")
	return cmd
}
