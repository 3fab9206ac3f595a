package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nclock/internal/model"
)

var historyLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently fired alarms",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "number of records (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	records, err := sess.store.ListFires(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No alarms fired yet")
		return err
	}
	return renderHistoryTable(cmd.OutOrStdout(), records)
}

func renderHistoryTable(w io.Writer, records []model.FireRecord) error {
	table := tablewriter.NewWriter(w)
	table.Header("Fired At", "Alarm", "Time", "Key")
	for _, rec := range records {
		row := []string{
			rec.FiredAt.Local().Format(time.DateTime),
			shortID(rec.AlarmID),
			fmt.Sprintf("%02d:%02d", rec.Hour, rec.Minute),
			rec.TriggerKey,
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render history: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
