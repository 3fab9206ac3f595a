package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nclock/internal/alarm"
)

var alarmExportOut string

func newAlarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Manage alarms",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add HH:MM",
		Short: "Add an enabled alarm",
		Args:  cobra.ExactArgs(1),
		RunE:  runAlarmAddCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List alarms",
		Args:  cobra.NoArgs,
		RunE:  runAlarmListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove an alarm by ID or unique ID prefix",
		Args:    cobra.ExactArgs(1),
		RunE:    runAlarmRemoveCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle ID",
		Short: "Enable or disable an alarm by ID or unique ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE:  runAlarmToggleCmd,
	})
	export := &cobra.Command{
		Use:   "export",
		Short: "Export enabled alarms as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE:  runAlarmExportCmd,
	}
	export.Flags().StringVarP(&alarmExportOut, "out", "o", "", "output file (default: stdout)")
	cmd.AddCommand(export)
	return cmd
}

func runAlarmAddCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	a, err := sess.state.Alarms.Add(args[0])
	if err != nil {
		return err
	}
	if err := sess.save(cmd.Context()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", a.String(), a.ID)
	return err
}

func runAlarmListCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	alarms := sess.state.Alarms.Sorted()
	if len(alarms) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No alarms")
		return err
	}
	return renderAlarmTable(cmd.OutOrStdout(), alarms)
}

func runAlarmRemoveCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	a, err := sess.state.Alarms.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := sess.state.Alarms.Remove(a.ID); err != nil {
		return err
	}
	if err := sess.save(cmd.Context()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", a.String(), a.ID)
	return err
}

func runAlarmToggleCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	a, err := sess.state.Alarms.Resolve(args[0])
	if err != nil {
		return err
	}
	a, err = sess.state.Alarms.Toggle(a.ID)
	if err != nil {
		return err
	}
	if err := sess.save(cmd.Context()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", a.String(), enabledLabel(a.Enabled), a.ID)
	return err
}

func runAlarmExportCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	if alarmExportOut != "" {
		f, err := os.Create(alarmExportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", alarmExportOut, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				logErrf("failed to close %s: %v\n", alarmExportOut, cerr)
			}
		}()
		out = f
	}
	return alarm.ExportICS(out, sess.state.Alarms.Sorted(), time.Now())
}

func renderAlarmTable(w io.Writer, alarms []alarm.Alarm) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Time", "Enabled")
	for _, a := range alarms {
		if err := table.Append([]string{a.ID, a.String(), enabledLabel(a.Enabled)}); err != nil {
			return fmt.Errorf("failed to render alarms: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render alarms: %w", err)
	}
	return nil
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
