package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/nclock/internal/engine"
	"github.com/verte-zerg/nclock/internal/i18n"
	"github.com/verte-zerg/nclock/internal/state"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current virtual time and saved state",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	tr, err := i18n.New(sess.state.Language)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}
	snap := engine.New(sess.state).Snapshot()

	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		pterm.DisableStyling()
		defer pterm.EnableStyling()
	}
	return printStatus(out, tr, sess.state, snap)
}

func printStatus(w io.Writer, tr *i18n.Translator, st *state.State, snap engine.Snapshot) error {
	enabled := 0
	for _, a := range snap.Alarms {
		if a.Enabled {
			enabled++
		}
	}
	lastKey := st.Guard.LastKey
	if lastKey == "" {
		lastKey = "-"
	}
	rows := [][2]string{
		{tr.Msg(i18n.KeyTabClock), snap.Clock},
		{tr.Msg(i18n.KeySpeedTitle), fmt.Sprintf("%s (x%.3g)", tr.SpeedLabel(snap.DayHours), snap.Speed)},
		{tr.Msg(i18n.KeyTabStopwatch), fmt.Sprintf("%s (%d laps)", snap.Stopwatch, len(snap.Laps))},
		{tr.Msg(i18n.KeyTabAlarm), fmt.Sprintf("%d/%d", enabled, len(snap.Alarms))},
		{"last trigger", lastKey},
		{tr.Msg(i18n.KeyLanguage), tr.Msg(i18n.KeyLanguageName)},
	}
	width := 0
	for _, r := range rows {
		if lw := runewidth.StringWidth(r[0]); lw > width {
			width = lw
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = runewidth.FillRight(r[0], width) + "  " + pterm.Bold.Sprint(r[1])
	}

	box := pterm.DefaultBox.WithTitle("nclock").WithTitleTopCenter()
	if _, err := fmt.Fprintln(w, box.Sprint(strings.Join(lines, "\n"))); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
