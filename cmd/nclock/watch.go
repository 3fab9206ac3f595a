package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nclock/internal/engine"
	"github.com/verte-zerg/nclock/internal/i18n"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the clock headless and fire alarms until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runWatchCmd,
	}
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	tr, err := i18n.New(sess.state.Language)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}
	eng := sess.newEngine(tr, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.Printfln("%s %s, %s", tr.Msg(i18n.KeySpeedTitle), tr.SpeedLabel(eng.State().DayHours), tr.Msg(i18n.KeyHelpQuit))
	return eng.Run(ctx, sess.runtime.TickInterval, func(snap engine.Snapshot) {
		for _, ev := range snap.Fired {
			pterm.Success.Println(tr.AlarmFired(fmt.Sprintf("%02d:%02d", ev.Hour, ev.Minute)))
		}
	})
}
