// Package main provides the CLI entrypoint for nclock.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nclock/internal/config"
	"github.com/verte-zerg/nclock/internal/engine"
	"github.com/verte-zerg/nclock/internal/i18n"
	"github.com/verte-zerg/nclock/internal/tui"
	"github.com/verte-zerg/nclock/internal/vclock"
)

const (
	defaultTickMs  = int(engine.DefaultTickInterval / time.Millisecond)
	defaultFlushMs = int(engine.DefaultFlushInterval / time.Millisecond)
)

var (
	dbPath     string
	configPath string
	debugMode  bool

	clockDayHours    int
	clockShowSeconds bool
	clockLang        string

	engineTickMs  int
	engineFlushMs int
	engineBell    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nclock",
		Short:         "Terminal clock with an adjustable day length",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runClockCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	pf.StringVar(&configPath, "config", config.DefaultConfigPath(), "TOML config path")
	pf.BoolVar(&debugMode, "debug", false, "enable debug logging")
	pf.IntVar(&clockDayHours, "day-hours", vclock.DefaultDayHours, "real hours per virtual day (1-48), persisted")
	pf.BoolVar(&clockShowSeconds, "show-seconds", true, "show seconds, persisted")
	pf.StringVar(&clockLang, "lang", "ja", "UI language (ja, en), persisted")
	pf.IntVar(&engineTickMs, "tick-ms", defaultTickMs, "sampling interval in milliseconds")
	pf.IntVar(&engineFlushMs, "flush-ms", defaultFlushMs, "state flush interval in milliseconds")
	pf.BoolVar(&engineBell, "bell", true, "ring the terminal bell when an alarm fires")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newAlarmCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runClockCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	tr, err := i18n.New(sess.state.Language)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}
	eng := sess.newEngine(tr, os.Stderr)
	model := tui.NewModel(eng, tr, sess.runtime.TickInterval)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# nclock configuration
# Uncomment a value to enable it. CLI flags override config values.

[clock]
# Seeds for settings that were never changed in the app.
# day-hours = %d          # Real hours per virtual day (1-48)
# show-seconds = true     # Show seconds in the clock and stopwatch
# language = "ja"         # UI language: ja or en

[engine]
# tick-ms = %d           # Sampling interval in milliseconds
# flush-ms = %d         # State flush interval in milliseconds
# bell = true             # Ring the terminal bell when an alarm fires
`,
		vclock.DefaultDayHours,
		defaultTickMs,
		defaultFlushMs,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
