package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/nclock/internal/alarm"
	"github.com/verte-zerg/nclock/internal/config"
	"github.com/verte-zerg/nclock/internal/engine"
	"github.com/verte-zerg/nclock/internal/i18n"
	"github.com/verte-zerg/nclock/internal/model"
	"github.com/verte-zerg/nclock/internal/notify"
	"github.com/verte-zerg/nclock/internal/state"
	"github.com/verte-zerg/nclock/internal/store"
	"github.com/verte-zerg/nclock/internal/vclock"
)

// session bundles what every command needs: the store, the decoded state and
// the effective loop settings.
type session struct {
	store   *store.Store
	state   *state.State
	runtime model.Config
	logs    io.Closer
}

func openSession(cmd *cobra.Command, logToStderr bool) (*session, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var extra io.Writer
	if logToStderr {
		extra = os.Stderr
	}
	logs := setupLogging(config.DefaultLogPath(), debugMode, extra)

	st, err := store.Open(dbPath)
	if err != nil {
		closeLogs(logs)
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	sess := &session{store: st, logs: logs}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess.state, err = state.Load(ctx, st, fileCfg.Defaults(), slog.Default())
	if err != nil {
		sess.Close()
		return nil, err
	}
	changed, err := applyStateFlags(cmd, sess.state)
	if err != nil {
		sess.Close()
		return nil, err
	}
	if changed {
		if err := state.Save(ctx, st, sess.state); err != nil {
			sess.Close()
			return nil, err
		}
	}

	applyIntConfig(cmd, "tick-ms", &engineTickMs, fileCfg.Engine.TickMs)
	applyIntConfig(cmd, "flush-ms", &engineFlushMs, fileCfg.Engine.FlushMs)
	applyBoolConfig(cmd, "bell", &engineBell, fileCfg.Engine.Bell)
	if engineTickMs <= 0 {
		sess.Close()
		return nil, fmt.Errorf("--tick-ms must be > 0")
	}
	if engineFlushMs <= 0 {
		sess.Close()
		return nil, fmt.Errorf("--flush-ms must be > 0")
	}
	sess.runtime = model.Config{
		TickInterval:  time.Duration(engineTickMs) * time.Millisecond,
		FlushInterval: time.Duration(engineFlushMs) * time.Millisecond,
		Bell:          engineBell,
	}
	return sess, nil
}

// applyStateFlags copies explicitly set clock flags into st. Unset flags
// leave the persisted values alone.
func applyStateFlags(cmd *cobra.Command, st *state.State) (bool, error) {
	changed := false
	if cmd.Flags().Changed("day-hours") {
		if err := vclock.ValidateHours(clockDayHours); err != nil {
			return false, fmt.Errorf("--day-hours: %w", err)
		}
		st.DayHours = clockDayHours
		changed = true
	}
	if cmd.Flags().Changed("show-seconds") {
		st.ShowSeconds = clockShowSeconds
		changed = true
	}
	if cmd.Flags().Changed("lang") {
		lang, err := model.ParseLanguage(clockLang)
		if err != nil {
			return false, fmt.Errorf("--lang: %w", err)
		}
		st.Language = lang
		changed = true
	}
	return changed, nil
}

func (s *session) newEngine(tr *i18n.Translator, bell io.Writer) *engine.Engine {
	notifiers := notify.Multi{notify.NewLogNotifier(slog.Default())}
	if s.runtime.Bell && bell != nil {
		notifiers = append(notifiers, notify.NewBellNotifier(bell))
	}
	return engine.New(s.state,
		engine.WithStore(s.store),
		engine.WithNotifier(notifiers),
		engine.WithFlushInterval(s.runtime.FlushInterval),
		engine.WithLogger(slog.Default()),
		engine.WithAlarmLabel(func(ev alarm.Event) string {
			return tr.AlarmFired(fmt.Sprintf("%02d:%02d", ev.Hour, ev.Minute))
		}),
	)
}

func (s *session) save(ctx context.Context) error {
	return state.Save(ctx, s.store, s.state)
}

func (s *session) Close() {
	if cerr := s.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	closeLogs(s.logs)
}

func closeLogs(c io.Closer) {
	if c == nil {
		return
	}
	if cerr := c.Close(); cerr != nil {
		// Best-effort log file close.
		_ = cerr
	}
}

// setupLogging configures the default slog logger to write JSON to the log
// file and, when extra is set, to extra as well. The TUI never logs to the
// terminal.
func setupLogging(logPath string, debug bool, extra io.Writer) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			logErrf("failed to open log file %s: %v\n", logPath, err)
		}
	}
	if extra != nil {
		writers = append(writers, extra)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}
