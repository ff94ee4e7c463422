package logs

import (
	"context"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/reusee/taibf/cmds"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var level = new(slog.LevelVar)

func init() {
	for name, l := range map[string]slog.Level{
		"-log-debug": slog.LevelDebug,
		"-log-info":  slog.LevelInfo,
		"-log-warn":  slog.LevelWarn,
		"-log-error": slog.LevelError,
	} {
		cmds.Define(name, cmds.Func(func() {
			level.Set(l)
		}).Desc("set log level to "+strings.ToLower(l.String())))
	}
}

type Level = *slog.LevelVar

func (Module) Level() Level {
	return level
}

type Logger = *slog.Logger

func (Module) Logger(
	writer Writer,
	level Level,
) Logger {
	// a unit managed by systemd logs to the journal only
	underSystemd := false
	if cgroupPath, err := getCgroupPath(); err == nil {
		underSystemd = strings.HasSuffix(path.Dir(cgroupPath), ".service")
	}

	return slog.New(&Handler{
		Handler: newHandler(writer, level, underSystemd, newJournalHandler),
	})
}

func newJournalHandler(level Level) (slog.Handler, error) {
	handler, err := slogjournal.NewHandler(&slogjournal.Options{
		Level: level,
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

func newHandler(
	writer Writer,
	level Level,
	underSystemd bool,
	newJournal func(Level) (slog.Handler, error),
) slog.Handler {
	var handlers []slog.Handler

	terminalHandler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	if !underSystemd {
		handlers = append(handlers, terminalHandler)
	}

	journalHandler, err := newJournal(level)
	if err != nil {
		if !underSystemd {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminalHandler.Handle(context.Background(), record)
		}
	} else if underSystemd {
		handlers = append(handlers, journalHandler)
	}

	// no journal to log to
	if len(handlers) == 0 {
		handlers = append(handlers, terminalHandler)
		record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
		record.Add("error", err)
		_ = terminalHandler.Handle(context.Background(), record)
	}

	return slogmulti.Fanout(handlers...)
}

func toJournalKey(str string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(str))
}

func getCgroupPath() (string, error) {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return "", err
	}
	parts := strings.SplitN(strings.TrimSpace(string(content)), ":", 3)
	if len(parts) == 3 {
		return parts[2], nil
	}
	return "", nil
}
