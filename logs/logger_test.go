package logs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reusee/dscope"
)

func TestLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	dscope.New(new(Module)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		logger Logger,
	) {
		ctx := WithAttrs(context.Background(), slog.Uint64("handle", 3))
		logger.InfoContext(ctx, "opened", "program", ",[.,]", "name", "echo input")
		out := buf.String()
		if !strings.Contains(out, "handle=3") {
			t.Fatalf("got %s", out)
		}
		if !strings.Contains(out, `program=,[.,]`) {
			t.Fatalf("got %s", out)
		}
		if !strings.Contains(out, `name="echo input"`) {
			t.Fatalf("got %s", out)
		}
	})
}

func TestWithAttrsDoesNotAlias(t *testing.T) {
	base := WithAttrs(context.Background(), slog.Int("a", 1))
	one := WithAttrs(base, slog.Int("b", 2))
	two := WithAttrs(base, slog.Int("c", 3))
	if got := len(one.Value(AttrsKey).([]slog.Attr)); got != 2 {
		t.Fatalf("got %v", got)
	}
	attrs := two.Value(AttrsKey).([]slog.Attr)
	if attrs[1].Key != "c" {
		t.Fatalf("got %v", attrs)
	}
}

func TestNewSpan(t *testing.T) {
	buf := new(bytes.Buffer)
	debug := new(slog.LevelVar)
	debug.Set(slog.LevelDebug)
	dscope.New(new(Module)).Fork(
		func() Writer {
			return buf
		},
		func() Level {
			return debug
		},
	).Call(func(
		newSpan NewSpan,
	) {
		ctx := context.Background()
		ctx1, span1 := newSpan(ctx, "")
		ctx11, span11 := newSpan(ctx1, "")
		_, span12 := newSpan(ctx11, span1)

		var lines []string
		for _, line := range strings.Split(buf.String(), "\n") {
			if strings.Contains(line, "new span") {
				lines = append(lines, line)
			}
		}
		if len(lines) != 3 {
			t.Fatalf("got %q", lines)
		}
		if !strings.Contains(lines[0], "logs.span="+string(span1)) {
			t.Fatalf("got %v", lines[0])
		}
		if !strings.Contains(lines[1], "logs.span="+string(span11)) {
			t.Fatalf("got %v", lines[1])
		}
		if !strings.Contains(lines[1], "parent="+string(span1)) {
			t.Fatalf("got %v", lines[1])
		}
		if !strings.Contains(lines[2], "logs.span="+string(span12)) {
			t.Fatalf("got %v", lines[2])
		}
		if !strings.Contains(lines[2], "creator="+string(span11)) {
			t.Fatalf("got %v", lines[2])
		}
	})
}

func TestWrapSpan(t *testing.T) {
	err := WrapSpan(context.WithValue(context.Background(), SpanKey, Span("x")), context.Canceled)
	if !strings.Contains(err.Error(), "span: x") {
		t.Fatalf("got %v", err)
	}
	if WrapSpan(context.Background(), nil) != nil {
		t.Fatal()
	}
}

func TestJournalUnavailableUnderSystemd(t *testing.T) {
	buf := new(bytes.Buffer)
	level := new(slog.LevelVar)
	handler := newHandler(buf, level, true, func(Level) (slog.Handler, error) {
		return nil, errors.New("no journal socket")
	})
	slog.New(handler).Info("still logged")
	out := buf.String()
	if !strings.Contains(out, "no journal socket") {
		t.Fatalf("got %s", out)
	}
	if !strings.Contains(out, "msg=\"still logged\"") {
		t.Fatalf("got %s", out)
	}
}

func TestJournalOnlyUnderSystemd(t *testing.T) {
	buf := new(bytes.Buffer)
	journal := slog.NewTextHandler(new(bytes.Buffer), nil)
	handler := newHandler(buf, new(slog.LevelVar), true, func(Level) (slog.Handler, error) {
		return journal, nil
	})
	slog.New(handler).Info("to journal")
	if buf.Len() != 0 {
		t.Fatalf("got %s", buf.String())
	}
}
