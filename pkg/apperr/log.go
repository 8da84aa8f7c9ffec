package apperr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	pkgerrors "github.com/pkg/errors"
)

// LevelCritical sits above slog.LevelError and marks failures nobody
// anticipated.
const LevelCritical = slog.Level(12)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Location returns the source file and line err originated from, or ("", 0)
// when nothing in the chain recorded one. Errors built with
// github.com/pkg/errors report the frame they were created at.
func Location(err error) (string, int) {
	var st stackTracer
	if errors.As(err, &st) {
		if frames := st.StackTrace(); len(frames) > 0 {
			f := frames[0]
			line, _ := strconv.Atoi(fmt.Sprintf("%d", f))
			return fmt.Sprintf("%s", f), line
		}
	}
	var he *HTTPError
	if errors.As(err, &he) && he.file != "" {
		return filepath.Base(he.file), he.line
	}
	return "", 0
}

// Critical logs err at LevelCritical as "message error(file:line)". Extra
// key/value pairs are appended after file and line.
func Critical(ctx context.Context, err error, message string, args ...any) {
	f, l := Location(err)
	slog.Log(ctx, LevelCritical, criticalText(err, message, f, l), append([]any{"file", f, "line", l}, args...)...)
}

// CriticalText formats err the way Critical logs it.
func CriticalText(err error, message string) string {
	f, l := Location(err)
	return criticalText(err, message, f, l)
}

func criticalText(err error, message, file string, line int) string {
	text := fmt.Sprintf("%s(%s:%d)", err.Error(), file, line)
	if message != "" {
		text = message + " " + text
	}
	return text
}

// ReplaceLevel renders LevelCritical as "CRITICAL". Plug it into
// slog.HandlerOptions.ReplaceAttr.
func ReplaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}
