package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeMarket LogType = "MKT"
	TypeDB     LogType = "DB"
	TypeSystem LogType = "SYS"
	TypeError  LogType = "ERR"
)

// CustomHandler prints one coloured line per record:
//
//	[marketd] [15:04:05] [INFO] [MKT] message key=value ...
type CustomHandler struct {
	opts   *slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func NewHandler(out io.Writer, opts *slog.HandlerOptions) *CustomHandler {
	if out == nil {
		out = os.Stdout
	}
	if opts == nil {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
	}
	return &CustomHandler{
		opts:   opts,
		out:    out,
		mu:     &sync.Mutex{},
		attrs:  make([]slog.Attr, 0),
		groups: make([]string, 0),
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CustomHandler{opts: h.opts, out: h.out, mu: h.mu, attrs: merged, groups: h.groups}
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	groups := append(append([]string{}, h.groups...), name)
	return &CustomHandler{opts: h.opts, out: h.out, mu: h.mu, attrs: h.attrs, groups: groups}
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	all := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	all = append(all, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		all = append(all, a)
		return true
	})

	message := r.Message
	if r.Level >= slog.LevelError {
		if loc := errorLocation(all, r.PC, h.opts.AddSource); loc != "" {
			message = fmt.Sprintf("%s (%s)", message, loc)
		}
		if details := attrString(all, "error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}
	if status := attrString(all, "status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}

	var sb strings.Builder
	prefix := strings.Join(h.groups, ".")
	for _, attr := range all {
		if isInternalAttr(attr.Key) || (r.Level >= slog.LevelError && attr.Key == "error") {
			continue
		}
		key := attr.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		fmt.Fprintf(&sb, " %s=%v", key, attr.Value)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[marketd] [%s] [%s%s%s] [%s%s%s] %s%s%s\n",
		colorWhite,
		r.Time.Format("15:04:05"),
		levelColor, levelText, colorWhite,
		colorCyan, logType(all), colorWhite,
		message,
		sb.String(),
		colorReset,
	)
	return err
}

func logType(attrs []slog.Attr) LogType {
	switch attrString(attrs, "type") {
	case "db":
		return TypeDB
	case "market":
		return TypeMarket
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

func attrString(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func errorLocation(attrs []slog.Attr, pc uintptr, addSource bool) string {
	if loc := attrString(attrs, "error_location"); loc != "" {
		return loc
	}
	if !addSource || pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "status", "error_location":
		return true
	}
	return false
}

// Elapsed is a small helper for "took" attributes.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("took", time.Since(start))
}
