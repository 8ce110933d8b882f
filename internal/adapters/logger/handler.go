package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/tinify/internal/ui/output"
	"go.trai.ch/tinify/internal/ui/style"
)

// detailIndent nests debug lines and attributes below the line they belong to.
const detailIndent = "  "

// PrettyHandler is a slog.Handler for terminals. Each record is one headline,
// followed by one "key: value" line per attribute. Debug records are detail lines
// of the release being processed and are indented below it.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := decoration(r.Level)

	indent := ""
	if r.Level < slog.LevelInfo {
		indent = detailIndent
	}

	headline := r.Message
	if icon != "" {
		headline = icon + " " + headline
	}

	lines := make([]string, 0, 1+len(h.attrs)+r.NumAttrs())
	lines = append(lines, h.paint(indent+headline, color))

	attrIndent := indent + detailIndent
	for _, attr := range h.attrs {
		lines = append(lines, h.paint(attrIndent+formatAttr(h.group, attr), style.Slate))
	}
	r.Attrs(func(attr slog.Attr) bool {
		lines = append(lines, h.paint(attrIndent+formatAttr(h.group, attr), style.Slate))
		return true
	})

	_, err := h.out.WriteString(strings.Join(lines, "\n") + "\n")
	return err
}

func (h *PrettyHandler) paint(s string, color lipgloss.Color) string {
	return h.out.String(s).Foreground(termenv.RGBColor(string(color))).String()
}

// decoration returns the icon and colour of a level. Info lines carry no icon.
func decoration(level slog.Level) (string, lipgloss.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, style.Red
	case level >= slog.LevelWarn:
		return style.Warning, style.Yellow
	case level < slog.LevelInfo:
		return style.Dot, style.Iris
	default:
		return "", style.Slate
	}
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: newAttrs,
		group: h.group,
	}
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: h.attrs,
		group: name,
	}
}

// formatAttr renders one attribute as "key: value", prefixing the group if set.
func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return key + ": " + attr.Value.String()
}
