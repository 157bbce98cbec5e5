package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles holds the terminal styles of the pretty text handler.
// Styles come from a renderer bound to the handler's writer, so output to
// a file or buffer carries no escape sequences.
type prettyStyles struct {
	key, str, num, time, src lipgloss.Style
	levels                   map[Level]lipgloss.Style
}

func makePrettyStyles(w io.Writer) prettyStyles {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return prettyStyles{
		key:  color("8"),
		str:  color("6"),
		num:  color("3"),
		time: color("4"),
		src:  color("8").Italic(true),
		levels: map[Level]lipgloss.Style{
			LevelTrace: color("5").Bold(true),
			LevelDebug: color("4").Bold(true),
			LevelInfo:  color("2").Bold(true),
			LevelWarn:  color("3").Bold(true),
			LevelError: color("1").Bold(true),
		},
	}
}

func (s prettyStyles) level(l slog.Level) string {
	name := strings.ToUpper(Level(l).String())

	style, ok := s.levels[Level(l)]
	if !ok {
		return name
	}

	return style.Render(fmt.Sprintf("%-5s", name))
}

// prettyTextHandler writes one styled line per record:
//
//	TIME LEVEL source message key=value ...
type prettyTextHandler struct {
	opts       slog.HandlerOptions
	styles     prettyStyles
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	prefix     string // preformatted attrs from WithAttrs
	group      string // dotted key prefix from WithGroup
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts:       *opts,
		styles:     makePrettyStyles(w),
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() && h.formatTime != nil {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(h.styles.time.Render(ts))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.styles.level(r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			buf.WriteByte(' ')
			buf.WriteString(h.styles.src.Render(fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	buf.WriteString(h.prefix)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.group, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	buf := bytes.NewBufferString(h.prefix)
	for _, a := range attrs {
		h.writeAttr(buf, h.group, a)
	}

	c := *h
	c.prefix = buf.String()

	return &c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.group + name + "."

	return &c
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			group += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, group, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.styles.key.Render(group + a.Key + "="))
	h.writeValue(buf, a.Value)
}

func (h *prettyTextHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindInt64:
		buf.WriteString(h.styles.num.Render(strconv.FormatInt(v.Int64(), 10)))
	case slog.KindUint64:
		buf.WriteString(h.styles.num.Render(strconv.FormatUint(v.Uint64(), 10)))
	case slog.KindFloat64:
		buf.WriteString(h.styles.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))
	case slog.KindBool, slog.KindDuration:
		buf.WriteString(h.styles.num.Render(v.String()))
	case slog.KindTime:
		buf.WriteString(h.styles.time.Render(h.timeString(v)))
	default:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		buf.WriteString(h.styles.str.Render(s))
	}
}

func (h *prettyTextHandler) timeString(v slog.Value) string {
	if h.formatTime != nil {
		if ts := h.formatTime(v.Time()); ts != "" {
			return ts
		}
	}

	return v.Time().String()
}
