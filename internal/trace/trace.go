// Package trace defines the pluggable diagnostics sink the engine emits
// structured events into. Sinks are fire-and-forget: nothing they do feeds
// back into matching or navigation control flow.
package trace

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Level is the severity of a trace event.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	default:
		return "error"
	}
}

// Event is one structured trace record: a navigation step starting, a
// criterion passing or failing, a step resolving, a whole navigation
// completing.
type Event struct {
	Time  time.Time
	Level Level
	// Op names the engine operation, e.g. "step.start" or "criterion".
	Op  string
	Msg string
	// Attrs carries op-specific key/value detail.
	Attrs map[string]any
}

// Sink receives trace events. Implementations must tolerate concurrent use
// and must not block navigation for long.
type Sink interface {
	Emit(ev Event)
}

// Emit builds an event and sends it to the sink. A nil sink is a no-op, so
// call sites never need to guard.
func Emit(s Sink, level Level, op, msg string, attrs map[string]any) {
	if s == nil {
		return
	}
	s.Emit(Event{Time: time.Now(), Level: level, Op: op, Msg: msg, Attrs: attrs})
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// SlogSink forwards events to a slog logger.
type SlogSink struct {
	Logger *slog.Logger
}

// NewSlogSink builds a sink over a text slog handler writing to w (os.Stderr
// when nil), filtering below min.
func NewSlogSink(w io.Writer, min slog.Level) *SlogSink {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: min})
	return &SlogSink{Logger: slog.New(handler).With(slog.String("component", "perch"))}
}

func (s *SlogSink) Emit(ev Event) {
	if s == nil || s.Logger == nil {
		return
	}
	args := make([]any, 0, 2+2*len(ev.Attrs))
	args = append(args, "op", ev.Op)
	for k, v := range ev.Attrs {
		args = append(args, k, v)
	}
	switch ev.Level {
	case Debug:
		s.Logger.Debug(ev.Msg, args...)
	case Info:
		s.Logger.Info(ev.Msg, args...)
	case Warn:
		s.Logger.Warn(ev.Msg, args...)
	default:
		s.Logger.Error(ev.Msg, args...)
	}
}

// Multi fans one event out to several sinks.
type Multi []Sink

func (m Multi) Emit(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}
