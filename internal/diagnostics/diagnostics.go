// Package diagnostics carries developer-facing messages out of the footstep
// pipeline: configuration errors and the optional per-footstep debug line.
package diagnostics

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Severity classifies a message.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Message is a single diagnostic line.
type Message struct {
	Severity Severity
	Text     string
	// Duration is how long an on-screen sink keeps the message visible.
	Duration time.Duration
}

// Sink receives diagnostic messages.
type Sink interface {
	Report(msg Message)
}

// Nop discards every message. It suits shipping builds.
type Nop struct{}

// Report implements Sink.
func (Nop) Report(Message) {}

// LogSink writes messages to a zap logger.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a sink that logs through log.
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

// Report implements Sink.
func (s *LogSink) Report(msg Message) {
	switch msg.Severity {
	case SeverityError:
		s.log.Error(msg.Text)
	case SeverityWarning:
		s.log.Warn(msg.Text)
	default:
		s.log.Info(msg.Text)
	}
}

// Multi fans a message out to several sinks.
type Multi []Sink

// Report implements Sink.
func (m Multi) Report(msg Message) {
	for _, s := range m {
		s.Report(msg)
	}
}

// Recorder keeps every message. Hosts use it to surface errors after a run
// and tests use it to assert on reports.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Report implements Sink.
func (r *Recorder) Report(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Count returns how many messages of the given severity were recorded.
func (r *Recorder) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}
