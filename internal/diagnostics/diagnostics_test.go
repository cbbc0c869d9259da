package diagnostics

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSinkLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))

	sink.Report(Message{Severity: SeverityError, Text: "no footstep category"})
	sink.Report(Message{Severity: SeverityWarning, Text: "pool exhausted"})
	sink.Report(Message{Text: "PhysMat: PM_Grass"})

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	want := []zapcore.Level{zapcore.ErrorLevel, zapcore.WarnLevel, zapcore.InfoLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, want[i])
		}
	}
	if entries[2].Message != "PhysMat: PM_Grass" {
		t.Errorf("message = %q", entries[2].Message)
	}
}

func TestMultiAndRecorder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	sink := Multi{a, b, Nop{}}

	sink.Report(Message{Severity: SeverityError, Text: "x"})
	sink.Report(Message{Text: "y"})

	for name, r := range map[string]*Recorder{"a": a, "b": b} {
		if got := len(r.Messages()); got != 2 {
			t.Errorf("recorder %s got %d messages, want 2", name, got)
		}
		if r.Count(SeverityError) != 1 {
			t.Errorf("recorder %s error count = %d, want 1", name, r.Count(SeverityError))
		}
	}
}

func TestOverlayExpiry(t *testing.T) {
	o := NewOverlay(4)

	o.Report(Message{Text: "short", Duration: time.Second})
	o.Report(Message{Text: "default"})

	lines := o.Lines()
	if len(lines) != 2 || lines[0].Text != "default" {
		t.Fatalf("lines = %+v, want newest first", lines)
	}

	o.Update(1500 * time.Millisecond)
	lines = o.Lines()
	if len(lines) != 1 || lines[0].Text != "default" {
		t.Fatalf("after 1.5s lines = %+v, want only default", lines)
	}

	o.Update(time.Second)
	if n := len(o.Lines()); n != 0 {
		t.Errorf("after 2.5s %d lines remain, want 0", n)
	}
}

func TestOverlayMaxLines(t *testing.T) {
	o := NewOverlay(2)
	for _, s := range []string{"1", "2", "3"} {
		o.Report(Message{Text: s})
	}

	lines := o.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Text != "3" || lines[1].Text != "2" {
		t.Errorf("lines = %q, %q; want 3, 2", lines[0].Text, lines[1].Text)
	}

	o.Clear()
	if len(o.Lines()) != 0 {
		t.Error("Clear left lines behind")
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" || SeverityInfo.String() != "info" {
		t.Error("unexpected severity names")
	}
}
