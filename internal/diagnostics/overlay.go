package diagnostics

import (
	"sync"
	"time"
)

// DefaultOverlayDuration is used for messages that carry no duration.
const DefaultOverlayDuration = 2 * time.Second

// OverlayLine is a message currently on screen.
type OverlayLine struct {
	Message
	Remaining time.Duration
}

// Overlay holds timed on-screen messages. Newest lines come first and the
// oldest are dropped once MaxLines is reached.
type Overlay struct {
	mu       sync.Mutex
	lines    []OverlayLine
	maxLines int
}

// NewOverlay creates an overlay keeping at most maxLines messages.
func NewOverlay(maxLines int) *Overlay {
	if maxLines <= 0 {
		maxLines = 16
	}
	return &Overlay{maxLines: maxLines}
}

// Report implements Sink.
func (o *Overlay) Report(msg Message) {
	d := msg.Duration
	if d <= 0 {
		d = DefaultOverlayDuration
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.lines = append([]OverlayLine{{Message: msg, Remaining: d}}, o.lines...)
	if len(o.lines) > o.maxLines {
		o.lines = o.lines[:o.maxLines]
	}
}

// Update ages every line by dt and removes expired ones.
func (o *Overlay) Update(dt time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	kept := o.lines[:0]
	for _, l := range o.lines {
		l.Remaining -= dt
		if l.Remaining > 0 {
			kept = append(kept, l)
		}
	}
	o.lines = kept
}

// Lines returns a snapshot of the visible lines, newest first.
func (o *Overlay) Lines() []OverlayLine {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]OverlayLine, len(o.lines))
	copy(out, o.lines)
	return out
}

// Clear removes every line.
func (o *Overlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = nil
}
