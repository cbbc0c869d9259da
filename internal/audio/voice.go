package audio

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// voice is one playing sound. It implements footstep.Voice.
type voice struct {
	engine *Engine
	group  string
	ctrl   *beep.Ctrl
	done   atomic.Bool
}

// finish runs on the mixing goroutine once the sound has drained. It must
// not take the engine lock.
func (v *voice) finish() {
	v.done.Store(true)
}

// Stop silences the voice. Stopping a finished voice is a no-op.
func (v *voice) Stop() {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	v.engine.stopLocked(v)
}

// Playing reports whether the voice has not finished or been stopped.
func (v *voice) Playing() bool {
	return !v.done.Load()
}
