// Package audio plays footstep sounds through a beep mixer.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	stdmath "math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// resampleQuality is passed to beep's resampler.
const resampleQuality = 4

var (
	// ErrUnknownPreset is returned for attenuation or concurrency names the
	// engine was not configured with.
	ErrUnknownPreset = errors.New("unknown audio preset")
	// ErrLive is returned by offline rendering while the speaker owns the mixer.
	ErrLive = errors.New("audio engine is playing through the speaker")
)

// Resolution decides what happens when a concurrency group is full.
type Resolution uint8

const (
	// StopOldest stops the oldest voice of the group to make room.
	StopOldest Resolution = iota
	// PreventNew drops the new sound.
	PreventNew
)

// ParseResolution parses the config spelling of a resolution. Empty means
// StopOldest.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "", "stop_oldest":
		return StopOldest, nil
	case "prevent_new":
		return PreventNew, nil
	}
	return 0, fmt.Errorf("unknown concurrency resolution %q", s)
}

// Attenuation fades a sound linearly to silence between InnerRadius and
// InnerRadius+FalloffDistance from the listener.
type Attenuation struct {
	InnerRadius     float32
	FalloffDistance float32
}

// Gain returns the attenuation factor at the given distance.
func (a Attenuation) Gain(distance float32) float64 {
	if distance <= a.InnerRadius {
		return 1
	}
	if a.FalloffDistance <= 0 {
		return 0
	}
	g := 1 - float64(distance-a.InnerRadius)/float64(a.FalloffDistance)
	return clamp(g, 0, 1)
}

// Concurrency limits the voices playing in a group.
type Concurrency struct {
	MaxCount   int // 0 = unlimited
	Resolution Resolution
}

// Options configures an Engine.
type Options struct {
	SampleRate   beep.SampleRate
	MasterVolume float64
	SFXVolume    float64
	Muted        bool
	Attenuation  map[string]Attenuation
	Concurrency  map[string]Concurrency
}

// Loader reads sound files.
type Loader interface {
	Load(path string) ([]byte, error)
}

// Stats counts sounds handled by the engine.
type Stats struct {
	Played   int
	Culled   int // inaudible at the listener
	Rejected int // refused by a full concurrency group
	Stopped  int
}

// Engine mixes footstep sounds. It implements footstep.SoundEmitter.
type Engine struct {
	mu sync.Mutex

	live       bool
	sampleRate beep.SampleRate
	mixer      *beep.Mixer
	loader     Loader
	bank       map[footstep.SoundRef]*beep.Buffer

	masterVolume float64
	sfxVolume    float64
	muted        bool
	listener     math.Transform

	attenuation map[string]Attenuation
	concurrency map[string]Concurrency
	groups      map[string][]*voice
	voices      []*voice

	stats Stats
}

// New creates an engine reading sounds through loader.
func New(loader Loader, opts Options) *Engine {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	return &Engine{
		sampleRate:   opts.SampleRate,
		mixer:        &beep.Mixer{},
		loader:       loader,
		bank:         make(map[footstep.SoundRef]*beep.Buffer),
		masterVolume: clamp(opts.MasterVolume, 0, 1),
		sfxVolume:    clamp(opts.SFXVolume, 0, 1),
		muted:        opts.Muted,
		listener:     math.TransformIdentity(),
		attenuation:  opts.Attenuation,
		concurrency:  opts.Concurrency,
		groups:       make(map[string][]*voice),
	}
}

// Init opens the speaker and starts mixing in real time.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.live {
		return nil
	}
	if err := speaker.Init(e.sampleRate, e.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(e.mixer)
	e.live = true
	return nil
}

// Close stops real-time playback.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.live {
		return
	}
	speaker.Clear()
	e.live = false
}

// SampleRate returns the mixing rate.
func (e *Engine) SampleRate() beep.SampleRate { return e.sampleRate }

// SetListener places the listener used for attenuation and panning.
func (e *Engine) SetListener(t math.Transform) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = t
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (e *Engine) SetMasterVolume(vol float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.masterVolume = clamp(vol, 0, 1)
}

// SetMuted mutes sounds started from now on.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
}

// Stats returns playback counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// ActiveVoices returns the number of voices still playing.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prune()
	return len(e.voices)
}

// Preload decodes sounds into the bank ahead of their first use.
func (e *Engine) Preload(refs ...footstep.SoundRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ref := range refs {
		if _, err := e.buffer(ref); err != nil {
			return err
		}
	}
	return nil
}

// PlaySound starts a footstep sound at the given transform. A nil voice
// with a nil error means the sound was culled or refused by its
// concurrency group.
func (e *Engine) PlaySound(p footstep.SoundParams, at math.Transform) (footstep.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	buf, err := e.buffer(p.Sound)
	if err != nil {
		return nil, err
	}

	gain := clamp(float64(p.Volume), 0, stdmath.MaxFloat32) * e.masterVolume * e.sfxVolume
	pan := 0.0
	if !p.Play2D {
		att := Attenuation{InnerRadius: stdmath.MaxFloat32}
		if p.Attenuation != "" {
			a, ok := e.attenuation[p.Attenuation]
			if !ok {
				return nil, fmt.Errorf("%w: attenuation %q", ErrUnknownPreset, p.Attenuation)
			}
			att = a
		}
		offset := at.Location.Sub(e.listener.Location)
		dist := offset.Length()
		gain *= att.Gain(dist)
		if dist > 0 {
			pan = clamp(float64(offset.Dot(e.listener.Rotation.Right())/dist), -1, 1)
		}
		if gain <= 0 {
			e.stats.Culled++
			logger.Debug("footstep sound culled",
				zap.String("sound", string(p.Sound)),
				zap.Float32("distance", dist),
			)
			return nil, nil
		}
	}

	var limit Concurrency
	if p.Concurrency != "" {
		c, ok := e.concurrency[p.Concurrency]
		if !ok {
			return nil, fmt.Errorf("%w: concurrency %q", ErrUnknownPreset, p.Concurrency)
		}
		limit = c
	}
	e.prune()
	if limit.MaxCount > 0 {
		group := e.groups[p.Concurrency]
		for len(group) >= limit.MaxCount {
			if limit.Resolution == PreventNew {
				e.stats.Rejected++
				return nil, nil
			}
			e.stopLocked(group[0])
			group = e.groups[p.Concurrency]
		}
	}

	v := e.start(buf, p, gain, pan)
	return v, nil
}

func (e *Engine) start(buf *beep.Buffer, p footstep.SoundParams, gain, pan float64) *voice {
	pitch := float64(p.Pitch)
	if pitch <= 0 {
		pitch = 1
	}
	var s beep.Streamer = buf.Streamer(0, buf.Len())
	ratio := pitch * float64(buf.Format().SampleRate) / float64(e.sampleRate)
	if ratio != 1 {
		s = beep.ResampleRatio(resampleQuality, ratio, s)
	}

	vol := &effects.Volume{Streamer: s, Base: 2, Silent: e.muted || gain <= 0}
	if !vol.Silent {
		vol.Volume = stdmath.Log2(gain)
	}
	s = vol
	if pan != 0 {
		s = &effects.Pan{Streamer: s, Pan: pan}
	}

	v := &voice{engine: e, group: p.Concurrency}
	v.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(v.finish))}

	e.lockMixer()
	e.mixer.Add(v.ctrl)
	e.unlockMixer()

	e.voices = append(e.voices, v)
	if v.group != "" {
		e.groups[v.group] = append(e.groups[v.group], v)
	}
	e.stats.Played++
	return v
}

// buffer returns the decoded sound, loading it on first use.
func (e *Engine) buffer(ref footstep.SoundRef) (*beep.Buffer, error) {
	if buf, ok := e.bank[ref]; ok {
		return buf, nil
	}
	if e.loader == nil {
		return nil, fmt.Errorf("load sound %s: no loader", ref)
	}
	data, err := e.loader.Load(string(ref))
	if err != nil {
		return nil, fmt.Errorf("load sound %s: %w", ref, err)
	}
	buf, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode sound %s: %w", ref, err)
	}
	e.bank[ref] = buf
	return buf, nil
}

func decode(data []byte) (*beep.Buffer, error) {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

// prune drops finished voices from the bookkeeping.
func (e *Engine) prune() {
	e.voices = keepPlaying(e.voices)
	for name, group := range e.groups {
		if group = keepPlaying(group); len(group) == 0 {
			delete(e.groups, name)
		} else {
			e.groups[name] = group
		}
	}
}

func keepPlaying(vs []*voice) []*voice {
	out := vs[:0]
	for _, v := range vs {
		if !v.done.Load() {
			out = append(out, v)
		}
	}
	clear(vs[len(out):])
	return out
}

func (e *Engine) stopLocked(v *voice) {
	if !v.done.Load() {
		e.lockMixer()
		v.ctrl.Streamer = nil
		e.unlockMixer()
		v.done.Store(true)
		e.stats.Stopped++
	}
	e.prune()
}

func (e *Engine) lockMixer() {
	if e.live {
		speaker.Lock()
	}
}

func (e *Engine) unlockMixer() {
	if e.live {
		speaker.Unlock()
	}
}

// Render mixes n frames offline.
func (e *Engine) Render(n int) ([][2]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.live {
		return nil, ErrLive
	}
	samples := make([][2]float64, n)
	e.fill(samples)
	return samples, nil
}

// RenderWAV mixes d of audio offline and writes it as 16-bit stereo WAV.
func (e *Engine) RenderWAV(w io.WriteSeeker, d time.Duration) error {
	e.mu.Lock()
	live := e.live
	e.mu.Unlock()
	if live {
		return ErrLive
	}

	offline := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.fill(samples)
		return len(samples), true
	})
	return wav.Encode(w, beep.Take(e.sampleRate.N(d), offline), wavFormat(e.sampleRate))
}

// WriteWAV encodes previously rendered frames as 16-bit stereo WAV.
func WriteWAV(w io.WriteSeeker, frames [][2]float64, rate beep.SampleRate) error {
	pos := 0
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(frames) {
			return 0, false
		}
		n := copy(samples, frames[pos:])
		pos += n
		return n, true
	})
	return wav.Encode(w, src, wavFormat(rate))
}

func wavFormat(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
}

// fill streams the mixer into samples, padding with silence.
func (e *Engine) fill(samples [][2]float64) {
	filled := 0
	for filled < len(samples) {
		n, ok := e.mixer.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			break
		}
	}
	clear(samples[filled:])
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
