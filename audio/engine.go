package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/driftglass/specimen/lifecycle"
)

// Engine owns the specimen's sound: two mutually exclusive continuous hums
// plus independently triggerable one-shot effects. It subscribes to the
// lifecycle controller and maps (stage, progress) to hum parameters.
//
// If the speaker cannot be initialized the engine stays silently disabled
// for the session; every entry point then degrades to a no-op.
type Engine struct {
	log  zerolog.Logger
	rate beep.SampleRate

	mu           sync.Mutex
	initialized  bool
	mixer        *beep.Mixer
	level        Level
	stage        lifecycle.Stage
	progress     float64
	pirateActive bool

	hum    *voice // CRT hum: fundamental + 2 harmonics
	pirate *voice // resonance: fundamental + slow beating partner + harmonic
}

// NewEngine creates the engine with both hum voices silent. Init must be
// called before any sound is produced.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log:   log,
		rate:  SampleRate,
		mixer: &beep.Mixer{},
		level: LevelMed,
		hum: newVoice(SampleRate, 50.0, []partial{
			{ratio: 1, weight: 0.60},
			{ratio: 2, weight: 0.25},
			{ratio: 3, weight: 0.12},
		}),
		pirate: newVoice(SampleRate, pirateFreq, []partial{
			{ratio: 1, weight: 0.55},
			{ratio: 1, offset: 0.6, weight: 0.35},
			{ratio: 2, weight: 0.18},
		}),
	}
}

// Init opens the speaker and starts the continuous hum voices. Returns false
// when audio is unavailable; the engine then stays disabled for the session
// and callers should not retry.
func (e *Engine) Init() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return true
	}

	if err := speaker.Init(e.rate, e.rate.N(100*time.Millisecond)); err != nil {
		e.log.Warn().Err(err).Msg("audio unavailable, running silent")
		return false
	}

	// Both hums stream continuously; mode switches are gain crossfades, so a
	// previous hum is never torn down and recreated mid-session
	e.mixer.Add(e.hum)
	e.mixer.Add(e.pirate)
	speaker.Play(e.mixer)
	e.initialized = true

	e.log.Info().Int("sample_rate", int(e.rate)).Msg("audio engine started")
	return true
}

// Ready reports whether the speaker opened successfully
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// Destroy silences and releases everything. Best-effort: it never fails, and
// a panic from the audio backend is swallowed.
func (e *Engine) Destroy() {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug().Interface("panic", r).Msg("audio teardown panic swallowed")
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}

	e.hum.setTargets(0, 0, 0)
	e.pirate.setTargets(0, 0, 0)
	speaker.Lock()
	e.mixer.Clear()
	speaker.Unlock()
	e.initialized = false
}

// Level returns the current volume level
func (e *Engine) Level() Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// SetLevel changes the discrete volume level. The active hum ramps to its
// absolute recomputed gain; the multiplier is applied to the stage-derived
// base gain, never to the currently playing gain.
func (e *Engine) SetLevel(l Level) {
	if l < LevelOff || l > LevelHigh {
		l = LevelOff
	}

	e.mu.Lock()
	e.level = l
	e.applyHumLocked(levelRamp)
	e.mu.Unlock()
}

// CycleLevel advances off -> low -> med -> high -> off and returns the new
// level
func (e *Engine) CycleLevel() Level {
	e.mu.Lock()
	next := (e.level + 1) % levelCount
	e.level = next
	e.applyHumLocked(levelRamp)
	e.mu.Unlock()
	return next
}

// OnLifecycleChange is the lifecycle subscriber: it retargets the hum voices
// for the new (stage, progress) with short ramps, crossfading between the
// base hum and the pirate resonance when the stage crosses into or out of
// pirate
func (e *Engine) OnLifecycleChange(stage lifecycle.Stage, progress float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stage = stage
	e.progress = progress

	wantPirate := stage == lifecycle.StagePirate
	if wantPirate != e.pirateActive {
		e.pirateActive = wantPirate
		e.applyHumLocked(crossfadeDur)
		return
	}
	e.applyHumLocked(paramRamp)
}

// applyHumLocked installs absolute targets on both voices for the current
// stage, level, and hum mode
func (e *Engine) applyHumLocked(ramp time.Duration) {
	mult := e.level.Multiplier()
	samples := e.rate.N(ramp)

	if e.pirateActive {
		e.hum.setTargets(30.0, 0, samples)
		e.pirate.setTargets(pirateFreq, pirateGain*mult, samples)
		return
	}

	freq, gain := humParams(e.stage, e.progress)
	e.hum.setTargets(freq, gain*mult, samples)
	e.pirate.setTargets(pirateFreq, 0, samples)
}

// Play triggers a one-shot effect. One-shots are mixed alongside the hum and
// never disturb its state. Silent when disabled or muted.
func (e *Engine) Play(effect Effect) bool {
	e.mu.Lock()
	initialized := e.initialized
	mult := e.level.Multiplier()
	e.mu.Unlock()

	if !initialized || mult <= 0 {
		return false
	}

	s := buildEffect(effect, e.rate)
	if s == nil {
		return false
	}

	speaker.Lock()
	e.mixer.Add(&amplify{streamer: s, gain: effectGain(effect) * mult})
	speaker.Unlock()
	return true
}
