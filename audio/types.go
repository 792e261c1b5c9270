// Package audio synthesizes the specimen's continuous hum and one-shot
// effects with beep. The base CRT hum (fundamental plus two harmonics) and
// the pirate resonance hum (different fundamental, a slow beating partner
// tone, and a harmonic) are mutually exclusive; switching between them is a
// multi-second crossfade, never a cut.
package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"

	"github.com/driftglass/specimen/lifecycle"
)

// SampleRate is the fixed output rate for all synthesis
const SampleRate = beep.SampleRate(44100)

// Level is the discrete volume setting
type Level int

const (
	LevelOff Level = iota
	LevelLow
	LevelMed
	LevelHigh
)

// levelCount wraps CycleLevel
const levelCount = 4

// Multiplier returns the gain factor for a level. Level changes apply these
// as absolute ramp targets; multipliers are never stacked on top of an
// already-scaled gain.
func (l Level) Multiplier() float64 {
	switch l {
	case LevelLow:
		return 0.3
	case LevelMed:
		return 0.6
	case LevelHigh:
		return 1.0
	default:
		return 0.0
	}
}

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelLow:
		return "low"
	case LevelMed:
		return "med"
	case LevelHigh:
		return "high"
	default:
		return "off"
	}
}

// ParseLevel maps a level name to its value
func ParseLevel(name string) (Level, error) {
	switch name {
	case "off":
		return LevelOff, nil
	case "low":
		return LevelLow, nil
	case "med", "medium":
		return LevelMed, nil
	case "high":
		return LevelHigh, nil
	default:
		return LevelOff, fmt.Errorf("unknown volume level %q", name)
	}
}

// Ramp and crossfade timing. Stage-to-stage parameter moves use the short
// ramp to avoid audible discontinuities; hum mode switches sweep over the
// crossfade duration.
const (
	paramRamp    = 150 * time.Millisecond
	levelRamp    = 250 * time.Millisecond
	crossfadeDur = 2500 * time.Millisecond
)

// Pirate resonance parameters
const (
	pirateFreq = 92.0
	pirateGain = 0.07
)

// humParams maps (stage, progress) to the base hum's fundamental frequency
// and gain at full volume. Deterministic; the caller scales gain by the
// current level multiplier.
func humParams(stage lifecycle.Stage, progress float64) (freq, gain float64) {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	switch stage {
	case lifecycle.StageHealthy:
		return 50.0, 0.055
	case lifecycle.StagePanic:
		return 55.0 + 10.0*progress, 0.08
	case lifecycle.StageDecay:
		return 48.0 - 14.0*progress, 0.06 * (1.0 - 0.4*progress)
	case lifecycle.StageDeath:
		return 34.0 - 10.0*progress, 0.05 * (1.0 - progress)
	default:
		return 50.0, 0.055
	}
}
