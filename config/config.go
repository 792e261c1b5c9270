// Package config holds the static stage-keyed table of timing, color, and
// animation-curve parameters. The table is immutable after load; every
// consumer reads the same records.
package config

import (
	"time"

	"github.com/driftglass/specimen/lifecycle"
)

// RGB is a color triple
type RGB struct {
	R, G, B uint8
}

// Breathing controls the body opacity oscillation
type Breathing struct {
	Speed      float64 // cycles per second
	OpacityMin float64
	OpacityMax float64
}

// Vignette dims the screen edges
type Vignette struct {
	Radius  float64 // fraction of the half-diagonal left undimmed
	Opacity float64
}

// Scanlines bands the display
type Scanlines struct {
	Opacity float64
	Speed   float64 // rows per second
}

// Blur softens rendering per text class
type Blur struct {
	Title  float64
	Text   float64
	Pirate float64
}

// TextShadow is the glow behind text
type TextShadow struct {
	Spread    float64
	Intensity float64
}

// Flicker drives irregular brightness drops
type Flicker struct {
	Speed      float64 // events per second
	Brightness float64 // brightness loss at full flicker
}

// StageConfig is the per-stage parameter bundle. Pure data, immutable after
// load.
type StageConfig struct {
	Duration   time.Duration // standard-mode dwell time; ignored for pirate
	Color      RGB
	Breathing  Breathing
	Vignette   Vignette
	Scanlines  Scanlines
	Blur       Blur
	TextShadow TextShadow
	Flicker    Flicker
}

// Table maps each stage to its config, plus the pirate transition timing
// shared by both operating modes
type Table struct {
	stages map[lifecycle.Stage]StageConfig

	PirateFull time.Duration
	PirateFade time.Duration
}

// Default returns the stock table
func Default() *Table {
	return &Table{
		PirateFull: 7 * time.Second,
		PirateFade: 4 * time.Second,
		stages: map[lifecycle.Stage]StageConfig{
			lifecycle.StageHealthy: {
				Duration:   60 * time.Second,
				Color:      RGB{R: 74, G: 222, B: 128},
				Breathing:  Breathing{Speed: 0.25, OpacityMin: 0.85, OpacityMax: 1.0},
				Vignette:   Vignette{Radius: 0.9, Opacity: 0.2},
				Scanlines:  Scanlines{Opacity: 0.06, Speed: 8},
				TextShadow: TextShadow{Spread: 2, Intensity: 0.4},
			},
			lifecycle.StagePanic: {
				Duration:   30 * time.Second,
				Color:      RGB{R: 250, G: 204, B: 21},
				Breathing:  Breathing{Speed: 0.6, OpacityMin: 0.7, OpacityMax: 1.0},
				Vignette:   Vignette{Radius: 0.75, Opacity: 0.35},
				Scanlines:  Scanlines{Opacity: 0.12, Speed: 14},
				TextShadow: TextShadow{Spread: 3, Intensity: 0.5},
				Flicker:    Flicker{Speed: 6, Brightness: 0.15},
			},
			lifecycle.StageDecay: {
				Duration:   45 * time.Second,
				Color:      RGB{R: 163, G: 112, B: 67},
				Breathing:  Breathing{Speed: 0.12, OpacityMin: 0.4, OpacityMax: 0.75},
				Vignette:   Vignette{Radius: 0.6, Opacity: 0.5},
				Scanlines:  Scanlines{Opacity: 0.18, Speed: 4},
				Blur:       Blur{Title: 1, Text: 1},
				TextShadow: TextShadow{Spread: 1, Intensity: 0.2},
				Flicker:    Flicker{Speed: 2, Brightness: 0.3},
			},
			lifecycle.StageDeath: {
				Duration:   12 * time.Second,
				Color:      RGB{R: 64, G: 64, B: 64},
				Breathing:  Breathing{Speed: 0.05, OpacityMin: 0.0, OpacityMax: 0.3},
				Vignette:   Vignette{Radius: 0.45, Opacity: 0.7},
				Scanlines:  Scanlines{Opacity: 0.25, Speed: 1},
				Blur:       Blur{Title: 2, Text: 2},
				Flicker:    Flicker{Speed: 1, Brightness: 0.5},
			},
			lifecycle.StagePirate: {
				Color:      RGB{R: 56, G: 189, B: 248},
				Breathing:  Breathing{Speed: 0.15, OpacityMin: 0.8, OpacityMax: 1.0},
				Vignette:   Vignette{Radius: 0.8, Opacity: 0.3},
				Scanlines:  Scanlines{Opacity: 0.05, Speed: 6},
				Blur:       Blur{Pirate: 1},
				TextShadow: TextShadow{Spread: 4, Intensity: 0.6},
				Flicker:    Flicker{Speed: 0.5, Brightness: 0.1},
			},
		},
	}
}

// Stage returns the config for a stage, falling back to healthy for any
// stage the table does not carry
func (t *Table) Stage(s lifecycle.Stage) StageConfig {
	if cfg, ok := t.stages[s]; ok {
		return cfg
	}
	return t.stages[lifecycle.StageHealthy]
}

// Timeline derives the controller schedule from the stage durations
func (t *Table) Timeline() lifecycle.Timeline {
	return lifecycle.Timeline{
		Healthy:    t.Stage(lifecycle.StageHealthy).Duration,
		Panic:      t.Stage(lifecycle.StagePanic).Duration,
		Decay:      t.Stage(lifecycle.StageDecay).Duration,
		Death:      t.Stage(lifecycle.StageDeath).Duration,
		PirateFull: t.PirateFull,
		PirateFade: t.PirateFade,
	}
}
