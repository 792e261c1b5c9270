// Package particles maintains the drifting dust field behind the specimen:
// three depth layers with distinct counts, glyphs, and speeds. Stage changes
// scale each layer's opacity, and during decay and death a growing fraction
// of particles per layer fades out entirely, simulating attrition rather
// than restarting the animation.
package particles

import (
	"math"
	"math/rand"
	"sync"

	"github.com/driftglass/specimen/lifecycle"
)

// Layer describes one depth plane
type Layer struct {
	Count       int
	Glyph       rune
	BaseOpacity float64
	Speed       float64 // cells per second, horizontal drift
	Sink        float64 // cells per second, downward drift
}

// DefaultLayers returns the stock back-to-front planes
func DefaultLayers() [3]Layer {
	return [3]Layer{
		{Count: 40, Glyph: '·', BaseOpacity: 0.35, Speed: 1.5, Sink: 0.4},
		{Count: 24, Glyph: '•', BaseOpacity: 0.60, Speed: 3.0, Sink: 0.8},
		{Count: 12, Glyph: '*', BaseOpacity: 0.90, Speed: 5.0, Sink: 1.4},
	}
}

// opacityEaseRate controls how quickly a particle's opacity approaches its
// target, per second
const opacityEaseRate = 3.0

// beamBoost brightens particles near the beam column
const (
	beamRadius = 4
	beamFactor = 1.4
)

type particle struct {
	x, y    float64
	vx, vy  float64
	opacity float64
	target  float64
}

// View is a renderer-facing particle snapshot
type View struct {
	X, Y    int
	Glyph   rune
	Opacity float64
	Layer   int
}

// Field owns the particle pool. All mutation happens through SyncToStage and
// Advance; rendering reads snapshots.
type Field struct {
	mu     sync.Mutex
	width  int
	height int
	layers [3]Layer
	pool   [3][]particle

	stage    lifecycle.Stage
	progress float64
}

// NewField populates the three layers with deterministic positions from the
// given seed
func NewField(width, height int, seed int64) *Field {
	f := &Field{
		width:  width,
		height: height,
		layers: DefaultLayers(),
	}

	rng := rand.New(rand.NewSource(seed))
	for li, layer := range f.layers {
		pool := make([]particle, layer.Count)
		for i := range pool {
			dir := 1.0
			if rng.Intn(2) == 0 {
				dir = -1
			}
			pool[i] = particle{
				x:       rng.Float64() * float64(width),
				y:       rng.Float64() * float64(height),
				vx:      dir * layer.Speed * (0.6 + 0.8*rng.Float64()),
				vy:      layer.Sink * (0.5 + rng.Float64()),
				opacity: layer.BaseOpacity,
				target:  layer.BaseOpacity,
			}
		}
		f.pool[li] = pool
	}
	return f
}

// Resize updates the wrap bounds
func (f *Field) Resize(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if width > 0 {
		f.width = width
	}
	if height > 0 {
		f.height = height
	}
}

// stageMultiplier scales layer opacity per stage
func stageMultiplier(stage lifecycle.Stage) float64 {
	switch stage {
	case lifecycle.StageHealthy:
		return 1.0
	case lifecycle.StagePanic:
		return 1.15
	case lifecycle.StageDecay:
		return 0.6
	case lifecycle.StageDeath:
		return 0.25
	case lifecycle.StagePirate:
		return 0.8
	default:
		return 1.0
	}
}

// attritionFraction returns the fraction of each layer faded to nothing.
// Attrition ramps through decay and continues through death until the whole
// field is gone.
func attritionFraction(stage lifecycle.Stage, progress float64) float64 {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	switch stage {
	case lifecycle.StageDecay:
		return 0.5 * progress
	case lifecycle.StageDeath:
		return 0.5 + 0.5*progress
	default:
		return 0
	}
}

// OnLifecycleChange is the lifecycle subscriber: it retargets every
// particle's opacity for the new stage. Targets move; actual opacity eases
// toward them in Advance, so stage changes never snap.
func (f *Field) OnLifecycleChange(stage lifecycle.Stage, progress float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stage = stage
	f.progress = progress

	mult := stageMultiplier(stage)
	gone := attritionFraction(stage, progress)

	for li, layer := range f.layers {
		cutoff := int(gone * float64(layer.Count))
		for i := range f.pool[li] {
			if i < cutoff {
				// Attrition is deterministic by index order
				f.pool[li][i].target = 0
			} else {
				f.pool[li][i].target = math.Min(layer.BaseOpacity*mult, 1.0)
			}
		}
	}
}

// Advance moves the field forward by dt seconds: drift with wraparound and
// opacity easing
func (f *Field) Advance(dt float64) {
	if dt <= 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	w, h := float64(f.width), float64(f.height)
	ease := math.Min(opacityEaseRate*dt, 1.0)

	for li := range f.pool {
		for i := range f.pool[li] {
			p := &f.pool[li][i]
			p.x = wrap(p.x+p.vx*dt, w)
			p.y = wrap(p.y+p.vy*dt, h)
			p.opacity += (p.target - p.opacity) * ease
		}
	}
}

func wrap(v, bound float64) float64 {
	if bound <= 0 {
		return 0
	}
	v = math.Mod(v, bound)
	if v < 0 {
		v += bound
	}
	return v
}

// Snapshot returns renderable particle views. Particles within the beam's
// radius are brightened; the beam geometry is read-only here.
func (f *Field) Snapshot(beamCol int) []View {
	f.mu.Lock()
	defer f.mu.Unlock()

	var views []View
	for li, layer := range f.layers {
		for i := range f.pool[li] {
			p := &f.pool[li][i]
			if p.opacity < 0.01 {
				continue
			}

			op := p.opacity
			x := int(p.x)
			if dx := x - beamCol; dx >= -beamRadius && dx <= beamRadius {
				op = math.Min(op*beamFactor, 1.0)
			}

			views = append(views, View{
				X:       x,
				Y:       int(p.y),
				Glyph:   layer.Glyph,
				Opacity: op,
				Layer:   li,
			})
		}
	}
	return views
}

// Destroy drops the pool
func (f *Field) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for li := range f.pool {
		f.pool[li] = nil
	}
}
