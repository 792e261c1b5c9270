// Package beam animates the electron-beam scan column and its proximity
// response. The beam's cycle duration is entirely determined by the current
// stage; a dedicated loop periodically measures the distance from the beam to
// a fixed catalog of text regions and applies a three-tier response.
package beam

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftglass/specimen/lifecycle"
)

// ScanInterval is the proximity check period
const ScanInterval = 40 * time.Millisecond

// Proximity thresholds in columns. Contact is the tightest band.
const (
	approachDist = 8
	contactDist  = 2
)

// Tier is the visual response strength for a scanned region
type Tier int

const (
	TierNone Tier = iota
	TierApproaching
	TierContact
)

func (t Tier) String() string {
	switch t {
	case TierApproaching:
		return "approaching"
	case TierContact:
		return "contact"
	default:
		return "none"
	}
}

// Target is a text-bearing region the beam scans against
type Target struct {
	Label string
	X     int
	Y     int
	Width int
}

// Snapshot is the renderer's view of the beam
type Snapshot struct {
	Column int
	Tiers  []Tier // parallel to the target catalog
}

// cycleFor maps a stage to the beam's full sweep duration. Zero freezes the
// beam in place.
func cycleFor(stage lifecycle.Stage) time.Duration {
	switch stage {
	case lifecycle.StageHealthy:
		return 3 * time.Second
	case lifecycle.StagePanic:
		return 1200 * time.Millisecond
	case lifecycle.StageDecay:
		return 6 * time.Second
	case lifecycle.StageDeath:
		return 0
	case lifecycle.StagePirate:
		return 4 * time.Second
	default:
		return 3 * time.Second
	}
}

// Scanner owns the beam position and the per-target proximity state. The
// beam geometry is read-only to everyone else; collaborators take snapshots.
type Scanner struct {
	log zerolog.Logger
	now func() time.Time

	mu        sync.Mutex
	width     int
	cycle     time.Duration
	phaseRef  time.Time
	phaseBase float64 // phase at phaseRef, in [0,1)
	targets   []Target
	tiers     []Tier
	onContact func(Target)

	stop     chan struct{}
	done     chan struct{}
	scanning bool
}

// NewScanner creates a scanner sweeping the given width, initially at the
// healthy cycle
func NewScanner(width int, now func() time.Time, log zerolog.Logger) *Scanner {
	if now == nil {
		now = time.Now
	}
	return &Scanner{
		log:      log,
		now:      now,
		width:    width,
		cycle:    cycleFor(lifecycle.StageHealthy),
		phaseRef: now(),
	}
}

// SetTargets installs the catalog of regions to scan against
func (s *Scanner) SetTargets(targets []Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = make([]Target, len(targets))
	copy(s.targets, targets)
	s.tiers = make([]Tier, len(targets))
}

// SetContactFunc registers the hook fired when the beam newly enters contact
// with a target
func (s *Scanner) SetContactFunc(fn func(Target)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onContact = fn
}

// Resize updates the sweep width
func (s *Scanner) Resize(width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.width = width
	}
}

// OnLifecycleChange is the lifecycle subscriber: the sweep speed retargets to
// the stage's cycle. Phase continuity is preserved so a speed change never
// snaps the beam to a different column.
func (s *Scanner) OnLifecycleChange(stage lifecycle.Stage, _ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cycleFor(stage)
	if next == s.cycle {
		return
	}

	now := s.now()
	s.phaseBase = s.phaseLocked(now)
	s.phaseRef = now
	s.cycle = next
}

// phaseLocked returns the current sweep phase in [0,1)
func (s *Scanner) phaseLocked(now time.Time) float64 {
	if s.cycle <= 0 {
		// Frozen: phase stays wherever the last speed change left it
		return s.phaseBase
	}
	elapsed := now.Sub(s.phaseRef)
	phase := s.phaseBase + float64(elapsed)/float64(s.cycle)
	return phase - math.Floor(phase)
}

// Column returns the beam's current column. The sweep is triangular: left to
// right and back over one cycle.
func (s *Scanner) Column() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columnLocked(s.now())
}

func (s *Scanner) columnLocked(now time.Time) int {
	phase := s.phaseLocked(now)
	pos := phase * 2
	if pos > 1 {
		pos = 2 - pos
	}
	return int(math.Round(pos * float64(s.width-1)))
}

// Snapshot returns the current beam column and the tier classification from
// the most recent Scan. Read-only: it never re-classifies and never fires
// contact hooks, so renderers can call it every frame without disturbing the
// scan cadence.
func (s *Scanner) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Column: s.columnLocked(s.now()),
		Tiers:  make([]Tier, len(s.tiers)),
	}
	copy(snap.Tiers, s.tiers)
	return snap
}

// Scan performs one proximity pass: classify every target against the beam
// column and fire the contact hook for targets newly entering contact
func (s *Scanner) Scan() Snapshot {
	s.mu.Lock()

	col := s.columnLocked(s.now())
	var contacts []Target
	for i, tgt := range s.targets {
		tier := classify(col, tgt)
		if tier == TierContact && s.tiers[i] != TierContact {
			contacts = append(contacts, tgt)
		}
		s.tiers[i] = tier
	}

	snap := Snapshot{
		Column: col,
		Tiers:  make([]Tier, len(s.tiers)),
	}
	copy(snap.Tiers, s.tiers)
	fn := s.onContact
	s.mu.Unlock()

	if fn != nil {
		for _, tgt := range contacts {
			fn(tgt)
		}
	}
	return snap
}

// classify measures column distance from the beam to a target's span
func classify(col int, tgt Target) Tier {
	dist := 0
	switch {
	case col < tgt.X:
		dist = tgt.X - col
	case col >= tgt.X+tgt.Width:
		dist = col - (tgt.X + tgt.Width - 1)
	}

	switch {
	case dist <= contactDist:
		return TierContact
	case dist <= approachDist:
		return TierApproaching
	default:
		return TierNone
	}
}

// Start launches the independent proximity loop
func (s *Scanner) Start() {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return
	}
	s.scanning = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Scan()
			}
		}
	}()
}

// Destroy stops the proximity loop and drops the target catalog. Safe to
// call repeatedly.
func (s *Scanner) Destroy() {
	s.mu.Lock()
	var stop, done chan struct{}
	if s.scanning {
		s.scanning = false
		stop, done = s.stop, s.done
	}
	s.targets = nil
	s.tiers = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}
