package beam

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftglass/specimen/lifecycle"
)

// manualClock drives the scanner without real time
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func newTestScanner(width int) (*Scanner, *manualClock) {
	clock := newManualClock()
	return NewScanner(width, clock.Now, zerolog.Nop()), clock
}

func TestCycleForStages(t *testing.T) {
	tests := []struct {
		stage lifecycle.Stage
		cycle time.Duration
	}{
		{lifecycle.StageHealthy, 3 * time.Second},
		{lifecycle.StagePanic, 1200 * time.Millisecond},
		{lifecycle.StageDecay, 6 * time.Second},
		{lifecycle.StageDeath, 0},
		{lifecycle.StagePirate, 4 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			if got := cycleFor(tt.stage); got != tt.cycle {
				t.Errorf("cycleFor(%v) = %v, want %v", tt.stage, got, tt.cycle)
			}
		})
	}

	// Every distinct stage pair except frozen death has distinct speed
	seen := map[time.Duration]lifecycle.Stage{}
	for _, tt := range tests {
		if prev, dup := seen[tt.cycle]; dup {
			t.Errorf("stages %v and %v share cycle %v", prev, tt.stage, tt.cycle)
		}
		seen[tt.cycle] = tt.stage
	}
}

func TestColumnSweep(t *testing.T) {
	s, clock := newTestScanner(101)

	// Healthy cycle is 3s: half a cycle reaches the right edge
	if col := s.Column(); col != 0 {
		t.Fatalf("column at t=0 is %d, want 0", col)
	}

	clock.Advance(750 * time.Millisecond)
	if col := s.Column(); col != 50 {
		t.Errorf("column at quarter cycle = %d, want 50", col)
	}

	clock.Advance(750 * time.Millisecond)
	if col := s.Column(); col != 100 {
		t.Errorf("column at half cycle = %d, want 100", col)
	}

	// Second half sweeps back
	clock.Advance(750 * time.Millisecond)
	if col := s.Column(); col != 50 {
		t.Errorf("column at three-quarter cycle = %d, want 50", col)
	}

	clock.Advance(750 * time.Millisecond)
	if col := s.Column(); col != 0 {
		t.Errorf("column at full cycle = %d, want 0", col)
	}
}

func TestDeathFreezesBeam(t *testing.T) {
	s, clock := newTestScanner(101)

	clock.Advance(750 * time.Millisecond)
	before := s.Column()

	s.OnLifecycleChange(lifecycle.StageDeath, 0.0)
	clock.Advance(10 * time.Second)

	if after := s.Column(); after != before {
		t.Errorf("frozen beam moved: %d -> %d", before, after)
	}
}

// TestSpeedChangeKeepsPhase verifies a stage change retargets speed without
// snapping the beam to a new column
func TestSpeedChangeKeepsPhase(t *testing.T) {
	s, clock := newTestScanner(101)

	clock.Advance(750 * time.Millisecond) // quarter cycle, column 50
	before := s.Column()

	s.OnLifecycleChange(lifecycle.StagePanic, 0.0)
	after := s.Column()

	if before != after {
		t.Errorf("speed change snapped the beam: %d -> %d", before, after)
	}

	// And the new speed applies: panic's quarter cycle is 300ms
	clock.Advance(300 * time.Millisecond)
	if col := s.Column(); col != 100 {
		t.Errorf("column = %d after panic quarter cycle, want 100", col)
	}
}

func TestClassify(t *testing.T) {
	tgt := Target{Label: "title", X: 40, Y: 5, Width: 10}

	tests := []struct {
		name string
		col  int
		tier Tier
	}{
		{"far left", 10, TierNone},
		{"approaching left", 33, TierApproaching},
		{"contact left edge", 38, TierContact},
		{"inside", 45, TierContact},
		{"contact right edge", 51, TierContact},
		{"approaching right", 55, TierApproaching},
		{"far right", 80, TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.col, tgt); got != tt.tier {
				t.Errorf("classify(%d) = %v, want %v", tt.col, got, tt.tier)
			}
		})
	}
}

func TestScanContactFiresOncePerEntry(t *testing.T) {
	s, clock := newTestScanner(101)
	s.SetTargets([]Target{{Label: "title", X: 48, Y: 5, Width: 4}})

	var contacts []string
	s.SetContactFunc(func(tgt Target) {
		contacts = append(contacts, tgt.Label)
	})

	// Beam at column 0: no contact
	snap := s.Scan()
	if snap.Tiers[0] != TierNone {
		t.Fatalf("tier = %v at column 0", snap.Tiers[0])
	}

	// Quarter cycle: column 50, inside the target
	clock.Advance(750 * time.Millisecond)
	snap = s.Scan()
	if snap.Tiers[0] != TierContact {
		t.Fatalf("tier = %v at column 50, want contact", snap.Tiers[0])
	}

	// Still in contact: hook must not refire
	s.Scan()
	s.Scan()
	if len(contacts) != 1 {
		t.Fatalf("contact fired %d times for one entry, want 1", len(contacts))
	}

	// Leave and re-enter: fires again
	clock.Advance(750 * time.Millisecond) // column 100
	s.Scan()
	clock.Advance(750 * time.Millisecond) // back to 50
	s.Scan()
	if len(contacts) != 2 {
		t.Errorf("contact fired %d times after re-entry, want 2", len(contacts))
	}
}

func TestDestroyStopsLoop(t *testing.T) {
	s, _ := newTestScanner(80)
	s.SetTargets([]Target{{Label: "x", X: 0, Y: 0, Width: 4}})

	s.Start()
	s.Start() // re-entrant start must not spawn a second loop
	s.Destroy()
	s.Destroy() // repeated teardown is harmless

	if snap := s.Scan(); len(snap.Tiers) != 0 {
		t.Error("targets should be dropped after destroy")
	}
}

func TestSnapshotIsReadOnly(t *testing.T) {
	s, clock := newTestScanner(101)
	s.SetTargets([]Target{{Label: "title", X: 48, Y: 5, Width: 4}})

	contacts := 0
	s.SetContactFunc(func(Target) { contacts++ })

	// Quarter cycle: column 50, inside the target. Snapshot reflects the
	// beam position but must not classify or fire hooks on its own.
	clock.Advance(750 * time.Millisecond)
	snap := s.Snapshot()
	if snap.Column != 50 {
		t.Fatalf("column = %d, want 50", snap.Column)
	}
	if snap.Tiers[0] != TierNone {
		t.Fatalf("tier = %v before any scan, want none", snap.Tiers[0])
	}
	if contacts != 0 {
		t.Fatalf("snapshot fired %d contact hooks before any scan", contacts)
	}

	// One scan classifies and fires; repeated snapshots only read it back
	s.Scan()
	if contacts != 1 {
		t.Fatalf("scan fired %d contact hooks, want 1", contacts)
	}
	for i := 0; i < 5; i++ {
		snap = s.Snapshot()
	}
	if contacts != 1 {
		t.Errorf("snapshots fired contact hooks: %d total, want 1", contacts)
	}
	if snap.Tiers[0] != TierContact {
		t.Errorf("tier = %v after scan, want contact", snap.Tiers[0])
	}
}
