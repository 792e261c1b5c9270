package lifecycle

import (
	"testing"
	"time"
)

func TestPausableClockFreezesWhilePaused(t *testing.T) {
	pc := NewPausableClock()

	pc.Pause()
	first := pc.Now()
	time.Sleep(20 * time.Millisecond)
	second := pc.Now()

	if !first.Equal(second) {
		t.Errorf("clock advanced while paused: %v vs %v", first, second)
	}
}

func TestPausableClockExcludesPauseDuration(t *testing.T) {
	pc := NewPausableClock()

	before := pc.Now()
	pc.Pause()
	time.Sleep(30 * time.Millisecond)
	pc.Resume()
	after := pc.Now()

	// Elapsed reading should be far below the real 30ms+ that passed
	if elapsed := after.Sub(before); elapsed > 15*time.Millisecond {
		t.Errorf("pause leaked into elapsed time: %v", elapsed)
	}
	if pc.TotalPauseDuration() < 30*time.Millisecond {
		t.Errorf("total pause = %v, want >= 30ms", pc.TotalPauseDuration())
	}
}

func TestPausableClockDoublePause(t *testing.T) {
	pc := NewPausableClock()

	pc.Pause()
	pc.Pause() // second call must not reset the pause start
	if !pc.IsPaused() {
		t.Fatal("expected paused")
	}

	pc.Resume()
	pc.Resume()
	if pc.IsPaused() {
		t.Fatal("expected resumed")
	}
}

func TestMockClockAdvance(t *testing.T) {
	m := NewMockClock(testEpoch)

	m.Advance(time.Minute)
	if got := m.Now(); !got.Equal(testEpoch.Add(time.Minute)) {
		t.Errorf("Now() = %v, want epoch+1m", got)
	}

	m.Pause()
	m.Advance(time.Hour)
	if got := m.Now(); !got.Equal(testEpoch.Add(time.Minute)) {
		t.Errorf("paused mock advanced: %v", got)
	}

	m.Resume()
	m.SetTime(testEpoch)
	if got := m.Now(); !got.Equal(testEpoch) {
		t.Errorf("SetTime ignored: %v", got)
	}
}
