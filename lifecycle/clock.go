package lifecycle

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock supplies time to the controller. The pausable implementation excludes
// paused wall-clock time from elapsed readings, so a paused specimen resumes
// at the stage it was in when paused rather than skipping ahead.
type Clock interface {
	Now() time.Time
	Pause()
	Resume()
}

// PausableClock provides pausable time with pause duration tracking
type PausableClock struct {
	mu sync.RWMutex

	realStartTime time.Time // When clock was created (real time)
	baseTime      time.Time // Reported time epoch (adjusted for pauses)

	isPaused        atomic.Bool
	pauseStartTime  time.Time     // When current pause started (real time)
	totalPausedTime time.Duration // Cumulative pause duration
}

// NewPausableClock creates a clock starting at the current wall time
func NewPausableClock() *PausableClock {
	now := time.Now()
	return &PausableClock{
		realStartTime: now,
		baseTime:      now,
	}
}

// Now returns current time, frozen while paused
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		// During pause: return frozen time at pause point
		return pc.baseTime.Add(pc.pauseStartTime.Sub(pc.realStartTime) - pc.totalPausedTime)
	}

	// Elapsed = real elapsed - total paused time
	realElapsed := time.Since(pc.realStartTime)
	return pc.baseTime.Add(realElapsed - pc.totalPausedTime)
}

// Pause stops time advancement
func (pc *PausableClock) Pause() {
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		pc.pauseStartTime = time.Now()
	}
}

// Resume continues time advancement
func (pc *PausableClock) Resume() {
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		defer pc.mu.Unlock()

		if !pc.pauseStartTime.IsZero() {
			pc.totalPausedTime += time.Since(pc.pauseStartTime)
			pc.pauseStartTime = time.Time{}
		}
	}
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPauseDuration returns cumulative pause time
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.isPaused.Load() && !pc.pauseStartTime.IsZero() {
		total += time.Since(pc.pauseStartTime)
	}
	return total
}
