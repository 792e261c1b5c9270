package lifecycle

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TickInterval is the period of the controller's driver loop
const TickInterval = 100 * time.Millisecond

// Timeline holds the stage durations for standard mode plus the pirate
// transition timing used by both modes
type Timeline struct {
	Healthy time.Duration
	Panic   time.Duration
	Decay   time.Duration
	Death   time.Duration

	PirateFull time.Duration // full sweep into pirate stage
	PirateFade time.Duration // fade-out sub-interval, fires its own callback
}

// DefaultTimeline returns the stock decay schedule
func DefaultTimeline() Timeline {
	return Timeline{
		Healthy:    60 * time.Second,
		Panic:      30 * time.Second,
		Decay:      45 * time.Second,
		Death:      12 * time.Second,
		PirateFull: 7 * time.Second,
		PirateFade: 4 * time.Second,
	}
}

// deathRevealFraction is the point within the death transition at which the
// reveal callback fires, letting collaborators swap what is on screen
const deathRevealFraction = 0.75

// bucket maps elapsed interaction time to a stage and fractional progress.
// expired reports that the full timeline has been consumed.
func (tl Timeline) bucket(elapsed time.Duration) (stage Stage, progress float64, expired bool) {
	if elapsed < 0 {
		elapsed = 0
	}
	h := tl.Healthy
	hp := h + tl.Panic
	hpd := hp + tl.Decay
	total := hpd + tl.Death

	switch {
	case elapsed < h:
		return StageHealthy, frac(elapsed, tl.Healthy), false
	case elapsed < hp:
		return StagePanic, frac(elapsed-h, tl.Panic), false
	case elapsed < hpd:
		return StageDecay, frac(elapsed-hp, tl.Decay), false
	case elapsed < total:
		return StageDeath, frac(elapsed-hpd, tl.Death), false
	default:
		return StageDeath, 1.0, true
	}
}

func frac(n, d time.Duration) float64 {
	if d <= 0 {
		return 1.0
	}
	return float64(n) / float64(d)
}

// subEntry pairs a subscriber with a removal handle
type subEntry struct {
	id uint64
	fn Subscriber
}

// pendingTask is a deadline-driven one-shot, checked on every driver step
type pendingTask struct {
	at time.Time
	fn func()
}

// driver identifies one running loop; at most one exists per controller
type driver struct {
	stop chan struct{}
	done chan struct{}
}

// Controller is the single source of truth for the specimen's lifecycle.
// It owns stage and progress, drives either the standard decay tick or a
// timed transition (never both), and broadcasts every change to subscribers
// in registration order.
type Controller struct {
	clock    Clock
	mode     Mode
	timeline Timeline
	log      zerolog.Logger

	mu        sync.Mutex
	stage     Stage
	prevStage Stage
	progress  float64
	dead      bool

	transitioning bool
	transStart    time.Time
	transDur      time.Duration
	transTarget   Stage
	transDone     func()

	lastInteraction time.Time
	deathReveal     func()

	pending []pendingTask

	subs      []subEntry
	nextSubID uint64

	drv *driver
}

// NewController creates a controller in stage healthy, progress 0.
// Nothing runs until Start is called.
func NewController(clock Clock, mode Mode, timeline Timeline, log zerolog.Logger) *Controller {
	return &Controller{
		clock:    clock,
		mode:     mode,
		timeline: timeline,
		log:      log,
	}
}

// Mode returns the operating mode the controller was built with
func (c *Controller) Mode() Mode {
	return c.mode
}

// Snapshot returns the current lifecycle state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Stage:         c.stage,
		Progress:      c.progress,
		Dead:          c.dead,
		Transitioning: c.transitioning,
	}
}

// PreviousStage returns the stage that was current before the most recent
// transition began. Cosmetic consumers may key off it during low-progress
// transition ticks.
func (c *Controller) PreviousStage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prevStage
}

// Subscribe registers a broadcast callback and returns its removal handle.
// A nil callback is ignored and the returned cancel is a no-op.
func (c *Controller) Subscribe(fn Subscriber) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs = append(c.subs, subEntry{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the number of registered subscribers
func (c *Controller) SubscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// SetDeathReveal registers the callback fired partway through the death
// transition, before the specimen is fully dead
func (c *Controller) SetDeathReveal(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deathReveal = fn
}

// Start begins lifecycle processing. In standard mode it records the
// interaction epoch and starts the driver loop. In permanent mode it freezes
// the lifecycle at pirate with full progress, broadcasts once, and starts no
// timer.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.mode == ModePermanent {
		c.stage = StagePirate
		c.prevStage = StagePirate
		c.progress = 1.0
		subs := c.snapshotSubsLocked()
		c.mu.Unlock()
		c.log.Info().Str("stage", StagePirate.String()).Msg("lifecycle frozen in permanent mode")
		c.broadcast(subs, StagePirate, 1.0)
		return
	}

	c.lastInteraction = c.clock.Now()
	c.mu.Unlock()
	c.log.Info().Dur("tick", TickInterval).Msg("lifecycle started")
	c.startDriver()
}

// ResetInteraction restarts the decay countdown. No-op in permanent mode,
// after death, or during a transition.
func (c *Controller) ResetInteraction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModePermanent || c.dead || c.transitioning {
		return
	}
	c.lastInteraction = c.clock.Now()
}

// StartTransition interpolates to the target stage over the given duration.
// The destination stage is reported immediately with progress ramping from 0;
// onComplete fires exactly once when progress reaches 1. Any running tick
// logic is superseded for the duration.
func (c *Controller) StartTransition(to Stage, dur time.Duration, onComplete func()) {
	c.mu.Lock()
	c.startTransitionLocked(c.clock.Now(), to, dur, onComplete)
	c.mu.Unlock()
	c.startDriver()
}

func (c *Controller) startTransitionLocked(now time.Time, to Stage, dur time.Duration, onComplete func()) {
	c.prevStage = c.stage
	c.transitioning = true
	c.transStart = now
	c.transDur = dur
	c.transTarget = to
	c.transDone = onComplete
	c.log.Debug().
		Str("from", c.prevStage.String()).
		Str("to", to.String()).
		Dur("duration", dur).
		Msg("transition started")
}

// BeginDeath starts the terminal transition. Idempotent: ignored when already
// dead or mid-transition. The reveal callback is scheduled partway through so
// collaborators can swap the display before the specimen fully dies.
func (c *Controller) BeginDeath() {
	c.mu.Lock()
	c.beginDeathLocked(c.clock.Now())
	c.mu.Unlock()
	c.startDriver()
}

func (c *Controller) beginDeathLocked(now time.Time) {
	if c.dead || c.transitioning {
		return
	}
	if c.deathReveal != nil {
		reveal := time.Duration(float64(c.timeline.Death) * deathRevealFraction)
		c.pending = append(c.pending, pendingTask{at: now.Add(reveal), fn: c.deathReveal})
	}
	c.startTransitionLocked(now, StageDeath, c.timeline.Death, c.markDead)
}

func (c *Controller) markDead() {
	c.mu.Lock()
	c.dead = true
	c.mu.Unlock()
	c.log.Info().Msg("specimen died")
}

// EnterPirateMode sweeps into the pirate stage over the configured full
// duration. onFadeComplete fires independently at the shorter fade-out
// interval; both it and the internal transition completion fire from this one
// call, at different times. Ignored if already in or heading to pirate. The
// lifecycle is terminal afterward: interaction resets and standard ticking
// never come back.
func (c *Controller) EnterPirateMode(onFadeComplete func()) {
	c.mu.Lock()
	if c.stage == StagePirate || (c.transitioning && c.transTarget == StagePirate) {
		c.mu.Unlock()
		return
	}
	now := c.clock.Now()
	if onFadeComplete != nil {
		c.pending = append(c.pending, pendingTask{at: now.Add(c.timeline.PirateFade), fn: onFadeComplete})
	}
	// Pirate is irreversible. Latch the terminal flag here rather than rely
	// on a superseded death transition's completion: standard ticking must
	// never resume and pull the specimen back out.
	c.dead = true
	c.startTransitionLocked(now, StagePirate, c.timeline.PirateFull, nil)
	c.mu.Unlock()
	c.startDriver()
}

// SetStage overrides stage and progress directly and broadcasts immediately,
// bypassing tick and transition logic
func (c *Controller) SetStage(stage Stage, progress float64) {
	progress = math.Max(0, math.Min(progress, 1))

	c.mu.Lock()
	c.stage = stage
	c.progress = progress
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	c.broadcast(subs, stage, progress)
}

// Pause stops the driver loop and freezes the clock, so paused wall time is
// excluded from elapsed-interaction accounting. Flags and timing state are
// untouched.
func (c *Controller) Pause() {
	c.stopDriver()
	c.clock.Pause()
}

// Resume unfreezes the clock and restarts the driver loop. The driver does
// not restart when dead, transitioning, or in permanent mode, but the clock
// always resumes: transitions and anyone else reading it must see advancing
// time again after every Pause/Resume pair.
func (c *Controller) Resume() {
	c.clock.Resume()

	c.mu.Lock()
	if c.dead || c.transitioning || c.mode == ModePermanent {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.startDriver()
}

// Destroy cancels any timer and scheduled one-shots, clears the subscriber
// list, and resets the dead and transitioning flags. Stage and progress are
// left as they were.
func (c *Controller) Destroy() {
	c.stopDriver()

	c.mu.Lock()
	c.pending = nil
	c.subs = nil
	c.dead = false
	c.transitioning = false
	c.transDone = nil
	c.mu.Unlock()
}

// startDriver launches the loop if none is running
func (c *Controller) startDriver() {
	c.mu.Lock()
	if c.drv != nil {
		c.mu.Unlock()
		return
	}
	d := &driver{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.drv = d
	c.mu.Unlock()

	go c.run(d)
}

// stopDriver halts the loop and waits for it to exit
func (c *Controller) stopDriver() {
	c.mu.Lock()
	d := c.drv
	c.drv = nil
	c.mu.Unlock()

	if d != nil {
		close(d.stop)
		<-d.done
	}
}

// run is the driver loop: one ticker feeding step until stopped or until
// step reports there is nothing left to drive
func (c *Controller) run(d *driver) {
	defer close(d.done)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			if !c.step(c.clock.Now()) {
				c.mu.Lock()
				if c.drv == d {
					c.drv = nil
				}
				c.mu.Unlock()
				return
			}
		}
	}
}

// step advances the lifecycle to the given instant. It fires due one-shots,
// then applies exactly one of: transition interpolation, dead no-op, or
// standard-mode bucketing. Returns false when the driver has nothing further
// to do.
func (c *Controller) step(now time.Time) bool {
	c.mu.Lock()

	due := c.takeDueLocked(now)

	var (
		doNotify  bool
		st        Stage
		p         float64
		completed func()
	)
	keep := true

	switch {
	case c.transitioning:
		elapsed := now.Sub(c.transStart)
		p = 1.0
		if c.transDur > 0 {
			p = math.Min(float64(elapsed)/float64(c.transDur), 1.0)
		}
		if p < 0 {
			p = 0
		}
		c.stage = c.transTarget
		c.progress = p
		st = c.stage
		doNotify = true

		if p >= 1.0 {
			c.transitioning = false
			completed = c.transDone
			c.transDone = nil
			// tick logic does not resume after a transition
			keep = len(c.pending) > 0
		}

	case c.dead:
		keep = len(c.pending) > 0

	case c.mode == ModeStandard:
		elapsed := now.Sub(c.lastInteraction)
		stage, progress, expired := c.timeline.bucket(elapsed)
		if expired {
			c.beginDeathLocked(now)
		} else {
			if stage != c.stage {
				c.log.Debug().Str("stage", stage.String()).Msg("stage changed")
			}
			c.stage = stage
			c.progress = progress
			st, p = stage, progress
			doNotify = true
		}

	default:
		keep = false
	}

	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	for _, fn := range due {
		c.runIsolated(fn)
	}
	if doNotify {
		c.broadcast(subs, st, p)
	}
	if completed != nil {
		c.runIsolated(completed)
	}
	return keep
}

// takeDueLocked removes and returns one-shots whose deadline has passed
func (c *Controller) takeDueLocked(now time.Time) []func() {
	if len(c.pending) == 0 {
		return nil
	}
	var due []func()
	rest := c.pending[:0]
	for _, t := range c.pending {
		if t.at.After(now) {
			rest = append(rest, t)
		} else {
			due = append(due, t.fn)
		}
	}
	c.pending = rest
	return due
}

func (c *Controller) snapshotSubsLocked() []subEntry {
	if len(c.subs) == 0 {
		return nil
	}
	out := make([]subEntry, len(c.subs))
	copy(out, c.subs)
	return out
}

// broadcast invokes every subscriber with the same snapshot. Each invocation
// is isolated: a panicking subscriber does not prevent the rest from running
// and cannot crash the controller.
func (c *Controller) broadcast(subs []subEntry, stage Stage, progress float64) {
	for _, s := range subs {
		c.runIsolatedSub(s.fn, stage, progress)
	}
}

func (c *Controller) runIsolatedSub(fn Subscriber, stage Stage, progress float64) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("subscriber panicked during broadcast")
		}
	}()
	fn(stage, progress)
}

func (c *Controller) runIsolated(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("scheduled callback panicked")
		}
	}()
	fn()
}
