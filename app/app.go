// Package app owns the terminal surface and wires every subsystem to one
// lifecycle controller: audio, beam, particles, and the post-mortem gate all
// subscribe to the same broadcast, and all input flows back through here.
package app

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/driftglass/specimen/audio"
	"github.com/driftglass/specimen/beam"
	"github.com/driftglass/specimen/config"
	"github.com/driftglass/specimen/gate"
	"github.com/driftglass/specimen/lifecycle"
	"github.com/driftglass/specimen/particles"
)

const frameInterval = 33 * time.Millisecond

// view selects which surface draw renders
type view int

const (
	viewOrganism view = iota
	viewGate
	viewContent
)

// Options configures an App at construction
type Options struct {
	Permanent bool
	Mute      bool
	Level     audio.Level
	Password  string
	Table     *config.Table
	Seed      int64
	Logger    zerolog.Logger
}

// App is the composition root. It owns the screen; everything else hangs off
// the controller's broadcast.
type App struct {
	screen tcell.Screen
	cfg    *config.Table
	log    zerolog.Logger
	mute   bool

	clock *lifecycle.PausableClock
	ctrl  *lifecycle.Controller
	sound *audio.Engine
	beam  *beam.Scanner
	dust  *particles.Field
	gate  *gate.Gate

	mu       sync.Mutex
	view     view
	stage    lifecycle.Stage
	progress float64
	width    int
	height   int
	started  time.Time

	quit     chan struct{}
	quitOnce sync.Once
}

// New wires the subsystems around an initialized screen. Run starts the
// clocks; nothing moves before that.
func New(screen tcell.Screen, opts Options) *App {
	if opts.Table == nil {
		opts.Table = config.Default()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	mode := lifecycle.ModeStandard
	if opts.Permanent {
		mode = lifecycle.ModePermanent
	}

	w, h := screen.Size()
	clock := lifecycle.NewPausableClock()

	a := &App{
		screen: screen,
		cfg:    opts.Table,
		log:    opts.Logger,
		mute:   opts.Mute,
		clock:  clock,
		ctrl:   lifecycle.NewController(clock, mode, opts.Table.Timeline(), opts.Logger),
		sound:  audio.NewEngine(opts.Logger),
		beam:   beam.NewScanner(w, clock.Now, opts.Logger),
		dust:   particles.NewField(w, h, opts.Seed),
		gate:   gate.New(opts.Password, nil),
		width:  w,
		height: h,
		quit:   make(chan struct{}),
	}
	a.sound.SetLevel(opts.Level)

	// Subscription order is broadcast order: sound reacts first so ramps
	// start before the visuals move.
	a.ctrl.Subscribe(a.sound.OnLifecycleChange)
	a.ctrl.Subscribe(a.beam.OnLifecycleChange)
	a.ctrl.Subscribe(a.dust.OnLifecycleChange)
	a.ctrl.Subscribe(a.onStage)

	a.ctrl.SetDeathReveal(a.onDeathReveal)
	a.beam.SetContactFunc(a.onBeamContact)
	a.gate.SetUnlockFunc(a.onUnlock)

	return a
}

// Run drives the frame ticker and input loop until quit. Blocks.
func (a *App) Run() error {
	if !a.mute {
		a.sound.Init()
	}

	a.mu.Lock()
	a.started = time.Now()
	a.mu.Unlock()

	a.layoutTargets()
	a.ctrl.Start()
	a.beam.Start()

	a.screen.EnableFocus()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-a.quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-a.quit:
			return nil
		case ev := <-events:
			if !a.handleEvent(ev) {
				a.Quit()
				return nil
			}
		case now := <-ticker.C:
			a.dust.Advance(now.Sub(last).Seconds())
			last = now
			a.draw()
		}
	}
}

// Quit signals the loop to stop. Safe to call more than once.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Destroy tears down every subsystem. Call after Run returns.
func (a *App) Destroy() {
	a.beam.Destroy()
	a.ctrl.Destroy()
	a.sound.Destroy()
	a.dust.Destroy()
	a.log.Info().Msg("specimen released")
}

// onStage is the app's own lifecycle subscription
func (a *App) onStage(stage lifecycle.Stage, progress float64) {
	a.mu.Lock()
	a.stage = stage
	a.progress = progress
	a.mu.Unlock()
}

// onDeathReveal fires late in the death stage: the prompt surfaces
func (a *App) onDeathReveal() {
	a.mu.Lock()
	a.view = viewGate
	a.mu.Unlock()
	a.sound.Play(audio.EffectPulse)
	a.log.Info().Msg("gate revealed")
}

// onBeamContact fires once each time the beam enters a target's contact zone
func (a *App) onBeamContact(tgt beam.Target) {
	a.sound.Play(audio.EffectContactBend)
	a.log.Debug().Str("target", tgt.Label).Msg("beam contact")
}

// onUnlock fires once when the gate accepts the password
func (a *App) onUnlock() {
	a.mu.Lock()
	a.view = viewContent
	a.mu.Unlock()
	a.sound.Play(audio.EffectUnlock)
	a.log.Info().Msg("gate unlocked")
}

// enterOcean commits the permanent pirate transition after the last screen
func (a *App) enterOcean() {
	a.mu.Lock()
	a.view = viewOrganism
	a.mu.Unlock()
	a.sound.Play(audio.EffectFizz)
	a.ctrl.EnterPirateMode(func() {
		a.log.Info().Msg("ocean settled")
	})
}

func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		a.handleResize()
	case *tcell.EventFocus:
		if ev.Focused {
			a.ctrl.Resume()
		} else {
			a.ctrl.Pause()
		}
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
		return false
	}

	a.mu.Lock()
	v := a.view
	a.mu.Unlock()

	switch v {
	case viewGate:
		a.handleGateKey(ev)
	case viewContent:
		if ev.Key() == tcell.KeyEnter {
			a.advanceContent()
		}
	default:
		a.handleOrganismKey(ev)
	}
	return true
}

// handleOrganismKey treats every keystroke as contact with the specimen
func (a *App) handleOrganismKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyRune && ev.Rune() == 'v' {
		level := a.sound.CycleLevel()
		a.sound.Play(audio.EffectTick)
		a.log.Debug().Str("level", level.String()).Msg("volume cycled")
	}
	a.ctrl.ResetInteraction()
}

func (a *App) handleGateKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		if !a.gate.Submit() {
			a.sound.Play(audio.EffectReverse)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.gate.Backspace()
	case tcell.KeyRune:
		a.gate.Type(ev.Rune())
	}
}

func (a *App) advanceContent() {
	a.sound.Play(audio.EffectTick)
	if !a.gate.Next() {
		a.enterOcean()
	}
}

func (a *App) handleResize() {
	w, h := a.screen.Size()
	a.mu.Lock()
	a.width = w
	a.height = h
	a.mu.Unlock()

	a.beam.Resize(w)
	a.dust.Resize(w, h)
	a.layoutTargets()
	a.screen.Sync()
}

// layoutTargets registers the scannable regions with the beam: the title row
// and the organism body block
func (a *App) layoutTargets() {
	a.mu.Lock()
	w, h := a.width, a.height
	a.mu.Unlock()

	titleW := len(titleText)
	bodyW := artWidth(organismArt)
	bodyTop := h/2 - len(organismArt)/2

	a.beam.SetTargets([]beam.Target{
		{Label: "title", X: (w - titleW) / 2, Y: 2, Width: titleW},
		{Label: "body", X: (w - bodyW) / 2, Y: bodyTop, Width: bodyW},
	})
}
