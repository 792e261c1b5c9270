// Package gate implements the post-mortem password prompt and the ordered
// sequence of content screens it unlocks. The password is decorative
// theater, not authentication: it is a plaintext phrase compared in memory,
// guarding nothing but narrative pacing.
package gate

import (
	"strings"
	"sync"
)

// DefaultPassword is the stock unlock phrase. Overridable at startup.
const DefaultPassword = "dead men tell no tales"

// ScreenType distinguishes prose screens from the final prompt
type ScreenType int

const (
	ScreenProse ScreenType = iota
	ScreenPrompt
)

// Screen is one unlocked content page
type Screen struct {
	ID    string
	Type  ScreenType
	Title string
	Body  []string
	// Prompt is the confirm line shown on ScreenPrompt screens
	Prompt string
}

// DefaultScreens returns the stock unlocked sequence, ending in the prompt
// that commits the viewer to the ocean.
func DefaultScreens() []Screen {
	return []Screen{
		{
			ID:    "log",
			Type:  ScreenProse,
			Title: "SPECIMEN LOG",
			Body: []string{
				"Day 1.   Subject stable. Vital hum steady at fifty cycles.",
				"Day 9.   Subject flinched at the scanning beam. Noted.",
				"Day 23.  Color response degrading. Subject no longer",
				"         distinguishes observation from weather.",
				"Day 40.  Subject has stopped flinching.",
				"Day 61.  Subject has stopped.",
			},
		},
		{
			ID:    "manifest",
			Type:  ScreenProse,
			Title: "SALVAGE MANIFEST",
			Body: []string{
				"Recovered from the wreck:",
				"",
				"  one (1) resonant chamber, cracked",
				"  one (1) scanning armature, still warm",
				"  forty (40) motes of unexplained dust",
				"  zero (0) survivors",
				"",
				"Disposition: return to sea.",
			},
		},
		{
			ID:    "prompt",
			Type:  ScreenPrompt,
			Title: "LAST PAGE",
			Body: []string{
				"There is nothing left to observe.",
				"The water is warmer than it looks.",
			},
			Prompt: "press ENTER to go under",
		},
	}
}

// Gate tracks prompt input and screen position. It is driven entirely by the
// UI layer; stage timing lives elsewhere.
type Gate struct {
	mu       sync.Mutex
	password string
	screens  []Screen
	buffer   []rune
	unlocked bool
	index    int
	onUnlock func()
}

// New builds a gate with the given password, falling back to
// DefaultPassword when blank
func New(password string, screens []Screen) *Gate {
	if strings.TrimSpace(password) == "" {
		password = DefaultPassword
	}
	if screens == nil {
		screens = DefaultScreens()
	}
	return &Gate{password: password, screens: screens}
}

// SetUnlockFunc registers a hook fired once on successful unlock
func (g *Gate) SetUnlockFunc(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onUnlock = fn
}

// Type appends a rune to the pending attempt
func (g *Gate) Type(r rune) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unlocked {
		return
	}
	g.buffer = append(g.buffer, r)
}

// Backspace removes the last pending rune
func (g *Gate) Backspace() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := len(g.buffer); n > 0 {
		g.buffer = g.buffer[:n-1]
	}
}

// Buffer returns the current attempt text
func (g *Gate) Buffer() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return string(g.buffer)
}

// Submit compares the trimmed attempt against the password. A match unlocks
// and fires the hook; a miss clears the buffer for another try. Returns
// whether the attempt succeeded.
func (g *Gate) Submit() bool {
	g.mu.Lock()
	if g.unlocked {
		g.mu.Unlock()
		return true
	}

	attempt := strings.TrimSpace(string(g.buffer))
	g.buffer = g.buffer[:0]
	if attempt != g.password {
		g.mu.Unlock()
		return false
	}

	g.unlocked = true
	hook := g.onUnlock
	g.mu.Unlock()

	if hook != nil {
		hook()
	}
	return true
}

// Unlocked reports whether the gate has opened
func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

// Current returns the active screen, or false before unlock or after the
// sequence is exhausted
func (g *Gate) Current() (Screen, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.unlocked || g.index >= len(g.screens) {
		return Screen{}, false
	}
	return g.screens[g.index], true
}

// Next advances to the following screen. Returns false once the sequence is
// exhausted, which is the caller's cue to enter the ocean.
func (g *Gate) Next() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.unlocked || g.index >= len(g.screens) {
		return false
	}
	g.index++
	return g.index < len(g.screens)
}

// Reset discards the attempt buffer but keeps unlock state: the gate never
// re-locks within a session.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buffer = g.buffer[:0]
}
