package app

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/driftglass/specimen/beam"
	"github.com/driftglass/specimen/config"
	"github.com/driftglass/specimen/lifecycle"
)

const titleText = "S P E C I M E N"

// organismArt is the body, drawn centered. The beam scans its bounding box.
var organismArt = []string{
	`      .--~~--.      `,
	`    /  ()  ()  \    `,
	`   |    ....    |   `,
	`    \  ______  /    `,
	`   _/|        |\_   `,
	`  / ||   ||   || \  `,
	` |  ||   ||   ||  | `,
	`  ~ |/   \/   \| ~  `,
	`    '    ''    '    `,
}

var oceanRows = []string{
	`~^~_~^~~_^~~^_~~^~_~^~~^_~~^~_^~~^~_~^~~^_~~^~`,
	`_~~^~_^~~^~_~^~~^_~~^~_~^~~_^~~^_~~^~_~^~~^_~~`,
}

func artWidth(art []string) int {
	w := 0
	for _, line := range art {
		if len(line) > w {
			w = len(line)
		}
	}
	return w
}

// scale dims an RGB triple into a tcell color
func scale(c config.RGB, f float64) tcell.Color {
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return tcell.NewRGBColor(
		int32(float64(c.R)*f),
		int32(float64(c.G)*f),
		int32(float64(c.B)*f),
	)
}

// breathe produces the body opacity oscillation for the current stage
func breathe(b config.Breathing, t float64) float64 {
	if b.OpacityMax <= b.OpacityMin {
		return b.OpacityMax
	}
	phase := 0.5 + 0.5*math.Sin(2*math.Pi*b.Speed*t)
	return b.OpacityMin + (b.OpacityMax-b.OpacityMin)*phase
}

// flicker returns a brightness multiplier for irregular dropouts. Two
// incommensurate sines approximate noise without allocating a source.
func flicker(f config.Flicker, t float64) float64 {
	if f.Speed <= 0 || f.Brightness <= 0 {
		return 1
	}
	n := math.Sin(2*math.Pi*f.Speed*t) * math.Sin(2*math.Pi*f.Speed*1.37*t+0.7)
	if n < 0.6 {
		return 1
	}
	return 1 - f.Brightness
}

// vignetteFactor dims a cell by its distance from screen center
func vignetteFactor(v config.Vignette, x, y, w, h int) float64 {
	if v.Opacity <= 0 || w <= 1 || h <= 1 {
		return 1
	}
	dx := (float64(x) - float64(w)/2) / (float64(w) / 2)
	// Terminal cells are about twice as tall as wide
	dy := (float64(y) - float64(h)/2) / (float64(h) / 2) * 2
	dist := math.Sqrt(dx*dx+dy*dy) / math.Sqrt(5)
	if dist <= v.Radius {
		return 1
	}
	over := (dist - v.Radius) / (1 - v.Radius + 1e-9)
	if over > 1 {
		over = 1
	}
	return 1 - v.Opacity*over
}

// scanlineFactor bands the display with slowly drifting darker rows
func scanlineFactor(s config.Scanlines, y int, t float64) float64 {
	if s.Opacity <= 0 {
		return 1
	}
	offset := int(t*s.Speed) % 3
	if (y+offset)%3 == 0 {
		return 1 - s.Opacity
	}
	return 1
}

func (a *App) draw() {
	a.mu.Lock()
	v := a.view
	stage := a.stage
	progress := a.progress
	w, h := a.width, a.height
	t := time.Since(a.started).Seconds()
	a.mu.Unlock()

	sc := a.cfg.Stage(stage)

	a.screen.Clear()
	switch v {
	case viewGate:
		a.drawOrganism(stage, progress, sc, t, w, h, 0.35)
		a.drawGate(sc, w, h)
	case viewContent:
		a.drawContent(sc, w, h)
	default:
		a.drawOrganism(stage, progress, sc, t, w, h, 1.0)
	}
	a.screen.Show()
}

// drawOrganism renders the full scene: particles, body, beam, status. The
// dim factor lets the gate view keep a faded specimen behind the prompt.
func (a *App) drawOrganism(stage lifecycle.Stage, progress float64, sc config.StageConfig, t float64, w, h int, dim float64) {
	beamSnap := a.beam.Snapshot()

	// Back-to-front particle planes behind everything else
	for _, p := range a.dust.Snapshot(beamSnap.Column) {
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		f := p.Opacity * dim * vignetteFactor(sc.Vignette, p.X, p.Y, w, h)
		a.screen.SetContent(p.X, p.Y, p.Glyph, nil, tcell.StyleDefault.Foreground(scale(sc.Color, f)))
	}

	base := breathe(sc.Breathing, t) * flicker(sc.Flicker, t) * dim

	// Title
	titleX := (w - len(titleText)) / 2
	for i, r := range titleText {
		x := titleX + i
		f := base * vignetteFactor(sc.Vignette, x, 2, w, h) * scanlineFactor(sc.Scanlines, 2, t)
		a.screen.SetContent(x, 2, r, nil, tcell.StyleDefault.Foreground(scale(sc.Color, f)).Bold(true))
	}

	// Body
	bodyW := artWidth(organismArt)
	bodyTop := h/2 - len(organismArt)/2
	bodyLeft := (w - bodyW) / 2
	for row, line := range organismArt {
		y := bodyTop + row
		if y < 0 || y >= h {
			continue
		}
		for col, r := range line {
			if r == ' ' {
				continue
			}
			x := bodyLeft + col
			if x < 0 || x >= w {
				continue
			}
			f := base * vignetteFactor(sc.Vignette, x, y, w, h) * scanlineFactor(sc.Scanlines, y, t)
			a.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(scale(sc.Color, f)))
		}
	}

	if stage == lifecycle.StagePirate {
		a.drawOcean(sc, t, w, h, dim)
	}

	a.drawBeam(beamSnap, sc, w, h, dim)
	a.drawStatus(stage, progress, sc, w, h)
}

// drawBeam overlays the sweep column, brightened where it touches a target
func (a *App) drawBeam(snap beam.Snapshot, sc config.StageConfig, w, h int, dim float64) {
	if snap.Column < 0 || snap.Column >= w {
		return
	}
	f := 0.25 * dim
	for _, tier := range snap.Tiers {
		switch tier {
		case beam.TierContact:
			f = 0.9 * dim
		case beam.TierApproaching:
			if f < 0.5*dim {
				f = 0.5 * dim
			}
		}
	}
	style := tcell.StyleDefault.Foreground(scale(sc.Color, f))
	for y := 1; y < h-1; y++ {
		a.screen.SetContent(snap.Column, y, '│', nil, style)
	}
}

// drawOcean lays the wave rows along the bottom in pirate mode
func (a *App) drawOcean(sc config.StageConfig, t float64, w, h int, dim float64) {
	drift := int(t * 2)
	for i, row := range oceanRows {
		y := h - 3 + i
		if y < 0 || y >= h {
			continue
		}
		for x := 0; x < w; x++ {
			r := rune(row[(x+drift)%len(row)])
			f := 0.7 * dim * vignetteFactor(sc.Vignette, x, y, w, h)
			a.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(scale(sc.Color, f)))
		}
	}
}

func (a *App) drawStatus(stage lifecycle.Stage, progress float64, sc config.StageConfig, w, h int) {
	if h < 2 {
		return
	}
	status := stage.String() + "  ·  vol " + a.sound.Level().String()
	if stage != lifecycle.StagePirate {
		bars := int(progress * 10)
		status += "  ·  ["
		for i := 0; i < 10; i++ {
			if i < bars {
				status += "="
			} else {
				status += " "
			}
		}
		status += "]"
	}
	style := tcell.StyleDefault.Foreground(scale(sc.Color, 0.45))
	for i, r := range status {
		if i >= w {
			break
		}
		a.screen.SetContent(i+1, h-1, r, nil, style)
	}
}

func (a *App) drawGate(sc config.StageConfig, w, h int) {
	prompt := "> " + a.gate.Buffer() + "_"
	label := "speak, if you remember the words"

	y := h / 2
	drawCentered(a.screen, label, w, y-2, tcell.StyleDefault.Foreground(scale(sc.Color, 0.6)))
	drawCentered(a.screen, prompt, w, y, tcell.StyleDefault.Foreground(scale(config.RGB{R: 220, G: 220, B: 220}, 0.9)))
}

func (a *App) drawContent(sc config.StageConfig, w, h int) {
	scr, ok := a.gate.Current()
	if !ok {
		return
	}

	top := h/2 - (len(scr.Body)+4)/2
	titleStyle := tcell.StyleDefault.Foreground(scale(sc.Color, 1)).Bold(true)
	bodyStyle := tcell.StyleDefault.Foreground(scale(config.RGB{R: 200, G: 200, B: 200}, 0.85))

	drawCentered(a.screen, scr.Title, w, top, titleStyle)

	// Body lines share a left edge so columnar text keeps its alignment
	left := (w - artWidth(scr.Body)) / 2
	for i, line := range scr.Body {
		y := top + 2 + i
		if y < 0 || y >= h {
			continue
		}
		for j, r := range line {
			if left+j < 0 || left+j >= w {
				continue
			}
			a.screen.SetContent(left+j, y, r, nil, bodyStyle)
		}
	}

	footer := "ENTER ▸"
	if scr.Prompt != "" {
		footer = scr.Prompt
	}
	drawCentered(a.screen, footer, w, top+3+len(scr.Body), tcell.StyleDefault.Foreground(scale(sc.Color, 0.5)))
}

func drawCentered(s tcell.Screen, text string, w, y int, style tcell.Style) {
	if y < 0 {
		return
	}
	x := (w - len([]rune(text))) / 2
	for i, r := range text {
		if x+i < 0 || x+i >= w {
			continue
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}
