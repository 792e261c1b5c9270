package audio

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/driftglass/specimen/lifecycle"
)

func newTestEngine() *Engine {
	// Never Init in tests: the engine must behave deterministically without
	// a speaker, and voice targets are observable either way
	return NewEngine(zerolog.Nop())
}

func TestLevelMultiplier(t *testing.T) {
	tests := []struct {
		level Level
		mult  float64
	}{
		{LevelOff, 0.0},
		{LevelLow, 0.3},
		{LevelMed, 0.6},
		{LevelHigh, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.Multiplier(); got != tt.mult {
				t.Errorf("Multiplier() = %f, want %f", got, tt.mult)
			}
		})
	}
}

// TestVolumeCycleTargets walks the level cycle and verifies the hum's gain
// target is always base*multiplier, absolute, never negative and never above
// the full-volume base
func TestVolumeCycleTargets(t *testing.T) {
	e := newTestEngine()
	e.SetLevel(LevelOff)
	e.OnLifecycleChange(lifecycle.StageHealthy, 0)

	_, base := humParams(lifecycle.StageHealthy, 0)
	wantMults := []float64{0.3, 0.6, 1.0, 0.0, 0.3}

	for i, want := range wantMults {
		e.CycleLevel()
		_, gain := e.hum.targets()

		expected := base * want
		if diff := gain - expected; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("cycle %d: gain target = %f, want %f", i, gain, expected)
		}
		if gain < 0 {
			t.Errorf("cycle %d: negative gain target", i)
		}
		if gain > base {
			t.Errorf("cycle %d: gain target %f exceeds base %f", i, gain, base)
		}
	}
}

func TestHumParamsDeterministic(t *testing.T) {
	for _, s := range lifecycle.Stages() {
		for _, p := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
			f1, g1 := humParams(s, p)
			f2, g2 := humParams(s, p)
			if f1 != f2 || g1 != g2 {
				t.Fatalf("humParams(%v, %f) not deterministic", s, p)
			}
			if f1 <= 0 {
				t.Errorf("humParams(%v, %f) frequency %f not positive", s, p, f1)
			}
			if g1 < 0 {
				t.Errorf("humParams(%v, %f) gain %f negative", s, p, g1)
			}
		}
	}

	// Death hum fades out with progress
	_, atStart := humParams(lifecycle.StageDeath, 0)
	_, atEnd := humParams(lifecycle.StageDeath, 1)
	if atEnd >= atStart {
		t.Errorf("death gain should fall with progress: %f -> %f", atStart, atEnd)
	}
	if atEnd != 0 {
		t.Errorf("death gain at full progress = %f, want 0", atEnd)
	}
}

func TestHumParamsClampsProgress(t *testing.T) {
	fLow, gLow := humParams(lifecycle.StagePanic, -2)
	fZero, gZero := humParams(lifecycle.StagePanic, 0)
	if fLow != fZero || gLow != gZero {
		t.Error("negative progress not clamped to 0")
	}

	fHigh, gHigh := humParams(lifecycle.StagePanic, 7)
	fOne, gOne := humParams(lifecycle.StagePanic, 1)
	if fHigh != fOne || gHigh != gOne {
		t.Error("excess progress not clamped to 1")
	}
}

func TestPirateCrossfade(t *testing.T) {
	e := newTestEngine()
	e.SetLevel(LevelHigh)
	e.OnLifecycleChange(lifecycle.StageHealthy, 0.5)

	_, humGain := e.hum.targets()
	_, resGain := e.pirate.targets()
	if humGain <= 0 {
		t.Fatal("base hum should be audible before pirate entry")
	}
	if resGain != 0 {
		t.Fatalf("pirate resonance target = %f before pirate entry, want 0", resGain)
	}

	e.OnLifecycleChange(lifecycle.StagePirate, 0.1)

	_, humGain = e.hum.targets()
	resFreq, resGain := e.pirate.targets()
	if humGain != 0 {
		t.Errorf("base hum target = %f in pirate mode, want 0", humGain)
	}
	if resGain != pirateGain {
		t.Errorf("resonance target = %f, want %f", resGain, pirateGain)
	}
	if resFreq != pirateFreq {
		t.Errorf("resonance frequency = %f, want %f", resFreq, pirateFreq)
	}

	// The hums are mutually exclusive in both directions
	e.OnLifecycleChange(lifecycle.StageDecay, 0.0)
	_, humGain = e.hum.targets()
	_, resGain = e.pirate.targets()
	if humGain <= 0 || resGain != 0 {
		t.Errorf("after leaving pirate: hum=%f resonance=%f", humGain, resGain)
	}
}

func TestPlayRequiresSpeaker(t *testing.T) {
	e := newTestEngine()
	e.SetLevel(LevelHigh)

	if e.Play(EffectUnlock) {
		t.Error("Play should report false before Init")
	}
	if e.Ready() {
		t.Error("engine should not report ready before Init")
	}
}

func TestDestroyWithoutInit(t *testing.T) {
	e := newTestEngine()
	e.Destroy() // must be a harmless no-op
}

func TestOneShotStreamersFinite(t *testing.T) {
	effects := []Effect{
		EffectUnlock, EffectReverse, EffectTick,
		EffectFizz, EffectPulse, EffectContactBend,
	}

	for _, eff := range effects {
		t.Run(eff.String(), func(t *testing.T) {
			s := buildEffect(eff, SampleRate)
			if s == nil {
				t.Fatal("nil streamer")
			}

			buf := make([][2]float64, 512)
			total := 0
			for {
				n, ok := s.Stream(buf)
				for i := 0; i < n; i++ {
					if buf[i][0] < -1.0 || buf[i][0] > 1.0 {
						t.Fatalf("sample %d out of range: %f", total+i, buf[i][0])
					}
				}
				total += n
				if !ok {
					break
				}
				if total > int(SampleRate)*5 {
					t.Fatal("one-shot did not terminate within 5s of samples")
				}
			}

			if total == 0 {
				t.Error("streamer produced no samples")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
		ok   bool
	}{
		{"off", LevelOff, true},
		{"low", LevelLow, true},
		{"med", LevelMed, true},
		{"medium", LevelMed, true},
		{"high", LevelHigh, true},
		{"loud", LevelOff, false},
		{"", LevelOff, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if tt.ok != (err == nil) {
			t.Errorf("ParseLevel(%q): unexpected error state %v", tt.name, err)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
