package audio

import (
	"math"
	"testing"
)

func humPartials() []partial {
	return []partial{
		{ratio: 1, weight: 0.6},
		{ratio: 2, weight: 0.25},
		{ratio: 3, weight: 0.12},
	}
}

func TestVoiceStreamsContinuously(t *testing.T) {
	v := newVoice(SampleRate, 50, humPartials())
	v.setTargets(50, 0.5, 0)

	buf := make([][2]float64, 1024)
	n, ok := v.Stream(buf)
	if !ok || n != len(buf) {
		t.Fatalf("Stream() = %d, %v; want full buffer, true", n, ok)
	}

	var peak float64
	for i := 0; i < n; i++ {
		if buf[i][0] != buf[i][1] {
			t.Fatal("voice output should be identical on both channels")
		}
		if a := math.Abs(buf[i][0]); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		t.Error("voice produced silence at nonzero gain")
	}
	if peak > 1.0 {
		t.Errorf("voice peak %f exceeds unity", peak)
	}

	if v.Err() != nil {
		t.Errorf("unexpected error: %v", v.Err())
	}
}

// TestVoiceRampReachesTarget verifies the gain moves monotonically to the
// absolute target without overshoot
func TestVoiceRampReachesTarget(t *testing.T) {
	v := newVoice(SampleRate, 50, humPartials())
	rampLen := 441 // 10ms
	v.setTargets(60, 0.8, rampLen)

	buf := make([][2]float64, 64)
	prev := v.currentGain()
	streamed := 0
	for streamed < rampLen*2 {
		v.Stream(buf)
		streamed += len(buf)

		g := v.currentGain()
		if g < prev-1e-12 {
			t.Fatalf("gain moved away from target: %f -> %f", prev, g)
		}
		if g > 0.8+1e-12 {
			t.Fatalf("gain overshot target: %f", g)
		}
		prev = g
	}

	if g := v.currentGain(); math.Abs(g-0.8) > 1e-9 {
		t.Errorf("gain = %f after ramp, want 0.8", g)
	}
	freq, gain := v.targets()
	if freq != 60 || gain != 0.8 {
		t.Errorf("targets = (%f, %f), want (60, 0.8)", freq, gain)
	}
}

func TestVoiceRampDown(t *testing.T) {
	v := newVoice(SampleRate, 50, humPartials())
	v.setTargets(50, 1.0, 0)
	v.setTargets(50, 0.0, 441)

	buf := make([][2]float64, 2048)
	v.Stream(buf)

	if g := v.currentGain(); g != 0 {
		t.Errorf("gain = %f after downward ramp, want 0", g)
	}
	// Tail of the buffer should be silent
	if s := buf[len(buf)-1][0]; s != 0 {
		t.Errorf("sample = %f after gain reached 0, want silence", s)
	}
}

func TestVoiceSnapWithZeroRamp(t *testing.T) {
	v := newVoice(SampleRate, 50, humPartials())
	v.setTargets(92, 0.3, 0)

	if g := v.currentGain(); g != 0.3 {
		t.Errorf("gain = %f, want immediate 0.3", g)
	}
}

func TestApproach(t *testing.T) {
	tests := []struct {
		name              string
		cur, target, step float64
		want              float64
	}{
		{"upward step", 0.0, 1.0, 0.1, 0.1},
		{"upward clamp", 0.95, 1.0, 0.1, 1.0},
		{"downward step", 1.0, 0.0, -0.1, 0.9},
		{"downward clamp", 0.05, 0.0, -0.1, 0.0},
		{"already there", 0.5, 0.5, 0.1, 0.5},
		{"zero step snaps", 0.2, 0.7, 0.0, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := approach(tt.cur, tt.target, tt.step); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("approach(%f, %f, %f) = %f, want %f", tt.cur, tt.target, tt.step, got, tt.want)
			}
		})
	}
}
