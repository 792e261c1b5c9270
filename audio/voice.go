package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"
)

// partial is one sinusoidal component of a voice. ratio multiplies the
// fundamental; offset adds absolute Hz on top, which is how the pirate
// resonance gets its slowly beating partner tone.
type partial struct {
	ratio  float64
	offset float64
	weight float64
	phase  float64
}

// voice is an endless streamer summing a set of partials over a fundamental
// frequency, with per-sample linear ramps toward absolute frequency and gain
// targets. Ramping to absolute targets is the only way gain ever changes;
// there is no multiplicative adjustment path.
type voice struct {
	mu       sync.Mutex
	rate     beep.SampleRate
	partials []partial

	freq       float64
	targetFreq float64
	freqStep   float64

	gain       float64
	targetGain float64
	gainStep   float64
}

func newVoice(rate beep.SampleRate, freq float64, partials []partial) *voice {
	ps := make([]partial, len(partials))
	copy(ps, partials)
	return &voice{
		rate:       rate,
		partials:   ps,
		freq:       freq,
		targetFreq: freq,
	}
}

// setTargets installs absolute frequency and gain targets reached over the
// given ramp duration. A zero or negative ramp snaps immediately.
func (v *voice) setTargets(freq, gain float64, rampSamples int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.targetFreq = freq
	v.targetGain = gain

	if rampSamples <= 0 {
		v.freq = freq
		v.gain = gain
		v.freqStep = 0
		v.gainStep = 0
		return
	}
	v.freqStep = (freq - v.freq) / float64(rampSamples)
	v.gainStep = (gain - v.gain) / float64(rampSamples)
}

func (v *voice) targets() (freq, gain float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.targetFreq, v.targetGain
}

func (v *voice) currentGain() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range samples {
		v.freq = approach(v.freq, v.targetFreq, v.freqStep)
		v.gain = approach(v.gain, v.targetGain, v.gainStep)

		var val float64
		for p := range v.partials {
			pt := &v.partials[p]
			val += pt.weight * math.Sin(2*math.Pi*pt.phase)

			pt.phase += (v.freq*pt.ratio + pt.offset) / float64(v.rate)
			pt.phase -= math.Floor(pt.phase)
		}

		s := val * v.gain
		samples[i][0] = s
		samples[i][1] = s
	}
	return len(samples), true
}

func (v *voice) Err() error { return nil }

// approach moves cur one step toward target without overshooting
func approach(cur, target, step float64) float64 {
	if step == 0 || cur == target {
		return target
	}
	next := cur + step
	if (step > 0 && next >= target) || (step < 0 && next <= target) {
		return target
	}
	return next
}
