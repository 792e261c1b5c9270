package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// newOscillator creates a finite oscillator for one-shot synthesis
func newOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// bendOscillator sweeps linearly from one frequency to another over its
// lifetime; used for the contact bend
type bendOscillator struct {
	fromFreq float64
	toFreq   float64
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

func newBendOscillator(fromFreq, toFreq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &bendOscillator{
		fromFreq: fromFreq,
		toFreq:   toFreq,
		duration: rate.N(duration),
		rate:     rate,
	}
}

func (b *bendOscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.position >= b.duration {
			return i, i > 0
		}

		t := float64(b.position) / float64(b.duration)
		freq := b.fromFreq + (b.toFreq-b.fromFreq)*t

		val := math.Sin(2 * math.Pi * b.phase)
		samples[i][0] = val
		samples[i][1] = val

		b.phase += freq / float64(b.rate)
		b.phase -= math.Floor(b.phase)
		b.position++
	}
	return len(samples), true
}

func (b *bendOscillator) Err() error { return nil }

// envelope applies attack/release shaping to a finite stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.totalSamples - e.releaseSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// amplify scales a stream by a fixed linear gain
type amplify struct {
	streamer beep.Streamer
	gain     float64
}

func (a *amplify) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = a.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= a.gain
		samples[i][1] *= a.gain
	}
	return n, ok
}

func (a *amplify) Err() error { return a.streamer.Err() }

// Effect identifies a one-shot sound
type Effect int

const (
	EffectUnlock Effect = iota
	EffectReverse
	EffectTick
	EffectFizz
	EffectPulse
	EffectContactBend
)

func (e Effect) String() string {
	switch e {
	case EffectUnlock:
		return "unlock"
	case EffectReverse:
		return "reverse"
	case EffectTick:
		return "tick"
	case EffectFizz:
		return "fizz"
	case EffectPulse:
		return "pulse"
	case EffectContactBend:
		return "contact_bend"
	default:
		return "unknown"
	}
}

// One-shot timing
const (
	chordNoteDuration = 140 * time.Millisecond
	chordAttack       = 5 * time.Millisecond
	chordRelease      = 90 * time.Millisecond

	tickDuration = 30 * time.Millisecond
	tickAttack   = 2 * time.Millisecond
	tickRelease  = 15 * time.Millisecond

	fizzDuration = 250 * time.Millisecond
	fizzAttack   = 10 * time.Millisecond
	fizzRelease  = 180 * time.Millisecond

	pulseDuration = 400 * time.Millisecond
	pulseAttack   = 200 * time.Millisecond
	pulseRelease  = 180 * time.Millisecond

	bendDuration = 200 * time.Millisecond
	bendAttack   = 10 * time.Millisecond
	bendRelease  = 120 * time.Millisecond
)

// chordFreqs are C5, E5, G5
var chordFreqs = []float64{523.25, 659.25, 783.99}

// note builds one enveloped chord note
func note(freq float64, rate beep.SampleRate) beep.Streamer {
	osc := newOscillator(freq, chordNoteDuration, WaveSine, rate)
	return newEnvelope(osc, chordNoteDuration, chordAttack, chordRelease, rate)
}

// buildEffect returns the unity-gain streamer for an effect
func buildEffect(e Effect, rate beep.SampleRate) beep.Streamer {
	switch e {
	case EffectUnlock:
		// Ascending chord
		return beep.Seq(
			note(chordFreqs[0], rate),
			note(chordFreqs[1], rate),
			note(chordFreqs[2], rate),
		)
	case EffectReverse:
		// The unlock chord descending, for a failed attempt
		return beep.Seq(
			note(chordFreqs[2], rate),
			note(chordFreqs[1], rate),
			note(chordFreqs[0], rate),
		)
	case EffectTick:
		osc := newOscillator(1200, tickDuration, WaveSquare, rate)
		return newEnvelope(osc, tickDuration, tickAttack, tickRelease, rate)
	case EffectFizz:
		osc := newOscillator(0, fizzDuration, WaveNoise, rate)
		return newEnvelope(osc, fizzDuration, fizzAttack, fizzRelease, rate)
	case EffectPulse:
		osc := newOscillator(80, pulseDuration, WaveSine, rate)
		return newEnvelope(osc, pulseDuration, pulseAttack, pulseRelease, rate)
	case EffectContactBend:
		osc := newBendOscillator(300, 180, bendDuration, rate)
		return newEnvelope(osc, bendDuration, bendAttack, bendRelease, rate)
	default:
		return nil
	}
}

// effectGain is the unity-level loudness per effect, scaled by the volume
// multiplier at play time
func effectGain(e Effect) float64 {
	switch e {
	case EffectTick:
		return 0.10
	case EffectFizz:
		return 0.18
	case EffectPulse:
		return 0.22
	case EffectContactBend:
		return 0.15
	default:
		return 0.25
	}
}
