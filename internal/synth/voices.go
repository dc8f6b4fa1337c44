package synth

import "math"

// midiToHz converts a MIDI note number to its fundamental frequency.
func midiToHz(pitch int) float64 {
	return 440.0 * math.Pow(2, (float64(pitch)-69.0)/12.0)
}

// onePoleLowPass applies a simple one-pole low-pass filter in place —
// the "subtractive" half of each pitched voice, carving a bright
// oscillator down to the voice's target timbre.
func onePoleLowPass(samples []float32, cutoffHz float64, sampleRate int) {
	if cutoffHz <= 0 {
		return
	}
	dt := 1.0 / float64(sampleRate)
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	alpha := dt / (rc + dt)
	var prev float64
	for i, s := range samples {
		prev = prev + alpha*(float64(s)-prev)
		samples[i] = float32(prev)
	}
}

// sweptLowPass applies a one-pole low-pass filter in place whose cutoff
// moves linearly from startHz at sample 0 to endHz at the last sample, the
// time-varying counterpart to onePoleLowPass used by the pad voice.
func sweptLowPass(samples []float32, startHz, endHz float64, sampleRate int) {
	n := len(samples)
	if n == 0 {
		return
	}
	dt := 1.0 / float64(sampleRate)
	var prev float64
	for i, s := range samples {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		cutoff := startHz + (endHz-startHz)*t
		rc := 1.0 / (2 * math.Pi * cutoff)
		alpha := dt / (rc + dt)
		prev = prev + alpha*(float64(s)-prev)
		samples[i] = float32(prev)
	}
}

// expEnvelope returns an exponential-decay amplitude envelope of n samples,
// starting at 1 and decaying to approximately 0 by the given decay time.
func expEnvelope(n int, decaySec float64, sampleRate int) []float32 {
	env := make([]float32, n)
	tau := decaySec / 5.0 // ~5 time constants to reach near-zero
	if tau <= 0 {
		tau = 1e-6
	}
	for i := range env {
		t := float64(i) / float64(sampleRate)
		env[i] = float32(math.Exp(-t / tau))
	}
	return env
}

// adsrEnvelope is a simple attack/sustain/release shape used by the
// sustained pad voice.
func adsrEnvelope(n int, attackSec, releaseSec, sustainLevel float64, sampleRate int) []float32 {
	env := make([]float32, n)
	attackSamples := int(attackSec * float64(sampleRate))
	releaseSamples := int(releaseSec * float64(sampleRate))
	for i := range env {
		switch {
		case i < attackSamples && attackSamples > 0:
			env[i] = float32(float64(i) / float64(attackSamples))
		case i >= n-releaseSamples && releaseSamples > 0:
			remain := n - i
			env[i] = float32(sustainLevel * float64(remain) / float64(releaseSamples))
		default:
			env[i] = float32(sustainLevel)
		}
	}
	return env
}

// adsrdEnvelope is the full attack/decay/sustain/release shape: ramp 0→1
// over attackSec, ramp 1→sustainLevel over decaySec, hold sustainLevel,
// then ramp down to 0 over the final releaseSec.
func adsrdEnvelope(n int, attackSec, decaySec, sustainLevel, releaseSec float64, sampleRate int) []float32 {
	env := make([]float32, n)
	attackSamples := int(attackSec * float64(sampleRate))
	decaySamples := int(decaySec * float64(sampleRate))
	releaseSamples := int(releaseSec * float64(sampleRate))
	decayEnd := attackSamples + decaySamples
	releaseStart := n - releaseSamples
	for i := range env {
		switch {
		case i < attackSamples && attackSamples > 0:
			env[i] = float32(float64(i) / float64(attackSamples))
		case i < decayEnd && decaySamples > 0:
			frac := float64(i-attackSamples) / float64(decaySamples)
			env[i] = float32(1 - frac*(1-sustainLevel))
		case i >= releaseStart && releaseSamples > 0 && releaseStart > decayEnd:
			remain := n - i
			env[i] = float32(sustainLevel * float64(remain) / float64(releaseSamples))
		default:
			env[i] = float32(sustainLevel)
		}
	}
	return env
}

// kickVoice: a pitched sine sweep (from ~180Hz down to ~45Hz) through a
// fast exponential amplitude envelope, the standard analog-kick recipe.
func kickVoice(durationSec float64, sampleRate int) []float32 {
	n := int(durationSec * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	out := make([]float32, n)
	env := expEnvelope(n, 0.18, sampleRate)
	startHz, endHz := 180.0, 45.0
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(sampleRate) / durationSec
		freq := startHz + (endHz-startHz)*t
		phase += 2 * math.Pi * freq / float64(sampleRate)
		out[i] = float32(math.Sin(phase)) * env[i]
	}
	return out
}

// snareVoice: white noise through a single one-pole 4 kHz low-pass (there is
// no high-pass stage, so the noise is not band-limited from below) plus a
// decaying 200 Hz sine body, through a mid-speed envelope.
func snareVoice(durationSec float64, sampleRate int, rng *pcgRand) []float32 {
	n := int(durationSec * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	noise := make([]float32, n)
	for i := range noise {
		noise[i] = rng.float32Bipolar()
	}
	onePoleLowPass(noise, 4000, sampleRate)

	click := make([]float32, n)
	env := expEnvelope(n, 0.1, sampleRate)
	for i := range click {
		t := float64(i) / float64(sampleRate)
		click[i] = float32(math.Sin(2*math.Pi*200*t)) * env[i] * 0.5
	}

	out := make([]float32, n)
	bodyEnv := expEnvelope(n, 0.14, sampleRate)
	for i := range out {
		out[i] = (noise[i]*0.8+click[i])*bodyEnv[i]
	}
	return out
}

// hatVoice: high-passed noise burst (implemented as noise minus its own
// low-pass) through a very fast envelope.
func hatVoice(durationSec float64, sampleRate int, rng *pcgRand) []float32 {
	n := int(durationSec * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	noise := make([]float32, n)
	for i := range noise {
		noise[i] = rng.float32Bipolar()
	}
	lowOnly := make([]float32, n)
	copy(lowOnly, noise)
	onePoleLowPass(lowOnly, 6000, sampleRate)

	env := expEnvelope(n, 0.035, sampleRate)
	out := make([]float32, n)
	for i := range out {
		out[i] = (noise[i] - lowOnly[i]) * env[i]
	}
	return out
}

// sawSample returns one sample of a band-limited-ish (naive) sawtooth at the
// given phase in [0, 2*pi).
func sawSample(phase float64) float64 {
	// naive sawtooth from phase in [0, 2pi): ramps -1..1
	x := phase / (2 * math.Pi)
	x -= math.Floor(x)
	return 2*x - 1
}

// squareSample returns one sample of a naive square wave at the given phase
// in [0, 2*pi): +1 for the first half-cycle, -1 for the second.
func squareSample(phase float64) float64 {
	x := phase / (2 * math.Pi)
	x -= math.Floor(x)
	if x < 0.5 {
		return 1
	}
	return -1
}

// bassVoice: a single sawtooth through a fixed 800 Hz low-pass, shaped by an
// A=5ms/D=50ms/S=0.6/R=min(duration,300ms) envelope.
func bassVoice(pitch int, durationSec float64, sampleRate int) []float32 {
	n := int(durationSec * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	freq := midiToHz(pitch)
	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		phase += 2 * math.Pi * freq / float64(sampleRate)
		out[i] = float32(sawSample(phase))
	}
	onePoleLowPass(out, 800, sampleRate)
	release := math.Min(durationSec, 0.3)
	env := adsrdEnvelope(n, 0.005, 0.05, 0.6, release, sampleRate)
	for i := range out {
		out[i] *= env[i]
	}
	return out
}

// padVoice: a single square wave through a low-pass sweeping 1200→400 Hz
// over the note's duration, shaped by a 20ms attack / 100ms release envelope.
func padVoice(pitch int, durationSec float64, sampleRate int) []float32 {
	n := int(durationSec * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	freq := midiToHz(pitch)
	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		phase += 2 * math.Pi * freq / float64(sampleRate)
		out[i] = float32(squareSample(phase))
	}
	sweptLowPass(out, 1200, 400, sampleRate)
	env := adsrEnvelope(n, 0.02, 0.1, 0.8, sampleRate)
	for i := range out {
		out[i] *= env[i]
	}
	return out
}

// arpVoice: a single bright, short sawtooth pluck (a saw through a fast
// envelope and a brighter filter than bass), for the ArpDrive template.
func arpVoice(pitch int, durationSec float64, sampleRate int) []float32 {
	n := int(durationSec * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	freq := midiToHz(pitch)
	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		phase += 2 * math.Pi * freq / float64(sampleRate)
		out[i] = float32(sawSample(phase))
	}
	onePoleLowPass(out, freq*10, sampleRate)
	env := expEnvelope(n, durationSec*0.6, sampleRate)
	for i := range out {
		out[i] *= env[i]
	}
	return out
}

// pcgRand is a tiny deterministic PRNG (PCG-XSH-RR) so rendered WAVs are
// bit-reproducible given the same arrangement — spec.md §9 forbids any
// non-deterministic source in the render path.
type pcgRand struct {
	state uint64
	inc   uint64
}

func newPCGRand(seed uint64) *pcgRand {
	r := &pcgRand{state: 0, inc: (seed << 1) | 1}
	r.next()
	r.state += seed
	r.next()
	return r
}

func (r *pcgRand) next() uint32 {
	oldState := r.state
	r.state = oldState*6364136223846793005 + r.inc
	xorshifted := uint32(((oldState >> 18) ^ oldState) >> 27)
	rot := uint32(oldState >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// float32Bipolar returns a deterministic pseudo-random sample in [-1, 1].
func (r *pcgRand) float32Bipolar() float32 {
	v := r.next()
	return float32(v)/float32(1<<31) - 1
}
