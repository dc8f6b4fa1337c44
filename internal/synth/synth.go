// Package synth offline-renders an Arrangement to a mono 16-bit PCM WAV
// file using a small subtractive synth: one voice per lane, mixed down
// with sidechain ducking driven by the kick lane and a soft limiter.
//
// Nothing here reads the system clock or a real entropy source — the only
// randomness (snare/hat noise) comes from a seeded, deterministic PRNG, so
// the same Arrangement always renders to the same bytes (spec.md §9).
package synth

import (
	"math"

	"github.com/cartomix/beatbox/internal/model"
	"github.com/cartomix/beatbox/internal/pcm"
)

const (
	kickVoiceDurationSec  = 0.35
	snareVoiceDurationSec = 0.2
	hatVoiceDurationSec   = 0.08

	duckHoldMs    = 20.0
	duckReleaseMs = 140.0

	masterGain = 0.8
	noiseSeed  = 0xC0FFEE

	tailSec = 0.5 // extra render tail so release envelopes aren't cut off
)

// Render mixes every lane of the Arrangement down to a mono WAV file at the
// given sample rate.
func Render(a model.Arrangement, sampleRate int) ([]byte, error) {
	totalSamples := int(a.TotalDurationMs/1000.0*float64(sampleRate)) + int(tailSec*float64(sampleRate))
	if totalSamples < 1 {
		totalSamples = 1
	}
	mix := make([]float32, totalSamples)

	rng := newPCGRand(noiseSeed)

	var kickLane, snareLane, hatLane *model.Lane
	for i := range a.DrumLanes {
		switch a.DrumLanes[i].Name {
		case "kick":
			kickLane = &a.DrumLanes[i]
		case "snare":
			snareLane = &a.DrumLanes[i]
		case "hat":
			hatLane = &a.DrumLanes[i]
		}
	}

	if kickLane != nil {
		for _, n := range kickLane.Events {
			voice := kickVoice(kickVoiceDurationSec, sampleRate)
			mixAt(mix, voice, timeToSample(n.TimestampMs, sampleRate), velocityGain(n.Velocity)*1.0)
		}
	}
	if snareLane != nil {
		for _, n := range snareLane.Events {
			voice := snareVoice(snareVoiceDurationSec, sampleRate, rng)
			mixAt(mix, voice, timeToSample(n.TimestampMs, sampleRate), velocityGain(n.Velocity)*0.9)
		}
	}
	if hatLane != nil {
		for _, n := range hatLane.Events {
			voice := hatVoice(hatVoiceDurationSec, sampleRate, rng)
			mixAt(mix, voice, timeToSample(n.TimestampMs, sampleRate), velocityGain(n.Velocity)*0.6)
		}
	}

	duck := buildDuckEnvelope(kickLane, totalSamples, sampleRate)

	if a.BassLane != nil {
		renderPitchedLane(mix, *a.BassLane, bassVoice, sampleRate, duck, 0.85)
	}
	if a.PadLane != nil {
		renderPitchedLane(mix, *a.PadLane, padVoice, sampleRate, duck, 0.5)
	}
	if a.ArpLane != nil {
		renderPitchedLane(mix, *a.ArpLane, arpVoice, sampleRate, duck, 0.55)
	}

	limit(mix)

	return pcm.Encode16(mix, sampleRate)
}

func renderPitchedLane(mix []float32, lane model.Lane, voice func(pitch int, durationSec float64, sampleRate int) []float32, sampleRate int, duck []float32, gain float32) {
	for _, n := range lane.Events {
		durationSec := n.DurationMs / 1000.0
		if durationSec <= 0 {
			continue
		}
		rendered := voice(n.Pitch, durationSec, sampleRate)
		start := timeToSample(n.TimestampMs, sampleRate)
		applyDuck(rendered, duck, start, lane.DuckAmount)
		mixAt(mix, rendered, start, velocityGain(n.Velocity)*gain)
	}
}

func timeToSample(ms float64, sampleRate int) int {
	return int(ms / 1000.0 * float64(sampleRate))
}

func velocityGain(velocity int) float32 {
	if velocity < 1 {
		velocity = 1
	}
	if velocity > 127 {
		velocity = 127
	}
	return float32(velocity) / 127.0
}

func mixAt(dst, src []float32, start int, gain float32) {
	for i, s := range src {
		idx := start + i
		if idx < 0 || idx >= len(dst) {
			continue
		}
		dst[idx] += s * gain
	}
}

// buildDuckEnvelope computes, per sample, how deep a sidechain dip from the
// kick lane reaches at that instant (0 = no duck, 1 = full duck), as the
// max over all kick onsets' individual hold+release curves.
func buildDuckEnvelope(kickLane *model.Lane, totalSamples, sampleRate int) []float32 {
	env := make([]float32, totalSamples)
	if kickLane == nil {
		return env
	}
	holdSamples := int(duckHoldMs / 1000.0 * float64(sampleRate))
	releaseSamples := int(duckReleaseMs / 1000.0 * float64(sampleRate))
	span := holdSamples + releaseSamples

	for _, n := range kickLane.Events {
		onset := timeToSample(n.TimestampMs, sampleRate)
		for i := 0; i < span && onset+i < totalSamples; i++ {
			var v float64
			if i < holdSamples {
				v = 1.0
			} else {
				t := float64(i-holdSamples) / float64(releaseSamples)
				v = math.Exp(-3 * t)
			}
			idx := onset + i
			if idx < 0 {
				continue
			}
			if float32(v) > env[idx] {
				env[idx] = float32(v)
			}
		}
	}
	return env
}

// applyDuck multiplies a rendered voice buffer, starting at sample `start`
// in the full mix timeline, by (1 - duckAmount*dip).
func applyDuck(voice []float32, duck []float32, start int, duckAmount float64) {
	if duckAmount <= 0 {
		return
	}
	for i := range voice {
		idx := start + i
		if idx < 0 || idx >= len(duck) {
			continue
		}
		gain := 1.0 - duckAmount*float64(duck[idx])
		if gain < 0 {
			gain = 0
		}
		voice[i] = float32(float64(voice[i]) * gain)
	}
}

// limit applies a master gain and a soft tanh limiter so a dense mix
// never hard-clips.
func limit(mix []float32) {
	for i, s := range mix {
		mix[i] = float32(math.Tanh(float64(s) * masterGain))
	}
}
