package tempo

import (
	"math"
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

func onsetsAtBPM(bpm float64, beats int, phaseMs float64) []model.Onset {
	beatMs := 60000.0 / bpm
	onsets := make([]model.Onset, beats)
	for i := 0; i < beats; i++ {
		onsets[i] = model.Onset{
			Index:         i,
			TimestampMs:   phaseMs + float64(i)*beatMs,
			PeakAmplitude: 1.0,
		}
	}
	return onsets
}

func TestEstimateRecoversKnownBPM(t *testing.T) {
	const bpm = 128.0
	onsets := onsetsAtBPM(bpm, 32, 0)
	totalMs := onsets[len(onsets)-1].TimestampMs + 500

	result := Estimate(onsets, totalMs)
	if math.Abs(result.BPM-bpm) > 3 {
		t.Fatalf("BPM = %v, want close to %v", result.BPM, bpm)
	}
}

func TestEstimateRecoversPhase(t *testing.T) {
	const bpm = 100.0
	const phase = 120.0
	onsets := onsetsAtBPM(bpm, 24, phase)
	totalMs := onsets[len(onsets)-1].TimestampMs + 500

	result := Estimate(onsets, totalMs)
	beatMs := 60000.0 / result.BPM
	// The recovered phase should land close to `phase` modulo one beat.
	diff := math.Mod(result.BeatPhaseMs-phase+beatMs, beatMs)
	if diff > beatMs/4 && diff < beatMs*3/4 {
		t.Fatalf("recovered phase %v doesn't align with expected %v (beatMs=%v)", result.BeatPhaseMs, phase, beatMs)
	}
}

func TestEstimateFallsBackToDefaultOnSparseInput(t *testing.T) {
	onsets := []model.Onset{{TimestampMs: 50, PeakAmplitude: 1.0}}
	result := Estimate(onsets, 3000)
	if !result.LowConfidence {
		t.Fatal("expected low confidence for a single onset")
	}
	if result.BPM != fallbackBPM {
		t.Fatalf("BPM = %v, want fallback %v", result.BPM, fallbackBPM)
	}
}

func TestEstimateNeverReturnsOutOfRangeBPM(t *testing.T) {
	onsets := onsetsAtBPM(90, 16, 0)
	result := Estimate(onsets, onsets[len(onsets)-1].TimestampMs+500)
	if result.BPM < minBPM || result.BPM > maxBPM {
		t.Fatalf("BPM %v outside [%v, %v]", result.BPM, minBPM, maxBPM)
	}
}
