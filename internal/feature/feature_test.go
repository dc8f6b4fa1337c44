package feature

import (
	"math"
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

func toneBuffer(freqHz float64, durationSec float64, sampleRate int) model.SampleBuffer {
	n := int(durationSec * float64(sampleRate))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.8 * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate)))
	}
	return model.SampleBuffer{Samples: samples, SampleRate: sampleRate}
}

func TestExtractLowToneHasHighLowBandEnergy(t *testing.T) {
	sr := 44100
	buf := toneBuffer(80, 1.0, sr)
	fv := Extract(buf, model.Onset{TimestampMs: 500, PeakAmplitude: 0.8})

	if fv.LowBandEnergy <= fv.HighBandEnergy {
		t.Fatalf("expected a low-frequency tone to dominate low-band energy, got low=%v mid=%v high=%v",
			fv.LowBandEnergy, fv.MidBandEnergy, fv.HighBandEnergy)
	}
}

func TestExtractHighToneHasHighHighBandEnergy(t *testing.T) {
	sr := 44100
	buf := toneBuffer(7000, 1.0, sr)
	fv := Extract(buf, model.Onset{TimestampMs: 500, PeakAmplitude: 0.8})

	if fv.HighBandEnergy <= fv.LowBandEnergy {
		t.Fatalf("expected a high-frequency tone to dominate high-band energy, got low=%v mid=%v high=%v",
			fv.LowBandEnergy, fv.MidBandEnergy, fv.HighBandEnergy)
	}
}

func TestExtractBandEnergiesSumToOne(t *testing.T) {
	sr := 44100
	buf := toneBuffer(1000, 1.0, sr)
	fv := Extract(buf, model.Onset{TimestampMs: 500, PeakAmplitude: 0.5})

	sum := fv.LowBandEnergy + fv.MidBandEnergy + fv.HighBandEnergy
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("band energies should sum to 1, got %v", sum)
	}
}

func TestExtractPeakAmplitudePassesThroughFromOnset(t *testing.T) {
	sr := 44100
	buf := toneBuffer(440, 1.0, sr)
	fv := Extract(buf, model.Onset{TimestampMs: 500, PeakAmplitude: 0.42})
	if fv.PeakAmplitude != 0.42 {
		t.Fatalf("PeakAmplitude = %v, want 0.42", fv.PeakAmplitude)
	}
}

func TestExtractNearBufferEdgeDoesNotPanic(t *testing.T) {
	sr := 44100
	buf := toneBuffer(440, 0.02, sr)
	// TimestampMs near zero forces the preRoll window to go negative.
	_ = Extract(buf, model.Onset{TimestampMs: 1, PeakAmplitude: 0.1})
}
