package onset

import (
	"math"
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

// clickTrain builds a buffer with sharp clicks at the given timestamps,
// silence otherwise, so spectral flux should fire near each one.
func clickTrain(timestampsMs []float64, durationSec float64, sampleRate int) model.SampleBuffer {
	n := int(durationSec * float64(sampleRate))
	samples := make([]float32, n)
	for _, ms := range timestampsMs {
		center := int(ms / 1000.0 * float64(sampleRate))
		for i := 0; i < 64 && center+i < n; i++ {
			decay := math.Exp(-float64(i) / 8.0)
			samples[center+i] += float32(decay)
		}
	}
	return model.SampleBuffer{Samples: samples, SampleRate: sampleRate}
}

func TestDetectFindsOnsetsNearKnownClicks(t *testing.T) {
	sr := 44100
	expected := []float64{500, 1000, 1500}
	buf := clickTrain(expected, 2.0, sr)

	onsets, err := Detect(buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(onsets) == 0 {
		t.Fatal("expected at least one onset")
	}

	for _, want := range expected {
		found := false
		for _, o := range onsets {
			if math.Abs(o.TimestampMs-want) < 60 {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("no onset found near %v ms: %+v", want, onsets)
		}
	}
}

func TestDetectFailsOnSilence(t *testing.T) {
	sr := 44100
	buf := model.SampleBuffer{Samples: make([]float32, sr*2), SampleRate: sr}
	_, err := Detect(buf, DefaultOptions())
	if err == nil {
		t.Fatal("expected an error (NoOnsets) for pure silence")
	}
}

func TestDetectFailsOnBufferShorterThanOneWindow(t *testing.T) {
	buf := model.SampleBuffer{Samples: make([]float32, 10), SampleRate: 44100}
	_, err := Detect(buf, DefaultOptions())
	if err == nil {
		t.Fatal("expected an error for a buffer shorter than one analysis window")
	}
}

func TestDetectEnforcesRefractoryPeriod(t *testing.T) {
	sr := 44100
	// Two clicks 10ms apart: closer than the 50ms refractory period, so only
	// one onset should survive.
	buf := clickTrain([]float64{500, 510}, 1.0, sr)
	onsets, err := Detect(buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	for i := 1; i < len(onsets); i++ {
		if onsets[i].TimestampMs-onsets[i-1].TimestampMs < refractoryMs {
			t.Fatalf("onsets %d and %d are closer than the refractory period: %v, %v",
				i-1, i, onsets[i-1].TimestampMs, onsets[i].TimestampMs)
		}
	}
}
