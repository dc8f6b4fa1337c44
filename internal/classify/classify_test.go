package classify

import (
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

func TestClassifyKick(t *testing.T) {
	fv := model.FeatureVector{
		LowBandEnergy:      0.8,
		SpectralCentroidHz: 300,
		PeakAmplitude:      0.5,
	}
	class, confidence := Classify(fv, nil)
	if class != model.BilabialPlosive {
		t.Fatalf("class = %v, want BilabialPlosive", class)
	}
	if confidence < confidenceFloor || confidence > confidenceCeil {
		t.Fatalf("confidence %v out of range", confidence)
	}
}

func TestClassifyHat(t *testing.T) {
	fv := model.FeatureVector{
		HighBandEnergy: 0.7,
		ZCR:            0.5,
		LowBandEnergy:  0.1,
	}
	class, _ := Classify(fv, nil)
	if class != model.HihatNoise {
		t.Fatalf("class = %v, want HihatNoise", class)
	}
}

func TestClassifySnare(t *testing.T) {
	fv := model.FeatureVector{
		MidBandEnergy:      0.6,
		ZCR:                0.15,
		SpectralCentroidHz: 1500,
		LowBandEnergy:      0.1,
		HighBandEnergy:     0.2,
	}
	class, _ := Classify(fv, nil)
	if class != model.Click {
		t.Fatalf("class = %v, want Click", class)
	}
}

func TestClassifyHumFallback(t *testing.T) {
	fv := model.FeatureVector{
		ZCR:           0.01,
		LowBandEnergy: 0.5,
		MidBandEnergy: 0.4,
	}
	class, _ := Classify(fv, nil)
	if class != model.HumVoiced {
		t.Fatalf("class = %v, want HumVoiced", class)
	}
}

func TestClassifyNeverFails(t *testing.T) {
	// An empty feature vector should still resolve to some class with a
	// confidence in range, never a zero value or panic.
	class, confidence := Classify(model.FeatureVector{}, nil)
	if class == "" {
		t.Fatal("Classify must always return a class")
	}
	if confidence < confidenceFloor || confidence > confidenceCeil {
		t.Fatalf("confidence %v out of range", confidence)
	}
}

func TestClassifyAppliesCalibrationMultiplier(t *testing.T) {
	fv := model.FeatureVector{
		LowBandEnergy:      0.6,
		SpectralCentroidHz: 300,
		PeakAmplitude:      0.2,
	}
	// Without calibration this should classify as a kick.
	class, _ := Classify(fv, nil)
	if class != model.BilabialPlosive {
		t.Fatalf("precondition failed: class = %v, want BilabialPlosive", class)
	}

	// Raising the kick low-energy threshold multiplier should push this
	// same feature vector below threshold and out of the kick branch.
	profile := &model.CalibrationProfile{Thresholds: map[model.Class]float64{
		model.BilabialPlosive: 2.0,
	}}
	class2, _ := Classify(fv, profile)
	if class2 == model.BilabialPlosive {
		t.Fatal("expected calibration multiplier to raise the kick threshold past this feature vector")
	}
}
