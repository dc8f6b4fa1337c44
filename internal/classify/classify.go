// Package classify implements spec.md §4.D: a fixed rule-based classifier
// mapping a FeatureVector to one of four classes with explicit precedence.
// The classifier never fails; HumVoiced is the totality fallback.
package classify

import "github.com/cartomix/beatbox/internal/model"

// base thresholds, each scaled by the calibration profile's per-class
// multiplier (default 1.0).
const (
	kickLowEnergyMin   = 0.55
	kickCentroidMax    = 700.0
	kickPeakMin        = 0.15

	hatHighEnergyMin = 0.45
	hatZCRMin        = 0.30

	snareMidEnergyMin = 0.40
	snareZCRMin       = 0.08
	snareZCRMax       = 0.30
	snareCentroidMin  = 700.0
	snareCentroidMax  = 3500.0

	humZCRMax       = 0.05
	humLowMidEnergyMin = 0.7
)

const (
	confidenceFloor = 0.5
	confidenceCeil  = 0.99
)

// Classify maps a FeatureVector to a Class and confidence, applying the
// calibration profile's per-class threshold multipliers if present.
func Classify(fv model.FeatureVector, profile *model.CalibrationProfile) (model.Class, float64) {
	lowMin := kickLowEnergyMin * profile.Multiplier(model.BilabialPlosive)
	centroidMax := kickCentroidMax * profile.Multiplier(model.BilabialPlosive)
	peakMin := kickPeakMin * profile.Multiplier(model.BilabialPlosive)
	if fv.LowBandEnergy >= lowMin && fv.SpectralCentroidHz < centroidMax && fv.PeakAmplitude >= peakMin {
		return model.BilabialPlosive, confidenceAbove(fv.LowBandEnergy, lowMin, 1.0)
	}

	highMin := hatHighEnergyMin * profile.Multiplier(model.HihatNoise)
	zcrMin := hatZCRMin * profile.Multiplier(model.HihatNoise)
	if fv.HighBandEnergy >= highMin && fv.ZCR >= zcrMin {
		return model.HihatNoise, confidenceAbove(fv.HighBandEnergy, highMin, 1.0)
	}

	midMin := snareMidEnergyMin * profile.Multiplier(model.Click)
	snareZMin := snareZCRMin * profile.Multiplier(model.Click)
	snareZMax := snareZCRMax * profile.Multiplier(model.Click)
	snareCMin := snareCentroidMin * profile.Multiplier(model.Click)
	snareCMax := snareCentroidMax * profile.Multiplier(model.Click)
	if fv.MidBandEnergy >= midMin &&
		fv.ZCR >= snareZMin && fv.ZCR <= snareZMax &&
		fv.SpectralCentroidHz >= snareCMin && fv.SpectralCentroidHz <= snareCMax {
		return model.Click, confidenceAbove(fv.MidBandEnergy, midMin, 1.0)
	}

	// Fallback: HumVoiced. The explicit sub-condition doesn't change the
	// outcome (still HumVoiced) but does change the confidence formula.
	humZMax := humZCRMax * profile.Multiplier(model.HumVoiced)
	humMin := humLowMidEnergyMin * profile.Multiplier(model.HumVoiced)
	if fv.ZCR < humZMax && fv.LowBandEnergy+fv.MidBandEnergy >= humMin {
		return model.HumVoiced, fallbackConfidence(fv.ZCR)
	}
	return model.HumVoiced, fallbackConfidence(fv.ZCR)
}

// confidenceAbove normalizes how far value is past threshold toward ceiling,
// mapped into [confidenceFloor, confidenceCeil].
func confidenceAbove(value, threshold, ceiling float64) float64 {
	span := ceiling - threshold
	if span <= 0 {
		return confidenceFloor
	}
	dist := (value - threshold) / span
	if dist < 0 {
		dist = 0
	}
	if dist > 1 {
		dist = 1
	}
	c := confidenceFloor + dist*(confidenceCeil-confidenceFloor)
	return clip(c)
}

func fallbackConfidence(zcr float64) float64 {
	c := 1 - zcr*2
	if c < 0.3 {
		c = 0.3
	}
	if c > confidenceCeil {
		c = confidenceCeil
	}
	return c
}

func clip(c float64) float64 {
	if c < confidenceFloor {
		return confidenceFloor
	}
	if c > confidenceCeil {
		return confidenceCeil
	}
	return c
}
