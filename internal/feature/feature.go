// Package feature implements spec.md §4.C: fixed-shape acoustic feature
// extraction over a short analysis window anchored to each onset.
package feature

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cartomix/beatbox/internal/model"
)

const (
	preRollMs   = 5.0
	windowMs    = 50.0
	lowBandHz   = 200.0
	midBandHz   = 2000.0
	energyEps   = 1e-12
)

// Extract computes the FeatureVector for one onset: a windowMs analysis
// window starting preRollMs before the onset timestamp.
func Extract(buf model.SampleBuffer, onset model.Onset) model.FeatureVector {
	sr := buf.SampleRate
	samples := buf.Samples

	startMs := onset.TimestampMs - preRollMs
	start := int(startMs / 1000.0 * float64(sr))
	n := int(windowMs / 1000.0 * float64(sr))

	window := windowSlice(samples, start, n)

	zcr := zeroCrossingRate(window)
	centroid, low, mid, high := spectralFeatures(window, sr)

	return model.FeatureVector{
		SpectralCentroidHz: centroid,
		ZCR:                zcr,
		LowBandEnergy:       low,
		MidBandEnergy:       mid,
		HighBandEnergy:      high,
		PeakAmplitude:       onset.PeakAmplitude,
	}
}

// windowSlice extracts n samples starting at start, zero-padding at either
// edge of the buffer.
func windowSlice(samples []float32, start, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := start + i
		if idx >= 0 && idx < len(samples) {
			out[i] = float64(samples[idx])
		}
	}
	return out
}

func zeroCrossingRate(window []float64) float64 {
	if len(window) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(window); i++ {
		if (window[i-1] >= 0) != (window[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(window))
}

// spectralFeatures returns the spectral centroid (Hz) and the three
// normalized band energies (low/mid/high, summing to 1).
func spectralFeatures(window []float64, sr int) (centroid, low, mid, high float64) {
	n := len(window)
	if n == 0 {
		return 0, 0, 0, 1
	}

	w := hannWindow(n)
	tapered := make([]float64, n)
	for i := range window {
		tapered[i] = window[i] * w[i]
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, tapered)

	freqRes := float64(sr) / float64(n)

	var magSum, weightedSum float64
	var lowE, midE, highE float64

	for k, c := range coeffs {
		mag := math.Hypot(real(c), imag(c))
		freq := float64(k) * freqRes

		magSum += mag
		weightedSum += freq * mag

		energy := mag * mag
		switch {
		case freq < lowBandHz:
			lowE += energy
		case freq < midBandHz:
			midE += energy
		default:
			highE += energy
		}
	}

	if magSum > energyEps {
		centroid = weightedSum / magSum
	}

	total := lowE + midE + highE
	if total < energyEps {
		return centroid, 0, 0, 1
	}
	return centroid, lowE / total, midE / total, highE / total
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
