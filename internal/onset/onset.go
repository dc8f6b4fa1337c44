// Package onset implements spec.md §4.B: spectral-flux onset detection with
// peak picking.
//
// The short-time magnitude spectrum is computed with
// gonum.org/v1/gonum/dsp/fourier's real FFT rather than a hand-rolled
// transform (SPEC_FULL.md §4.B). Local novelty normalization uses
// gonum.org/v1/gonum/stat for the sliding mean/stddev.
package onset

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/cartomix/beatbox/internal/apperrors"
	"github.com/cartomix/beatbox/internal/model"
)

const stage = "onset.Detect"

const (
	windowSize = 1024
	hopSize    = 512

	normWindowMs   = 300.0
	peakWindowMs   = 30.0
	refractoryMs   = 50.0
	amplitudeWinMs = 25.0

	defaultThreshold = 0.6
	epsilon          = 1e-6
	defaultDurationMs = 100.0
)

// Options tunes the detector. ThresholdMultiplier lets a calibration
// profile adjust the novelty threshold (spec.md §4.B: "threshold = 0.6
// (adjustable via calibration)"); 1.0 reproduces the spec default exactly.
type Options struct {
	ThresholdMultiplier float64
}

// DefaultOptions returns the spec.md-default detector tuning.
func DefaultOptions() Options {
	return Options{ThresholdMultiplier: 1.0}
}

// Detect runs spectral-flux onset detection over the whole buffer and
// returns onsets ordered ascending by timestamp. Returns NoOnsets if fewer
// than one peak survives.
func Detect(buf model.SampleBuffer, opts Options) ([]model.Onset, error) {
	samples := buf.Samples
	sr := buf.SampleRate

	if len(samples) < windowSize {
		return nil, apperrors.New(stage, apperrors.NoOnsets, nil,
			"buffer shorter than one analysis window", nil)
	}

	novelty := spectralFlux(samples)
	if len(novelty) == 0 {
		return nil, apperrors.New(stage, apperrors.NoOnsets, nil, "no frames produced", nil)
	}

	hopMs := float64(hopSize) * 1000.0 / float64(sr)
	normalized := normalize(novelty, int(math.Round(normWindowMs/hopMs)))

	threshold := defaultThreshold
	if opts.ThresholdMultiplier > 0 {
		threshold = defaultThreshold * opts.ThresholdMultiplier
	}

	peakRadius := int(math.Round(peakWindowMs / hopMs))
	if peakRadius < 1 {
		peakRadius = 1
	}

	var onsets []model.Onset
	lastAcceptedMs := math.Inf(-1)

	for t := range normalized {
		if normalized[t] <= threshold {
			continue
		}
		if !isLocalMax(normalized, t, peakRadius) {
			continue
		}

		frameTimeMs := (float64(t)*hopSize + windowSize/2.0) * 1000.0 / float64(sr)
		if frameTimeMs-lastAcceptedMs < refractoryMs {
			continue
		}

		onsets = append(onsets, model.Onset{
			Index:         len(onsets),
			TimestampMs:   frameTimeMs,
			DurationMs:    defaultDurationMs,
			PeakAmplitude: peakAmplitudeAround(samples, sr, frameTimeMs),
		})
		lastAcceptedMs = frameTimeMs
	}

	if len(onsets) == 0 {
		return nil, apperrors.New(stage, apperrors.NoOnsets, nil,
			"no novelty peaks exceeded the onset threshold", nil)
	}

	return onsets, nil
}

// spectralFlux returns the half-wave-rectified positive magnitude-spectrum
// change between consecutive Hann-windowed frames.
func spectralFlux(samples []float32) []float64 {
	window := hannWindow(windowSize)
	fft := fourier.NewFFT(windowSize)

	numFrames := (len(samples)-windowSize)/hopSize + 1
	if numFrames < 1 {
		return nil
	}

	novelty := make([]float64, numFrames)
	prevMag := make([]float64, windowSize/2+1)
	frame := make([]float64, windowSize)
	coeffs := make([]complex128, windowSize/2+1)

	for t := 0; t < numFrames; t++ {
		start := t * hopSize
		for i := 0; i < windowSize; i++ {
			frame[i] = float64(samples[start+i]) * window[i]
		}
		fft.Coefficients(coeffs, frame)

		sum := 0.0
		for k, c := range coeffs {
			mag := cmplxAbs(c)
			diff := mag - prevMag[k]
			if diff > 0 {
				sum += diff
			}
			prevMag[k] = mag
		}
		novelty[t] = sum
	}
	return novelty
}

// normalize subtracts the local mean and divides by the local stddev (plus
// epsilon) over a centered sliding window of the given radius in frames.
func normalize(novelty []float64, halfWindowFrames int) []float64 {
	if halfWindowFrames < 1 {
		halfWindowFrames = 1
	}
	out := make([]float64, len(novelty))
	for t := range novelty {
		lo := t - halfWindowFrames
		if lo < 0 {
			lo = 0
		}
		hi := t + halfWindowFrames + 1
		if hi > len(novelty) {
			hi = len(novelty)
		}
		mean, std := stat.MeanStdDev(novelty[lo:hi], nil)
		out[t] = (novelty[t] - mean) / (std + epsilon)
	}
	return out
}

func isLocalMax(series []float64, idx, radius int) bool {
	v := series[idx]
	lo := idx - radius
	if lo < 0 {
		lo = 0
	}
	hi := idx + radius
	if hi >= len(series) {
		hi = len(series) - 1
	}
	for i := lo; i <= hi; i++ {
		if i == idx {
			continue
		}
		if series[i] > v {
			return false
		}
	}
	return true
}

func peakAmplitudeAround(samples []float32, sr int, centerMs float64) float64 {
	radiusSamples := int(amplitudeWinMs / 1000.0 * float64(sr))
	center := int(centerMs / 1000.0 * float64(sr))
	lo := center - radiusSamples
	if lo < 0 {
		lo = 0
	}
	hi := center + radiusSamples
	if hi > len(samples) {
		hi = len(samples)
	}
	peak := 0.0
	for i := lo; i < hi; i++ {
		v := math.Abs(float64(samples[i]))
		if v > peak {
			peak = v
		}
	}
	return peak
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
