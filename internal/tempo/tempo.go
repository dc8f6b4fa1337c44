// Package tempo implements spec.md §4.E: BPM and downbeat-phase estimation
// from an onset train via windowed, prior-weighted autocorrelation.
//
// Autocorrelation accumulators are float64 throughout (spec.md §9: "all DSP
// math in f32 except autocorrelation accumulators (f64 to avoid bias)").
package tempo

import (
	"math"

	"github.com/cartomix/beatbox/internal/model"
)

const (
	binMs = 5.0

	minBPM = 40.0
	maxBPM = 240.0

	priorPeakBPM = 120.0
	priorSigma   = 0.35 // sigma in log-tempo

	octaveLowBPM  = 70.0
	octaveHighBPM = 180.0

	lowConfidenceThreshold = 0.2
	fallbackBPM            = 120.0
)

// Result is the tempo estimator's output.
type Result struct {
	BPM             float64
	Confidence      float64
	BeatPositionsMs []float64
	BeatPhaseMs     float64
	LowConfidence   bool // true when confidence fell below threshold and BPM was forced to fallbackBPM
}

// Estimate runs autocorrelation-based tempo estimation over the onset
// train. totalDurationMs bounds the impulse train and the returned
// BeatPositionsMs.
func Estimate(onsets []model.Onset, totalDurationMs float64) Result {
	impulses := impulseTrain(onsets, totalDurationMs)

	minLagBins := int(math.Round(60000.0 / maxBPM / binMs))
	maxLagBins := int(math.Round(60000.0 / minBPM / binMs))
	if maxLagBins >= len(impulses) {
		maxLagBins = len(impulses) - 1
	}
	if minLagBins < 1 {
		minLagBins = 1
	}

	rawAutocorr := make([]float64, 0, maxLagBins-minLagBins+1)
	weighted := make([]float64, 0, maxLagBins-minLagBins+1)
	lags := make([]int, 0, maxLagBins-minLagBins+1)

	for lag := minLagBins; lag <= maxLagBins; lag++ {
		r := autocorrelate(impulses, lag)
		bpm := 60000.0 / (float64(lag) * binMs)
		w := r * logNormalPrior(bpm)

		rawAutocorr = append(rawAutocorr, r)
		weighted = append(weighted, w)
		lags = append(lags, lag)
	}

	if len(weighted) == 0 {
		return Result{BPM: fallbackBPM, Confidence: 0, LowConfidence: true}
	}

	bestIdx := argmax(weighted)
	bestLag := lags[bestIdx]
	bpmCandidate := 60000.0 / (float64(bestLag) * binMs)

	bpmCandidate = correctOctave(impulses, bpmCandidate)

	beatMs := 60000.0 / bpmCandidate
	beatPhaseMs, _ := bestPhase(impulses, beatMs)

	confidence := confidenceFromDistribution(rawAutocorr, bestIdx)

	result := Result{
		BPM:             bpmCandidate,
		Confidence:      confidence,
		BeatPhaseMs:     beatPhaseMs,
		BeatPositionsMs: beatPositions(beatPhaseMs, beatMs, totalDurationMs),
	}

	// spec.md §7: TempoLowConfidence is recovered locally, never surfaced
	// as an error; the caller gets a warning flag and BPM 120.
	if confidence < lowConfidenceThreshold {
		result.LowConfidence = true
		result.BPM = fallbackBPM
		beatMs = 60000.0 / fallbackBPM
		beatPhaseMs, _ = bestPhase(impulses, beatMs)
		result.BeatPhaseMs = beatPhaseMs
		result.BeatPositionsMs = beatPositions(beatPhaseMs, beatMs, totalDurationMs)
	}

	return result
}

func impulseTrain(onsets []model.Onset, totalDurationMs float64) []float64 {
	n := int(math.Ceil(totalDurationMs/binMs)) + 1
	if n < 1 {
		n = 1
	}
	train := make([]float64, n)
	for _, o := range onsets {
		idx := int(math.Round(o.TimestampMs / binMs))
		if idx >= 0 && idx < len(train) {
			v := o.PeakAmplitude
			if v <= 0 {
				v = 1
			}
			train[idx] += v
		}
	}
	return train
}

// autocorrelate computes the unnormalized autocorrelation at the given lag
// (in bins), accumulated in float64.
func autocorrelate(x []float64, lag int) float64 {
	var sum float64
	n := len(x) - lag
	if n <= 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		sum += x[i] * x[i+lag]
	}
	return sum
}

// logNormalPrior weights a candidate BPM by a log-normal distribution
// peaked at priorPeakBPM with the given sigma in log-tempo space.
func logNormalPrior(bpm float64) float64 {
	logRatio := math.Log(bpm / priorPeakBPM)
	return math.Exp(-(logRatio * logRatio) / (2 * priorSigma * priorSigma))
}

// correctOctave tests doubling (if bpm < octaveLowBPM) or halving (if bpm >
// octaveHighBPM) and keeps whichever candidate has the stronger
// per-beat-normalized phase alignment score.
func correctOctave(impulses []float64, bpm float64) float64 {
	var alt float64
	switch {
	case bpm < octaveLowBPM:
		alt = bpm * 2
	case bpm > octaveHighBPM:
		alt = bpm / 2
	default:
		return bpm
	}

	_, baseScore := bestPhase(impulses, 60000.0/bpm)
	_, altScore := bestPhase(impulses, 60000.0/alt)
	if altScore > baseScore {
		return alt
	}
	return bpm
}

// bestPhase finds the phase in [0, beatMs) that maximizes the sum of
// impulses landing on phase + n*beatMs, normalized by the number of beat
// positions tested so candidates at different beatMs remain comparable.
func bestPhase(impulses []float64, beatMs float64) (phaseMs, score float64) {
	n := len(impulses)
	totalMs := float64(n) * binMs

	bestScore := math.Inf(-1)
	var bestPhaseMs float64

	for phaseBins := 0; float64(phaseBins)*binMs < beatMs; phaseBins++ {
		phase := float64(phaseBins) * binMs
		sum := 0.0
		count := 0
		for t := phase; t < totalMs; t += beatMs {
			idx := int(math.Round(t / binMs))
			if idx >= 0 && idx < n {
				sum += impulses[idx]
				count++
			}
		}
		if count == 0 {
			continue
		}
		normalized := sum / float64(count)
		if normalized > bestScore {
			bestScore = normalized
			bestPhaseMs = phase
		}
	}
	return bestPhaseMs, bestScore
}

func confidenceFromDistribution(values []float64, bestIdx int) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	std := math.Sqrt(variance)

	if std <= 0 {
		return 0
	}
	c := (values[bestIdx] - mean) / std
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}

func beatPositions(phaseMs, beatMs, totalDurationMs float64) []float64 {
	var positions []float64
	for t := phaseMs; t < totalDurationMs; t += beatMs {
		positions = append(positions, t)
	}
	return positions
}

func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}
