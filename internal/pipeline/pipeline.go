// Package pipeline wires every stage of spec.md §4 together: decode onset
// detection, feature extraction, classification, tempo estimation,
// quantization, arrangement, MIDI encoding and offline synthesis.
//
// Following the teacher's job-runner pattern (internal/storage/jobs.go,
// internal/server's request handling), cancellation is checked at each
// stage boundary rather than only once up front, so a caller cancelling a
// long arrangement mid-flight doesn't wait for every remaining stage.
package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/cartomix/beatbox/internal/apperrors"
	"github.com/cartomix/beatbox/internal/arrange"
	"github.com/cartomix/beatbox/internal/classify"
	"github.com/cartomix/beatbox/internal/feature"
	"github.com/cartomix/beatbox/internal/midi"
	"github.com/cartomix/beatbox/internal/model"
	"github.com/cartomix/beatbox/internal/onset"
	"github.com/cartomix/beatbox/internal/pcm"
	"github.com/cartomix/beatbox/internal/quantize"
	"github.com/cartomix/beatbox/internal/report"
	"github.com/cartomix/beatbox/internal/synth"
	"github.com/cartomix/beatbox/internal/tempo"
)

// Result is everything a pipeline run produces.
type Result struct {
	Arrangement model.Arrangement
	MIDI        []byte
	WAV         []byte
	Decisions   []model.DecisionRecord
	Warnings    []string
	BPM         float64
	TempoLowConfidence bool
}

// Run executes the whole pipeline over a RIFF/WAVE byte slice. The entire
// output, including every Event.ID, is a pure function of (raw, params):
// ids are content-derived from onset index and timestamp (spec.md §3), not
// randomly minted, so a rerun over identical input reproduces identical
// DecisionRecords.
func Run(ctx context.Context, raw []byte, params model.Parameters) (Result, error) {
	buf, err := pcm.Decode(raw)
	if err != nil {
		return Result{}, err
	}

	onsets, err := onset.Detect(buf, onset.DefaultOptions())
	if err != nil {
		return Result{}, err
	}
	if err := checkCancel(ctx, "onset"); err != nil {
		return Result{}, err
	}

	events := make([]model.Event, 0, len(onsets))
	for _, o := range onsets {
		fv := feature.Extract(buf, o)
		class, confidence := classify.Classify(fv, params.CalibrationProfile)
		events = append(events, model.Event{
			ID:          eventID(o.Index, o.TimestampMs),
			TimestampMs: o.TimestampMs,
			DurationMs:  o.DurationMs,
			Class:       class,
			Confidence:  confidence,
			Features:    fv,
		})
	}
	if err := checkCancel(ctx, "classify"); err != nil {
		return Result{}, err
	}

	tempoResult := tempo.Estimate(onsets, buf.DurationMs())
	if err := checkCancel(ctx, "tempo"); err != nil {
		return Result{}, err
	}

	bpm := params.BPMOverride
	if bpm <= 0 {
		bpm = tempoResult.BPM
	}
	grid := model.GridPlan{
		BPM:           bpm,
		TimeSignature: params.TimeSignature,
		Division:      params.Division,
		Feel:          params.Feel,
		SwingAmount:   params.SwingAmount,
		BarCount:      params.BarCount,
		BeatPhaseMs:   tempoResult.BeatPhaseMs,
	}

	quantized := quantize.Quantize(grid, events, params.QuantizeStrength, params.LookaheadMs)
	if err := checkCancel(ctx, "quantize"); err != nil {
		return Result{}, err
	}

	arrangement, err := arrange.Arrange(grid, quantized.Quantized, params.Theme, params.Template, params.BEmphasis)
	if err != nil {
		return Result{}, err
	}
	if err := checkCancel(ctx, "arrange"); err != nil {
		return Result{}, err
	}

	midiBytes, err := midi.Encode(arrangement, params.TimeSignature)
	if err != nil {
		return Result{}, fmt.Errorf("encode midi: %w", err)
	}
	if err := checkCancel(ctx, "midi"); err != nil {
		return Result{}, err
	}

	wavBytes, err := synth.Render(arrangement, buf.SampleRate)
	if err != nil {
		return Result{}, fmt.Errorf("render synth: %w", err)
	}
	if err := checkCancel(ctx, "synth"); err != nil {
		return Result{}, err
	}

	var warnings []string
	if tempoResult.LowConfidence {
		warnings = append(warnings, "tempo estimation confidence below threshold; fell back to 120 BPM")
	}
	if quantized.DroppedCount > 0 {
		warnings = append(warnings, fmt.Sprintf("%d event(s) dropped: outside lookahead window of the nearest grid slot", quantized.DroppedCount))
	}

	return Result{
		Arrangement:        arrangement,
		MIDI:               midiBytes,
		WAV:                wavBytes,
		Decisions:          report.BuildDecisionRecords(quantized.Quantized, arrangement),
		Warnings:           warnings,
		BPM:                bpm,
		TempoLowConfidence: tempoResult.LowConfidence,
	}, nil
}

// eventID derives a stable id from the onset's index and timestamp
// (spec.md §3: "content-derived (index + timestamp hash), stable across
// reruns with identical input") rather than a randomly minted one, so the
// same clip always produces the same DecisionRecord ids.
func eventID(index int, timestampMs float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%.6f", index, timestampMs)))
	return fmt.Sprintf("%d-%x", index, sum[:8])
}

func checkCancel(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewNoHash(stage, apperrors.Cancelled, "context cancelled", err)
	}
	return nil
}
