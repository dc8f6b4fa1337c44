// Package model holds the data types shared across every pipeline stage.
//
// These mirror the teacher's gen/go/common pattern of a single shared
// vocabulary imported by every internal package, but as plain Go structs:
// the core never crosses a process boundary, so there is no wire format to
// generate code for (see DESIGN.md).
package model

// Class is one of the four fixed percussive/voiced classes a beatbox onset
// can be mapped to.
type Class string

const (
	BilabialPlosive Class = "BilabialPlosive" // B/P -> kick
	HihatNoise      Class = "HihatNoise"      // S/TS -> hat
	Click           Class = "Click"           // T/K -> snare
	HumVoiced       Class = "HumVoiced"       // vowel -> pad
)

// SampleBuffer is a decoded mono PCM buffer with known sample rate.
type SampleBuffer struct {
	Samples    []float32 // clipped to [-1, 1]
	SampleRate int       // 22050, 44100, or 48000
}

// DurationMs returns the buffer's length in milliseconds.
func (b SampleBuffer) DurationMs() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) * 1000.0 / float64(b.SampleRate)
}

// FeatureVector is the fixed-shape acoustic feature set computed per onset.
type FeatureVector struct {
	SpectralCentroidHz float64
	ZCR                float64
	LowBandEnergy      float64
	MidBandEnergy      float64
	HighBandEnergy     float64
	PeakAmplitude      float64
}

// Onset is a raw onset detection result, prior to feature extraction and
// classification.
type Onset struct {
	Index         int
	TimestampMs   float64
	DurationMs    float64
	PeakAmplitude float64
}

// Event is a fully analyzed onset: class, confidence and features attached.
type Event struct {
	ID          string
	TimestampMs float64
	DurationMs  float64
	Class       Class
	Confidence  float64
	Features    FeatureVector
}

// TimeSignature enumerates the two supported meters.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

var (
	TimeSignature4_4 = TimeSignature{4, 4}
	TimeSignature3_4 = TimeSignature{3, 4}
)

// Division is the grid subdivision used for quantization.
type Division string

const (
	DivisionQuarter  Division = "1/4"
	DivisionEighth   Division = "1/8"
	DivisionSixteenth Division = "1/16"
	DivisionTriplet  Division = "triplet"
)

// Feel is the rhythmic interpretation mode.
type Feel string

const (
	FeelStraight Feel = "straight"
	FeelSwing    Feel = "swing"
	FeelHalftime Feel = "halftime"
)

// GridPlan describes the quantization grid.
type GridPlan struct {
	BPM           float64
	TimeSignature TimeSignature
	Division      Division
	Feel          Feel
	SwingAmount   float64
	BarCount      int
	BeatPhaseMs   float64
}

// BeatMs is the duration of one beat in milliseconds.
func (g GridPlan) BeatMs() float64 {
	return 60000.0 / g.BPM
}

// SlotMs is the duration of one grid slot in milliseconds, given division
// and feel. Triplet division is always treated as a third of a beat;
// halftime feel does not change the slot size (only downstream bar length).
func (g GridPlan) SlotMs() float64 {
	beatMs := g.BeatMs()
	switch g.Division {
	case DivisionQuarter:
		return beatMs
	case DivisionEighth:
		return beatMs / 2
	case DivisionSixteenth:
		return beatMs / 4
	case DivisionTriplet:
		return beatMs / 3
	default:
		return beatMs / 4
	}
}

// QuantizedEvent is an Event snapped (fully or partially) onto the grid.
type QuantizedEvent struct {
	EventID              string
	OriginalTimestampMs  float64
	QuantizedTimestampMs float64
	SnapDeltaMs          float64
	Event                Event
}

// ArrangedNote is a single emitted note in a Lane. Pitch is the MIDI note
// number actually sounded; for drum lanes this always equals the owning
// Lane's MidiNote, but melodic lanes (bass/pad/arp) vary it note to note.
type ArrangedNote struct {
	TimestampMs   float64
	DurationMs    float64
	Pitch         int
	Velocity      int    // 1..127
	SourceEventID string // empty if not derived from an input event
}

// Lane is an ordered note stream for one instrument part. MidiNote is the
// fixed GM drum-map pitch for percussion lanes; melodic lanes leave it at 0
// and carry per-note pitch on each ArrangedNote instead.
type Lane struct {
	Name       string
	MidiNote   int
	Events     []ArrangedNote
	DuckAmount float64 // sidechain ducking amount, consumed by the synth
}

// TemplateName enumerates the mandatory arrangement templates.
type TemplateName string

const (
	TemplateSynthwaveStraight  TemplateName = "SynthwaveStraight"
	TemplateSynthwaveHalftime TemplateName = "SynthwaveHalftime"
	TemplateArpDrive           TemplateName = "ArpDrive"
)

// Arrangement is the final multi-lane output of the arranger.
type Arrangement struct {
	DrumLanes        []Lane
	BassLane         *Lane
	PadLane          *Lane
	ArpLane          *Lane
	Template         TemplateName
	TotalDurationMs  float64
	BarCount         int
	BPM              float64
}

// AllLanes returns every non-empty lane (one with at least one note) in the
// fixed canonical order: kick, snare, hat, bass, pad, arp. Reproducibility
// requires this order never depend on map iteration (spec.md Design Notes,
// "Reproducibility").
func (a Arrangement) AllLanes() []Lane {
	lanes := make([]Lane, 0, len(a.DrumLanes)+3)
	for _, l := range a.DrumLanes {
		if len(l.Events) > 0 {
			lanes = append(lanes, l)
		}
	}
	for _, l := range []*Lane{a.BassLane, a.PadLane, a.ArpLane} {
		if l != nil && len(l.Events) > 0 {
			lanes = append(lanes, *l)
		}
	}
	return lanes
}

// ScaleFamily enumerates the supported harmonic scale families.
type ScaleFamily string

const (
	ScaleMinor    ScaleFamily = "minor"
	ScaleMajor    ScaleFamily = "major"
	ScaleDorian   ScaleFamily = "dorian"
	ScalePhrygian ScaleFamily = "phrygian"
)

// ChordSpan is one entry in a theme's chord progression: a chord symbol
// held for a number of bars.
type ChordSpan struct {
	Symbol       string
	BarsPerChord int
}

// Theme is a read-only harmonic/timbral catalog entry.
type Theme struct {
	Name             string
	BPMRangeLow      float64
	BPMRangeHigh     float64
	RootNote         int // MIDI 0-127
	ScaleFamily      ScaleFamily
	ChordProgression []ChordSpan
	BassPattern      []int // semitone pitch-offset cycle applied per bass rhythm step (e.g. 0,7 for root/fifth)
	ArpPattern       []int // chord-tone indices cycled per 1/16 step
	ArpOctaveRange   int
	DrumPalette      string
}

// Parameters is the entire tunable input to the pipeline besides the PCM
// buffer itself. The whole pipeline output is a pure function of
// (pcm, Parameters).
type Parameters struct {
	Theme             string
	BPMOverride       float64 // 0 means "auto" (use the tempo estimator)
	TimeSignature     TimeSignature
	Division          Division
	Feel              Feel
	SwingAmount       float64
	BarCount          int
	QuantizeStrength  float64
	LookaheadMs       float64
	BEmphasis         float64
	Template          TemplateName
	CalibrationProfile *CalibrationProfile
}

// CalibrationProfile is an opaque-to-the-core set of per-class threshold
// multipliers, produced offline by averaging labeled feature samples.
type CalibrationProfile struct {
	Thresholds map[Class]float64 `json:"thresholds"`
	Notes      string            `json:"notes"`
}

// Multiplier returns the calibrated multiplier for a class, defaulting to
// 1.0 for missing or nil profiles (spec.md Design Notes: "Calibration
// profile").
func (p *CalibrationProfile) Multiplier(c Class) float64 {
	if p == nil || p.Thresholds == nil {
		return 1.0
	}
	if m, ok := p.Thresholds[c]; ok {
		return m
	}
	return 1.0
}

// DecisionRecord is the explainability record emitted alongside the
// Arrangement (spec.md Output C).
type DecisionRecord struct {
	EventID              string   `json:"event_id"`
	OriginalTimestampMs  float64  `json:"original_timestamp_ms"`
	QuantizedTimestampMs float64  `json:"quantized_timestamp_ms"`
	SnapDeltaMs          float64  `json:"snap_delta_ms"`
	Class                Class    `json:"class"`
	Confidence           float64  `json:"confidence"`
	MappedTo             []string `json:"mapped_to"`
	Features             FeatureVector `json:"features"`
}
