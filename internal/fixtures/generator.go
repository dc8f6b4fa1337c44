// Package fixtures synthesizes the WAV test fixtures spec.md §8 names:
// silence, a steady kick train at a known BPM, a hat burst, a swing grid,
// a mixed four-class scenario and a too-short clip. Every render is driven
// by a seeded deterministic PRNG (the teacher's click-track/noise-fixture
// idiom in the original generator, kept as the style this package imitates
// — see DESIGN.md), so fixtures are reproducible across runs.
//
// WAV bytes are produced through internal/pcm.Encode16 rather than a
// second hand-rolled RIFF writer, so there's exactly one WAV-writing code
// path to trust.
package fixtures

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cartomix/beatbox/internal/pcm"
)

// Config controls which fixtures Generate writes.
type Config struct {
	OutputDir  string
	SampleRate int
	Seed       int64
}

// Manifest describes every fixture Generate wrote, for test harnesses that
// want to assert against known-correct BPM/onset-count ground truth.
type Manifest struct {
	SampleRate int               `json:"sample_rate"`
	Seed       int64             `json:"seed"`
	Fixtures   []ManifestFixture `json:"fixtures"`
}

// ManifestFixture records one fixture's generation parameters, the ground
// truth a test compares the pipeline's output against.
type ManifestFixture struct {
	File        string  `json:"file"`
	Type        string  `json:"type"`
	BPM         float64 `json:"bpm,omitempty"`
	OnsetCount  int     `json:"onset_count,omitempty"`
	DurationSec float64 `json:"duration_sec"`
}

// Generate writes every fixture WAV and a manifest.json into cfg.OutputDir.
func Generate(cfg Config) (*Manifest, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 44100
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./testdata/audio"
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir output: %w", err)
	}

	manifest := &Manifest{SampleRate: cfg.SampleRate, Seed: cfg.Seed}
	rng := newLCG(cfg.Seed)

	add := func(name, typ string, bpm float64, onsets int, samples []float32) error {
		path := filepath.Join(cfg.OutputDir, name)
		if err := writeFixture(path, samples, cfg.SampleRate); err != nil {
			return err
		}
		manifest.Fixtures = append(manifest.Fixtures, ManifestFixture{
			File:        name,
			Type:        typ,
			BPM:         bpm,
			OnsetCount:  onsets,
			DurationSec: float64(len(samples)) / float64(cfg.SampleRate),
		})
		return nil
	}

	if err := add("silence.wav", "silence", 0, 0, renderSilence(cfg.SampleRate, 5.0)); err != nil {
		return nil, err
	}

	kickBPM := 120.0
	kickSamples, kickCount := renderKickTrain(cfg.SampleRate, kickBPM, 16)
	if err := add("kick_train_120bpm.wav", "kick_train", kickBPM, kickCount, kickSamples); err != nil {
		return nil, err
	}

	hatSamples, hatCount := renderHatBurst(cfg.SampleRate, 140.0, 16, rng)
	if err := add("hat_burst_140bpm.wav", "hat_burst", 140.0, hatCount, hatSamples); err != nil {
		return nil, err
	}

	swingBPM := 100.0
	swingSamples, swingCount := renderSwingGrid(cfg.SampleRate, swingBPM, 16, 0.6)
	if err := add("swing_grid_100bpm.wav", "swing_grid", swingBPM, swingCount, swingSamples); err != nil {
		return nil, err
	}

	mixedSamples, mixedCount := renderMixedScenario(cfg.SampleRate, 110.0, rng)
	if err := add("mixed_scenario_110bpm.wav", "mixed", 110.0, mixedCount, mixedSamples); err != nil {
		return nil, err
	}

	if err := add("too_short.wav", "too_short", 0, 0, renderSilence(cfg.SampleRate, 0.05)); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	return manifest, nil
}

func writeFixture(path string, samples []float32, sampleRate int) error {
	data, err := pcm.Encode16(samples, sampleRate)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func renderSilence(sampleRate int, durationSec float64) []float32 {
	return make([]float32, int(durationSec*float64(sampleRate)))
}

// renderKickTrain lays down a steady train of bilabial-plosive-shaped
// bursts (a short low-frequency thump) at exactly bpm, beats apart.
func renderKickTrain(sampleRate int, bpm float64, beats int) ([]float32, int) {
	secondsPerBeat := 60.0 / bpm
	totalSamples := int(secondsPerBeat * float64(beats+1) * float64(sampleRate))
	out := make([]float32, totalSamples)
	for i := 0; i < beats; i++ {
		offset := int(float64(i) * secondsPerBeat * float64(sampleRate))
		writeThump(out, offset, sampleRate, 0.9)
	}
	return out, beats
}

// writeThump adds a short, low-frequency, low-zero-crossing-rate burst at
// offset — the acoustic shape spec.md §4.D calls a bilabial plosive.
func writeThump(out []float32, offset, sampleRate int, amplitude float64) {
	length := int(0.08 * float64(sampleRate))
	for i := 0; i < length && offset+i < len(out); i++ {
		t := float64(i) / float64(sampleRate)
		freq := 150.0 * math.Exp(-20*t)
		env := math.Exp(-25 * t)
		out[offset+i] += float32(amplitude * env * math.Sin(2*math.Pi*freq*t))
	}
}

// renderHatBurst lays down a train of broadband-noise, high-zero-crossing
// hits (the hihat-noise acoustic shape) at bpm.
func renderHatBurst(sampleRate int, bpm float64, beats int, rng *lcg) ([]float32, int) {
	secondsPerBeat := 60.0 / bpm
	totalSamples := int(secondsPerBeat * float64(beats+1) * float64(sampleRate))
	out := make([]float32, totalSamples)
	for i := 0; i < beats; i++ {
		offset := int(float64(i) * secondsPerBeat * float64(sampleRate))
		writeHiss(out, offset, sampleRate, rng, 0.6)
	}
	return out, beats
}

func writeHiss(out []float32, offset, sampleRate int, rng *lcg, amplitude float64) {
	length := int(0.03 * float64(sampleRate))
	for i := 0; i < length && offset+i < len(out); i++ {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-60 * t)
		out[offset+i] += float32(amplitude * env * rng.bipolar())
	}
}

// renderSwingGrid lays down kick thumps on every eighth-note slot, with
// odd-indexed (offbeat) slots delayed by swingRatio of the full beat —
// the same swing shape internal/quantize applies downstream.
func renderSwingGrid(sampleRate int, bpm float64, beats int, swingRatio float64) ([]float32, int) {
	secondsPerBeat := 60.0 / bpm
	slots := beats * 2
	totalSamples := int(secondsPerBeat*float64(beats+1)*float64(sampleRate)) + int(0.1*float64(sampleRate))
	out := make([]float32, totalSamples)

	for i := 0; i < slots; i++ {
		beatIdx := i / 2
		t := float64(beatIdx) * secondsPerBeat
		if i%2 == 1 {
			t = float64(beatIdx)*secondsPerBeat + secondsPerBeat*swingRatio
		}
		offset := int(t * float64(sampleRate))
		writeThump(out, offset, sampleRate, 0.8)
	}
	return out, slots
}

// renderMixedScenario interleaves all four acoustic classes — kick, hat,
// a mid-band click, and a sustained low-ZCR hum — over eight beats.
func renderMixedScenario(sampleRate int, bpm float64, rng *lcg) ([]float32, int) {
	secondsPerBeat := 60.0 / bpm
	beats := 8
	totalSamples := int(secondsPerBeat * float64(beats+1) * float64(sampleRate))
	out := make([]float32, totalSamples)
	count := 0

	for i := 0; i < beats; i++ {
		offset := int(float64(i) * secondsPerBeat * float64(sampleRate))
		switch i % 4 {
		case 0:
			writeThump(out, offset, sampleRate, 0.9)
		case 1:
			writeHiss(out, offset, sampleRate, rng, 0.6)
		case 2:
			writeClick(out, offset, sampleRate, 0.7)
		case 3:
			writeHum(out, offset, sampleRate, 0.5)
		}
		count++
	}
	return out, count
}

// writeClick adds a short mid-band tone burst — the acoustic shape
// spec.md §4.D calls a (tongue) click.
func writeClick(out []float32, offset, sampleRate int, amplitude float64) {
	length := int(0.05 * float64(sampleRate))
	for i := 0; i < length && offset+i < len(out); i++ {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-40 * t)
		out[offset+i] += float32(amplitude * env * math.Sin(2*math.Pi*1500*t))
	}
}

// writeHum adds a sustained, near-zero-crossing-rate low tone — the
// acoustic shape spec.md §4.D calls a hummed/voiced onset.
func writeHum(out []float32, offset, sampleRate int, amplitude float64) {
	length := int(0.15 * float64(sampleRate))
	for i := 0; i < length && offset+i < len(out); i++ {
		t := float64(i) / float64(sampleRate)
		env := math.Min(1, 10*t) * math.Exp(-8*t)
		out[offset+i] += float32(amplitude * env * math.Sin(2*math.Pi*180*t))
	}
}

// lcg is a tiny deterministic linear-congruential generator, the same
// seeded-noise idiom the original generator used for its club-noise
// fixtures, scaled down to just the white-noise tap this package needs.
type lcg struct{ state uint64 }

func newLCG(seed int64) *lcg {
	return &lcg{state: uint64(seed)}
}

func (r *lcg) next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// bipolar returns a deterministic pseudo-random value in [-1, 1].
func (r *lcg) bipolar() float64 {
	return float64(r.next()>>33)/float64(1<<31) - 1
}
