package fixtures

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateProducesAudioAndManifest(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{
		OutputDir:  dir,
		SampleRate: 44100,
		Seed:       42,
	}

	manifest, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(manifest.Fixtures) != 6 {
		t.Fatalf("expected 6 fixtures, got %d", len(manifest.Fixtures))
	}

	wavPath := filepath.Join(dir, "kick_train_120bpm.wav")
	data, err := os.ReadFile(wavPath)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}

	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("not a wav header")
	}

	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	if sampleRate != uint32(cfg.SampleRate) {
		t.Fatalf("unexpected sample rate %d", sampleRate)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	cfg1 := Config{OutputDir: dir1, SampleRate: 44100, Seed: 7}
	cfg2 := Config{OutputDir: dir2, SampleRate: 44100, Seed: 7}

	if _, err := Generate(cfg1); err != nil {
		t.Fatalf("generate 1: %v", err)
	}
	if _, err := Generate(cfg2); err != nil {
		t.Fatalf("generate 2: %v", err)
	}

	a, err := os.ReadFile(filepath.Join(dir1, "hat_burst_140bpm.wav"))
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir2, "hat_burst_140bpm.wav"))
	if err != nil {
		t.Fatalf("read b: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("fixture lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("fixture bytes differ at offset %d", i)
		}
	}
}

func TestTooShortFixtureIsBelowMinimumDuration(t *testing.T) {
	dir := t.TempDir()
	manifest, err := Generate(Config{OutputDir: dir, SampleRate: 44100, Seed: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, f := range manifest.Fixtures {
		if f.Type == "too_short" && f.DurationSec >= 0.1 {
			t.Fatalf("too_short fixture should be under 100ms, got %.3fs", f.DurationSec)
		}
	}
}
