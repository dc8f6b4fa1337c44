package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cartomix/beatbox/internal/fixtures"
	"github.com/cartomix/beatbox/internal/midi"
	"github.com/cartomix/beatbox/internal/model"
)

func defaultParams() model.Parameters {
	return model.Parameters{
		Theme:            "midnight_drive",
		TimeSignature:    model.TimeSignature4_4,
		Division:         model.DivisionSixteenth,
		Feel:             model.FeelStraight,
		BarCount:         4,
		QuantizeStrength: 1.0,
		LookaheadMs:      40.0,
		Template:         model.TemplateSynthwaveStraight,
	}
}

func mixedScenarioWAV(t *testing.T) []byte {
	t.Helper()
	dir := t.TempDir()
	if _, err := fixtures.Generate(fixtures.Config{OutputDir: dir, SampleRate: 44100, Seed: 7}); err != nil {
		t.Fatalf("fixtures.Generate: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "mixed_scenario_110bpm.wav"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestRunProducesCompleteResult(t *testing.T) {
	raw := mixedScenarioWAV(t)
	result, err := Run(context.Background(), raw, defaultParams())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.MIDI) == 0 {
		t.Fatal("expected non-empty MIDI output")
	}
	if err := midi.ValidateChunks(result.MIDI); err != nil {
		t.Fatalf("MIDI output failed validation: %v", err)
	}
	if len(result.WAV) < 44 {
		t.Fatal("expected a rendered WAV with at least a header")
	}
	if len(result.Decisions) == 0 {
		t.Fatal("expected at least one decision record")
	}
	if result.BPM <= 0 {
		t.Fatalf("BPM = %v, want > 0", result.BPM)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	raw := mixedScenarioWAV(t)
	params := defaultParams()

	first, err := Run(context.Background(), raw, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := Run(context.Background(), raw, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(first.MIDI) != len(second.MIDI) {
		t.Fatalf("MIDI length differs across identical runs: %d vs %d", len(first.MIDI), len(second.MIDI))
	}
	for i := range first.MIDI {
		if first.MIDI[i] != second.MIDI[i] {
			t.Fatalf("MIDI byte %d differs across identical runs", i)
		}
	}
	if len(first.WAV) != len(second.WAV) {
		t.Fatalf("WAV length differs across identical runs: %d vs %d", len(first.WAV), len(second.WAV))
	}
}

func TestRunHonorsBPMOverride(t *testing.T) {
	raw := mixedScenarioWAV(t)
	params := defaultParams()
	params.BPMOverride = 140

	result, err := Run(context.Background(), raw, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.BPM != 140 {
		t.Fatalf("BPM = %v, want override 140", result.BPM)
	}
}

func TestRunRejectsUnknownTheme(t *testing.T) {
	raw := mixedScenarioWAV(t)
	params := defaultParams()
	params.Theme = "not_a_real_theme"

	_, err := Run(context.Background(), raw, params)
	if err == nil {
		t.Fatal("expected an error for an unknown theme")
	}
}

func TestRunRespectsCancelledContext(t *testing.T) {
	raw := mixedScenarioWAV(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, raw, defaultParams())
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
