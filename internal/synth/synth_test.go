package synth

import (
	"bytes"
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

func sampleArrangement() model.Arrangement {
	return model.Arrangement{
		DrumLanes: []model.Lane{
			{Name: "kick", Events: []model.ArrangedNote{{TimestampMs: 0, DurationMs: 60, Pitch: 36, Velocity: 110}}},
			{Name: "snare", Events: []model.ArrangedNote{{TimestampMs: 500, DurationMs: 60, Pitch: 38, Velocity: 100}}},
			{Name: "hat", Events: []model.ArrangedNote{{TimestampMs: 250, DurationMs: 40, Pitch: 42, Velocity: 70}}},
		},
		BassLane: &model.Lane{Events: []model.ArrangedNote{{TimestampMs: 0, DurationMs: 400, Pitch: 45, Velocity: 90}}, DuckAmount: 0.5},
		PadLane:  &model.Lane{Events: []model.ArrangedNote{{TimestampMs: 0, DurationMs: 2000, Pitch: 45, Velocity: 80}}, DuckAmount: 0.5},
		TotalDurationMs: 2000,
		BarCount:        1,
		BPM:             120,
	}
}

func TestRenderProducesValidWAV(t *testing.T) {
	data, err := Render(sampleArrangement(), 44100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) < 44 {
		t.Fatalf("rendered WAV too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Fatalf("rendered output is not a WAV file")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	a := sampleArrangement()
	first, err := Render(a, 44100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := Render(a, 44100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical arrangements should render to identical bytes")
	}
}

func TestRenderNeverClips(t *testing.T) {
	a := sampleArrangement()
	// Stack many loud pitched notes at the same instant to stress the limiter.
	var dense []model.ArrangedNote
	for i := 0; i < 20; i++ {
		dense = append(dense, model.ArrangedNote{TimestampMs: 0, DurationMs: 400, Pitch: 40 + i, Velocity: 127})
	}
	a.BassLane.Events = dense

	data, err := Render(a, 44100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// 16-bit PCM samples start at byte 44; none should hit the extremes that
	// indicate an unclipped tanh limiter failed.
	for i := 44; i+1 < len(data); i += 2 {
		sample := int16(data[i]) | int16(data[i+1])<<8
		if sample == 32767 || sample == -32768 {
			t.Fatalf("sample at byte %d hit full scale, limiter may not be engaging", i)
		}
	}
}
