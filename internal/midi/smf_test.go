package midi

import (
	"bytes"
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

func sampleArrangement() model.Arrangement {
	return model.Arrangement{
		DrumLanes: []model.Lane{
			{Name: "kick", MidiNote: 36, Events: []model.ArrangedNote{
				{TimestampMs: 0, DurationMs: 60, Pitch: 36, Velocity: 110},
				{TimestampMs: 500, DurationMs: 60, Pitch: 36, Velocity: 110},
			}},
		},
		BassLane: &model.Lane{Name: "bass", Events: []model.ArrangedNote{
			{TimestampMs: 0, DurationMs: 140, Pitch: 45, Velocity: 90},
		}},
		Template:        model.TemplateSynthwaveStraight,
		TotalDurationMs: 2000,
		BarCount:        1,
		BPM:             120,
	}
}

func TestEncodeProducesValidChunks(t *testing.T) {
	data, err := Encode(sampleArrangement(), model.TimeSignature4_4)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ValidateChunks(data); err != nil {
		t.Fatalf("ValidateChunks: %v", err)
	}
	if string(data[0:4]) != "MThd" {
		t.Fatalf("missing MThd header")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := sampleArrangement()
	first, err := Encode(a, model.TimeSignature4_4)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(a, model.TimeSignature4_4)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("byte %d differs between identical encodes", i)
		}
	}
}

func TestVLQRoundTripsKnownValues(t *testing.T) {
	cases := map[int][]byte{
		0:        {0x00},
		127:      {0x7F},
		128:      {0x81, 0x00},
		16383:    {0xFF, 0x7F},
		16384:    {0x81, 0x80, 0x00},
		2097151:  {0xFF, 0xFF, 0x7F},
	}
	for v, want := range cases {
		var buf bytes.Buffer
		writeVLQ(&buf, v)
		if buf.String() != string(want) {
			t.Fatalf("writeVLQ(%d) = %x, want %x", v, buf.Bytes(), want)
		}
	}
}
