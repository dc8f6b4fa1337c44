package quantize

import (
	"math"
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

func straightGrid() model.GridPlan {
	return model.GridPlan{
		BPM:           120,
		TimeSignature: model.TimeSignature4_4,
		Division:      model.DivisionSixteenth,
		Feel:          model.FeelStraight,
		BarCount:      2,
		BeatPhaseMs:   0,
	}
}

func TestQuantizeFullStrengthSnapsExactlyToGrid(t *testing.T) {
	grid := straightGrid()
	slotMs := grid.SlotMs()

	// An event 10ms off the nearest slot.
	events := []model.Event{{ID: "ev-1", TimestampMs: slotMs*2 + 10}}
	result := Quantize(grid, events, 1.0, 40.0)

	if len(result.Quantized) != 1 {
		t.Fatalf("expected 1 quantized event, got %d", len(result.Quantized))
	}
	got := result.Quantized[0].QuantizedTimestampMs
	want := slotMs * 2
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("QuantizedTimestampMs = %v, want %v", got, want)
	}
}

func TestQuantizeZeroStrengthPassesThrough(t *testing.T) {
	grid := straightGrid()
	original := grid.SlotMs()*3 + 7
	events := []model.Event{{ID: "ev-1", TimestampMs: original}}
	result := Quantize(grid, events, 0.0, 40.0)

	if len(result.Quantized) != 1 {
		t.Fatalf("expected 1 quantized event, got %d", len(result.Quantized))
	}
	if math.Abs(result.Quantized[0].QuantizedTimestampMs-original) > 1e-6 {
		t.Fatalf("zero strength should leave the timestamp unchanged, got %v want %v",
			result.Quantized[0].QuantizedTimestampMs, original)
	}
}

func TestQuantizeDropsEventsOutsideLookahead(t *testing.T) {
	grid := straightGrid()
	slotMs := grid.SlotMs()
	// Past the end of the 2-bar grid and its margin slots, far enough from
	// the last slot to exceed halfSlot+lookahead (inside the grid no time is
	// more than halfSlot from a slot).
	farOffset := slotMs/2 + 10000
	events := []model.Event{{ID: "ev-1", TimestampMs: slotMs*2 + farOffset}}
	result := Quantize(grid, events, 1.0, 5.0)

	if len(result.Quantized) != 0 {
		t.Fatalf("expected the event to be dropped, got %d quantized", len(result.Quantized))
	}
	if result.DroppedCount != 1 {
		t.Fatalf("DroppedCount = %d, want 1", result.DroppedCount)
	}
}

func TestQuantizeSwingOffsetsOddSlots(t *testing.T) {
	straight := straightGrid()
	straight.Feel = model.FeelSwing
	straight.SwingAmount = 0.0
	slotsNoSwing := buildSlots(straight)

	swung := straightGrid()
	swung.Feel = model.FeelSwing
	swung.SwingAmount = 1.0
	slotsSwung := buildSlots(swung)

	if len(slotsNoSwing) != len(slotsSwung) {
		t.Fatalf("slot counts differ: %d vs %d", len(slotsNoSwing), len(slotsSwung))
	}

	differs := false
	for i := range slotsNoSwing {
		if math.Abs(slotsNoSwing[i]-slotsSwung[i]) > 1e-9 {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatal("expected swing amount to shift at least one slot")
	}
}

func TestQuantizePreservesEventOrder(t *testing.T) {
	grid := straightGrid()
	events := []model.Event{
		{ID: "a", TimestampMs: 10},
		{ID: "b", TimestampMs: 100},
		{ID: "c", TimestampMs: 50},
	}
	result := Quantize(grid, events, 1.0, 40.0)
	if len(result.Quantized) != 3 {
		t.Fatalf("expected 3 quantized events, got %d", len(result.Quantized))
	}
	order := []string{"a", "b", "c"}
	for i, id := range order {
		if result.Quantized[i].EventID != id {
			t.Fatalf("quantized[%d].EventID = %q, want %q (input order should be preserved)", i, result.Quantized[i].EventID, id)
		}
	}
}
