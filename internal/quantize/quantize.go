// Package quantize implements spec.md §4.F: snapping events onto a grid
// with feel, swing, snap strength and lookahead.
package quantize

import (
	"math"
	"sort"

	"github.com/cartomix/beatbox/internal/model"
)

// marginSlots extends the constructed grid a few slots past the nominal
// bar_count so that trailing events within lookahead of the grid's end
// aren't spuriously dropped.
const marginSlots = 4

// Result is the quantizer's output: quantized events in input order, plus
// the count of events dropped for falling outside the lookahead window
// (spec.md §7: reported as a count, not an error).
type Result struct {
	Quantized    []model.QuantizedEvent
	DroppedCount int
}

// Quantize snaps events onto grid, with the given snap strength (0 = pass
// through, 1 = snap exactly) and lookahead.
func Quantize(grid model.GridPlan, events []model.Event, strength, lookaheadMs float64) Result {
	slots := buildSlots(grid)

	var out Result
	out.Quantized = make([]model.QuantizedEvent, 0, len(events))

	for _, ev := range events {
		_, delta := nearestSlot(slots, ev.TimestampMs)
		halfSlot := grid.SlotMs() / 2
		if math.Abs(delta) > halfSlot+lookaheadMs {
			out.DroppedCount++
			continue
		}

		quantizedMs := ev.TimestampMs + strength*delta

		out.Quantized = append(out.Quantized, model.QuantizedEvent{
			EventID:              ev.ID,
			OriginalTimestampMs:  ev.TimestampMs,
			QuantizedTimestampMs: quantizedMs,
			SnapDeltaMs:          quantizedMs - ev.TimestampMs,
			Event:                ev,
		})
	}

	return out
}

// buildSlots constructs the grid slot times for the whole arrangement
// (bar_count bars), applying swing to odd-indexed slots when eligible.
func buildSlots(grid model.GridPlan) []float64 {
	slotMs := grid.SlotMs()
	slotsPerBeat := slotsPerBeat(grid.Division)
	totalSlots := grid.BarCount*grid.TimeSignature.Numerator*slotsPerBeat + marginSlots*2

	swingEligible := (grid.Division == model.DivisionEighth || grid.Division == model.DivisionSixteenth) &&
		grid.Feel == model.FeelSwing

	slots := make([]float64, 0, totalSlots)
	for k := -marginSlots; k < totalSlots-marginSlots; k++ {
		t := grid.BeatPhaseMs + float64(k)*slotMs
		if swingEligible && mod(k, 2) == 1 {
			t += grid.SwingAmount * slotMs * 2.0 / 3.0
		}
		slots = append(slots, t)
	}
	sort.Float64s(slots)
	return slots
}

func slotsPerBeat(d model.Division) int {
	switch d {
	case model.DivisionQuarter:
		return 1
	case model.DivisionEighth:
		return 2
	case model.DivisionSixteenth:
		return 4
	case model.DivisionTriplet:
		return 3
	default:
		return 4
	}
}

// nearestSlot returns the slot time minimizing |t - slot| and the signed
// delta (slot - t).
func nearestSlot(slots []float64, t float64) (slot, delta float64) {
	i := sort.SearchFloat64s(slots, t)

	best := math.Inf(1)
	var bestSlot float64

	for _, j := range []int{i - 1, i, i + 1} {
		if j < 0 || j >= len(slots) {
			continue
		}
		d := slots[j] - t
		if math.Abs(d) < math.Abs(best) {
			best = d
			bestSlot = slots[j]
		}
	}
	return bestSlot, best
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
