// Package arrange implements spec.md §4.G: turning a quantized event
// stream, a chosen theme and a chosen drum/bass/arp template into a
// multi-lane Arrangement, with an optional "B-emphasis" bias toward the
// bilabial-plosive (kick) class.
package arrange

import (
	"math"
	"sort"

	"github.com/cartomix/beatbox/internal/apperrors"
	"github.com/cartomix/beatbox/internal/model"
	"github.com/cartomix/beatbox/internal/theme"
)

const stageName = "arrange"

// GM drum map pitches for the three percussion lanes.
const (
	kickNote  = 36
	snareNote = 38
	hatNote   = 42
)

const (
	drumHitDurationMs = 60.0
	bassHitDurationMs = 140.0

	// anchorWindowMinMs/anchorWindowMaxMs bound the B-emphasis anchor-pull
	// window: at b_emphasis=0 only very-near-downbeat kicks snap exactly to
	// the downbeat; at b_emphasis=1 the window widens so more kicks do.
	anchorWindowMinMs = 30.0
	anchorWindowMaxMs = 120.0

	// velocityBoostMaxDelta is the largest velocity bump a B-emphasis of 1.0
	// adds to a kick note derived from a detected BilabialPlosive event.
	velocityBoostMaxDelta = 30.0
)

// Arrange builds the final Arrangement from quantized events.
func Arrange(grid model.GridPlan, events []model.QuantizedEvent, themeName string, templateName model.TemplateName, bEmphasis float64) (model.Arrangement, error) {
	th, err := theme.Lookup(themeName)
	if err != nil {
		return model.Arrangement{}, apperrors.NewNoHash(stageName, apperrors.ThemeUnknown, themeName, err)
	}
	tmpl, ok := lookupTemplate(templateName)
	if !ok {
		return model.Arrangement{}, apperrors.NewNoHash(stageName, apperrors.TemplateUnknown, string(templateName), nil)
	}

	beatMs := grid.BeatMs()
	haltimeMul := 1.0
	if grid.Feel == model.FeelHalftime {
		haltimeMul = 2.0
	}
	barMs := beatMs * float64(grid.TimeSignature.Numerator) * haltimeMul
	barCount := grid.BarCount

	chordSymbols := make([]string, barCount)
	for i := 0; i < barCount; i++ {
		chordSymbols[i] = chordForBar(th, i)
	}

	kickNotes := generateDrumLane(tmpl, "kick", barCount, barMs, beatMs)
	snareNotes := generateDrumLane(tmpl, "snare", barCount, barMs, beatMs)
	hatNotes := generateDrumLane(tmpl, "hat", barCount, barMs, beatMs)
	bassNotes := generateBassLane(tmpl, th, chordSymbols, barCount, barMs, beatMs)
	padNotes := generatePadLane(th, chordSymbols, barMs)
	var arpNotes []model.ArrangedNote
	if tmpl.Arp {
		arpNotes = generateArpLane(tmpl, th, chordSymbols, barCount, barMs, beatMs)
	}

	byClass := groupByClass(events)

	kickNotes = mapEvents(kickNotes, byClass[model.BilabialPlosive], kickNote, grid.SlotMs())
	snareNotes = mapEvents(snareNotes, byClass[model.Click], snareNote, grid.SlotMs())
	hatNotes = mapEvents(hatNotes, byClass[model.HihatNoise], hatNote, grid.SlotMs())
	padNotes = mapEventsContainment(padNotes, byClass[model.HumVoiced])

	anchorWindowMs := anchorWindowMinMs + (anchorWindowMaxMs-anchorWindowMinMs)*clip01(bEmphasis)
	downbeatSpacing := beatMs * float64(grid.TimeSignature.Numerator)
	kickNotes = applyAnchorPull(kickNotes, byClass[model.BilabialPlosive], grid.BeatPhaseMs, downbeatSpacing, anchorWindowMs)
	kickNotes = applyVelocityBoost(kickNotes, bEmphasis)

	// Unmatched events were appended past the template's own time-ordered
	// notes, and anchor-pull can shift a kick note earlier than its
	// neighbor; re-sort every lane so Lane.Events stays strictly
	// time-ordered (spec.md §3: lanes are monotone in timestamp_ms), the
	// same invariant internal/midi already relies on before emitting ticks.
	sortByTimestamp(kickNotes)
	sortByTimestamp(snareNotes)
	sortByTimestamp(hatNotes)
	sortByTimestamp(bassNotes)
	sortByTimestamp(padNotes)
	sortByTimestamp(arpNotes)

	arrangement := model.Arrangement{
		DrumLanes: []model.Lane{
			{Name: "kick", MidiNote: kickNote, Events: kickNotes},
			{Name: "snare", MidiNote: snareNote, Events: snareNotes},
			{Name: "hat", MidiNote: hatNote, Events: hatNotes},
		},
		BassLane:        &model.Lane{Name: "bass", Events: bassNotes, DuckAmount: bEmphasis},
		PadLane:         &model.Lane{Name: "pad", Events: padNotes, DuckAmount: bEmphasis},
		Template:        templateName,
		TotalDurationMs: float64(barCount) * barMs,
		BarCount:        barCount,
		BPM:             grid.BPM,
	}
	if tmpl.Arp {
		arrangement.ArpLane = &model.Lane{Name: "arp", Events: arpNotes, DuckAmount: bEmphasis}
	}
	return arrangement, nil
}

// chordForBar returns the chord symbol active at bar index barIdx, cycling
// the theme's chord progression once it's exhausted.
func chordForBar(th model.Theme, barIdx int) string {
	total := 0
	for _, span := range th.ChordProgression {
		total += span.BarsPerChord
	}
	if total == 0 || len(th.ChordProgression) == 0 {
		return "i"
	}
	pos := barIdx % total
	acc := 0
	for _, span := range th.ChordProgression {
		acc += span.BarsPerChord
		if pos < acc {
			return span.Symbol
		}
	}
	return th.ChordProgression[len(th.ChordProgression)-1].Symbol
}

func generateDrumLane(tmpl templateData, lane string, barCount int, barMs, beatMs float64) []model.ArrangedNote {
	var notes []model.ArrangedNote
	for bar := 0; bar < barCount; bar++ {
		barStart := float64(bar) * barMs
		for _, hit := range tmpl.Drums {
			if hit.Lane != lane {
				continue
			}
			notes = append(notes, model.ArrangedNote{
				TimestampMs: barStart + hit.BeatOffset*beatMs,
				DurationMs:  drumHitDurationMs,
				Pitch:       laneNote(lane),
				Velocity:    hit.Velocity,
			})
		}
	}
	return notes
}

func laneNote(lane string) int {
	switch lane {
	case "kick":
		return kickNote
	case "snare":
		return snareNote
	case "hat":
		return hatNote
	default:
		return 0
	}
}

func generateBassLane(tmpl templateData, th model.Theme, chordSymbols []string, barCount int, barMs, beatMs float64) []model.ArrangedNote {
	offsets := th.BassPattern
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	step := 0
	var notes []model.ArrangedNote
	for bar := 0; bar < barCount; bar++ {
		barStart := float64(bar) * barMs
		tones := theme.ChordTones(th, chordSymbols[bar])
		root := tones[0]
		for _, hit := range tmpl.Bass {
			pitch := root
			if !hit.PitchFixed {
				pitch = root + offsets[step%len(offsets)]
				step++
			}
			notes = append(notes, model.ArrangedNote{
				TimestampMs: barStart + hit.BeatOffset*beatMs,
				DurationMs:  bassHitDurationMs,
				Pitch:       pitch,
				Velocity:    hit.Velocity,
			})
		}
	}
	return notes
}

// generatePadLane sustains the chord root for the run of consecutive bars
// sharing a chord symbol, one note per run.
func generatePadLane(th model.Theme, chordSymbols []string, barMs float64) []model.ArrangedNote {
	var notes []model.ArrangedNote
	i := 0
	for i < len(chordSymbols) {
		j := i
		for j < len(chordSymbols) && chordSymbols[j] == chordSymbols[i] {
			j++
		}
		tones := theme.ChordTones(th, chordSymbols[i])
		notes = append(notes, model.ArrangedNote{
			TimestampMs: float64(i) * barMs,
			DurationMs:  float64(j-i) * barMs,
			Pitch:       tones[0],
			Velocity:    80,
		})
		i = j
	}
	return notes
}

func generateArpLane(tmpl templateData, th model.Theme, chordSymbols []string, barCount int, barMs, beatMs float64) []model.ArrangedNote {
	pattern := th.ArpPattern
	if len(pattern) == 0 {
		pattern = []int{0}
	}
	octaveRange := th.ArpOctaveRange
	if octaveRange < 1 {
		octaveRange = 1
	}
	stepMs := beatMs / float64(tmpl.ArpStepsPerBeat)
	totalMs := float64(barCount) * barMs

	var notes []model.ArrangedNote
	step := 0
	for t := 0.0; t < totalMs; t += stepMs {
		barIdx := int(t / barMs)
		if barIdx >= barCount {
			break
		}
		tones := theme.ChordTones(th, chordSymbols[barIdx])
		patIdx := step % len(pattern)
		cycleNum := step / len(pattern)
		octave := cycleNum % octaveRange
		toneIdx := ((pattern[patIdx] % len(tones)) + len(tones)) % len(tones)
		pitch := tones[toneIdx] + 12*octave

		notes = append(notes, model.ArrangedNote{
			TimestampMs: t,
			DurationMs:  stepMs * 0.9,
			Pitch:       pitch,
			Velocity:    tmpl.ArpVelocity,
		})
		step++
	}
	return notes
}

// sortByTimestamp stable-sorts a lane's notes by TimestampMs in place,
// preserving relative order among notes that land on the same instant
// (e.g. a template note and an inserted note at an identical timestamp).
func sortByTimestamp(notes []model.ArrangedNote) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].TimestampMs < notes[j].TimestampMs
	})
}

func groupByClass(events []model.QuantizedEvent) map[model.Class][]model.QuantizedEvent {
	out := make(map[model.Class][]model.QuantizedEvent)
	for _, qe := range events {
		out[qe.Event.Class] = append(out[qe.Event.Class], qe)
	}
	return out
}

// mapEvents replaces a template note's velocity and source when a detected
// event falls within maxDist of it; otherwise it inserts a new note.
func mapEvents(notes []model.ArrangedNote, events []model.QuantizedEvent, pitch int, slotMs float64) []model.ArrangedNote {
	maxDist := slotMs / 2
	for _, qe := range events {
		idx, ok := nearestNote(notes, qe.QuantizedTimestampMs, maxDist)
		if ok {
			base := float64(notes[idx].Velocity)
			notes[idx].Velocity = scaledVelocity(int(base), qe.Event.Confidence)
			notes[idx].SourceEventID = qe.Event.ID
			notes[idx].TimestampMs = qe.QuantizedTimestampMs
			continue
		}
		notes = append(notes, model.ArrangedNote{
			TimestampMs:   qe.QuantizedTimestampMs,
			DurationMs:    drumHitDurationMs,
			Pitch:         pitch,
			Velocity:      scaledVelocity(100, qe.Event.Confidence),
			SourceEventID: qe.Event.ID,
		})
	}
	return notes
}

// mapEventsContainment is mapEvents' pad-lane counterpart: a sustain note
// "matches" any event timestamp it contains, since pad notes have no
// per-slot template position to compare against.
func mapEventsContainment(notes []model.ArrangedNote, events []model.QuantizedEvent) []model.ArrangedNote {
	for _, qe := range events {
		for i := range notes {
			if qe.QuantizedTimestampMs >= notes[i].TimestampMs && qe.QuantizedTimestampMs < notes[i].TimestampMs+notes[i].DurationMs {
				notes[i].Velocity = scaledVelocity(notes[i].Velocity, qe.Event.Confidence)
				notes[i].SourceEventID = qe.Event.ID
				break
			}
		}
	}
	return notes
}

func nearestNote(notes []model.ArrangedNote, t, maxDist float64) (int, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, n := range notes {
		d := math.Abs(n.TimestampMs - t)
		if d <= maxDist && d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, best >= 0
}

func scaledVelocity(base int, confidence float64) int {
	v := float64(base) * (0.7 + 0.3*clip01(confidence))
	return clipVelocity(int(math.Round(v)))
}

func clipVelocity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// applyAnchorPull snaps kick notes derived from a BilabialPlosive event to
// the nearest downbeat when they already land within anchorWindowMs of one.
func applyAnchorPull(notes []model.ArrangedNote, sourceEvents []model.QuantizedEvent, phaseMs, downbeatSpacing, anchorWindowMs float64) []model.ArrangedNote {
	fromEvent := make(map[string]bool, len(sourceEvents))
	for _, qe := range sourceEvents {
		fromEvent[qe.Event.ID] = true
	}
	for i := range notes {
		if notes[i].SourceEventID == "" || !fromEvent[notes[i].SourceEventID] {
			continue
		}
		t := notes[i].TimestampMs
		nearest := phaseMs + math.Round((t-phaseMs)/downbeatSpacing)*downbeatSpacing
		if math.Abs(t-nearest) <= anchorWindowMs {
			notes[i].TimestampMs = nearest
		}
	}
	return notes
}

func applyVelocityBoost(notes []model.ArrangedNote, bEmphasis float64) []model.ArrangedNote {
	delta := int(math.Round(velocityBoostMaxDelta * clip01(bEmphasis)))
	for i := range notes {
		if notes[i].SourceEventID != "" {
			notes[i].Velocity = clipVelocity(notes[i].Velocity + delta)
		}
	}
	return notes
}
