package theme

import (
	"strings"

	"github.com/cartomix/beatbox/internal/model"
)

// scaleIntervals gives the semitone offset of each scale degree (1-indexed
// in the comments, 0-indexed in the slice) from the theme's root note.
var scaleIntervals = map[model.ScaleFamily][]int{
	model.ScaleMinor:    {0, 2, 3, 5, 7, 8, 10},
	model.ScaleMajor:    {0, 2, 4, 5, 7, 9, 11},
	model.ScaleDorian:   {0, 2, 3, 5, 7, 9, 10},
	model.ScalePhrygian: {0, 1, 3, 5, 7, 8, 10},
}

var romanDegree = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7,
}

// ChordTones returns the MIDI pitches of a chord symbol's tones (root
// position), built by stacking diatonic thirds within the theme's scale.
// Symbols are roman numerals naming a scale degree (e.g. "i", "VI", "iv");
// an appended "7" adds the diatonic seventh. Root quality (major/minor) is
// whatever the scale's own interval pattern produces at that degree —
// this is what spec.md §4.G means by "chord symbols ... mapped against the
// theme's scale_family" without the spec mandating a fixed quality table.
func ChordTones(th model.Theme, symbol string) []int {
	degree, seventh := parseSymbol(symbol)
	intervals := scaleIntervals[th.ScaleFamily]
	if intervals == nil {
		intervals = scaleIntervals[model.ScaleMinor]
	}

	degreeIdx := degree - 1
	root := th.RootNote + intervals[mod7(degreeIdx)] + 12*octaveShift(degreeIdx)

	third := degreeToPitch(th, intervals, degreeIdx+2)
	fifth := degreeToPitch(th, intervals, degreeIdx+4)

	tones := []int{root, third, fifth}
	if seventh {
		tones = append(tones, degreeToPitch(th, intervals, degreeIdx+6))
	}
	return tones
}

func degreeToPitch(th model.Theme, intervals []int, degreeIdx int) int {
	return th.RootNote + intervals[mod7(degreeIdx)] + 12*octaveShift(degreeIdx)
}

func mod7(i int) int {
	m := i % 7
	if m < 0 {
		m += 7
	}
	return m
}

func octaveShift(degreeIdx int) int {
	if degreeIdx >= 0 {
		return degreeIdx / 7
	}
	return -((-degreeIdx + 6) / 7)
}

func parseSymbol(symbol string) (degree int, seventh bool) {
	s := symbol
	if strings.HasSuffix(s, "7") {
		seventh = true
		s = strings.TrimSuffix(s, "7")
	}
	d, ok := romanDegree[strings.ToLower(s)]
	if !ok {
		d = 1
	}
	return d, seventh
}
