// Package theme implements the read-only theme catalog from spec.md §3/§6:
// harmonic and timbral palettes selected by name, never mutated after
// load (spec.md §9 Design Notes: "Theme catalog").
package theme

import (
	"fmt"
	"sort"

	"github.com/cartomix/beatbox/internal/model"
)

// catalog is the static registry, built once at package init and never
// mutated afterward — the read-only registry the design notes call for.
var catalog = map[string]model.Theme{
	"midnight_drive": {
		Name:         "midnight_drive",
		BPMRangeLow:  95,
		BPMRangeHigh: 120,
		RootNote:     45, // A2
		ScaleFamily:  model.ScaleMinor,
		ChordProgression: []model.ChordSpan{
			{Symbol: "i", BarsPerChord: 2},
			{Symbol: "VI", BarsPerChord: 2},
			{Symbol: "III", BarsPerChord: 2},
			{Symbol: "VII", BarsPerChord: 2},
		},
		BassPattern:    []int{0, 2},
		ArpPattern:     []int{0, 1, 2, 1},
		ArpOctaveRange: 2,
		DrumPalette:    "analog",
	},
	"neon_arcade": {
		Name:         "neon_arcade",
		BPMRangeLow:  118,
		BPMRangeHigh: 135,
		RootNote:     48, // C3
		ScaleFamily:  model.ScaleMajor,
		ChordProgression: []model.ChordSpan{
			{Symbol: "I", BarsPerChord: 2},
			{Symbol: "V", BarsPerChord: 2},
			{Symbol: "vi", BarsPerChord: 2},
			{Symbol: "IV", BarsPerChord: 2},
		},
		BassPattern:    []int{0, 1, 2, 3},
		ArpPattern:     []int{0, 1, 2, 3, 2, 1},
		ArpOctaveRange: 2,
		DrumPalette:    "digital",
	},
	"dorian_haze": {
		Name:         "dorian_haze",
		BPMRangeLow:  100,
		BPMRangeHigh: 128,
		RootNote:     43, // G2
		ScaleFamily:  model.ScaleDorian,
		ChordProgression: []model.ChordSpan{
			{Symbol: "i", BarsPerChord: 4},
			{Symbol: "IV", BarsPerChord: 4},
		},
		BassPattern:    []int{0, 2},
		ArpPattern:     []int{0, 2, 1, 2},
		ArpOctaveRange: 3,
		DrumPalette:    "analog",
	},
}

// Lookup returns a theme by name, or ThemeUnknown.
func Lookup(name string) (model.Theme, error) {
	t, ok := catalog[name]
	if !ok {
		return model.Theme{}, fmt.Errorf("theme %q: %w", name, ErrThemeUnknown)
	}
	return t, nil
}

// ErrThemeUnknown is returned by Lookup for unregistered theme names.
var ErrThemeUnknown = fmt.Errorf("theme unknown")

// Names returns every registered theme name, sorted for deterministic
// iteration (spec.md §9: "forbid hash-order iteration... where outputs
// depend on order").
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
