package arrange

import "github.com/cartomix/beatbox/internal/model"

// drumHit places one drum lane note within a bar, at a beat offset measured
// from the bar's start.
type drumHit struct {
	BeatOffset float64
	Lane       string
	Velocity   int
}

// bassHit places one bass lane note within a bar. PitchFixed, when true,
// always plays the chord root (ignoring the theme's bass_pattern cycle) —
// used by ArpDrive's sparse root-only hit.
type bassHit struct {
	BeatOffset float64
	Velocity   int
	PitchFixed bool
}

// templateData is the data-as-template definition for one of the three
// mandatory arrangement templates (spec.md §4.G). Each field describes one
// bar's worth of drum/bass pattern at the underlying grid's beat_ms; for
// Halftime, the caller spaces repeated bars twice as far apart rather than
// stretching the offsets themselves (see barMs in arrange.go's Arrange).
type templateData struct {
	Name           model.TemplateName
	Drums          []drumHit
	Bass           []bassHit
	HatVelocityLow int // not read by the generator; alternating hat velocities come from eighthNoteHats
	Arp            bool
	ArpStepsPerBeat int
	ArpVelocity    int
}

var templates = map[model.TemplateName]templateData{
	model.TemplateSynthwaveStraight: {
		Name: model.TemplateSynthwaveStraight,
		Drums: append(
			[]drumHit{
				{BeatOffset: 0, Lane: "kick", Velocity: 110},
				{BeatOffset: 2, Lane: "kick", Velocity: 110},
				{BeatOffset: 1, Lane: "snare", Velocity: 100},
				{BeatOffset: 3, Lane: "snare", Velocity: 100},
			},
			eighthNoteHats(70, 70)...,
		),
		Bass: []bassHit{
			{BeatOffset: 0, Velocity: 90},
			{BeatOffset: 1, Velocity: 90},
			{BeatOffset: 2, Velocity: 90},
			{BeatOffset: 3, Velocity: 90},
		},
	},
	model.TemplateSynthwaveHalftime: {
		Name: model.TemplateSynthwaveHalftime,
		Drums: append(
			[]drumHit{
				{BeatOffset: 0, Lane: "kick", Velocity: 112},
				{BeatOffset: 2, Lane: "snare", Velocity: 102},
			},
			eighthNoteHats(75, 60)...,
		),
		Bass: []bassHit{
			{BeatOffset: 0, Velocity: 85},
			{BeatOffset: 2, Velocity: 85},
		},
	},
	model.TemplateArpDrive: {
		Name: model.TemplateArpDrive,
		Drums: append(
			[]drumHit{
				{BeatOffset: 0, Lane: "kick", Velocity: 108},
				{BeatOffset: 1, Lane: "kick", Velocity: 108},
				{BeatOffset: 2, Lane: "kick", Velocity: 108},
				{BeatOffset: 3, Lane: "kick", Velocity: 108},
				{BeatOffset: 1, Lane: "snare", Velocity: 98},
				{BeatOffset: 3, Lane: "snare", Velocity: 98},
			},
			sixteenthNoteHats(65)...,
		),
		Bass: []bassHit{
			{BeatOffset: 0, Velocity: 95, PitchFixed: true},
		},
		Arp:             true,
		ArpStepsPerBeat: 4,
		ArpVelocity:     72,
	},
}

// eighthNoteHats lays eight hat hits per bar (1/8 grid), alternating accent
// and off-beat velocity when they differ (SynthwaveHalftime's "velocity
// variation"); onAccent == offAccent degenerates to a flat velocity.
func eighthNoteHats(onAccent, offAccent int) []drumHit {
	hits := make([]drumHit, 0, 8)
	for i := 0; i < 8; i++ {
		vel := offAccent
		if i%2 == 0 {
			vel = onAccent
		}
		hits = append(hits, drumHit{BeatOffset: float64(i) * 0.5, Lane: "hat", Velocity: vel})
	}
	return hits
}

func sixteenthNoteHats(vel int) []drumHit {
	hits := make([]drumHit, 0, 16)
	for i := 0; i < 16; i++ {
		hits = append(hits, drumHit{BeatOffset: float64(i) * 0.25, Lane: "hat", Velocity: vel})
	}
	return hits
}

// lookupTemplate resolves a template name to its data, the arranger's
// equivalent of theme.Lookup.
func lookupTemplate(name model.TemplateName) (templateData, bool) {
	t, ok := templates[name]
	return t, ok
}
