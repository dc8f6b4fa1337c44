package theme

import (
	"testing"

	"github.com/cartomix/beatbox/internal/model"
)

func TestChordTonesRootPositionTriad(t *testing.T) {
	th := model.Theme{RootNote: 60, ScaleFamily: model.ScaleMajor}

	tones := ChordTones(th, "I")
	if len(tones) != 3 {
		t.Fatalf("expected a triad, got %d tones", len(tones))
	}
	if tones[0] != 60 {
		t.Fatalf("root of degree I should be the theme root, got %d", tones[0])
	}
	// I in major is a major triad: root, major third (+4), fifth (+7).
	if tones[1] != 64 || tones[2] != 67 {
		t.Fatalf("unexpected major I triad: %v", tones)
	}
}

func TestChordTonesMinorSeventh(t *testing.T) {
	th := model.Theme{RootNote: 45, ScaleFamily: model.ScaleMinor}
	tones := ChordTones(th, "i7")
	if len(tones) != 4 {
		t.Fatalf("expected a seventh chord (4 tones), got %d", len(tones))
	}
}

func TestChordTonesUnknownSymbolFallsBackToTonic(t *testing.T) {
	th := model.Theme{RootNote: 48, ScaleFamily: model.ScaleDorian}
	tones := ChordTones(th, "xyz")
	if tones[0] != 48 {
		t.Fatalf("unknown symbol should fall back to the tonic, got root %d", tones[0])
	}
}
