package theme

import "testing"

func TestLookupKnownThemes(t *testing.T) {
	for _, name := range []string{"midnight_drive", "neon_arcade", "dorian_haze"} {
		th, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if th.Name != name {
			t.Fatalf("Lookup(%q).Name = %q", name, th.Name)
		}
		if th.BPMRangeLow >= th.BPMRangeHigh {
			t.Fatalf("%s: bpm range low >= high", name)
		}
		if len(th.ChordProgression) == 0 {
			t.Fatalf("%s: empty chord progression", name)
		}
	}
}

func TestLookupUnknownTheme(t *testing.T) {
	_, err := Lookup("does_not_exist")
	if err == nil {
		t.Fatal("expected an error for an unknown theme")
	}
}

func TestNamesIsSortedAndStable(t *testing.T) {
	a := Names()
	b := Names()
	if len(a) != len(b) {
		t.Fatalf("Names() length changed between calls")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Names() not stable at index %d: %q vs %q", i, a[i], b[i])
		}
	}
	for i := 1; i < len(a); i++ {
		if a[i-1] > a[i] {
			t.Fatalf("Names() not sorted: %q before %q", a[i-1], a[i])
		}
	}
}
