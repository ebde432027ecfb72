package harmony

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestBuildScaleMajor(t *testing.T) {
	for _, root := range []float64{27.5, 174.61, 261.63, 1000} {
		s := BuildScale(root, Major)
		if len(s) != 8 {
			t.Fatalf("Major scale len = %d, want 8", len(s))
		}
		if s[0] != root {
			t.Errorf("scale[0] = %v, want %v", s[0], root)
		}
		if math.Abs(s[7]-2*root) > 1e-9 {
			t.Errorf("scale[7] = %v, want %v", s[7], 2*root)
		}
	}
}

func TestScalesAreOneOctaveAndIncreasing(t *testing.T) {
	wantLen := map[ScaleType]int{Major: 8, Minor: 8, Pentatonic: 6, Dorian: 8}
	for st, n := range wantLen {
		s := BuildScale(220, st)
		if len(s) != n {
			t.Errorf("%s len = %d, want %d", st, len(s), n)
		}
		if s.Root() != 220 || math.Abs(s[len(s)-1]-440) > 1e-9 {
			t.Errorf("%s spans %v..%v, want 220..440", st, s[0], s[len(s)-1])
		}
		for i := 1; i < len(s); i++ {
			if s[i] <= s[i-1] {
				t.Errorf("%s not strictly increasing at %d: %v", st, i, s)
			}
		}
	}
}

func TestBuildScaleUnknownFallsBack(t *testing.T) {
	s := BuildScale(100, ScaleType(42))
	if len(s) != 8 || s[2] != 125 {
		t.Errorf("unknown scale type = %v, want Major table", s)
	}
	if ScaleType(42).String() != "Unknown" {
		t.Errorf("String() = %q", ScaleType(42))
	}
}

func TestParseScaleType(t *testing.T) {
	tests := []struct {
		in   string
		want ScaleType
		ok   bool
	}{
		{"major", Major, true},
		{" Dorian ", Dorian, true},
		{"PENTATONIC", Pentatonic, true},
		{"Minor", Minor, true},
		{"lydian", Major, false},
	}
	for _, tt := range tests {
		got, ok := ParseScaleType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseScaleType(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPickRoot(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		seen[PickRoot(rng)] = true
	}
	if len(seen) != len(RootCandidates) {
		t.Errorf("picked %d distinct roots, want %d", len(seen), len(RootCandidates))
	}
	for r := range seen {
		found := false
		for _, c := range RootCandidates {
			if r == c {
				found = true
			}
		}
		if !found {
			t.Errorf("root %v not a candidate", r)
		}
	}
}

func TestNoteWraps(t *testing.T) {
	s := BuildScale(100, Pentatonic)
	if s.Note(6) != s[0] || s.Note(7) != s[1] || s.Note(-1) != s[5] {
		t.Errorf("Note wrap wrong: %v %v %v", s.Note(6), s.Note(7), s.Note(-1))
	}
}
