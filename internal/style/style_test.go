package style

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/satindergrewal/lofistudio/internal/audio"
	"github.com/satindergrewal/lofistudio/internal/harmony"
)

// --- Profile table ---

func TestProfileTable(t *testing.T) {
	tests := []struct {
		name   string
		scale  harmony.ScaleType
		tempos []float64
		decay  float64
		wave   audio.Waveform
		delay  bool
		drums  DrumKit
	}{
		{LoFiBeats, harmony.Minor, []float64{70, 75, 80, 85}, 1.0, audio.WaveSine, false, LoFiKit},
		{Piano, harmony.Major, []float64{60, 65, 70}, 2.0, audio.WaveSine, false, NoDrums},
		{Ambient, harmony.Dorian, []float64{60}, 4.0, audio.WaveSine, true, NoDrums},
		{Synth, harmony.Pentatonic, []float64{90}, 0.5, audio.WaveSquare, true, SynthKit},
		{JazzHop, harmony.Dorian, []float64{85}, 0.8, audio.WaveSine, false, JazzKit},
		{Meditation, harmony.Pentatonic, []float64{40}, 5.0, audio.WaveSine, true, NoDrums},
		{EightBit, harmony.Major, []float64{120}, 0.3, audio.WaveSquare, false, ChipKit},
	}
	for _, tt := range tests {
		p, ok := Lookup(tt.name)
		if !ok {
			t.Errorf("Lookup(%q) not recognized", tt.name)
			continue
		}
		if p.Name != tt.name || p.Scale != tt.scale || p.Decay != tt.decay ||
			p.Waveform != tt.wave || p.Delay != tt.delay || p.Drums != tt.drums {
			t.Errorf("%s profile = %+v", tt.name, p)
		}
		if len(p.Tempos) != len(tt.tempos) {
			t.Errorf("%s tempos = %v, want %v", tt.name, p.Tempos, tt.tempos)
			continue
		}
		for i := range tt.tempos {
			if p.Tempos[i] != tt.tempos[i] {
				t.Errorf("%s tempos = %v, want %v", tt.name, p.Tempos, tt.tempos)
			}
		}
	}
}

func TestEveryStyleHasProfileAndPrompts(t *testing.T) {
	if got := len(Names()); got != 7 {
		t.Fatalf("Names() = %d styles, want 7", got)
	}
	for _, name := range Names() {
		if _, ok := profiles[name]; !ok {
			t.Errorf("style %q has no profile", name)
		}
		if len(imagePrompts[name]) != 4 {
			t.Errorf("style %q has %d image prompts, want 4", name, len(imagePrompts[name]))
		}
		if len(styleAdjectives[name]) == 0 {
			t.Errorf("style %q has no adjectives", name)
		}
	}
}

// --- Resolution ---

func TestLookupIsForgiving(t *testing.T) {
	tests := map[string]string{
		"lo-fi beats": LoFiBeats,
		"LoFi Beats":  LoFiBeats,
		"  piano ":    Piano,
		"8bit":        EightBit,
		"8 BIT":       EightBit,
		"jazz-hop":    JazzHop,
		"MEDITATION":  Meditation,
	}
	for in, want := range tests {
		p, ok := Lookup(in)
		if !ok || p.Name != want {
			t.Errorf("Lookup(%q) = %q,%v want %q", in, p.Name, ok, want)
		}
	}
}

func TestUnknownStyleFallsBack(t *testing.T) {
	for _, name := range []string{"", "polka", "dream pop"} {
		p, ok := Lookup(name)
		if ok {
			t.Errorf("Lookup(%q) reported recognized", name)
		}
		if p.Name != Default || p.HasDrums() || p.Delay {
			t.Errorf("fallback profile for %q = %+v", name, p)
		}
		if IsValid(name) {
			t.Errorf("IsValid(%q) = true", name)
		}
	}
	if Resolve("polka").Tempos[0] != 80 {
		t.Error("default tempo should be 80")
	}
}

func TestResolveDoesNotAliasTable(t *testing.T) {
	p := Resolve(LoFiBeats)
	p.Tempos[0] = 999
	if Resolve(LoFiBeats).Tempos[0] != 70 {
		t.Error("mutating a resolved profile changed the static table")
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"jazz hop":  JazzHop,
		"dream pop": "Dream Pop",
		"   ":       Default,
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

// --- Policies ---

func TestPickTempoFromCandidates(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	p := Resolve(LoFiBeats)
	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		bpm := p.PickTempo(rng)
		if bpm < 70 || bpm > 85 || int(bpm)%5 != 0 {
			t.Fatalf("PickTempo = %v, not a Lo-Fi candidate", bpm)
		}
		seen[bpm] = true
	}
	if len(seen) != 4 {
		t.Errorf("saw %d distinct tempos, want 4", len(seen))
	}
	if Resolve(EightBit).PickTempo(rng) != 120 {
		t.Error("8-Bit tempo should be fixed at 120")
	}
}

func TestStepBeats(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	med := Resolve(Meditation)
	lofi := Resolve(LoFiBeats)
	for i := 0; i < 50; i++ {
		if med.StepBeats(rng) != 4 {
			t.Fatal("Meditation steps must be a full bar")
		}
		if b := lofi.StepBeats(rng); b != 1 && b != 2 {
			t.Fatalf("Lo-Fi step = %d beats", b)
		}
	}
}

func TestNoteEnvelope(t *testing.T) {
	a, r := Resolve(Meditation).NoteEnvelope(5, 9)
	if a != 1.0 || r != 3.0 {
		t.Errorf("Meditation envelope = %v/%v", a, r)
	}
	a, r = Resolve(EightBit).NoteEnvelope(0.3, 0.5)
	if a != 0.01 || r != 0.2 {
		t.Errorf("8-Bit envelope = %v/%v", a, r)
	}
	a, r = Resolve(Piano).NoteEnvelope(2.1, 1.0)
	if a != DefaultAttack || r != 1.0 {
		t.Errorf("Piano envelope = %v/%v, want release clamped to duration", a, r)
	}
	_, r = Resolve(Piano).NoteEnvelope(1.7, 4.0)
	if r != 1.7 {
		t.Errorf("Piano release = %v, want decay 1.7", r)
	}
}

// --- Prompts and names ---

func TestImagePrompt(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, name := range Names() {
		p := ImagePrompt(name, rng)
		found := false
		for _, base := range imagePrompts[name] {
			if strings.HasPrefix(p, base+", ") {
				found = true
			}
		}
		if !found {
			t.Errorf("ImagePrompt(%q) = %q, not from its prompt list", name, p)
		}
		if strings.Count(p, ", ") != 2 {
			t.Errorf("ImagePrompt(%q) = %q, want two modifiers", name, p)
		}
	}
	if p := ImagePrompt("polka", rng); !strings.HasPrefix(p, fallbackPrompt) {
		t.Errorf("fallback prompt = %q", p)
	}
}

func TestTrackNameDeterministic(t *testing.T) {
	a := TrackName(JazzHop, "a1b2c3d4")
	b := TrackName("jazz hop", "a1b2c3d4")
	if a == "" || a != b {
		t.Errorf("TrackName not deterministic: %q vs %q", a, b)
	}
	if !strings.HasSuffix(a, " jazz hop") {
		t.Errorf("TrackName = %q, want style suffix", a)
	}
	if TrackName("", "x") != "" || TrackName(Piano, "") != "" {
		t.Error("empty inputs should give empty name")
	}
	if got := TrackName("polka", "abc"); got != "polka session" {
		t.Errorf("unknown style name = %q", got)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		LoFiBeats:   "lo-fi_beats",
		"8bit":      "8-bit",
		"Jazz Hop":  "jazz_hop",
		"dream pop": "dream_pop",
		"???":       "track",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
