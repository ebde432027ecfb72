// Package style maps style names to the composition parameters a render uses.
package style

import (
	"math/rand/v2"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/satindergrewal/lofistudio/internal/audio"
	"github.com/satindergrewal/lofistudio/internal/harmony"
)

// DrumKit selects the drum sequencer voicing for a style.
type DrumKit int

const (
	NoDrums DrumKit = iota
	LoFiKit
	SynthKit
	JazzKit
	ChipKit
)

func (k DrumKit) String() string {
	switch k {
	case LoFiKit:
		return "lofi"
	case SynthKit:
		return "synth"
	case JazzKit:
		return "jazz"
	case ChipKit:
		return "chip"
	default:
		return "none"
	}
}

// Envelope is a fixed attack/release pair in seconds.
type Envelope struct {
	Attack  float64
	Release float64
}

// DefaultAttack is the note attack used when a style has no fixed envelope.
const DefaultAttack = 0.05

// Profile bundles everything the composer and drum sequencer need to know
// about a style. Treat it as immutable.
type Profile struct {
	Name         string
	Scale        harmony.ScaleType
	Tempos       []float64 // bpm candidates, one is drawn per render
	Decay        float64   // seconds, randomized ±20% per note
	Waveform     audio.Waveform
	Delay        bool
	Drums        DrumKit
	MelodyChance float64
	BarSteps     bool     // every step is a full 4-beat bar
	Seventh      bool     // chords carry a seventh
	Swing        float64  // seconds added to off-beat melody notes
	Envelope     Envelope // zero value: DefaultAttack and decay-driven release
	Sustain      float64  // seconds notes ring past their step
	Crackle      float64  // vinyl noise level, 0 for none
}

// Style names in the order a picker should present them.
const (
	LoFiBeats  = "Lo-Fi Beats"
	Piano      = "Piano"
	Ambient    = "Ambient"
	Synth      = "Synth"
	JazzHop    = "Jazz Hop"
	Meditation = "Meditation"
	EightBit   = "8-Bit"
	Default    = "Default"
)

var order = []string{LoFiBeats, Piano, Ambient, Synth, JazzHop, Meditation, EightBit}

var profiles = map[string]Profile{
	LoFiBeats: {
		Scale: harmony.Minor, Tempos: []float64{70, 75, 80, 85}, Decay: 1.0,
		Waveform: audio.WaveSine, Drums: LoFiKit, MelodyChance: 0.7, Crackle: 0.02,
	},
	Piano: {
		Scale: harmony.Major, Tempos: []float64{60, 65, 70}, Decay: 2.0,
		Waveform: audio.WaveSine, MelodyChance: 0.7,
	},
	Ambient: {
		Scale: harmony.Dorian, Tempos: []float64{60}, Decay: 4.0,
		Waveform: audio.WaveSine, Delay: true, MelodyChance: 0.7, Sustain: 3,
	},
	Synth: {
		Scale: harmony.Pentatonic, Tempos: []float64{90}, Decay: 0.5,
		Waveform: audio.WaveSquare, Delay: true, Drums: SynthKit, MelodyChance: 0.7,
	},
	JazzHop: {
		Scale: harmony.Dorian, Tempos: []float64{85}, Decay: 0.8,
		Waveform: audio.WaveSine, Drums: JazzKit, MelodyChance: 0.7,
		Seventh: true, Swing: 0.06, Crackle: 0.01,
	},
	Meditation: {
		Scale: harmony.Pentatonic, Tempos: []float64{40}, Decay: 5.0,
		Waveform: audio.WaveSine, Delay: true, MelodyChance: 0.3,
		BarSteps: true, Envelope: Envelope{Attack: 1.0, Release: 3.0}, Sustain: 3,
	},
	EightBit: {
		Scale: harmony.Major, Tempos: []float64{120}, Decay: 0.3,
		Waveform: audio.WaveSquare, Drums: ChipKit, MelodyChance: 0.7,
		Envelope: Envelope{Attack: 0.01, Release: 0.2},
	},
}

var defaultProfile = Profile{
	Name: Default, Scale: harmony.Major, Tempos: []float64{80}, Decay: 0.8,
	Waveform: audio.WaveSine, MelodyChance: 0.7,
}

// index maps folded keys ("lofibeats", "8bit") to canonical names.
var index = func() map[string]string {
	m := make(map[string]string, len(order))
	for _, name := range order {
		m[key(name)] = name
	}
	return m
}()

// key folds case and drops everything but letters and digits. Casers are
// stateful, so each call builds its own.
func key(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cases.Fold().String(name))
}

// Names returns the recognized style names.
func Names() []string {
	return slices.Clone(order)
}

// Canonical returns the canonical spelling of a recognized style name.
func Canonical(name string) (string, bool) {
	c, ok := index[key(name)]
	return c, ok
}

// IsValid reports whether name resolves to a known style.
func IsValid(name string) bool {
	_, ok := Canonical(name)
	return ok
}

// Lookup returns the profile for name and whether it was recognized.
func Lookup(name string) (Profile, bool) {
	c, ok := Canonical(name)
	if !ok {
		return clone(defaultProfile), false
	}
	p := profiles[c]
	p.Name = c
	return clone(p), true
}

// Resolve returns the profile for name, falling back to the default profile
// for anything unrecognized.
func Resolve(name string) Profile {
	p, _ := Lookup(name)
	return p
}

// DisplayName is the canonical name for known styles and a title-cased
// version of the input otherwise.
func DisplayName(name string) string {
	if c, ok := Canonical(name); ok {
		return c
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Default
	}
	return cases.Title(language.English).String(name)
}

func clone(p Profile) Profile {
	p.Tempos = slices.Clone(p.Tempos)
	return p
}

// PickTempo draws a bpm from the profile's candidates.
func (p Profile) PickTempo(rng *rand.Rand) float64 {
	if len(p.Tempos) == 0 {
		return defaultProfile.Tempos[0]
	}
	if len(p.Tempos) == 1 {
		return p.Tempos[0]
	}
	return p.Tempos[rng.IntN(len(p.Tempos))]
}

// StepBeats returns how many beats the next composition step lasts.
func (p Profile) StepBeats(rng *rand.Rand) int {
	if p.BarSteps {
		return 4
	}
	return 1 + rng.IntN(2)
}

// NoteEnvelope returns the attack and release for a note with the given
// randomized decay and rendered duration.
func (p Profile) NoteEnvelope(decay, duration float64) (attack, release float64) {
	if p.Envelope != (Envelope{}) {
		return p.Envelope.Attack, p.Envelope.Release
	}
	return DefaultAttack, min(decay, duration)
}

// HasDrums reports whether the drum sequencer runs for this profile.
func (p Profile) HasDrums() bool {
	return p.Drums != NoDrums
}
