// Package compose turns a style and a duration into a rendered track: it
// schedules chords and melodies on a beat grid, sequences drums, and mixes
// everything into one master buffer before quantizing to 16-bit PCM.
package compose

import (
	"errors"

	"github.com/satindergrewal/lofistudio/internal/harmony"
	"github.com/satindergrewal/lofistudio/internal/style"
)

// ErrInvalidInput is returned for requests that cannot produce a track,
// such as a non-positive duration.
var ErrInvalidInput = errors.New("invalid input")

// Request describes one render.
type Request struct {
	Duration float64 // seconds, must be positive and finite
	Style    string  // unknown names fall back to the default profile
	Seed     *uint64 // nil draws a fresh seed
}

// NoteEvent is one pitched note placed on the master timeline.
type NoteEvent struct {
	Frequency float64
	Start     float64 // seconds from track start
	Duration  float64 // rendered length, including any sustain
	Amplitude float64
}

// Step is one slot of the composition grid: a chord and an optional melody.
type Step struct {
	Start    float64
	Duration float64
	Beats    int
	Chord    []NoteEvent
	Melody   []NoteEvent
}

// DrumVoice identifies a drum sound.
type DrumVoice int

const (
	Kick DrumVoice = iota
	Snare
	HiHat
)

func (v DrumVoice) String() string {
	switch v {
	case Kick:
		return "kick"
	case Snare:
		return "snare"
	case HiHat:
		return "hihat"
	default:
		return "unknown"
	}
}

// DrumHit is one drum sound mixed into the master buffer.
type DrumHit struct {
	Voice     DrumVoice
	Start     float64
	Duration  float64
	Amplitude float64
}

// Track is the result of a render.
type Track struct {
	Profile  style.Profile
	Seed     uint64
	BPM      float64
	Root     float64
	Scale    harmony.Scale
	Duration float64
	Steps    []Step
	DrumHits []DrumHit
	PCM      []int16 // mono, 16-bit, audio.SampleRate
}

// Style is the resolved style name of the track.
func (t *Track) Style() string {
	return t.Profile.Name
}

// Beat is the length of one beat in seconds.
func (t *Track) Beat() float64 {
	return 60 / t.BPM
}

// NoteCount is the number of pitched notes across all steps.
func (t *Track) NoteCount() int {
	n := 0
	for _, s := range t.Steps {
		n += len(s.Chord) + len(s.Melody)
	}
	return n
}

// HitCount returns how many hits of the given voice were sequenced.
func (t *Track) HitCount(v DrumVoice) int {
	n := 0
	for _, h := range t.DrumHits {
		if h.Voice == v {
			n++
		}
	}
	return n
}
