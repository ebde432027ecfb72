package compose

import (
	"math/rand/v2"

	"github.com/satindergrewal/lofistudio/internal/audio"
	"github.com/satindergrewal/lofistudio/internal/harmony"
	"github.com/satindergrewal/lofistudio/internal/style"
)

const (
	// stepEpsilon is the shortest remaining time worth another step.
	stepEpsilon = 0.05

	chordSpan      = 4 // chord roots come from scale indices [0, chordSpan)
	octaveChance   = 0.3
	minNoteAmp     = 0.15
	maxNoteAmp     = 0.2
	echoDecay      = 0.35
	decayVariation = 0.2 // per-note decay is scaled by 1 ± decayVariation
)

// composer schedules chords and melodies and renders them into the master
// buffer. It owns nothing but borrows the master for the duration of run.
type composer struct {
	profile  style.Profile
	scale    harmony.Scale
	beat     float64
	duration float64
	rng      *rand.Rand
	master   audio.Buffer
}

// run walks the timeline step by step until less than stepEpsilon remains.
func (c *composer) run() []Step {
	var steps []Step
	for t := 0.0; c.duration-t > stepEpsilon; {
		beats := c.profile.StepBeats(c.rng)
		length := min(float64(beats)*c.beat, c.duration-t)

		step := Step{Start: t, Duration: length, Beats: beats}
		step.Chord = c.chord(t, length)
		if c.rng.Float64() < c.profile.MelodyChance {
			step.Melody = c.melody(t, length)
		}
		steps = append(steps, step)
		t += length
	}
	return steps
}

// chord renders a triad (plus a seventh when the profile asks for one)
// rooted at a random low scale degree.
func (c *composer) chord(start, length float64) []NoteEvent {
	root := c.rng.IntN(chordSpan)
	degrees := []int{root, root + 2, root + 4}
	if c.profile.Seventh {
		degrees = append(degrees, root+6)
	}

	notes := make([]NoteEvent, 0, len(degrees))
	for _, d := range degrees {
		notes = append(notes, c.note(c.scale.Note(d), start, length))
	}
	return notes
}

// melody renders a single note from the upper half of the scale, sometimes
// doubled an octave up, at an offset of 0, half a beat or a full beat.
func (c *composer) melody(start, length float64) []NoteEvent {
	n := len(c.scale)
	freq := c.scale.Note(n/2 + c.rng.IntN(n-n/2))
	if c.rng.Float64() < octaveChance {
		freq *= 2
	}

	var offset float64
	switch c.rng.IntN(3) {
	case 1:
		offset = c.beat/2 + c.profile.Swing
	case 2:
		offset = c.beat
	}
	if length-offset <= 0 {
		return nil
	}
	return []NoteEvent{c.note(freq, start+offset, length-offset)}
}

// note renders one pitched note and mixes it at start.
func (c *composer) note(freq, start, length float64) NoteEvent {
	ev := NoteEvent{
		Frequency: freq,
		Start:     start,
		Duration:  length + c.profile.Sustain,
		Amplitude: minNoteAmp + c.rng.Float64()*(maxNoteAmp-minNoteAmp),
	}
	decay := c.profile.Decay * (1 - decayVariation + c.rng.Float64()*2*decayVariation)

	buf := audio.Tone(c.profile.Waveform, ev.Frequency, ev.Duration, ev.Amplitude)
	attack, release := c.profile.NoteEnvelope(decay, ev.Duration)
	audio.ApplyEnvelope(buf, attack, release)
	if c.profile.Delay {
		buf = audio.ApplyDelay(buf, c.beat/2, echoDecay)
	}
	audio.MixAt(c.master, buf, audio.Samples(start))
	return ev
}
