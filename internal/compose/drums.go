package compose

import (
	"math/rand/v2"

	"github.com/satindergrewal/lofistudio/internal/audio"
	"github.com/satindergrewal/lofistudio/internal/style"
)

const (
	kickLength  = 0.2
	kickAttack  = 0.005
	kickRelease = 0.15

	snareLength  = 0.1
	snareAttack  = 0.005
	snareRelease = 0.05

	hatAttack   = 0.001
	hatMissRate = 0.2
	hatSlots    = 8 // quarter-beat slots per two-beat group
)

// kit is the voicing of one drum set.
type kit struct {
	kickWave audio.Waveform
	kickFreq float64
	kickAmp  float64

	snareAmp float64
	snareLag float64 // seconds the snare sits behind beat 2

	hatBlip    bool    // square blip at hatFreq instead of a noise tick
	hatFreq    float64
	hatAmp     float64
	hatLength  float64
	hatRelease float64
	swungHats  bool // two hats per group, each 2/3 into its beat
}

var kits = map[style.DrumKit]kit{
	style.LoFiKit: {
		kickWave: audio.WaveSine, kickFreq: 60, kickAmp: 0.4,
		snareAmp: 0.15,
		hatAmp:   0.04, hatLength: 0.05, hatRelease: 0.03,
	},
	style.SynthKit: {
		kickWave: audio.WaveSine, kickFreq: 55, kickAmp: 0.45,
		snareAmp: 0.18,
		hatAmp:   0.05, hatLength: 0.04, hatRelease: 0.025,
	},
	style.JazzKit: {
		kickWave: audio.WaveSine, kickFreq: 60, kickAmp: 0.35,
		snareAmp: 0.12, snareLag: 0.04,
		hatAmp: 0.04, hatLength: 0.06, hatRelease: 0.04, swungHats: true,
	},
	style.ChipKit: {
		kickWave: audio.WaveSquare, kickFreq: 60, kickAmp: 0.3,
		snareAmp: 0.12,
		hatBlip:  true, hatFreq: 4000, hatAmp: 0.03, hatLength: 0.03, hatRelease: 0.02,
	},
}

// drummer sequences kick, snare and hats over two-beat groups.
type drummer struct {
	kit      kit
	beat     float64
	duration float64
	rng      *rand.Rand
	master   audio.Buffer
	hits     []DrumHit
}

// newDrummer returns nil when the profile has no drums.
func newDrummer(p style.Profile, beat, duration float64, rng *rand.Rand, master audio.Buffer) *drummer {
	k, ok := kits[p.Drums]
	if !ok {
		return nil
	}
	return &drummer{kit: k, beat: beat, duration: duration, rng: rng, master: master}
}

func (d *drummer) run() []DrumHit {
	group := 2 * d.beat
	for i := 0; ; i++ {
		t := float64(i) * group
		if t >= d.duration {
			break
		}
		d.kick(t)
		if st := t + d.beat + d.kit.snareLag; st < d.duration {
			d.snare(st)
		}
		d.hats(t)
	}
	return d.hits
}

func (d *drummer) kick(t float64) {
	buf := audio.Tone(d.kit.kickWave, d.kit.kickFreq, kickLength, d.kit.kickAmp)
	audio.ApplyEnvelope(buf, kickAttack, kickRelease)
	d.mix(Kick, t, kickLength, d.kit.kickAmp, buf)
}

func (d *drummer) snare(t float64) {
	buf := audio.Noise(d.rng, snareLength, d.kit.snareAmp)
	audio.ApplyEnvelope(buf, snareAttack, snareRelease)
	d.mix(Snare, t, snareLength, d.kit.snareAmp, buf)
}

// hats places hi-hats on the kit's grid, dropping each with hatMissRate.
func (d *drummer) hats(group float64) {
	var times []float64
	if d.kit.swungHats {
		for b := 0; b < 2; b++ {
			times = append(times, group+float64(b)*d.beat+d.beat*2/3)
		}
	} else {
		for s := 0; s < hatSlots; s++ {
			times = append(times, group+float64(s)*d.beat/4)
		}
	}

	for _, t := range times {
		if t >= d.duration {
			break
		}
		if d.rng.Float64() < hatMissRate {
			continue
		}
		var buf audio.Buffer
		if d.kit.hatBlip {
			buf = audio.Square(d.kit.hatFreq, d.kit.hatLength, d.kit.hatAmp)
		} else {
			buf = audio.Noise(d.rng, d.kit.hatLength, d.kit.hatAmp)
		}
		audio.ApplyEnvelope(buf, hatAttack, d.kit.hatRelease)
		d.mix(HiHat, t, d.kit.hatLength, d.kit.hatAmp, buf)
	}
}

func (d *drummer) mix(v DrumVoice, start, length, amp float64, buf audio.Buffer) {
	audio.MixAt(d.master, buf, audio.Samples(start))
	d.hits = append(d.hits, DrumHit{Voice: v, Start: start, Duration: length, Amplitude: amp})
}
