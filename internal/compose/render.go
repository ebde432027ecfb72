package compose

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/satindergrewal/lofistudio/internal/audio"
	"github.com/satindergrewal/lofistudio/internal/harmony"
	"github.com/satindergrewal/lofistudio/internal/style"
)

// DeclickSeconds is the fade applied to both ends of the master buffer.
const DeclickSeconds = 0.005

// MaxDuration is the longest render accepted regardless of configuration.
// An hour of float samples is already over a gigabyte of working memory.
const MaxDuration = 3600.0

// Render composes and mixes one track. The same request with the same seed
// always yields identical PCM. Render shares no state between calls and is
// safe to run concurrently.
func Render(req Request) (*Track, error) {
	d := req.Duration
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return nil, fmt.Errorf("%w: duration must be a positive number of seconds, got %v", ErrInvalidInput, d)
	}
	if d > MaxDuration {
		return nil, fmt.Errorf("%w: duration %.0fs is over the %.0fs ceiling", ErrInvalidInput, d, MaxDuration)
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	// Draw order matters for reproducibility: tempo, root, composition,
	// drums, crackle.
	profile := style.Resolve(req.Style)
	bpm := profile.PickTempo(rng)
	root := harmony.PickRoot(rng)
	scale := harmony.BuildScale(root, profile.Scale)
	beat := 60 / bpm

	master := make(audio.Buffer, audio.Samples(d))

	c := &composer{profile: profile, scale: scale, beat: beat, duration: d, rng: rng, master: master}
	steps := c.run()

	var hits []DrumHit
	if dr := newDrummer(profile, beat, d, rng, master); dr != nil {
		hits = dr.run()
	}

	if profile.Crackle > 0 {
		audio.MixAt(master, audio.Noise(rng, d, profile.Crackle), 0)
	}

	audio.Declick(master, DeclickSeconds)

	return &Track{
		Profile:  profile,
		Seed:     seed,
		BPM:      bpm,
		Root:     root,
		Scale:    scale,
		Duration: d,
		Steps:    steps,
		DrumHits: hits,
		PCM:      audio.Mixdown(master),
	}, nil
}
