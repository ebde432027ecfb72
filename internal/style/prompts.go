package style

import (
	"math/rand/v2"
	"strings"
)

// imagePrompts maps each style to background image prompts for the
// image service. One is picked per render.
var imagePrompts = map[string][]string{
	LoFiBeats: {
		"lofi anime study girl room night cozy window rain details",
		"lofi hip hop radio aesthetic cafe rainy day",
		"anime bedroom mess cozy plant cat sleeping window",
		"japanese street night rain neon lofi aesthetic",
	},
	Piano: {
		"melancholic fantasy landscape river sunset",
		"grand piano in abandoned nature ruin forest",
		"ocean view window curtains blowing soft light",
		"misty mountain morning landscape painting watercolor",
	},
	Ambient: {
		"space nebula cosmic ethereal abstract dreamcore",
		"floating islands in sky surreal aesthetic",
		"underwater bioluminescent ancient ruins",
		"aurora borealis snowy landscape minimal",
	},
	Synth: {
		"cyberpunk city neon rain night futuristic sci-fi",
		"retro 80s grid landscape sunset synthwave",
		"neon noir detective office rainy window city",
		"futuristic anime girl looking at city lights",
	},
	JazzHop: {
		"dimly lit jazz club new york night rainy window",
		"saxophonist silhouette city skyline night aesthetic",
		"vintage vinyl record player smoke coffee shop",
		"cozy library raining outside warm light studying",
	},
	Meditation: {
		"zen garden cherry blossom peaceful lake reflection",
		"buddhist temple mountains mist sunrise peaceful",
		"lotus flower pond ethereal glowing lights",
		"abstract mandala energy chakras spiritual art",
	},
	EightBit: {
		"pixel art rpg fantasy village cozy night",
		"retro gaming room crt tv aesthetic neon",
		"pixel city skyline cyberpunk night rain",
		"gaming setup aesthetic purple lighting chill",
	},
}

// fallbackPrompt is used for styles without their own prompt list.
const fallbackPrompt = "lofi cozy aesthetics"

// Modifiers are appended to image prompts to steer the rendering quality.
var Modifiers = []string{
	"highly detailed",
	"4k resolution",
	"cinematic lighting",
	"digital art",
	"artstation",
}

// ImagePrompts returns the prompt list for a style, or nil if it has none.
func ImagePrompts(name string) []string {
	c, ok := Canonical(name)
	if !ok {
		return nil
	}
	return append([]string(nil), imagePrompts[c]...)
}

// ImagePrompt picks a prompt for the style and decorates it with two
// distinct modifiers.
func ImagePrompt(name string, rng *rand.Rand) string {
	prompts := ImagePrompts(name)
	base := fallbackPrompt
	if len(prompts) > 0 {
		base = prompts[rng.IntN(len(prompts))]
	}
	perm := rng.Perm(len(Modifiers))
	return base + ", " + Modifiers[perm[0]] + ", " + Modifiers[perm[1]]
}

// styleAdjectives gives each style a pool of descriptors for track names.
var styleAdjectives = map[string][]string{
	LoFiBeats:  {"rainy", "dusty", "warm", "mellow", "quiet"},
	Piano:      {"delicate", "flowing", "wistful", "luminous", "tender"},
	Ambient:    {"floating", "weightless", "still", "glacial", "infinite"},
	Synth:      {"neon", "chrome", "pulsing", "electric", "retro"},
	JazzHop:    {"smoky", "midnight", "velvet", "golden", "swinging"},
	Meditation: {"breathing", "open", "centered", "slow", "quiet"},
	EightBit:   {"pixel", "blinking", "tiny", "arcade", "bright"},
}

// TrackName generates a human-readable name from style and track ID.
// The first characters of the ID pick a deterministic adjective.
func TrackName(name, trackID string) string {
	if name == "" || trackID == "" {
		return ""
	}

	display := DisplayName(name)
	adjs := styleAdjectives[display]
	if len(adjs) == 0 {
		return strings.ToLower(display) + " session"
	}

	var h int
	for i := 0; i < len(trackID) && i < 8; i++ {
		h = h*31 + int(trackID[i])
	}
	if h < 0 {
		h = -h
	}

	return adjs[h%len(adjs)] + " " + strings.ToLower(display)
}

// Slug turns a style name into a file-name fragment: "Lo-Fi Beats" becomes
// "lo-fi_beats".
func Slug(name string) string {
	s := strings.ToLower(DisplayName(name))
	s = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			return r
		default:
			return -1
		}
	}, s)
	if s == "" {
		return "track"
	}
	return s
}
