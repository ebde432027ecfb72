// Package harmony derives just-intonation scales from a root frequency.
package harmony

import (
	"math/rand/v2"
	"strings"
)

// ScaleType names a ratio table.
type ScaleType int

const (
	Major ScaleType = iota
	Minor
	Pentatonic
	Dorian
)

var scaleNames = map[ScaleType]string{
	Major:      "Major",
	Minor:      "Minor",
	Pentatonic: "Pentatonic",
	Dorian:     "Dorian",
}

func (s ScaleType) String() string {
	if name, ok := scaleNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ParseScaleType resolves a scale name case-insensitively.
func ParseScaleType(name string) (ScaleType, bool) {
	for t, n := range scaleNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Major, false
}

// ratios spans exactly one octave per scale: first entry 1, last entry 2.
var ratios = map[ScaleType][]float64{
	Major:      {1, 9.0 / 8, 5.0 / 4, 4.0 / 3, 3.0 / 2, 5.0 / 3, 15.0 / 8, 2},
	Minor:      {1, 9.0 / 8, 6.0 / 5, 4.0 / 3, 3.0 / 2, 8.0 / 5, 9.0 / 5, 2},
	Pentatonic: {1, 9.0 / 8, 5.0 / 4, 3.0 / 2, 5.0 / 3, 2},
	Dorian:     {1, 9.0 / 8, 6.0 / 5, 4.0 / 3, 3.0 / 2, 5.0 / 3, 16.0 / 9, 2},
}

// RootCandidates are the roots a render starts from: C4, A3, G3, F3.
var RootCandidates = []float64{261.63, 220.00, 196.00, 174.61}

// Scale is an ascending list of frequencies in Hz.
type Scale []float64

// BuildScale multiplies root by every ratio of the scale type. Unknown types
// use the Major table.
func BuildScale(root float64, t ScaleType) Scale {
	table, ok := ratios[t]
	if !ok {
		table = ratios[Major]
	}
	scale := make(Scale, len(table))
	for i, r := range table {
		scale[i] = root * r
	}
	return scale
}

// PickRoot draws a root frequency uniformly from RootCandidates.
func PickRoot(rng *rand.Rand) float64 {
	return RootCandidates[rng.IntN(len(RootCandidates))]
}

// Note returns the frequency at index i, wrapping around the scale length.
func (s Scale) Note(i int) float64 {
	n := len(s)
	return s[((i%n)+n)%n]
}

// Root is the lowest frequency of the scale.
func (s Scale) Root() float64 {
	return s[0]
}
