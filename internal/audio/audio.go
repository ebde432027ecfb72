package audio

import "math"

const (
	SampleRate = 44100
	Channels   = 1
	BitDepth   = 16
	FrameBytes = Channels * BitDepth / 8 // bytes per sample frame
)

// Buffer is a mono run of float samples at SampleRate, nominally in [-1, 1].
type Buffer []float64

// Samples converts a duration in seconds to a sample count.
// Non-positive or NaN durations yield 0.
func Samples(seconds float64) int {
	if !(seconds > 0) {
		return 0
	}
	return int(math.Round(seconds * SampleRate))
}

// Seconds converts a sample count back to seconds.
func Seconds(samples int) float64 {
	return float64(samples) / SampleRate
}

// MixAt adds src into dst starting at sample offset. Samples past the end of
// dst are dropped; a partial overlap is still mixed. Returns the number of
// samples mixed.
func MixAt(dst, src Buffer, offset int) int {
	if offset < 0 || offset >= len(dst) {
		return 0
	}
	n := len(src)
	if room := len(dst) - offset; n > room {
		n = room
	}
	for i := 0; i < n; i++ {
		dst[offset+i] += src[i]
	}
	return n
}
