package audio

import "math"

// Headroom is the peak level a mixdown is normalized to.
const Headroom = 0.95

// Peak returns the largest absolute sample value in buf.
func Peak(buf Buffer) float64 {
	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize scales buf in place so its peak equals target. A silent buffer
// is left untouched.
func Normalize(buf Buffer, target float64) {
	peak := Peak(buf)
	if peak == 0 {
		return
	}
	gain := target / peak
	for i := range buf {
		buf[i] *= gain
	}
}

// Quantize converts float samples to 16-bit PCM with rounding, clipping
// anything outside the int16 range.
func Quantize(buf Buffer) []int16 {
	out := make([]int16, len(buf))
	for i, v := range buf {
		s := math.Round(v * math.MaxInt16)
		if s > math.MaxInt16 {
			s = math.MaxInt16
		} else if s < math.MinInt16 {
			s = math.MinInt16
		}
		out[i] = int16(s)
	}
	return out
}

// Mixdown normalizes the master buffer to Headroom and quantizes it.
// The master buffer is modified in place and should be discarded afterwards.
func Mixdown(master Buffer) []int16 {
	Normalize(master, Headroom)
	return Quantize(master)
}
