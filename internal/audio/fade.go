package audio

// Smoothstep returns the smoothstep interpolation for t in [0,1].
// Formula: 3t^2 - 2t^3.
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Declick fades the first and last `seconds` of buf in and out along a
// smoothstep curve. Each fade is limited to half the buffer.
func Declick(buf Buffer, seconds float64) {
	n := min(Samples(seconds), len(buf)/2)
	if n == 0 {
		return
	}
	last := len(buf) - 1
	for i := 0; i < n; i++ {
		gain := Smoothstep(float64(i) / float64(n))
		buf[i] *= gain
		buf[last-i] *= gain
	}
}
