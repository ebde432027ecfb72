package audio

// ApplyEnvelope shapes buf in place with a linear attack ramp (0→1) and a
// linear release ramp (1→0). Each ramp is clamped to half the buffer so the
// two never overlap on short notes.
func ApplyEnvelope(buf Buffer, attack, release float64) {
	total := len(buf)
	if total == 0 {
		return
	}
	attackSamples := min(Samples(attack), total/2)
	releaseSamples := min(Samples(release), total/2)

	for i := 0; i < attackSamples; i++ {
		buf[i] *= ramp(i, attackSamples, 0, 1)
	}
	start := total - releaseSamples
	for i := 0; i < releaseSamples; i++ {
		buf[start+i] *= ramp(i, releaseSamples, 1, 0)
	}
}

// ramp returns the i-th of n evenly spaced points from `from` to `to`,
// endpoints included.
func ramp(i, n int, from, to float64) float64 {
	if n <= 1 {
		return from
	}
	return from + (to-from)*float64(i)/float64(n-1)
}
