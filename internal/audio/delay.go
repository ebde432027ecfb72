package audio

// ApplyDelay returns a copy of buf with one echo tap mixed in:
// out[i] = in[i] + decay*in[i-d]. The output keeps the input length, so the
// echo tail past the end of the note is dropped.
func ApplyDelay(buf Buffer, delaySeconds, decay float64) Buffer {
	out := make(Buffer, len(buf))
	copy(out, buf)
	d := Samples(delaySeconds)
	for i := d; i < len(buf); i++ {
		out[i] += decay * buf[i-d]
	}
	return out
}
