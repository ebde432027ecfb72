package audio

import "math"

// Waveform selects a pitched oscillator.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
)

func (w Waveform) String() string {
	switch w {
	case WaveSquare:
		return "square"
	default:
		return "sine"
	}
}

// NormalSource yields standard normal deviates. *rand.Rand from math/rand/v2
// satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

// Sine generates amplitude * sin(2πft) for the given duration.
func Sine(freq, duration, amplitude float64) Buffer {
	buf := make(Buffer, Samples(duration))
	w := 2 * math.Pi * freq / SampleRate
	for i := range buf {
		buf[i] = amplitude * math.Sin(w*float64(i))
	}
	return buf
}

// Square generates the sign of the matching sine wave scaled to ±amplitude.
func Square(freq, duration, amplitude float64) Buffer {
	buf := Sine(freq, duration, 1)
	for i, v := range buf {
		switch {
		case v > 0:
			buf[i] = amplitude
		case v < 0:
			buf[i] = -amplitude
		default:
			buf[i] = 0
		}
	}
	return buf
}

// Noise draws Gaussian white noise with amplitude as standard deviation.
func Noise(src NormalSource, duration, amplitude float64) Buffer {
	buf := make(Buffer, Samples(duration))
	for i := range buf {
		buf[i] = src.NormFloat64() * amplitude
	}
	return buf
}

// Tone renders a pitched note with the given waveform.
func Tone(w Waveform, freq, duration, amplitude float64) Buffer {
	if w == WaveSquare {
		return Square(freq, duration, amplitude)
	}
	return Sine(freq, duration, amplitude)
}
