package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	wav "github.com/youpy/go-wav"
)

// ErrUnsupportedWAV is returned when a WAVE file is not 16-bit PCM mono at
// SampleRate.
var ErrUnsupportedWAV = errors.New("unsupported wav format")

// WAVSource is what the WAVE reader needs: sequential and random access.
// *os.File and *bytes.Reader both qualify.
type WAVSource interface {
	io.Reader
	io.ReaderAt
}

// WriteWAV writes pcm as a RIFF/WAVE stream: PCM, mono, 44100 Hz, 16-bit.
func WriteWAV(w io.Writer, pcm []int16) error {
	writer := wav.NewWriter(w, uint32(len(pcm)), Channels, SampleRate, BitDepth)

	samples := make([]wav.Sample, len(pcm))
	for i, s := range pcm {
		samples[i].Values[0] = int(s)
	}
	if err := writer.WriteSamples(samples); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	return nil
}

// WriteWAVFile writes pcm to path, replacing any existing file.
func WriteWAVFile(path string, pcm []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := WriteWAV(bw, pcm); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// ReadWAV decodes a WAVE stream written by WriteWAV back into PCM samples.
func ReadWAV(r WAVSource) ([]int16, error) {
	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("read wav format: %w", err)
	}
	if format.AudioFormat != wav.AudioFormatPCM || format.NumChannels != Channels ||
		format.SampleRate != SampleRate || format.BitsPerSample != BitDepth {
		return nil, fmt.Errorf("%w: format=%d channels=%d rate=%d bits=%d", ErrUnsupportedWAV,
			format.AudioFormat, format.NumChannels, format.SampleRate, format.BitsPerSample)
	}

	var pcm []int16
	for {
		samples, err := reader.ReadSamples()
		for _, s := range samples {
			pcm = append(pcm, int16(reader.IntValue(s, 0)))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read wav samples: %w", err)
		}
	}
	return pcm, nil
}

// ReadWAVFile reads a WAVE file from disk.
func ReadWAVFile(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadWAV(f)
}
