package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/satindergrewal/lofistudio/internal/audio"
	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
	"github.com/satindergrewal/lofistudio/internal/exec"
)

// MP3Encoder pipes PCM through ffmpeg's libmp3lame.
type MP3Encoder struct {
	runner  *exec.Runner
	ffmpeg  string
	bitrate string // ffmpeg -b:a value, e.g. "192k"
}

// NewMP3Encoder creates an encoder that runs the given ffmpeg binary.
func NewMP3Encoder(runner *exec.Runner, ffmpeg, bitrate string) *MP3Encoder {
	return &MP3Encoder{runner: runner, ffmpeg: ffmpeg, bitrate: bitrate}
}

func (e *MP3Encoder) args() []string {
	return []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(audio.SampleRate),
		"-ac", strconv.Itoa(audio.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", e.bitrate,
		"-f", "mp3",
		"-loglevel", "error",
		"pipe:1",
	}
}

// Encode writes pcm to w as MP3.
func (e *MP3Encoder) Encode(ctx context.Context, pcm []int16, w io.Writer) error {
	in := bytes.NewReader(audio.SamplesToBytes(pcm))
	res, err := e.runner.RunWithIO(ctx, in, w, e.ffmpeg, e.args()...)
	if err != nil {
		return toolError("encode_mp3", res, err)
	}
	return nil
}

// toolError wraps an ffmpeg failure as a ProcessError, leaving a missing
// binary as ErrToolNotInstalled.
func toolError(stage string, res *exec.Result, err error) error {
	if res == nil {
		return fmt.Errorf("ffmpeg %s: %w", stage, err)
	}
	if isNotInstalled(err) {
		return err
	}
	return apperrors.NewProcessError("ffmpeg", stage, res.ExitCode, res.Stderr, err)
}
