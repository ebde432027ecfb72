// Package media holds the collaborators that turn rendered PCM into files a
// listener can use: audio encoders, the background image fetcher and the
// video muxer.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/satindergrewal/lofistudio/internal/audio"
	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
)

// Format is an audio output format.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatOpus Format = "opus"
)

// ParseFormat accepts a format name or file extension, case-insensitively.
// An empty string selects WAV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "wav", "wave":
		return FormatWAV, nil
	case "mp3":
		return FormatMP3, nil
	case "opus", "ogg":
		return FormatOpus, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, s)
}

// Ext is the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	case FormatOpus:
		return "audio/ogg"
	default:
		return "audio/wav"
	}
}

// Encoder writes mono 16-bit PCM at audio.SampleRate in some container.
type Encoder interface {
	Encode(ctx context.Context, pcm []int16, w io.Writer) error
}

// WAVEncoder writes uncompressed RIFF/WAVE.
type WAVEncoder struct{}

func (WAVEncoder) Encode(_ context.Context, pcm []int16, w io.Writer) error {
	return audio.WriteWAV(w, pcm)
}

// Encoders builds one encoder per format from shared settings.
type Encoders struct {
	WAV  WAVEncoder
	MP3  *MP3Encoder
	Opus *OpusEncoder
}

// For returns the encoder for f.
func (e *Encoders) For(f Format) (Encoder, error) {
	switch f {
	case FormatWAV:
		return e.WAV, nil
	case FormatMP3:
		if e.MP3 != nil {
			return e.MP3, nil
		}
	case FormatOpus:
		if e.Opus != nil {
			return e.Opus, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, f)
}
