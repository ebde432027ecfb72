package media

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/gopxl/beep/v2"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
	"gopkg.in/hraban/opus.v2"

	"github.com/satindergrewal/lofistudio/internal/audio"
)

const (
	// OpusSampleRate is the rate Opus is encoded at. 44.1 kHz is not one of
	// the rates libopus accepts.
	OpusSampleRate = 48000
	opusFrame      = OpusSampleRate / 50 // 20 ms
	opusPayload    = 111
	resampleQual   = 4
)

// OpusEncoder encodes PCM to Ogg/Opus without external tools.
type OpusEncoder struct {
	bitrate int
}

// NewOpusEncoder creates an encoder targeting bitrate bits per second.
func NewOpusEncoder(bitrate int) *OpusEncoder {
	return &OpusEncoder{bitrate: bitrate}
}

// Encode writes pcm to w as an Ogg/Opus stream.
func (e *OpusEncoder) Encode(ctx context.Context, pcm []int16, w io.Writer) error {
	ogg, err := oggwriter.NewWith(w, OpusSampleRate, audio.Channels)
	if err != nil {
		return fmt.Errorf("ogg writer: %w", err)
	}
	if err := e.writePackets(ctx, pcm, ogg); err != nil {
		return err
	}
	return ogg.Close()
}

// EncodeFile writes pcm to path as Ogg/Opus, marking the final page.
func (e *OpusEncoder) EncodeFile(ctx context.Context, pcm []int16, path string) error {
	ogg, err := oggwriter.New(path, OpusSampleRate, audio.Channels)
	if err != nil {
		return fmt.Errorf("ogg writer %s: %w", path, err)
	}
	if err := e.writePackets(ctx, pcm, ogg); err != nil {
		ogg.Close()
		return err
	}
	return ogg.Close()
}

func (e *OpusEncoder) writePackets(ctx context.Context, pcm []int16, ogg *oggwriter.OggWriter) error {
	enc, err := opus.NewEncoder(OpusSampleRate, audio.Channels, opus.AppAudio)
	if err != nil {
		return fmt.Errorf("opus encoder: %w", err)
	}
	if e.bitrate > 0 {
		if err := enc.SetBitrate(e.bitrate); err != nil {
			return fmt.Errorf("opus bitrate %d: %w", e.bitrate, err)
		}
	}

	samples := Resample48k(pcm)
	// Pad the tail so every frame is full.
	if rem := len(samples) % opusFrame; rem != 0 {
		samples = append(samples, make([]int16, opusFrame-rem)...)
	}

	opusBuf := make([]byte, 4000)
	header := rtp.Header{
		Version:     2,
		PayloadType: opusPayload,
		SSRC:        rand.Uint32(),
	}

	for off := 0; off < len(samples); off += opusFrame {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := enc.Encode(samples[off:off+opusFrame], opusBuf)
		if err != nil {
			return fmt.Errorf("opus encode frame %d: %w", off/opusFrame, err)
		}
		pkt := &rtp.Packet{Header: header, Payload: opusBuf[:n]}
		if err := ogg.WriteRTP(pkt); err != nil {
			return fmt.Errorf("ogg write: %w", err)
		}
		header.SequenceNumber++
		header.Timestamp += opusFrame
	}
	return nil
}

// pcmStreamer plays mono PCM as a beep stream, duplicated to both channels.
type pcmStreamer struct {
	pcm []int16
	pos int
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.pcm) {
		return 0, false
	}
	for n < len(samples) && s.pos < len(s.pcm) {
		v := float64(s.pcm[s.pos]) / (math.MaxInt16 + 1)
		samples[n] = [2]float64{v, v}
		s.pos++
		n++
	}
	return n, true
}

func (s *pcmStreamer) Err() error { return nil }

// Resample48k converts PCM from audio.SampleRate to OpusSampleRate.
func Resample48k(pcm []int16) []int16 {
	if len(pcm) == 0 {
		return nil
	}
	r := beep.Resample(resampleQual, beep.SampleRate(audio.SampleRate), beep.SampleRate(OpusSampleRate), &pcmStreamer{pcm: pcm})

	out := make([]int16, 0, len(pcm)*OpusSampleRate/audio.SampleRate+opusFrame)
	buf := make([][2]float64, 1024)
	for {
		n, ok := r.Stream(buf)
		for _, s := range buf[:n] {
			out = append(out, toInt16(s[0]))
		}
		if !ok || n == 0 {
			break
		}
	}
	return out
}

func toInt16(v float64) int16 {
	s := math.Round(v * (math.MaxInt16 + 1))
	return int16(max(math.MinInt16, min(math.MaxInt16, s)))
}
