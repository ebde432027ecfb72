package media

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
	"github.com/satindergrewal/lofistudio/internal/exec"
)

// VideoMuxer combines one audio file and one still image into an MP4 whose
// length is the audio's.
type VideoMuxer struct {
	runner *exec.Runner
	ffmpeg string
}

// NewVideoMuxer creates a muxer that runs the given ffmpeg binary.
func NewVideoMuxer(runner *exec.Runner, ffmpeg string) *VideoMuxer {
	return &VideoMuxer{runner: runner, ffmpeg: ffmpeg}
}

// muxArgs loops the image at 1 fps for as long as the audio plays.
func muxArgs(audioPath, imagePath, dst string) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-framerate", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-pix_fmt", "yuv420p",
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-c:a", "aac",
		"-b:a", "192k",
		"-r", "1",
		"-shortest",
		"-loglevel", "error",
		dst,
	}
}

// Mux writes dst from audioPath and imagePath.
func (m *VideoMuxer) Mux(ctx context.Context, audioPath, imagePath, dst string) error {
	res, err := m.runner.Run(ctx, m.ffmpeg, muxArgs(audioPath, imagePath, dst)...)
	if err != nil {
		return toolError("mux_video", res, err)
	}
	return nil
}

func isNotInstalled(err error) bool {
	return errors.Is(err, apperrors.ErrToolNotInstalled)
}

// Available reports whether the ffmpeg binary can be found.
func (m *VideoMuxer) Available() error {
	if _, err := m.runner.LookPath(m.ffmpeg); err != nil {
		return fmt.Errorf("video mux: %w", err)
	}
	return nil
}
