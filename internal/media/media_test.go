package media

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/satindergrewal/lofistudio/internal/audio"
	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
	lexec "github.com/satindergrewal/lofistudio/internal/exec"
)

func tone(seconds float64) []int16 {
	buf := audio.Sine(440, seconds, 0.5)
	return audio.Quantize(buf)
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not on PATH")
	}
}

// --- Formats ---

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":      FormatWAV,
		"wav":   FormatWAV,
		".WAV":  FormatWAV,
		"mp3":   FormatMP3,
		" Opus": FormatOpus,
		"ogg":   FormatOpus,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("flac"); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(flac) err = %v", err)
	}
	if FormatOpus.ContentType() != "audio/ogg" || FormatMP3.Ext() != "mp3" {
		t.Error("unexpected format metadata")
	}
}

func TestEncodersFor(t *testing.T) {
	e := &Encoders{Opus: NewOpusEncoder(64000)}
	if _, err := e.For(FormatWAV); err != nil {
		t.Errorf("wav: %v", err)
	}
	if _, err := e.For(FormatOpus); err != nil {
		t.Errorf("opus: %v", err)
	}
	if _, err := e.For(FormatMP3); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("mp3 without encoder err = %v", err)
	}
}

func TestWAVEncoder(t *testing.T) {
	pcm := tone(0.1)
	var buf bytes.Buffer
	if err := (WAVEncoder{}).Encode(context.Background(), pcm, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 44+2*len(pcm) {
		t.Errorf("wav size = %d, want %d", buf.Len(), 44+2*len(pcm))
	}
}

// --- Image ---

func TestImageURL(t *testing.T) {
	c := NewImageClient("https://img.example/prompt/", 1280, 720, time.Second, 0)
	got := c.URL("lofi cozy aesthetics, 4k resolution")
	want := "https://img.example/prompt/lofi%20cozy%20aesthetics%2C%204k%20resolution?height=720&nologo=true&width=1280"
	if got != want {
		t.Errorf("URL = %q\nwant  %q", got, want)
	}
}

func TestImageFetch(t *testing.T) {
	var gotPath, gotWidth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotWidth = r.URL.Query().Get("width")
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "cover.jpg")
	c := NewImageClient(srv.URL+"/prompt", 640, 360, 5*time.Second, 0)
	if err := c.Fetch(context.Background(), "rainy window", dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/prompt/rainy window" || gotWidth != "640" {
		t.Errorf("request path=%q width=%q", gotPath, gotWidth)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "jpegdata" {
		t.Errorf("saved %q, %v", data, err)
	}
}

func TestImageFetchNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dst := filepath.Join(dir, "cover.jpg")
	err := NewImageClient(srv.URL, 64, 64, time.Second, 0).Fetch(context.Background(), "x", dst)

	var se *apperrors.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Status != http.StatusServiceUnavailable || se.Body != "overloaded" {
		t.Errorf("StatusError = %+v", se)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("failed fetch left %d files", len(entries))
	}
}

func TestImageFetchCanceledWhileLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewImageClient(srv.URL, 64, 64, time.Second, 0.001)
	if err := c.Fetch(context.Background(), "a", filepath.Join(dir, "a.jpg")); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.Fetch(ctx, "b", filepath.Join(dir, "b.jpg")); err == nil {
		t.Error("second fetch should wait on the limiter and fail with the context")
	}
}

// --- Opus ---

func TestResample48k(t *testing.T) {
	pcm := tone(1)
	out := Resample48k(pcm)
	if d := math.Abs(float64(len(out) - OpusSampleRate)); d > 0.01*OpusSampleRate {
		t.Errorf("resampled length = %d, want ~%d", len(out), OpusSampleRate)
	}
	if Resample48k(nil) != nil {
		t.Error("empty input should give nil")
	}
}

func TestOpusEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOpusEncoder(64000).Encode(context.Background(), tone(0.5), &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte("OggS")) {
		t.Fatal("output is not an Ogg stream")
	}
	if !bytes.Contains(data, []byte("OpusHead")) {
		t.Error("missing OpusHead page")
	}
}

func TestOpusEncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.opus")
	if err := NewOpusEncoder(0).EncodeFile(context.Background(), tone(0.3), path); err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("opus file missing or empty: %v", err)
	}
}

func TestOpusEncodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewOpusEncoder(64000).Encode(ctx, tone(0.5), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// --- ffmpeg collaborators ---

func TestMuxArgs(t *testing.T) {
	args := strings.Join(muxArgs("a.wav", "c.jpg", "v.mp4"), " ")
	for _, want := range []string{"-loop 1", "-i c.jpg", "-i a.wav", "-c:v libx264", "-c:a aac", "-shortest"} {
		if !strings.Contains(args, want) {
			t.Errorf("mux args missing %q: %s", want, args)
		}
	}
	if !strings.HasSuffix(args, " v.mp4") {
		t.Errorf("destination should be last: %s", args)
	}
}

func TestMissingFFmpeg(t *testing.T) {
	runner := lexec.NewRunner("")
	err := NewMP3Encoder(runner, "lofistudio-no-ffmpeg", "128k").Encode(context.Background(), tone(0.1), &bytes.Buffer{})
	if !errors.Is(err, apperrors.ErrToolNotInstalled) {
		t.Errorf("mp3 err = %v, want ErrToolNotInstalled", err)
	}
	m := NewVideoMuxer(runner, "lofistudio-no-ffmpeg")
	if err := m.Available(); !errors.Is(err, apperrors.ErrToolNotInstalled) {
		t.Errorf("Available err = %v", err)
	}
	if err := m.Mux(context.Background(), "a.wav", "c.jpg", "v.mp4"); !errors.Is(err, apperrors.ErrToolNotInstalled) {
		t.Errorf("Mux err = %v", err)
	}
}

func TestMP3Encode(t *testing.T) {
	requireFFmpeg(t)
	var buf bytes.Buffer
	enc := NewMP3Encoder(lexec.NewRunner(""), "ffmpeg", "128k")
	if err := enc.Encode(context.Background(), tone(1), &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() < 1000 {
		t.Errorf("mp3 output only %d bytes", buf.Len())
	}
}

func TestVideoMux(t *testing.T) {
	requireFFmpeg(t)
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "a.wav")
	if err := audio.WriteWAVFile(wavPath, tone(1)); err != nil {
		t.Fatal(err)
	}
	imgPath := filepath.Join(dir, "c.png")
	runner := lexec.NewRunner("")
	if _, err := runner.Run(context.Background(), "ffmpeg", "-y", "-f", "lavfi", "-i", "color=c=blue:s=64x64", "-frames:v", "1", imgPath); err != nil {
		t.Skipf("cannot synthesize test image: %v", err)
	}

	dst := filepath.Join(dir, "v.mp4")
	if err := NewVideoMuxer(runner, "ffmpeg").Mux(context.Background(), wavPath, imgPath, dst); err != nil {
		var pe *apperrors.ProcessError
		if errors.As(err, &pe) && strings.Contains(pe.Stderr, "libx264") {
			t.Skip("ffmpeg built without libx264")
		}
		t.Fatalf("Mux: %v", err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		t.Errorf("video missing or empty: %v", err)
	}
}
