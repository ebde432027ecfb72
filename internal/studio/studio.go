// Package studio runs a full render job: compose, encode, fetch artwork,
// mux the video and write a metadata sidecar into a per-job workspace.
package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/satindergrewal/lofistudio/internal/audio"
	"github.com/satindergrewal/lofistudio/internal/compose"
	"github.com/satindergrewal/lofistudio/internal/media"
	"github.com/satindergrewal/lofistudio/internal/progress"
	"github.com/satindergrewal/lofistudio/internal/style"
	"github.com/satindergrewal/lofistudio/internal/workspace"
)

// Job is one render request plus the outputs wanted.
type Job struct {
	compose.Request
	Formats []media.Format // compressed formats written next to the WAV
	Image   bool
	Video   bool // implies Image
}

// Result describes a finished job.
type Result struct {
	Workspace   *workspace.Workspace
	Track       *compose.Track
	Name        string
	ImagePrompt string
	Files       map[string]string // kind ("wav", "mp3", "opus", "image", "video", "metadata") to path
	Warnings    []string
	Elapsed     time.Duration
}

// Status is a snapshot of studio activity.
type Status struct {
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	LastTrack string `json:"last_track,omitempty"`
	LastStyle string `json:"last_style,omitempty"`
}

// Studio runs jobs. Jobs are independent and may run concurrently.
type Studio struct {
	outputDir string
	encoders  *media.Encoders
	images    *media.ImageClient // nil disables artwork
	muxer     *media.VideoMuxer  // nil disables video

	mu     sync.RWMutex
	status Status
}

// New creates a studio writing job directories under outputDir.
func New(outputDir string, encoders *media.Encoders, images *media.ImageClient, muxer *media.VideoMuxer) *Studio {
	if encoders == nil {
		encoders = &media.Encoders{}
	}
	return &Studio{
		outputDir: outputDir,
		encoders:  encoders,
		images:    images,
		muxer:     muxer,
	}
}

// Status returns the current activity counters.
func (s *Studio) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Run executes job. rep may be nil.
func (s *Studio) Run(ctx context.Context, job Job, rep *progress.Reporter) (*Result, error) {
	s.mu.Lock()
	s.status.Active++
	s.mu.Unlock()

	res, err := s.run(ctx, job, rep)

	s.mu.Lock()
	s.status.Active--
	if err != nil {
		s.status.Failed++
	} else {
		s.status.Completed++
		s.status.LastTrack = res.Name
		s.status.LastStyle = res.Track.Style()
	}
	s.mu.Unlock()
	return res, err
}

func (s *Studio) run(ctx context.Context, job Job, rep *progress.Reporter) (*Result, error) {
	start := time.Now()
	display := style.DisplayName(job.Style)

	rep.StartStage(progress.StageCompose)
	log.Printf("Rendering %s track (%.1fs)...", display, job.Duration)
	track, err := compose.Render(job.Request)
	if err != nil {
		return nil, err
	}
	rep.StageComplete("%s, %.0f bpm, %d notes, %d drum hits", track.Style(), track.BPM, track.NoteCount(), len(track.DrumHits))

	ws, err := workspace.Create(s.outputDir, track.Style())
	if err != nil {
		return nil, err
	}
	res := &Result{
		Workspace: ws,
		Track:     track,
		Name:      style.TrackName(track.Style(), ws.ID),
		Files:     map[string]string{},
	}
	fail := func(err error) (*Result, error) {
		ws.Cleanup()
		return nil, err
	}

	rep.StartStage(progress.StageEncode)
	if err := audio.WriteWAVFile(ws.WAV(), track.PCM); err != nil {
		return fail(err)
	}
	res.Files["wav"] = ws.WAV()

	wantImage := (job.Image || job.Video) && s.images != nil
	if wantImage {
		res.ImagePrompt = imagePrompt(track)
		rep.StartStage(progress.StageArtwork)
	}

	var (
		filesMu  sync.Mutex
		imageErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range job.Formats {
		if f == media.FormatWAV {
			continue
		}
		g.Go(func() error {
			path := ws.Audio(f.Ext())
			if err := s.encode(gctx, f, track.PCM, path); err != nil {
				return fmt.Errorf("encode %s: %w", f, err)
			}
			filesMu.Lock()
			res.Files[string(f)] = path
			filesMu.Unlock()
			rep.Update("wrote %s", ws.FileName(f.Ext()))
			return nil
		})
	}
	if wantImage {
		g.Go(func() error {
			// Artwork is optional: a failure becomes a warning.
			if err := s.images.Fetch(gctx, res.ImagePrompt, ws.Image()); err != nil {
				imageErr = err
				return nil
			}
			filesMu.Lock()
			res.Files["image"] = ws.Image()
			filesMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fail(err)
	}
	if imageErr != nil {
		res.warn(rep, "cover image: %v", imageErr)
	}

	if job.Video {
		switch {
		case s.muxer == nil:
			res.warn(rep, "video skipped: no muxer configured")
		case res.Files["image"] == "":
			res.warn(rep, "video skipped: no cover image")
		default:
			rep.StartStage(progress.StageVideo)
			if err := s.muxer.Mux(ctx, ws.WAV(), ws.Image(), ws.Video()); err != nil {
				return fail(fmt.Errorf("mux video: %w", err))
			}
			res.Files["video"] = ws.Video()
		}
	}

	rep.StartStage(progress.StageMetadata)
	res.Files["metadata"] = ws.Metadata()
	if err := writeMetadata(ws.Metadata(), res); err != nil {
		return fail(err)
	}

	res.Elapsed = time.Since(start)
	log.Printf("Track ready: %s [%s] (style: %s)", res.Name, workspace.ShortID(ws.ID), track.Style())
	return res, nil
}

// promptStream separates the prompt draw from the render stream of the same
// seed.
const promptStream = 0x9e3779b97f4a7c15

// imagePrompt picks the cover prompt for a track. It depends only on the
// style and seed, so re-rendering a seed reproduces the artwork request.
func imagePrompt(t *compose.Track) string {
	rng := rand.New(rand.NewPCG(t.Seed, promptStream))
	return style.ImagePrompt(t.Style(), rng)
}

func (s *Studio) encode(ctx context.Context, f media.Format, pcm []int16, path string) error {
	if f == media.FormatOpus && s.encoders.Opus != nil {
		return s.encoders.Opus.EncodeFile(ctx, pcm, path)
	}
	enc, err := s.encoders.For(f)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := enc.Encode(ctx, pcm, out); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}

func (r *Result) warn(rep *progress.Reporter, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	rep.Warning("%s", msg)
	log.Printf("Warning: %s", msg)
}

// Metadata is the JSON sidecar written next to every job's files.
type Metadata struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Style       string            `json:"style"`
	Seed        uint64            `json:"seed"`
	BPM         float64           `json:"bpm"`
	RootHz      float64           `json:"root_hz"`
	Scale       string            `json:"scale"`
	Duration    float64           `json:"duration_seconds"`
	Samples     int               `json:"samples"`
	Steps       int               `json:"steps"`
	Notes       int               `json:"notes"`
	DrumHits    int               `json:"drum_hits"`
	ImagePrompt string            `json:"image_prompt,omitempty"`
	Files       map[string]string `json:"files"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewMetadata summarizes a result.
func NewMetadata(r *Result) Metadata {
	t := r.Track
	return Metadata{
		ID:          r.Workspace.ID,
		Name:        r.Name,
		Style:       t.Style(),
		Seed:        t.Seed,
		BPM:         t.BPM,
		RootHz:      t.Root,
		Scale:       t.Profile.Scale.String(),
		Duration:    t.Duration,
		Samples:     len(t.PCM),
		Steps:       len(t.Steps),
		Notes:       t.NoteCount(),
		DrumHits:    len(t.DrumHits),
		ImagePrompt: r.ImagePrompt,
		Files:       r.Files,
		CreatedAt:   r.Workspace.CreatedAt.UTC(),
	}
}

func writeMetadata(path string, r *Result) error {
	data, err := json.MarshalIndent(NewMetadata(r), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads a sidecar written by a previous job.
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &m, nil
}
