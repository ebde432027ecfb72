package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/lofistudio/internal/config"
	"github.com/satindergrewal/lofistudio/internal/exec"
	"github.com/satindergrewal/lofistudio/internal/media"
	"github.com/satindergrewal/lofistudio/internal/server"
	"github.com/satindergrewal/lofistudio/internal/studio"
)

var version = "0.1.0"

var cfg = config.Load()

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lofistudio",
	Short: "Compose and render procedural lo-fi tracks",
	Long: `lofistudio composes short pieces from a style and a duration and renders
them to WAV, with optional MP3/Opus copies, a cover image and a video.

Styles: Lo-Fi Beats, Piano, Ambient, Synth, Jazz Hop, Meditation, 8-Bit`,
	Version:      version,
	SilenceUsage: true,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one track",
	Long: `Render a single track into its own directory under the output dir.

Examples:
  lofistudio render --style "Jazz Hop" --duration 90
  lofistudio render -s 8bit -d 30 --seed 1 --format mp3,opus
  lofistudio render -s ambient --video`,
	RunE: runRender,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render several tracks in parallel",
	Long: `Render --count tracks for each style, --workers at a time.
With --seed, track i uses seed+i so a batch can be reproduced.

Example:
  lofistudio batch --styles piano,ambient --count 3 --workers 2`,
	RunE: runBatch,
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List available styles",
	RunE:  runStyles,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the render API.

Endpoints:
  GET  /health
  GET  /api/styles
  GET  /api/status
  POST /api/render   {"style","duration","seed","format"}
  POST /api/jobs     {"style","duration","seed","formats","image","video"}

Example:
  lofistudio serve --port 8080`,
	RunE: runServe,
}

// Flags
var (
	styleName string
	duration  float64
	seed      uint64
	outputDir string
	formats   []string
	withImage bool
	withVideo bool
	verbose   bool

	batchStyles []string
	batchCount  int
	workers     int

	port int
)

func init() {
	rootCmd.AddCommand(renderCmd, batchCmd, stylesCmd, serveCmd)

	for _, c := range []*cobra.Command{renderCmd, batchCmd} {
		c.Flags().Float64VarP(&duration, "duration", "d", cfg.Duration, "Track length in seconds")
		c.Flags().Uint64Var(&seed, "seed", 0, "Random seed for a reproducible render (default: random)")
		c.Flags().StringVarP(&outputDir, "output", "o", cfg.OutputDir, "Directory for job folders")
		c.Flags().StringSliceVarP(&formats, "format", "f", nil, "Extra audio formats besides WAV (mp3, opus)")
		c.Flags().BoolVar(&withImage, "image", false, "Fetch a cover image")
		c.Flags().BoolVar(&withVideo, "video", false, "Mux a video from the track and cover image (implies --image)")
		c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	}
	renderCmd.Flags().StringVarP(&styleName, "style", "s", cfg.Style, "Style to render")

	batchCmd.Flags().StringSliceVar(&batchStyles, "styles", nil, "Styles to render (default: all)")
	batchCmd.Flags().IntVarP(&batchCount, "count", "n", 1, "Tracks per style")
	batchCmd.Flags().IntVarP(&workers, "workers", "w", cfg.Workers, "Parallel renders")

	serveCmd.Flags().IntVarP(&port, "port", "p", cfg.Port, "Port to listen on")
}

// newStudio wires the encoders and collaborators from config.
func newStudio(dir string) (*studio.Studio, *media.Encoders) {
	runner := exec.NewRunner("")
	encoders := &media.Encoders{
		MP3:  media.NewMP3Encoder(runner, cfg.FFmpegPath, cfg.MP3Bitrate),
		Opus: media.NewOpusEncoder(cfg.OpusBitrate),
	}
	images := media.NewImageClient(cfg.ImageURL, cfg.ImageWidth, cfg.ImageHeight, cfg.ImageTimeout, cfg.ImageRate)
	muxer := media.NewVideoMuxer(runner, cfg.FFmpegPath)
	if withVideo {
		if err := muxer.Available(); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	return studio.New(dir, encoders, images, muxer), encoders
}

func parseFormats() ([]media.Format, error) {
	var out []media.Format
	for _, f := range formats {
		format, err := media.ParseFormat(f)
		if err != nil {
			return nil, err
		}
		out = append(out, format)
	}
	return out, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	st, encoders := newStudio(cfg.OutputDir)
	srv := server.New(server.Config{
		Port:            port,
		DefaultStyle:    cfg.Style,
		DefaultDuration: cfg.Duration,
		MaxDuration:     cfg.MaxDuration,
		RenderRate:      cfg.RenderRate,
	}, encoders, st, nil)

	fmt.Printf("\n  lofistudio API running at: http://localhost:%d\n\n", port)
	if err := srv.Run(cmd.Context()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
