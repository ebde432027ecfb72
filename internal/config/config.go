package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port       int
	RenderRate float64 // renders per second accepted by the HTTP API

	// Rendering
	OutputDir   string
	Style       string
	Duration    float64 // seconds
	MaxDuration float64 // longest render the CLI and API accept
	Workers     int     // parallel renders for batch jobs

	// Cover image service
	ImageURL     string
	ImageWidth   int
	ImageHeight  int
	ImageTimeout time.Duration
	ImageRate    float64 // requests per second, 0 for unlimited

	// Encoders
	FFmpegPath  string
	MP3Bitrate  string // ffmpeg -b:a value
	OpusBitrate int    // bits per second
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port:       envInt("LOFI_PORT", 8080),
		RenderRate: envFloat("LOFI_RENDER_RATE", 2),

		OutputDir:   envStr("LOFI_OUTPUT_DIR", "output"),
		Style:       envStr("LOFI_STYLE", "Lo-Fi Beats"),
		Duration:    envFloat("LOFI_DURATION", 60),
		MaxDuration: envFloat("LOFI_MAX_DURATION", 600),
		Workers:     envInt("LOFI_WORKERS", 4),

		ImageURL:     envStr("LOFI_IMAGE_URL", "https://image.pollinations.ai/prompt"),
		ImageWidth:   envInt("LOFI_IMAGE_WIDTH", 1280),
		ImageHeight:  envInt("LOFI_IMAGE_HEIGHT", 720),
		ImageTimeout: time.Duration(envInt("LOFI_IMAGE_TIMEOUT", 10)) * time.Second,
		ImageRate:    envFloat("LOFI_IMAGE_RATE", 1),

		FFmpegPath:  envStr("LOFI_FFMPEG", "ffmpeg"),
		MP3Bitrate:  envStr("LOFI_MP3_BITRATE", "192k"),
		OpusBitrate: envInt("LOFI_OPUS_BITRATE", 96000),
	}
}

// CheckDuration rejects durations above MaxDuration. Non-positive values are
// left to the renderer to reject.
func (c Config) CheckDuration(seconds float64) error {
	if c.MaxDuration > 0 && seconds > c.MaxDuration {
		return fmt.Errorf("%w: %.0fs is over the %.0fs maximum", apperrors.ErrDurationTooLong, seconds, c.MaxDuration)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
