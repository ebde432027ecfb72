package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrToolNotInstalled  = errors.New("required tool not installed")
	ErrDurationTooLong   = errors.New("duration exceeds limit")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrRateLimited       = errors.New("rate limited")
)

// ProcessError represents a failure in an external process
type ProcessError struct {
	Tool     string // "ffmpeg"
	Stage    string // "mux_video", "encode_mp3"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// NewProcessError creates a ProcessError
func NewProcessError(tool, stage string, exitCode int, stderr string, cause error) *ProcessError {
	return &ProcessError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   lastLines(stderr, 5),
		Cause:    cause,
	}
}

// StatusError is a non-success reply from a remote HTTP service
type StatusError struct {
	Service string // "image"
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Body)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
}

// IsExternal reports whether err came from a tool or remote service rather
// than from the caller's input.
func IsExternal(err error) bool {
	var pe *ProcessError
	var se *StatusError
	return errors.As(err, &pe) || errors.As(err, &se) || errors.Is(err, ErrToolNotInstalled)
}

// lastLines keeps the tail of noisy tool output such as ffmpeg banners.
func lastLines(s string, n int) string {
	end := len(s)
	for end > 0 && (s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	s = s[:end]
	count := 0
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			count++
			if count == n {
				return s[i+1:]
			}
		}
	}
	return s
}
