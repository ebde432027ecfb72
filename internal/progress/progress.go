package progress

import (
	"fmt"
	"io"
	"time"
)

// Stage represents a render pipeline stage
type Stage struct {
	Number      int
	Total       int
	Name        string
	Description string
}

// Pipeline stages in execution order
var (
	StageCompose  = Stage{1, 5, "compose", "Composing track..."}
	StageEncode   = Stage{2, 5, "encode", "Writing audio files..."}
	StageArtwork  = Stage{3, 5, "artwork", "Fetching cover image..."}
	StageVideo    = Stage{4, 5, "video", "Muxing video..."}
	StageMetadata = Stage{5, 5, "metadata", "Writing metadata..."}
)

// Reporter prints pipeline progress. A nil *Reporter discards everything.
type Reporter struct {
	out       io.Writer
	prefix    string
	startTime time.Time
	verbose   bool
}

// NewReporter creates a new progress reporter
func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{
		out:       out,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// WithPrefix returns a reporter that tags every line, for parallel jobs.
func (r *Reporter) WithPrefix(prefix string) *Reporter {
	if r == nil {
		return nil
	}
	c := *r
	c.prefix = prefix + " "
	c.startTime = time.Now()
	return &c
}

// StartStage announces the beginning of a processing stage
func (r *Reporter) StartStage(stage Stage) {
	if r == nil {
		return
	}
	fmt.Fprintf(r.out, "%s[%d/%d] %s\n", r.prefix, stage.Number, stage.Total, stage.Description)
}

// Update shows a sub-progress message within a stage
func (r *Reporter) Update(format string, args ...any) {
	if r == nil || !r.verbose {
		return
	}
	fmt.Fprintf(r.out, "%s       %s\n", r.prefix, fmt.Sprintf(format, args...))
}

// StageComplete shows completion message for a stage
func (r *Reporter) StageComplete(format string, args ...any) {
	if r == nil {
		return
	}
	fmt.Fprintf(r.out, "%s       %s\n", r.prefix, fmt.Sprintf(format, args...))
}

// Warning announces a non-fatal problem
func (r *Reporter) Warning(format string, args ...any) {
	if r == nil {
		return
	}
	fmt.Fprintf(r.out, "%sWarning: %s\n", r.prefix, fmt.Sprintf(format, args...))
}

// Elapsed is the time since the reporter was created
func (r *Reporter) Elapsed() time.Duration {
	if r == nil {
		return 0
	}
	return time.Since(r.startTime)
}
