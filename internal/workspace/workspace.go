package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/satindergrewal/lofistudio/internal/style"
)

// Workspace is the output directory of a single render job
type Workspace struct {
	ID        string
	Slug      string
	Dir       string
	CreatedAt time.Time
}

// Create makes a new job directory under root named <style-slug>-<short id>
func Create(root, styleName string) (*Workspace, error) {
	id := uuid.New()
	slug := style.Slug(styleName)
	dir := filepath.Join(root, slug+"-"+ShortID(id.String()))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{
		ID:        id.String(),
		Slug:      slug,
		Dir:       dir,
		CreatedAt: time.Now(),
	}, nil
}

// ShortID is the first block of a UUID.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FileName is the download name for a rendered file: lofi_studio_<slug>.<ext>
func (w *Workspace) FileName(ext string) string {
	return "lofi_studio_" + w.Slug + "." + ext
}

// Path helpers for workspace files
func (w *Workspace) Audio(ext string) string { return filepath.Join(w.Dir, w.FileName(ext)) }
func (w *Workspace) WAV() string             { return w.Audio("wav") }
func (w *Workspace) Video() string           { return w.Audio("mp4") }
func (w *Workspace) Image() string           { return filepath.Join(w.Dir, "cover.jpg") }
func (w *Workspace) Metadata() string        { return filepath.Join(w.Dir, "metadata.json") }

// Cleanup removes the workspace directory and all contents
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}
