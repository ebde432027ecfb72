package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/satindergrewal/lofistudio/internal/compose"
	apperrors "github.com/satindergrewal/lofistudio/internal/errors"
	"github.com/satindergrewal/lofistudio/internal/media"
	"github.com/satindergrewal/lofistudio/internal/studio"
	"github.com/satindergrewal/lofistudio/internal/style"
	"github.com/satindergrewal/lofistudio/internal/workspace"
)

const maxBodySize = 1 << 16

// renderRequest is the body of POST /api/render and POST /api/jobs.
type renderRequest struct {
	Style    string   `json:"style"`
	Duration *float64 `json:"duration"`
	Seed     *uint64  `json:"seed"`
	Format   string   `json:"format"`  // render only
	Formats  []string `json:"formats"` // jobs only
	Image    bool     `json:"image"`
	Video    bool     `json:"video"`
}

type styleInfo struct {
	Name     string    `json:"name"`
	Scale    string    `json:"scale"`
	Tempos   []float64 `json:"bpm"`
	Waveform string    `json:"waveform"`
	Delay    bool      `json:"delay"`
	Drums    string    `json:"drums"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	var out []styleInfo
	for _, name := range style.Names() {
		p := style.Resolve(name)
		out = append(out, styleInfo{
			Name:     p.Name,
			Scale:    p.Scale.String(),
			Tempos:   p.Tempos,
			Waveform: p.Waveform.String(),
			Delay:    p.Delay,
			Drums:    p.Drums.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"max_duration": s.maxDuration()}
	if s.studio != nil {
		resp["studio"] = s.studio.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRender renders one track and returns the encoded audio.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	format, err := media.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	enc, err := s.encoders.For(format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	track, err := compose.Render(req.Request)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := enc.Encode(r.Context(), track.PCM, &buf); err != nil {
		s.writeError(w, fmt.Errorf("encode %s: %w", format, err))
		return
	}

	id := uuid.NewString()
	name := style.TrackName(track.Style(), id)
	s.logger.Info("rendered",
		slog.String("style", track.Style()),
		slog.String("name", name),
		slog.Uint64("seed", track.Seed),
		slog.Float64("bpm", track.BPM),
		slog.String("format", string(format)),
		slog.Int("bytes", buf.Len()))

	fileName := "lofi_studio_" + style.Slug(track.Style()) + "." + format.Ext()
	h := w.Header()
	h.Set("Content-Type", format.ContentType())
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	h.Set("X-Track-ID", id)
	h.Set("X-Track-Name", name)
	h.Set("X-Track-Style", track.Style())
	h.Set("X-Track-Seed", strconv.FormatUint(track.Seed, 10))
	h.Set("X-Track-BPM", strconv.FormatFloat(track.BPM, 'f', -1, 64))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleCreateJob runs a full studio job and returns its metadata.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	job := studio.Job{Request: req.Request, Image: req.Image, Video: req.Video}
	for _, f := range req.Formats {
		format, err := media.ParseFormat(f)
		if err != nil {
			s.writeError(w, err)
			return
		}
		job.Formats = append(job.Formats, format)
	}

	res, err := s.studio.Run(r.Context(), job, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rec := s.store(res)

	s.logger.Info("job complete",
		slog.String("id", workspace.ShortID(res.Workspace.ID)),
		slog.String("name", res.Name),
		slog.Duration("elapsed", res.Elapsed))
	writeJSON(w, http.StatusCreated, rec.view)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	rec := s.job(chi.URLParam(r, "id"))
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "job not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec.view)
}

func (s *Server) handleJobFile(w http.ResponseWriter, r *http.Request) {
	rec := s.job(chi.URLParam(r, "id"))
	if rec == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	kind := chi.URLParam(r, "kind")
	path, ok := rec.files[kind]
	if !ok {
		http.Error(w, "File not available", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		http.Error(w, "File not available", http.StatusNotFound)
		return
	}
	if kind != "metadata" && kind != "image" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rec.workspace.FileName(fileExt(kind))))
	}
	http.ServeFile(w, r, path)
}

// jobRecord is what the server keeps of a finished job. It holds no audio.
type jobRecord struct {
	workspace *workspace.Workspace
	files     map[string]string // kind to path on disk
	view      jobView
}

type jobView struct {
	studio.Metadata
	Warnings []string `json:"warnings,omitempty"`
}

// store records a finished job, evicting the oldest once maxJobs are held.
// Evicted jobs keep their files on disk but are no longer served.
func (s *Server) store(res *studio.Result) *jobRecord {
	id := res.Workspace.ID
	rec := &jobRecord{
		workspace: res.Workspace,
		files:     maps.Clone(res.Files),
		view:      jobResponse(res),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		s.jobOrder = append(s.jobOrder, id)
	}
	s.jobs[id] = rec
	for len(s.jobOrder) > s.maxJobs {
		delete(s.jobs, s.jobOrder[0])
		s.jobOrder = s.jobOrder[1:]
	}
	return rec
}

func (s *Server) job(id string) *jobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

func jobResponse(res *studio.Result) jobView {
	m := studio.NewMetadata(res)
	// Expose download routes rather than server paths.
	files := make(map[string]string, len(m.Files))
	for kind := range m.Files {
		files[kind] = "/api/jobs/" + res.Workspace.ID + "/files/" + kind
	}
	m.Files = files
	return jobView{Metadata: m, Warnings: slices.Clone(res.Warnings)}
}

func fileExt(kind string) string {
	if kind == "video" {
		return "mp4"
	}
	return kind
}

// parsedRequest is a decoded body with defaults applied.
type parsedRequest struct {
	renderRequest
	Request compose.Request
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*parsedRequest, error) {
	var req renderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	duration := s.config.DefaultDuration
	if req.Duration != nil {
		duration = *req.Duration
	}
	if limit := s.maxDuration(); duration > limit {
		return nil, fmt.Errorf("%w: %.0fs is over the %.0fs maximum", apperrors.ErrDurationTooLong, duration, limit)
	}
	name := req.Style
	if name == "" {
		name = s.config.DefaultStyle
	}

	return &parsedRequest{
		renderRequest: req,
		Request:       compose.Request{Duration: duration, Style: name, Seed: req.Seed},
	}, nil
}

// maxDuration is the configured limit, capped by the renderer's ceiling.
// A zero config value means no limit beyond that ceiling.
func (s *Server) maxDuration() float64 {
	if m := s.config.MaxDuration; m > 0 && m < compose.MaxDuration {
		return m
	}
	return compose.MaxDuration
}

var errBadRequest = errors.New("bad request")

// writeError maps an error to a status code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, compose.ErrInvalidInput),
		errors.Is(err, apperrors.ErrDurationTooLong),
		errors.Is(err, apperrors.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case apperrors.IsExternal(err):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		s.logger.Error("request failed", slog.Any("error", err))
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
