package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestReporterOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	r.StartStage(StageCompose)
	r.Update("hidden %d", 1)
	r.StageComplete("done in %s", "1s")
	r.Warning("no %s", "ffmpeg")

	want := "[1/5] Composing track...\n       done in 1s\nWarning: no ffmpeg\n"
	if buf.String() != want {
		t.Errorf("output = %q\nwant     %q", buf.String(), want)
	}
}

func TestReporterVerboseAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true).WithPrefix("[piano]")
	r.Update("step %d", 2)
	r.StartStage(StageVideo)
	out := buf.String()
	if !strings.Contains(out, "[piano]        step 2\n") || !strings.Contains(out, "[piano] [4/5] Muxing video...") {
		t.Errorf("output = %q", out)
	}
}

func TestNilReporter(t *testing.T) {
	var r *Reporter
	r.StartStage(StageEncode)
	r.Update("x")
	r.StageComplete("x")
	r.Warning("x")
	if r.WithPrefix("p") != nil || r.Elapsed() != 0 {
		t.Error("nil reporter should stay inert")
	}
}

func TestStageOrder(t *testing.T) {
	stages := []Stage{StageCompose, StageEncode, StageArtwork, StageVideo, StageMetadata}
	for i, s := range stages {
		if s.Number != i+1 || s.Total != len(stages) {
			t.Errorf("stage %s = %d/%d", s.Name, s.Number, s.Total)
		}
	}
}
