package media

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"vidgen/internal/media/ffprobe"
	"vidgen/internal/services"
	"vidgen/internal/testsupport"
)

func TestFromProbeVideo(t *testing.T) {
	meta, err := FromProbe(ffprobe.Result{Streams: []ffprobe.Stream{
		{CodecType: "video", Width: 1920, Height: 1080},
		{CodecType: "audio", Duration: "30.5"},
	}})
	if err != nil {
		t.Fatalf("FromProbe: %v", err)
	}
	if !meta.HasVideo || meta.Width != 1920 || meta.Height != 1080 || meta.Duration != 30.5 {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if meta.BitRate != 0 {
		t.Fatalf("bit rate should be omitted for video assets, got %d", meta.BitRate)
	}
}

func TestFromProbeAudioOnlyUsesDurationTag(t *testing.T) {
	meta, err := FromProbe(ffprobe.Result{Streams: []ffprobe.Stream{
		{CodecType: "audio", BitRate: "48000", Tags: map[string]string{"DURATION": "00:01:02.500000"}},
	}})
	if err != nil {
		t.Fatalf("FromProbe: %v", err)
	}
	if meta.HasVideo || meta.Width != 0 {
		t.Fatalf("expected audio-only metadata, got %+v", meta)
	}
	if math.Abs(meta.Duration-62.5) > 1e-9 {
		t.Fatalf("duration = %v, want 62.5", meta.Duration)
	}
	if meta.BitRate != 48000 {
		t.Fatalf("bit rate = %d", meta.BitRate)
	}
}

func TestFromProbeWithoutDuration(t *testing.T) {
	_, err := FromProbe(ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}})
	if !errors.Is(err, ErrNoDuration) {
		t.Fatalf("expected ErrNoDuration, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"00:00:12.500000", 12.5, true},
		{"01:02:03", 3723, true},
		{"00:61:00", 0, false},
		{"12.5", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseTimestamp(%q) err = %v", tt.in, err)
		}
		if tt.ok && math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := map[float64]string{
		0:       "00:00:00.000",
		45.25:   "00:00:45.250",
		3723.5:  "01:02:03.500",
		-3:      "00:00:00.000",
		59.9999: "00:00:59.999",
	}
	for in, want := range tests {
		if got := FormatTimestamp(in); got != want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestInspectRunsFFprobe(t *testing.T) {
	dir := t.TempDir()
	stub := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffprobe", `cat <<'JSON'
{"streams":[{"codec_type":"video","width":1280,"height":720},{"codec_type":"audio","duration":"9.75"}],"format":{"filename":"bg.mp4"}}
JSON
`)
	meta, err := Inspect(context.Background(), stub, filepath.Join(dir, "bg.mp4"))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if meta.Width != 1280 || meta.Height != 720 || meta.Duration != 9.75 {
		t.Fatalf("unexpected metadata %+v", meta)
	}
}

func TestInspectFailureIsExternalToolError(t *testing.T) {
	dir := t.TempDir()
	stub := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffprobe", "echo broken >&2\nexit 1\n")
	_, err := Inspect(context.Background(), stub, filepath.Join(dir, "missing.mp4"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
