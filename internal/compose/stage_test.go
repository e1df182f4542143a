package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vidgen/internal/captions"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/media"
	"vidgen/internal/services"
	"vidgen/internal/testsupport"
)

type stageFixture struct {
	stage  *Stage
	item   *jobs.Item
	layout jobs.Layout
	marker string
}

// newStageFixture lays out the inputs compose expects after inspection.
func newStageFixture(t *testing.T, ffmpegBody string) *stageFixture {
	t.Helper()
	base := t.TempDir()
	layout := jobs.Layout{OutputDir: filepath.Join(base, "output"), RenderDir: filepath.Join(base, "renders")}
	ffmpeg := testsupport.StubBinary(t, filepath.Join(base, "bin"), "ffmpeg", ffmpegBody)

	item := jobs.NewItem(jobs.Job{ID: "job-1", Series: "Demo Series", Part: 3}, "req-1")
	item.Artifacts.Background = filepath.Join(base, "backgrounds", "clip.mp4")
	item.Artifacts.Narration = layout.NarrationPath(item.Job)
	item.Artifacts.ASS = layout.ASSPath(item.Job)
	testsupport.MediaFiles(t, item.Artifacts.Background, item.Artifacts.Narration)
	testsupport.WriteText(t, item.Artifacts.ASS, "[Script Info]\n")
	item.Background = media.Metadata{Duration: 90, Width: 1920, Height: 1080, HasVideo: true}
	item.Narration = media.Metadata{Duration: 12.4}

	c := NewCompositor(ffmpeg, "", layout.RenderDir, captions.DefaultStyle("Lexend Bold"), logging.NewNop())
	return &stageFixture{
		stage:  NewStage(c, layout, logging.NewNop()),
		item:   item,
		layout: layout,
		marker: filepath.Join(base, "ffmpeg-ran"),
	}
}

func TestStageRendersToLayoutPath(t *testing.T) {
	f := newStageFixture(t, ffmpegStub)

	if err := f.stage.Prepare(context.Background(), f.item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	want := f.layout.VideoPath(f.item.Job)
	if f.item.Artifacts.Video != want {
		t.Fatalf("prepared video = %q, want %q", f.item.Artifacts.Video, want)
	}
	if err := f.stage.Execute(context.Background(), f.item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if f.item.Artifacts.Video != want {
		t.Fatalf("video = %q, want %q", f.item.Artifacts.Video, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("render missing: %v", err)
	}
}

func TestStageRejectsUnknownNarrationDuration(t *testing.T) {
	f := newStageFixture(t, "touch \"$MARKER\"\nexit 0\n")
	t.Setenv("MARKER", f.marker)
	f.item.Narration.Duration = 0

	err := f.stage.Execute(context.Background(), f.item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(f.marker); !os.IsNotExist(statErr) {
		t.Fatal("ffmpeg must not run without a narration duration")
	}
}

func TestStageMissingCaptionsIsNotFound(t *testing.T) {
	f := newStageFixture(t, ffmpegStub)
	if err := os.Remove(f.item.Artifacts.ASS); err != nil {
		t.Fatalf("remove captions: %v", err)
	}

	err := f.stage.Execute(context.Background(), f.item)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStageSurvivesOverlongProgressLine(t *testing.T) {
	// One line longer than the scanner buffer, then more output than a pipe
	// holds. ffmpeg must still be able to exit.
	body := `prev=""
out=""
for a in "$@"; do
  if [ "$a" = "-y" ]; then out="$prev"; fi
  prev="$a"
done
head -c 100000 /dev/zero | tr '\0' 'x'
echo
head -c 300000 /dev/zero | tr '\0' 'y'
echo
echo "progress=end"
printf 'video' > "$out"
`
	f := newStageFixture(t, body)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := f.stage.Execute(ctx, f.item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("render only finished because the deadline expired")
	}
	if f.item.Artifacts.Video != f.layout.VideoPath(f.item.Job) {
		t.Fatalf("video = %q", f.item.Artifacts.Video)
	}
}

func TestStageHealthCheckRequiresEncoder(t *testing.T) {
	f := newStageFixture(t, "exit 0\n")
	listing := []byte(`Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264 / AVC
 A....D aac                  AAC (Advanced Audio Coding)
`)
	f.stage.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return listing, nil
	})
	if h := f.stage.HealthCheck(context.Background()); h.Ready {
		t.Fatalf("expected missing hevc_nvenc to be unhealthy, got %+v", h)
	}

	listing = append(listing, []byte(" V....D hevc_nvenc           NVIDIA NVENC hevc encoder\n")...)
	if h := f.stage.HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected healthy, got %+v", h)
	}

	f.stage.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})
	if h := f.stage.HealthCheck(context.Background()); h.Ready {
		t.Fatal("runner failure must be unhealthy")
	}
}
