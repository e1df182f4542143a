package narration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/testsupport"
)

func newStageItem(t *testing.T, voice, gender string) (*jobs.Item, jobs.Layout) {
	t.Helper()
	base := t.TempDir()
	layout := jobs.Layout{OutputDir: filepath.Join(base, "output"), RenderDir: filepath.Join(base, "renders")}
	item := jobs.NewItem(jobs.Job{
		ID:       "job-1",
		Language: "en-US",
		Voice:    voice,
		Gender:   gender,
		Series:   "Demo Series",
		Part:     2,
		Text:     "Hello there",
		Outro:    "Bye",
	}, "req-1")
	item.Artifacts.Background = filepath.Join(base, "backgrounds", "clip.mp4")
	testsupport.MediaFiles(t, item.Artifacts.Background)
	return item, layout
}

// writingRunner fakes edge-tts by writing audio to the --write-media target.
func writingRunner(voices *[]string) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		var out, voice string
		for i := 0; i+1 < len(args); i++ {
			switch args[i] {
			case "--write-media":
				out = args[i+1]
			case "--voice":
				voice = args[i+1]
			}
		}
		*voices = append(*voices, voice)
		return nil, os.WriteFile(out, []byte("ID3 audio"), 0o644)
	}
}

func TestRequestForNullVoiceUsesDefault(t *testing.T) {
	req := RequestFor(jobs.Job{Language: "en-US"}, DefaultVoice)
	if req.Random || req.Voice != DefaultVoice {
		t.Fatalf("request = %+v", req)
	}
	if err := CheckRequest(req); err != nil {
		t.Fatalf("default voice request rejected: %v", err)
	}

	req = RequestFor(jobs.Job{Voice: "Random", Language: "en-US", Gender: "Female"}, DefaultVoice)
	if !req.Random || req.Voice != "" || req.Gender != "Female" {
		t.Fatalf("random request = %+v", req)
	}
}

func TestPrepareNullVoiceNeedsNoGender(t *testing.T) {
	item, layout := newStageItem(t, "", "")
	stg := NewStage(NewSynthesizer(nil, "uvx", nil), layout, logging.NewNop())

	if err := stg.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if item.Artifacts.Narration != layout.NarrationPath(item.Job) {
		t.Fatalf("narration path = %q", item.Artifacts.Narration)
	}
	if item.Text != "Demo Series.\nHello there\nBye" {
		t.Fatalf("text = %q", item.Text)
	}
}

func TestPrepareRandomWithoutGenderFails(t *testing.T) {
	item, layout := newStageItem(t, "random", "")
	stg := NewStage(NewSynthesizer(&countingCatalog{voices: sampleVoices}, "uvx", nil), layout, logging.NewNop())

	err := stg.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if item.Artifacts.Narration != "" {
		t.Fatal("rejected job must not get a narration path")
	}
}

func TestExecuteUsesConfiguredDefaultVoice(t *testing.T) {
	item, layout := newStageItem(t, "", "")
	synth := NewSynthesizer(nil, "uvx", nil)
	var voices []string
	synth.WithCommandRunner(writingRunner(&voices))
	stg := NewStage(synth, layout, logging.NewNop())
	stg.WithDefaultVoice(" en-GB-RyanNeural ")

	if err := stg.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := stg.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.Voice != "en-GB-RyanNeural" || len(voices) != 1 || voices[0] != "en-GB-RyanNeural" {
		t.Fatalf("voice = %q, edge-tts voices = %v", item.Voice, voices)
	}
	if _, err := os.Stat(layout.NarrationPath(item.Job)); err != nil {
		t.Fatalf("narration missing: %v", err)
	}
}

func TestExecuteRandomVoiceFromCatalog(t *testing.T) {
	item, layout := newStageItem(t, "random", "female")
	synth := NewSynthesizer(&countingCatalog{voices: sampleVoices}, "uvx", nil)
	var voices []string
	synth.WithCommandRunner(writingRunner(&voices))
	stg := NewStage(synth, layout, logging.NewNop())

	if err := stg.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := stg.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.Voice != "en-US-AriaNeural" {
		t.Fatalf("voice = %q", item.Voice)
	}
}

func TestExecuteMissingBackgroundIsNotFound(t *testing.T) {
	item, layout := newStageItem(t, "en-US-GuyNeural", "")
	if err := os.Remove(item.Artifacts.Background); err != nil {
		t.Fatalf("remove background: %v", err)
	}
	synth := NewSynthesizer(nil, "uvx", nil)
	var voices []string
	synth.WithCommandRunner(writingRunner(&voices))
	stg := NewStage(synth, layout, logging.NewNop())

	if err := stg.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	err := stg.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(voices) != 0 {
		t.Fatal("edge-tts must not run without a background clip")
	}
}

func TestExecuteEmptyAudioIsExternalToolError(t *testing.T) {
	item, layout := newStageItem(t, "en-US-GuyNeural", "")
	synth := NewSynthesizer(nil, "uvx", nil)
	synth.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, nil
	})
	stg := NewStage(synth, layout, logging.NewNop())

	if err := stg.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	err := stg.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
