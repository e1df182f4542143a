package captions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidgen/internal/services"
	"vidgen/internal/services/whisperx"
)

type fakeTranscriber struct {
	doc    string
	err    error
	locale string
}

func (f *fakeTranscriber) TranscribeFile(_ context.Context, source, outputDir, locale string) (whisperx.TranscribeResult, error) {
	f.locale = locale
	if f.err != nil {
		return whisperx.TranscribeResult{}, f.err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return whisperx.TranscribeResult{}, err
	}
	path := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))+".json")
	return whisperx.TranscribeResult{Model: "small.en", JSONPath: path}, os.WriteFile(path, []byte(f.doc), 0o644)
}

const transcript = `{"segments":[{"text":"Demo. Hello world Bye","start":0,"end":2.3,"words":[
 {"word":"Demo.","start":0.0,"end":0.4},
 {"word":"Hello","start":0.6,"end":0.9},
 {"word":"world","start":0.95,"end":1.3},
 {"word":"Bye","start":2.0,"end":2.3}]}]}`

func TestGenerateWritesBothFormats(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "Demo", "Demo_1")
	fake := &fakeTranscriber{doc: transcript}
	gen := NewGenerator(fake, DefaultStyle(""), nil)

	result, err := gen.Generate(context.Background(), filepath.Join(dir, "Demo", "Demo_1.mp3"), base, "en-US")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.SRT != base+".srt" || result.ASS != base+".ass" {
		t.Fatalf("unexpected paths %+v", result)
	}
	if fake.locale != "en-US" {
		t.Fatalf("locale not forwarded: %q", fake.locale)
	}
	srt, err := os.ReadFile(result.SRT)
	if err != nil {
		t.Fatal(err)
	}
	ass, err := os.ReadFile(result.ASS)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(srt), "-->") != 4 {
		t.Fatalf("expected one SRT cue per word:\n%s", srt)
	}
	if got := strings.Count(string(ass), "Dialogue:"); got != len(result.Captions) {
		t.Fatalf("ASS has %d dialogue lines, want %d", got, len(result.Captions))
	}
	if !strings.Contains(string(srt), "00:00:02,000 --> 00:00:02,300") || !strings.Contains(string(ass), "0:00:02.00,0:00:02.30") {
		t.Fatal("SRT and ASS must share the same timing")
	}
}

func TestGenerateTranscriptionFailure(t *testing.T) {
	gen := NewGenerator(&fakeTranscriber{err: errors.New("cuda oom")}, DefaultStyle(""), nil)
	_, err := gen.Generate(context.Background(), "/a.mp3", filepath.Join(t.TempDir(), "a"), "en-US")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestGenerateEmptyTranscript(t *testing.T) {
	gen := NewGenerator(&fakeTranscriber{doc: `{"segments":[]}`}, DefaultStyle(""), nil)
	_, err := gen.Generate(context.Background(), "/a.mp3", filepath.Join(t.TempDir(), "a"), "en-US")
	if services.Classify(err) != services.KindMedia {
		t.Fatalf("expected media error, got %v", err)
	}
}
