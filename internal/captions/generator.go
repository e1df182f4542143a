package captions

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/services/whisperx"
)

// Transcriber produces a WhisperX JSON document for an audio file.
type Transcriber interface {
	TranscribeFile(ctx context.Context, source, outputDir, locale string) (whisperx.TranscribeResult, error)
}

// Result lists the caption files written for one narration.
type Result struct {
	SRT      string
	ASS      string
	Captions []Caption
}

// Generator transcribes narration audio and writes SRT and ASS captions from
// a single regrouped timing.
type Generator struct {
	transcriber Transcriber
	style       Style
	logger      *slog.Logger
}

// NewGenerator wires a generator around a transcriber.
func NewGenerator(transcriber Transcriber, style Style, logger *slog.Logger) *Generator {
	return &Generator{
		transcriber: transcriber,
		style:       style,
		logger:      logging.NewComponentLogger(logger, "captions"),
	}
}

// Generate writes basePath+".srt" and basePath+".ass" for audioPath. Reruns
// with the same basePath overwrite earlier files.
func (g *Generator) Generate(ctx context.Context, audioPath, basePath, locale string) (Result, error) {
	scratch := filepath.Join(filepath.Dir(basePath), ".whisperx")
	transcript, err := g.transcriber.TranscribeFile(ctx, audioPath, scratch, locale)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "caption", "transcribe", audioPath, err)
	}
	segments, err := whisperx.LoadSegments(transcript.JSONPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "caption", "load transcript", transcript.JSONPath, err)
	}

	captions := Regroup(FromSegments(segments))
	if len(captions) == 0 {
		return Result{}, services.Wrap(services.ErrExternalTool, "caption", "regroup", "transcript contains no timed words", nil)
	}

	result := Result{SRT: basePath + ".srt", ASS: basePath + ".ass", Captions: captions}
	var srt, ass bytes.Buffer
	if err := WriteSRT(&srt, captions); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "caption", "render srt", "", err)
	}
	if err := WriteASS(&ass, captions, g.style); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "caption", "render ass", "", err)
	}
	if err := os.MkdirAll(filepath.Dir(basePath), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "caption", "ensure dir", filepath.Dir(basePath), err)
	}
	if err := os.WriteFile(result.SRT, srt.Bytes(), 0o644); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "caption", "write srt", result.SRT, err)
	}
	if err := os.WriteFile(result.ASS, ass.Bytes(), 0o644); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "caption", "write ass", result.ASS, err)
	}

	g.logger.Info("captions written",
		logging.String("model", transcript.Model),
		logging.Int("captions", len(captions)),
		logging.String("srt", result.SRT),
		logging.String("ass", result.ASS),
		logging.String(logging.FieldEventType, "captions_written"),
	)
	return result, nil
}
