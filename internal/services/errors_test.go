package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"vidgen/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "compose", "ffmpeg", "encode failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"compose", "ffmpeg", "encode failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

type noWorkErr struct{}

func (noWorkErr) Error() string { return "no job" }
func (noWorkErr) NoWork() bool  { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.ErrorKind
	}{
		{"configuration", services.Wrap(services.ErrConfiguration, "narrate", "prepare", "gender missing", nil), services.KindConfiguration},
		{"validation", services.Wrap(services.ErrValidation, "pick", "decode", "bad payload", nil), services.KindConfiguration},
		{"media tool", services.Wrap(services.ErrExternalTool, "inspect", "ffprobe", "", errors.New("exit 1")), services.KindMedia},
		{"no voices", services.Wrap(services.ErrNotFound, "narrate", "catalog", "", nil), services.KindMedia},
		{"transient", services.Wrap(services.ErrTransient, "narrate", "edge-tts", "", nil), services.KindTransient},
		{"deadline", fmt.Errorf("pick: %w", context.DeadlineExceeded), services.KindTransient},
		{"no work", fmt.Errorf("poll: %w", noWorkErr{}), services.KindNoWork},
		{"joined", errors.Join(errors.New("report failed"), services.Wrap(services.ErrExternalTool, "compose", "", "", nil)), services.KindMedia},
		{"plain", errors.New("mystery"), services.KindUnknown},
		{"nil", nil, services.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetailsExtractsStageContext(t *testing.T) {
	cause := errors.New("exit status 1")
	err := fmt.Errorf("job abc: %w", services.Wrap(services.ErrExternalTool, "acquire", "yt-dlp", "download failed", cause))
	details := services.Details(err)
	if details.Kind != services.KindMedia {
		t.Fatalf("kind = %q", details.Kind)
	}
	if details.Stage != "acquire" || details.Operation != "yt-dlp" || details.Message != "download failed" {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.Cause != cause {
		t.Fatalf("cause = %v", details.Cause)
	}
	if details.Hint == "" {
		t.Fatal("expected hint")
	}
}
