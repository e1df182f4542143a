package narration

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vidgen/internal/services"
)

var sampleVoices = []Voice{
	{ShortName: "en-US-ChristopherNeural", Gender: "Male", Locale: "en-US"},
	{ShortName: "en-US-GuyNeural", Gender: "Male", Locale: "en-US"},
	{ShortName: "en-US-AriaNeural", Gender: "Female", Locale: "en-US"},
	{ShortName: "es-MX-JorgeNeural", Gender: "Male", Locale: "es-MX"},
}

type countingCatalog struct {
	voices []Voice
	calls  atomic.Int32
}

func (c *countingCatalog) Voices(context.Context) ([]Voice, error) {
	c.calls.Add(1)
	return c.voices, nil
}

func TestComposeText(t *testing.T) {
	if got := ComposeText("Demo", "Hello world", "Bye"); got != "Demo.\nHello world\nBye" {
		t.Fatalf("ComposeText = %q", got)
	}
}

func TestResolveExplicitVoiceSkipsCatalog(t *testing.T) {
	catalog := &countingCatalog{voices: sampleVoices}
	s := NewSynthesizer(catalog, "uvx", nil)
	voice, err := s.ResolveVoice(context.Background(), Request{Voice: " en-US-ChristopherNeural "})
	if err != nil {
		t.Fatalf("ResolveVoice: %v", err)
	}
	if voice != "en-US-ChristopherNeural" {
		t.Fatalf("voice = %q", voice)
	}
	if catalog.calls.Load() != 0 {
		t.Fatal("explicit voices must not query the catalog")
	}
}

func TestResolveRandomRequiresHints(t *testing.T) {
	catalog := &countingCatalog{voices: sampleVoices}
	s := NewSynthesizer(catalog, "uvx", nil)
	for _, req := range []Request{
		{Random: true, Locale: "en-US"},
		{Random: true, Gender: "Male"},
	} {
		_, err := s.ResolveVoice(context.Background(), req)
		if !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("expected configuration error for %+v, got %v", req, err)
		}
	}
	if catalog.calls.Load() != 0 {
		t.Fatal("missing hints must fail before the catalog is queried")
	}
}

func TestResolveRandomMatchesFilter(t *testing.T) {
	s := NewSynthesizer(&countingCatalog{voices: sampleVoices}, "uvx", nil)
	s.WithRand(rand.New(rand.NewPCG(7, 11)))
	allowed := map[string]bool{"en-US-ChristopherNeural": true, "en-US-GuyNeural": true}
	for i := 0; i < 25; i++ {
		voice, err := s.ResolveVoice(context.Background(), Request{Random: true, Gender: "male", Locale: "en-us"})
		if err != nil {
			t.Fatalf("ResolveVoice: %v", err)
		}
		if !allowed[voice] {
			t.Fatalf("voice %q does not match gender/locale", voice)
		}
	}
}

func TestResolveRandomNoMatches(t *testing.T) {
	s := NewSynthesizer(&countingCatalog{voices: sampleVoices}, "uvx", nil)
	_, err := s.ResolveVoice(context.Background(), Request{Random: true, Gender: "Female", Locale: "es-MX"})
	if !errors.Is(err, ErrNoVoices) {
		t.Fatalf("expected ErrNoVoices, got %v", err)
	}
	if services.Classify(err) != services.KindMedia {
		t.Fatalf("expected media kind, got %s", services.Classify(err))
	}
	if errors.Is(err, services.ErrConfiguration) {
		t.Fatal("empty filter must be distinct from a configuration error")
	}
}

func TestSynthesizeInvokesEdgeTTS(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Demo", "Demo_1.mp3")
	s := NewSynthesizer(nil, "uvx", nil)
	var got []string
	s.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		got = append([]string{name}, args...)
		return nil, os.WriteFile(out, []byte("ID3"), 0o644)
	})
	text := ComposeText("Demo", "Hello world", "Bye")
	if err := s.Synthesize(context.Background(), text, "en-US-ChristopherNeural", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	want := []string{"uvx", "edge-tts", "--voice", "en-US-ChristopherNeural", "--text", text, "--write-media", out}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestSynthesizeFailureIsTransient(t *testing.T) {
	s := NewSynthesizer(nil, "uvx", nil)
	s.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("connection reset")
	})
	err := s.Synthesize(context.Background(), "hi", "en-US-GuyNeural", filepath.Join(t.TempDir(), "a.mp3"))
	if services.Classify(err) != services.KindTransient {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestHTTPCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sampleVoices)
	}))
	defer srv.Close()

	voices, err := NewCatalog(srv.URL, "", time.Second).Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices: %v", err)
	}
	if len(voices) != len(sampleVoices) || voices[2].ShortName != "en-US-AriaNeural" {
		t.Fatalf("unexpected voices %+v", voices)
	}
}

func TestFileCatalogTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voices.json")
	data, _ := json.Marshal(sampleVoices[:1])
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	voices, err := NewCatalog("http://127.0.0.1:1/unused", path, time.Second).Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices: %v", err)
	}
	if len(voices) != 1 || voices[0].ID() != "en-US-ChristopherNeural" {
		t.Fatalf("unexpected voices %+v", voices)
	}
}

func TestParseVoiceListAndFilterLanguages(t *testing.T) {
	listing := `Name: en-US-AriaNeural
Gender: Female

Name: fr-FR-DeniseNeural
Gender: Female

Name: es-ES-AlvaroNeural
Gender: Male
`
	voices, err := ParseVoiceList(strings.NewReader(listing))
	if err != nil {
		t.Fatalf("ParseVoiceList: %v", err)
	}
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(voices))
	}
	if voices[2].Locale != "es-ES" || voices[2].ShortName != "es-ES-AlvaroNeural" {
		t.Fatalf("unexpected parsed voice %+v", voices[2])
	}

	kept := FilterLanguages(voices, []string{"en", "es"})
	if len(kept) != 2 || kept[0].ID() != "en-US-AriaNeural" || kept[1].ID() != "es-ES-AlvaroNeural" {
		t.Fatalf("unexpected filtered voices %+v", kept)
	}
}
