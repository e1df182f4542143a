package narration

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"vidgen/internal/language"
	"vidgen/internal/logging"
	"vidgen/internal/services"
)

// ErrNoVoices is returned when random selection finds no catalog entry for
// the requested gender and locale.
var ErrNoVoices = errors.New("no voices match filter")

// Request describes how the narration voice should be chosen.
type Request struct {
	Voice  string
	Random bool
	Gender string
	Locale string
}

// Synthesizer resolves voices and renders narration audio with edge-tts.
type Synthesizer struct {
	catalog Catalog
	uvx     string
	run     services.CommandRunner
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewSynthesizer wires a synthesizer. uvx is the launcher used to run edge-tts.
func NewSynthesizer(catalog Catalog, uvx string, logger *slog.Logger) *Synthesizer {
	if strings.TrimSpace(uvx) == "" {
		uvx = "uvx"
	}
	return &Synthesizer{
		catalog: catalog,
		uvx:     uvx,
		run:     services.RunCommand,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:  logging.NewComponentLogger(logger, "narration"),
	}
}

// WithCommandRunner replaces the process runner (tests).
func (s *Synthesizer) WithCommandRunner(run services.CommandRunner) {
	if run != nil {
		s.run = run
	}
}

// WithRand replaces the random source used for voice selection.
func (s *Synthesizer) WithRand(rng *rand.Rand) {
	if rng != nil {
		s.rng = rng
	}
}

// CheckRequest validates a request without touching the catalog. Random
// selection needs both a gender and a locale.
func CheckRequest(req Request) error {
	if !req.Random {
		if strings.TrimSpace(req.Voice) == "" {
			return services.Wrap(services.ErrConfiguration, "narrate", "resolve voice", "voice required", nil)
		}
		return nil
	}
	var missing []string
	if strings.TrimSpace(req.Gender) == "" {
		missing = append(missing, "gender")
	}
	if strings.TrimSpace(req.Locale) == "" {
		missing = append(missing, "locale")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "narrate", "resolve voice",
			"random voice selection requires "+strings.Join(missing, " and "), nil)
	}
	return nil
}

// ResolveVoice returns the explicit voice verbatim, or a uniformly random
// catalog voice matching gender and locale.
func (s *Synthesizer) ResolveVoice(ctx context.Context, req Request) (string, error) {
	if err := CheckRequest(req); err != nil {
		return "", err
	}
	if !req.Random {
		return strings.TrimSpace(req.Voice), nil
	}
	if s.catalog == nil {
		return "", services.Wrap(services.ErrConfiguration, "narrate", "resolve voice", "no voice catalog configured", nil)
	}
	voices, err := s.catalog.Voices(ctx)
	if err != nil {
		return "", err
	}
	matches := Filter(voices, req.Gender, req.Locale)
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrNotFound, "narrate", "resolve voice",
			"no "+req.Gender+" voice for "+req.Locale, ErrNoVoices)
	}
	choice := matches[s.rng.IntN(len(matches))]
	s.logger.Info("voice selected",
		logging.String("voice", choice.ID()),
		logging.Int("candidates", len(matches)),
		logging.String(logging.FieldEventType, "voice_selected"),
	)
	return choice.ID(), nil
}

// Filter keeps voices whose gender and locale exactly match, ignoring case
// and locale separator style.
func Filter(voices []Voice, gender, locale string) []Voice {
	fold := cases.Fold()
	wantGender := fold.String(strings.TrimSpace(gender))
	wantLocale := language.Canonical(locale)
	return lo.Filter(voices, func(v Voice, _ int) bool {
		return fold.String(strings.TrimSpace(v.Gender)) == wantGender &&
			language.Canonical(v.Locale) == wantLocale
	})
}

// Synthesize renders text with voice into outPath. No retry is attempted.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice, outPath string) error {
	if strings.TrimSpace(voice) == "" {
		return services.Wrap(services.ErrConfiguration, "narrate", "synthesize", "voice required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "narrate", "ensure dir", filepath.Dir(outPath), err)
	}
	args := []string{"edge-tts", "--voice", voice, "--text", text, "--write-media", outPath}
	if _, err := s.run(ctx, s.uvx, args...); err != nil {
		return services.Wrap(services.ErrTransient, "narrate", "synthesize", "edge-tts request failed", err)
	}
	return nil
}

// ComposeText builds the synthesizer input: the series title, the body and
// the outro on separate lines.
func ComposeText(series, text, outro string) string {
	return series + ".\n" + text + "\n" + outro
}
