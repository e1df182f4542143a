package narration

import (
	"context"
	"log/slog"
	"strings"

	"vidgen/internal/deps"
	"vidgen/internal/fileutil"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// DefaultVoice narrates jobs whose tts field is null or empty.
const DefaultVoice = "en-US-ChristopherNeural"

// RequestFor derives the voice request from a job. A null or empty tts
// resolves to defaultVoice; only tts "random" asks for a catalog pick.
func RequestFor(job jobs.Job, defaultVoice string) Request {
	if job.WantsRandomVoice() {
		return Request{Random: true, Gender: job.Gender, Locale: job.Language}
	}
	return Request{
		Voice:  job.VoiceOr(defaultVoice),
		Gender: job.Gender,
		Locale: job.Language,
	}
}

// Stage composes the narration text and synthesizes it to mp3.
type Stage struct {
	synth        *Synthesizer
	layout       jobs.Layout
	defaultVoice string
	logger       *slog.Logger
}

// NewStage wraps a synthesizer as a pipeline stage. Jobs without a voice use
// DefaultVoice until WithDefaultVoice says otherwise.
func NewStage(synth *Synthesizer, layout jobs.Layout, logger *slog.Logger) *Stage {
	return &Stage{
		synth:        synth,
		layout:       layout,
		defaultVoice: DefaultVoice,
		logger:       logging.NewComponentLogger(logger, "narrate"),
	}
}

// WithDefaultVoice sets the voice used when a job's tts is null or empty.
func (s *Stage) WithDefaultVoice(voice string) {
	if voice = strings.TrimSpace(voice); voice != "" {
		s.defaultVoice = voice
	}
}

// SetLogger swaps in the per-job logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String(logging.FieldComponent, "narrate"))
		s.synth.logger = s.logger
	}
}

// Prepare rejects unusable voice hints and fixes the narration path.
func (s *Stage) Prepare(_ context.Context, item *jobs.Item) error {
	if err := CheckRequest(RequestFor(item.Job, s.defaultVoice)); err != nil {
		return err
	}
	item.Text = ComposeText(item.Job.Series, item.Job.Text, item.Job.Outro)
	item.Artifacts.Narration = s.layout.NarrationPath(item.Job)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *jobs.Item) error {
	if err := fileutil.RequireFile(item.Artifacts.Background); err != nil {
		return services.Wrap(services.ErrNotFound, "narrate", "validate inputs", "background clip missing", err)
	}
	voice, err := s.synth.ResolveVoice(ctx, RequestFor(item.Job, s.defaultVoice))
	if err != nil {
		return err
	}
	item.Voice = voice

	out := item.Artifacts.Narration
	if err := s.synth.Synthesize(ctx, item.Text, voice, out); err != nil {
		return err
	}
	if err := fileutil.RequireFile(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "narrate", "verify audio", out, err)
	}
	logging.WithContext(ctx, s.logger).Info("narration written",
		logging.String("voice", voice),
		logging.String("path", out),
		logging.String(logging.FieldEventType, "narration_written"),
	)
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	if err := deps.Check(s.synth.uvx); err != nil {
		return stage.Unhealthy("narrate", err.Error())
	}
	return stage.Healthy("narrate")
}
