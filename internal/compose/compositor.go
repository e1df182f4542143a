package compose

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"vidgen/internal/captions"
	"vidgen/internal/fileutil"
	"vidgen/internal/logging"
	"vidgen/internal/services"
)

// Input names the artifacts a render consumes.
type Input struct {
	Background         string
	Audio              string
	Captions           string
	BackgroundDuration float64
	AudioDuration      float64
}

// Render describes a finished composition.
type Render struct {
	Path   string
	Offset int
	Args   []string
}

// Compositor renders background, narration and captions into the final
// vertical video with ffmpeg.
type Compositor struct {
	ffmpeg    string
	codec     string
	renderDir string
	style     captions.Style
	rng       *rand.Rand
	logger    *slog.Logger
}

// NewCompositor wires a compositor writing into renderDir.
func NewCompositor(ffmpeg, codec, renderDir string, style captions.Style, logger *slog.Logger) *Compositor {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	return &Compositor{
		ffmpeg:    ffmpeg,
		codec:     codec,
		renderDir: renderDir,
		style:     style,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:    logging.NewComponentLogger(logger, "compose"),
	}
}

// WithRand replaces the random source used for the start offset.
func (c *Compositor) WithRand(rng *rand.Rand) {
	if rng != nil {
		c.rng = rng
	}
}

// Compose trims the background to the narration length at a random offset
// and renders the captioned video.
func (c *Compositor) Compose(ctx context.Context, in Input) (Render, error) {
	narration := int(math.Round(in.AudioDuration))
	start := PickOffset(c.rng, in.BackgroundDuration, narration)
	if narration > int(in.BackgroundDuration) {
		logging.WarnWithContext(c.logger, "narration longer than background; starting at 0", "background_too_short",
			logging.Float64("background_seconds", in.BackgroundDuration),
			logging.Float64("narration_seconds", in.AudioDuration),
			logging.String(logging.FieldErrorHint, "use a longer background clip"),
			logging.String(logging.FieldImpact, "render may be shorter than the narration"),
		)
	}

	output := OutputPath(c.renderDir, in.Captions)
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Render{}, services.Wrap(services.ErrConfiguration, "compose", "ensure dir", filepath.Dir(output), err)
	}

	args := BuildArgs(Params{
		Background: in.Background,
		Audio:      in.Audio,
		Captions:   in.Captions,
		Output:     output,
		Start:      start,
		Duration:   in.AudioDuration,
		Codec:      c.codec,
		Style:      c.style,
		Threads:    max(1, runtime.NumCPU()-2),
	})
	c.logger.Debug("ffmpeg command", logging.String("args", strings.Join(args, " ")))

	if err := c.run(ctx, args, in.AudioDuration); err != nil {
		return Render{}, services.Wrap(services.ErrExternalTool, "compose", "ffmpeg", output, err)
	}
	if err := fileutil.RequireFile(output); err != nil {
		return Render{}, services.Wrap(services.ErrExternalTool, "compose", "verify output", output, err)
	}

	c.logger.Info("render finished",
		logging.String("output", output),
		logging.Int("offset_seconds", start),
		logging.Float64("duration_seconds", in.AudioDuration),
		logging.String(logging.FieldEventType, "render_finished"),
	)
	return Render{Path: output, Offset: start, Args: args}, nil
}

func (c *Compositor) run(ctx context.Context, args []string, total float64) error {
	cmd := exec.CommandContext(ctx, c.ffmpeg, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	sampler := logging.NewProgressSampler(5)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		percent, ok := parseProgress(scanner.Text(), total)
		if ok && sampler.ShouldLog(percent) {
			c.logger.Info("render progress",
				logging.Float64("percent", math.Round(percent)),
				logging.String(logging.FieldEventType, "render_progress"),
			)
		}
	}
	// A scan error (over-long line) stops the loop; keep ffmpeg from
	// blocking on a full pipe.
	_, _ = io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %s", err, tailLines(stderr.String(), 5))
	}
	return nil
}

// parseProgress converts an ffmpeg -progress line into a percentage of total.
func parseProgress(line string, total float64) (float64, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return 0, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// ffmpeg reports microseconds under both keys.
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || total <= 0 || us < 0 {
			return 0, false
		}
		return math.Min(100, float64(us)/1e6/total*100), true
	case "progress":
		if value == "end" {
			return 100, true
		}
	}
	return 0, false
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// FFmpeg returns the configured ffmpeg binary.
func (c *Compositor) FFmpeg() string { return c.ffmpeg }

// Codec returns the configured video encoder, defaulting to hevc_nvenc.
func (c *Compositor) Codec() string {
	if c.codec == "" {
		return "hevc_nvenc"
	}
	return c.codec
}
