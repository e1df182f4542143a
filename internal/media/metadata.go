package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vidgen/internal/media/ffprobe"
	"vidgen/internal/services"
)

// ErrNoDuration is returned when neither the stream duration nor the
// DURATION tag can be resolved.
var ErrNoDuration = errors.New("media duration unavailable")

// Metadata describes a probed media file. Width, Height are zero for
// audio-only assets; BitRate is only reported for those.
type Metadata struct {
	Duration float64
	Width    int
	Height   int
	BitRate  int64
	HasVideo bool
}

// Inspect probes path with ffprobe and reduces the result to Metadata.
func Inspect(ctx context.Context, binary, path string) (Metadata, error) {
	result, err := ffprobe.Inspect(ctx, binary, path)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "inspect", "ffprobe", path, err)
	}
	return FromProbe(result)
}

// FromProbe selects the first video and audio streams and resolves duration
// from the audio stream, falling back to its DURATION tag.
func FromProbe(result ffprobe.Result) (Metadata, error) {
	audio, hasAudio := result.FirstStream("audio")
	video, hasVideo := result.FirstStream("video")
	if !hasAudio {
		return Metadata{}, services.Wrap(services.ErrValidation, "inspect", "select streams", "no audio stream", ErrNoDuration)
	}

	duration, err := streamDuration(audio)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrValidation, "inspect", "resolve duration", result.Format.Filename, err)
	}

	if !hasVideo {
		bitRate := ffprobe.ParseFloat(audio.BitRate)
		if math.IsNaN(bitRate) || bitRate < 0 {
			bitRate = 0
		}
		return Metadata{Duration: duration, BitRate: int64(bitRate)}, nil
	}
	return Metadata{Duration: duration, Width: video.Width, Height: video.Height, HasVideo: true}, nil
}

func streamDuration(stream ffprobe.Stream) (float64, error) {
	if value := strings.TrimSpace(stream.Duration); value != "" {
		if d, err := strconv.ParseFloat(value, 64); err == nil && d >= 0 {
			return d, nil
		}
	}
	tag := strings.TrimSpace(stream.Tag("DURATION"))
	if tag == "" {
		return 0, ErrNoDuration
	}
	d, err := ParseTimestamp(tag)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoDuration, err)
	}
	return d, nil
}

// ParseTimestamp converts HH:MM:SS[.fraction] into seconds.
func ParseTimestamp(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: expected HH:MM:SS.ffffff", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("timestamp %q: bad hours", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("timestamp %q: bad minutes", value)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("timestamp %q: bad seconds", value)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm, truncating to milliseconds.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds * 1000)
	ms := total % 1000
	s := (total / 1000) % 60
	m := (total / 60000) % 60
	h := total / 3600000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
