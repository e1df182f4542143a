package compose

import (
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"

	"vidgen/internal/captions"
	"vidgen/internal/media"
)

// Output geometry and encoder settings.
const (
	OutputWidth   = 1080
	OutputHeight  = 1920
	VideoBitrate  = "4M"
	AudioBitrate  = "192K"
	AudioChannels = 2
)

// PickOffset returns a start offset in whole seconds drawn uniformly from
// [0, max(0, background-narration)]. A background shorter than the narration
// yields 0.
func PickOffset(rng *rand.Rand, background float64, narration int) int {
	latest := int(background) - narration
	if latest <= 0 {
		return 0
	}
	return rng.IntN(latest + 1)
}

// OutputPath places the render next to its series directory under renderDir,
// named after the caption file.
func OutputPath(renderDir, captionPath string) string {
	series := filepath.Base(filepath.Dir(captionPath))
	stem := strings.TrimSuffix(filepath.Base(captionPath), filepath.Ext(captionPath))
	return filepath.Join(renderDir, series, stem+".mp4")
}

// Params is everything needed to build an ffmpeg invocation.
type Params struct {
	Background string
	Audio      string
	Captions   string
	Output     string
	Start      int
	Duration   float64
	Codec      string
	Style      captions.Style
	Threads    int
}

// FilterGraph crops to 9:16 on height, scales to 1080x1920, blurs and burns
// the captions with the style override.
func FilterGraph(captionPath string, style captions.Style) string {
	return strings.Join([]string{
		"crop=ih/16*9:ih",
		"scale=w=" + strconv.Itoa(OutputWidth) + ":h=" + strconv.Itoa(OutputHeight) + ":flags=bicubic",
		"gblur=sigma=2",
		"subtitles=filename=" + escapeFilterValue(captionPath) + ":force_style='" + style.ForceStyle() + "'",
	}, ",")
}

// BuildArgs returns the ffmpeg arguments for one render.
func BuildArgs(p Params) []string {
	codec := p.Codec
	if codec == "" {
		codec = "hevc_nvenc"
	}
	threads := p.Threads
	if threads < 1 {
		threads = 1
	}
	args := []string{
		"-hide_banner",
		"-ss", strconv.Itoa(p.Start),
		"-t", media.FormatTimestamp(p.Duration),
		"-i", p.Background,
		"-i", p.Audio,
		"-map", "0:v",
		"-map", "1:a",
		"-vf", FilterGraph(p.Captions, p.Style),
		"-c:v", codec,
		"-profile:v", "main",
	}
	if strings.HasSuffix(codec, "_nvenc") {
		args = append(args, "-preset", "fast", "-tune", "hq")
	} else {
		args = append(args, "-preset", "fast")
	}
	args = append(args,
		"-b:v", VideoBitrate,
		"-c:a", "aac",
		"-ac", strconv.Itoa(AudioChannels),
		"-b:a", AudioBitrate,
		"-progress", "pipe:1",
		"-nostats",
		p.Output,
		"-y",
		"-threads", strconv.Itoa(threads),
	)
	return args
}

// escapeFilterValue escapes a value for the option level and then the
// filtergraph level of ffmpeg's filter syntax.
func escapeFilterValue(value string) string {
	option := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`).Replace(value)
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`, `,`, `\,`, `;`, `\;`, `[`, `\[`, `]`, `\]`).Replace(option)
}
