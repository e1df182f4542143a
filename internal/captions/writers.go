package captions

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const srtHighlight = "#00ff00"

// WriteSRT emits word-level SRT: every word of a caption gets its own cue
// showing the whole caption with that word highlighted.
func WriteSRT(w io.Writer, captions []Caption) error {
	index := 1
	for _, c := range captions {
		for i, word := range c.Words {
			if word.End <= word.Start {
				continue
			}
			parts := make([]string, len(c.Words))
			for j, other := range c.Words {
				if j == i {
					parts[j] = fmt.Sprintf(`<font color="%s">%s</font>`, srtHighlight, other.Text)
				} else {
					parts[j] = other.Text
				}
			}
			if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
				index, srtTime(word.Start), srtTime(word.End), strings.Join(parts, " ")); err != nil {
				return err
			}
			index++
		}
	}
	return nil
}

// WriteASS emits an ASS script with one karaoke line per caption; each word
// carries a \kf tag so the highlight sweeps in step with the narration.
func WriteASS(w io.Writer, captions []Caption, style Style) error {
	header := strings.Join([]string{
		"[Script Info]",
		"ScriptType: v4.00+",
		"PlayResX: 384",
		"PlayResY: 288",
		"ScaledBorderAndShadow: yes",
		"WrapStyle: 0",
		"",
		"[V4+ Styles]",
		"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding",
		style.assLine(),
		"",
		"[Events]",
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text",
		"",
	}, "\n")
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, c := range captions {
		var text strings.Builder
		boundary := centis(c.Start())
		for i, word := range c.Words {
			end := centis(word.End)
			if i > 0 {
				text.WriteByte(' ')
			}
			fmt.Fprintf(&text, `{\kf%d}%s`, max(end-boundary, 0), escapeASS(word.Text))
			boundary = max(end, boundary)
		}
		if _, err := fmt.Fprintf(w, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			assTime(c.Start()), assTime(c.End()), style.Name, text.String()); err != nil {
			return err
		}
	}
	return nil
}

func centis(seconds float64) int64 {
	return int64(math.Round(seconds * 100))
}

func srtTime(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3600000, (ms/60000)%60, (ms/1000)%60, ms%1000)
}

func assTime(seconds float64) string {
	cs := centis(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", cs/360000, (cs/6000)%60, (cs/100)%60, cs%100)
}

func escapeASS(text string) string {
	text = strings.ReplaceAll(text, "{", "(")
	text = strings.ReplaceAll(text, "}", ")")
	return strings.ReplaceAll(text, "\n", " ")
}
