package captions

import (
	"strings"
	"unicode/utf8"

	"vidgen/internal/services/whisperx"
)

// Regrouping thresholds.
const (
	SplitGap      = 0.5
	MaxChars      = 38
	MergeGap      = 0.15
	MergeMaxWords = 2
)

// Word is one timed token.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Caption is a run of words displayed together.
type Caption struct {
	Words []Word
}

func (c Caption) Start() float64 {
	if len(c.Words) == 0 {
		return 0
	}
	return c.Words[0].Start
}

func (c Caption) End() float64 {
	if len(c.Words) == 0 {
		return 0
	}
	return c.Words[len(c.Words)-1].End
}

// Text joins the caption's words with single spaces.
func (c Caption) Text() string {
	parts := make([]string, len(c.Words))
	for i, w := range c.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// FromSegments converts WhisperX segments into one caption per segment.
// Unaligned words inherit the previous word's end time; timings are forced to
// be monotonic and non-overlapping.
func FromSegments(segments []whisperx.Segment) []Caption {
	var (
		out     []Caption
		prevEnd float64
	)
	for _, seg := range segments {
		var caption Caption
		for _, raw := range seg.Words {
			text := strings.TrimSpace(raw.Word)
			if text == "" {
				continue
			}
			start, end := prevEnd, prevEnd
			if raw.Start != nil {
				start = *raw.Start
			}
			if raw.End != nil {
				end = *raw.End
			}
			if start < prevEnd {
				start = prevEnd
			}
			if end < start {
				end = start
			}
			caption.Words = append(caption.Words, Word{Text: text, Start: start, End: end})
			prevEnd = end
		}
		if len(caption.Words) > 0 {
			out = append(out, caption)
		}
	}
	return out
}

// Regroup applies gap split, length split and short merge in that order.
// Applying it to its own output returns the same captions.
func Regroup(captions []Caption) []Caption {
	out := SplitByGap(captions, SplitGap)
	out = SplitByLength(out, MaxChars)
	return MergeByGap(out, MergeGap, MergeMaxWords, MaxChars)
}

// SplitByGap breaks a caption wherever the silence between two adjacent words
// exceeds gap seconds.
func SplitByGap(captions []Caption, gap float64) []Caption {
	out := make([]Caption, 0, len(captions))
	for _, c := range captions {
		current := Caption{}
		for i, w := range c.Words {
			if i > 0 && w.Start-c.Words[i-1].End > gap {
				out = append(out, current)
				current = Caption{}
			}
			current.Words = append(current.Words, w)
		}
		if len(current.Words) > 0 {
			out = append(out, current)
		}
	}
	return out
}

// SplitByLength greedily breaks captions whose text is longer than maxChars.
// A single word longer than maxChars stays on its own.
func SplitByLength(captions []Caption, maxChars int) []Caption {
	out := make([]Caption, 0, len(captions))
	for _, c := range captions {
		if textLen(c.Words) <= maxChars {
			out = append(out, c)
			continue
		}
		current := Caption{}
		for _, w := range c.Words {
			if len(current.Words) > 0 && textLen(current.Words)+1+utf8.RuneCountInString(w.Text) > maxChars {
				out = append(out, current)
				current = Caption{}
			}
			current.Words = append(current.Words, w)
		}
		if len(current.Words) > 0 {
			out = append(out, current)
		}
	}
	return out
}

// MergeByGap joins neighbours separated by at most gap seconds when the
// result has no more than maxWords words and maxChars characters.
func MergeByGap(captions []Caption, gap float64, maxWords, maxChars int) []Caption {
	out := make([]Caption, 0, len(captions))
	for _, c := range captions {
		if len(out) > 0 {
			last := &out[len(out)-1]
			merged := append(append([]Word(nil), last.Words...), c.Words...)
			if c.Start()-last.End() <= gap && len(merged) <= maxWords && textLen(merged) <= maxChars {
				last.Words = merged
				continue
			}
		}
		out = append(out, Caption{Words: append([]Word(nil), c.Words...)})
	}
	return out
}

func textLen(words []Word) int {
	n := 0
	for i, w := range words {
		if i > 0 {
			n++
		}
		n += utf8.RuneCountInString(w.Text)
	}
	return n
}
