package captions

import (
	"fmt"
	"strings"
)

// Style is the named caption look shared by the ASS writer and the
// compositor's force_style override.
type Style struct {
	Name            string
	FontName        string
	FontSize        int
	PrimaryColour   string
	SecondaryColour string
	OutlineColour   string
	BackColour      string
	Bold            bool
	BorderStyle     int
	Outline         int
	Shadow          int
	Blur            int
	Alignment       int
	MarginL         int
	MarginR         int
	MarginV         int
}

// DefaultStyle returns the top-anchored, bordered preset used for every
// render. fontName overrides the default Lexend Bold when set.
func DefaultStyle(fontName string) Style {
	if strings.TrimSpace(fontName) == "" {
		fontName = "Lexend Bold"
	}
	return Style{
		Name:            "Default",
		FontName:        fontName,
		FontSize:        15,
		PrimaryColour:   "&H0000FF00",
		SecondaryColour: "&H00FFFFFF",
		OutlineColour:   "&H00000000",
		BackColour:      "&H80000000",
		BorderStyle:     7,
		Outline:         3,
		Shadow:          5,
		Blur:            15,
		Alignment:       8,
		MarginL:         45,
		MarginR:         55,
		MarginV:         10,
	}
}

// ForceStyle renders the override string passed to ffmpeg's subtitles filter.
func (s Style) ForceStyle() string {
	return fmt.Sprintf("Alignment=%d,BorderStyle=%d,Outline=%d,Shadow=%d,Blur=%d,Fontsize=%d,MarginL=%d,MarginR=%d,FontName=%s",
		s.Alignment, s.BorderStyle, s.Outline, s.Shadow, s.Blur, s.FontSize, s.MarginL, s.MarginR, s.FontName)
}

func (s Style) assLine() string {
	bold := 0
	if s.Bold {
		bold = -1
	}
	return fmt.Sprintf("Style: %s,%s,%d,%s,%s,%s,%s,%d,0,0,0,100,100,0,0,%d,%d,%d,%d,%d,%d,%d,1",
		s.Name, s.FontName, s.FontSize, s.PrimaryColour, s.SecondaryColour, s.OutlineColour, s.BackColour,
		bold, s.BorderStyle, s.Outline, s.Shadow, s.Alignment, s.MarginL, s.MarginR, s.MarginV)
}
