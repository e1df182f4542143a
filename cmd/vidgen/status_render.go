package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 22

type statusLine struct {
	Label   string
	Kind    statusKind
	Message string
}

func renderStatusLine(line statusLine, colorize bool) string {
	text := "[" + statusKindLabel(line.Kind) + "]"
	if line.Message != "" {
		text += " " + line.Message
	}
	base := fmt.Sprintf("  %-*s %s", statusLabelWidth, line.Label+":", text)
	if colorize {
		if color := statusKindColor(line.Kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func renderSection(w io.Writer, title string, lines []statusLine, colorize bool) {
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		header = ansiBlue + header + ansiReset
	}
	fmt.Fprintln(w, header)
	for _, line := range lines {
		fmt.Fprintln(w, renderStatusLine(line, colorize))
	}
	fmt.Fprintln(w)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func passFail(passed bool) statusKind {
	if passed {
		return statusOK
	}
	return statusError
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
