package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"vidgen/internal/config"
)

// Requirement defines an external tool the worker shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the pipeline needs for cfg.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{Name: "yt-dlp", Command: cfg.Tools.YTDLP, Description: "Downloads background clips"},
		{Name: "uvx", Command: cfg.Tools.UVX, Description: "Runs edge-tts and whisperx"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "Reads media durations"},
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Renders the final video"},
	}
}

// Check resolves a single command on PATH.
func Check(command string) error {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return fmt.Errorf("command not configured")
	}
	if _, err := exec.LookPath(cmd); err != nil {
		return fmt.Errorf("binary %q not found", cmd)
	}
	return nil
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if err := Check(req.Command); err != nil {
			status.Detail = err.Error()
		} else {
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}
