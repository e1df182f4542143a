package jobs

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Layout derives artifact locations from a job's series and part. Every
// path is a pure function of its inputs so reruns overwrite earlier output.
type Layout struct {
	OutputDir      string
	RenderDir      string
	FinishedPrefix string
}

// SeriesDir returns the directory-safe series name.
func SeriesDir(series string) string {
	return strings.ReplaceAll(strings.TrimSpace(series), " ", "_")
}

// BaseName returns the artifact stem shared by every file of a job.
func BaseName(series string, part Part) string {
	return fmt.Sprintf("%s_%d", SeriesDir(series), int(part))
}

// WorkBase returns the extension-less path for narration and caption files.
func (l Layout) WorkBase(job Job) string {
	return filepath.Join(l.OutputDir, SeriesDir(job.Series), BaseName(job.Series, job.Part))
}

func (l Layout) NarrationPath(job Job) string { return l.WorkBase(job) + ".mp3" }

func (l Layout) SRTPath(job Job) string { return l.WorkBase(job) + ".srt" }

func (l Layout) ASSPath(job Job) string { return l.WorkBase(job) + ".ass" }

// VideoPath returns where the final render is written.
func (l Layout) VideoPath(job Job) string {
	return filepath.Join(l.RenderDir, SeriesDir(job.Series), BaseName(job.Series, job.Part)+".mp4")
}

// FinishedVideo returns the download path reported to the queue.
func (l Layout) FinishedVideo(job Job) string {
	prefix := l.FinishedPrefix
	if prefix == "" {
		prefix = "/renders/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + SeriesDir(job.Series) + "/" + BaseName(job.Series, job.Part) + ".mp4"
}
