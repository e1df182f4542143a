package workflow

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"vidgen/internal/config"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
)

// JobLogger creates one JSON log file per job under {log_dir}/jobs.
type JobLogger struct {
	dir   string
	level string
}

// NewJobLogger returns a JobLogger, or nil when no log directory is set.
func NewJobLogger(cfg *config.Config) *JobLogger {
	if cfg == nil || strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return nil
	}
	return &JobLogger{dir: filepath.Join(cfg.Paths.LogDir, "jobs"), level: cfg.Logging.Level}
}

// Path returns the log file for job. Attempts for the same job append to one
// file.
func (l *JobLogger) Path(job jobs.Job) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(job.ID))
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(l.dir, name+".log")
}

// Open returns a handler writing to the job's log file.
func (l *JobLogger) Open(job jobs.Job) (slog.Handler, io.Closer, string, error) {
	path := l.Path(job)
	handler, closer, err := logging.NewFileHandler(path, l.level)
	if err != nil {
		return nil, nil, path, err
	}
	return handler, closer, path, nil
}
