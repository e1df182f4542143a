package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vidgen/internal/logging"
	"vidgen/internal/services"
)

// Fetcher downloads background clips with yt-dlp into a fixed directory.
type Fetcher struct {
	binary string
	dir    string
	run    services.CommandRunner
	rng    *rand.Rand
	logger *slog.Logger
}

// NewFetcher returns a Fetcher that stores downloads under dir.
func NewFetcher(binary, dir string, logger *slog.Logger) *Fetcher {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	return &Fetcher{
		binary: binary,
		dir:    dir,
		run:    services.RunCommand,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logging.NewComponentLogger(logger, "acquire"),
	}
}

// WithCommandRunner replaces the process runner (tests).
func (f *Fetcher) WithCommandRunner(run services.CommandRunner) {
	if run != nil {
		f.run = run
	}
}

// WithRand replaces the random source used by PickRandom.
func (f *Fetcher) WithRand(rng *rand.Rand) {
	if rng != nil {
		f.rng = rng
	}
}

// Dir returns the backgrounds directory.
func (f *Fetcher) Dir() string { return f.dir }

// Binary returns the configured downloader executable.
func (f *Fetcher) Binary() string { return f.binary }

func (f *Fetcher) baseArgs(url string) []string {
	return []string{"--restrict-filenames", "--merge-output-format", "mp4", "-P", f.dir, url}
}

// Fetch downloads url and returns the absolute path of the stored clip. The
// same URL always resolves to the same file name.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", services.Wrap(services.ErrValidation, "acquire", "fetch", "background url required", nil)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "acquire", "ensure dir", f.dir, err)
	}

	if _, err := f.run(ctx, f.binary, f.baseArgs(url)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "acquire", "download", url, err)
	}

	args := append([]string{"--print", "filename"}, f.baseArgs(url)...)
	out, err := f.run(ctx, f.binary, args...)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "acquire", "resolve filename", url, err)
	}
	name := lastLine(string(out))
	if name == "" {
		return "", services.Wrap(services.ErrExternalTool, "acquire", "resolve filename", "yt-dlp printed no filename", nil)
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, filepath.Base(name))
	}
	f.logger.Info("background downloaded",
		logging.String("url", url),
		logging.String("path", path),
		logging.String(logging.FieldEventType, "background_downloaded"),
	)
	return path, nil
}

// PickRandom returns a random clip already present in the backgrounds
// directory. Hidden files and directories are skipped.
func (f *Fetcher) PickRandom() (string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil && !os.IsNotExist(err) {
		return "", services.Wrap(services.ErrConfiguration, "acquire", "list backgrounds", f.dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return "", services.Wrap(services.ErrNotFound, "acquire", "pick background",
			fmt.Sprintf("no background clips in %s", f.dir), nil)
	}
	sort.Strings(names)
	choice := names[f.rng.IntN(len(names))]
	return filepath.Join(f.dir, choice), nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
