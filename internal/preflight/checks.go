package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vidgen/internal/config"
	"vidgen/internal/deps"
	"vidgen/internal/narration"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckQueue verifies the queue API answers within five seconds.
func CheckQueue(ctx context.Context, queue Pinger) Result {
	const name = "Queue API"
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := queue.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckCatalog verifies the voice catalog loads and is not empty.
func CheckCatalog(ctx context.Context, catalog narration.Catalog) Result {
	const name = "Voice catalog"
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	voices, err := catalog.Voices(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	if len(voices) == 0 {
		return Result{Name: name, Detail: "catalog is empty"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d voices", len(voices))}
}

// CheckStorageFromConfig reports whether the render mirror is usable.
func CheckStorageFromConfig(cfg *config.Config) Result {
	const name = "Storage"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Storage.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Storage.Bucket) == "" {
		return Result{Name: name, Detail: "Missing bucket"}
	}
	if cfg.Storage.AccessKeyID == "" || cfg.Storage.SecretAccessKey == "" {
		return Result{Name: name, Detail: "Missing credentials"}
	}
	target := cfg.Storage.Bucket
	if cfg.Storage.Endpoint != "" {
		target = cfg.Storage.Endpoint + "/" + target
	}
	return Result{Name: name, Passed: true, Detail: target}
}

// CheckNotificationsFromConfig reports the ntfy configuration.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Notifications.NtfyTopic}
}

// CheckSystemDeps evaluates the external binaries for cfg. Both the worker
// and the CLI status command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
