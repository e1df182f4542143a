package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"vidgen/internal/config"
	"vidgen/internal/daemon"
)

// ErrDaemonNotRunning indicates no worker holds the lock.
var ErrDaemonNotRunning = errors.New("worker not running")

// StopResult captures worker stop/termination outcome.
type StopResult struct {
	PID        int
	Stopped    bool
	ForcedKill bool
}

// ProcessInfo reports whether a worker holds the lock and its recorded pid.
func ProcessInfo(cfg *config.Config) (bool, int, error) {
	locked, err := daemon.IsLocked(cfg)
	if err != nil {
		return false, 0, err
	}
	if !locked {
		return false, 0, nil
	}
	return true, daemon.ReadPID(cfg), nil
}

// WaitForShutdown polls until the worker lock is released.
func WaitForShutdown(cfg *config.Config, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		locked, err := daemon.IsLocked(cfg)
		if err != nil {
			return err
		}
		if !locked {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("worker did not stop within %s", timeout)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Stop asks the running worker to finish its current job and exit. When the
// lock is still held after grace and force is set, the process is killed.
func Stop(cfg *config.Config, grace time.Duration, force bool) (StopResult, error) {
	running, pid, err := ProcessInfo(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !running {
		return StopResult{}, ErrDaemonNotRunning
	}
	if pid <= 0 {
		return StopResult{}, fmt.Errorf("unable to determine worker pid (pid file: %s)", pidPath(cfg))
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}

	result := StopResult{PID: pid}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return result, fmt.Errorf("signal worker %d: %w", pid, err)
	}
	waitErr := WaitForShutdown(cfg, grace)
	if waitErr == nil {
		result.Stopped = true
		return result, nil
	}
	if !force {
		return result, waitErr
	}

	if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return result, fmt.Errorf("kill worker %d: %w", pid, err)
	}
	if err := os.Remove(pidPath(cfg)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file: %w", err)
	}
	result.Stopped = true
	result.ForcedKill = true
	return result, nil
}

func pidPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, "vidgen.pid")
}
