package daemonctl

import (
	"errors"
	"testing"
	"time"

	"vidgen/internal/testsupport"
)

func TestProcessInfoWithoutWorker(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	running, pid, err := ProcessInfo(cfg)
	if err != nil || running || pid != 0 {
		t.Fatalf("ProcessInfo = %v, %d, %v", running, pid, err)
	}
}

func TestStopWithoutWorker(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := Stop(cfg, time.Second, false); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestWaitForShutdownReturnsWhenUnlocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := WaitForShutdown(cfg, 10*time.Millisecond); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
}
