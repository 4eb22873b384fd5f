package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voicescroll/internal/config"
)

func writeConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, _ := config.Default()
	cfg.Paths.ConfigPath = filepath.Join(dir, "config.toml")
	cfg.Paths.PidPath = filepath.Join(dir, "voicescroll.pid")
	if err := config.Save(cfg, cfg.Paths.ConfigPath); err != nil {
		t.Fatalf("save cfg: %v", err)
	}
	return cfg
}

func TestWaitForShutdownSucceedsWhenPidFileRemoved(t *testing.T) {
	cfg := writeConfig(t)
	if err := os.WriteFile(cfg.Paths.PidPath, []byte("12345"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.Remove(cfg.Paths.PidPath)
	}()
	if err := waitForShutdown(cfg.Paths.ConfigPath, 2*time.Second); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestWaitForShutdownTimesOutOnAlivePid(t *testing.T) {
	cfg := writeConfig(t)
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if err := waitForShutdown(cfg.Paths.ConfigPath, 300*time.Millisecond); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestEnsureNotRunning(t *testing.T) {
	cfg := writeConfig(t)
	if err := ensureNotRunning(cfg); err != nil {
		t.Fatalf("no pid file: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	err := ensureNotRunning(cfg)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("live pid: %v", err)
	}
}

func TestStopWithoutPidFile(t *testing.T) {
	cfg := writeConfig(t)
	path := cfg.Paths.ConfigPath
	cmd := NewStopCmd(&path)
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "not running") {
		t.Fatalf("err = %v", err)
	}
}

func TestReadPID(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pid")
	if err := os.WriteFile(p, []byte("4242\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	pid, err := readPID(p)
	if err != nil || pid != 4242 {
		t.Fatalf("readPID = %d, %v", pid, err)
	}
	if err := os.WriteFile(p, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readPID(p); err == nil {
		t.Fatalf("expected parse error")
	}
}
