// Package daemon runs the voice loop in the foreground or as a background
// process tracked by a pid file.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"voicescroll/internal/config"
	"voicescroll/internal/logging"
	"voicescroll/internal/run"

	"github.com/spf13/cobra"
)

// NewListenCmd runs a voice control session in the foreground.
func NewListenCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run voice control in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr := cmd.Flag("metrics-addr").Value.String(); addr != "" {
				if err := os.Setenv("VOICESCROLL_METRICS_ADDR", addr); err != nil {
					return fmt.Errorf("set VOICESCROLL_METRICS_ADDR: %w", err)
				}
			}
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := ensureNotRunning(cfg); err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return run.Serve(cmd.Context(), cfg, logger, dryRun)
		},
	}
	cmd.Flags().Bool("dry-run", false, "log input events instead of performing them")
	cmd.Flags().String("metrics-addr", "", "enable metrics at address (e.g., 127.0.0.1:9318)")
	return cmd
}

// NewStartCmd starts voice control in the background.
func NewStartCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start voice control in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := ensureNotRunning(cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.Paths.PidPath), 0o755); err != nil {
				return err
			}
			self, err := os.Executable()
			if err != nil {
				return err
			}
			childArgs := []string{"listen", "--config", cfg.Paths.ConfigPath}
			if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
				childArgs = append(childArgs, "--dry-run")
			}
			if addr := cmd.Flag("metrics-addr").Value.String(); addr != "" {
				childArgs = append(childArgs, "--metrics-addr", addr)
			}
			child := exec.Command(self, childArgs...)
			child.Env = append(os.Environ(), "VOICESCROLL_LOG_STDOUT=0")
			if err := child.Start(); err != nil {
				return err
			}
			// the child writes the pid file once configured
			if !waitForFile(cfg.Paths.PidPath, 2*time.Second) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: pid file %s not written yet; see tail-log\n", cfg.Paths.PidPath)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "voicescroll started (pid %d)\n", child.Process.Pid)
			return child.Process.Release()
		},
	}
	cmd.Flags().Bool("dry-run", false, "log input events instead of performing them")
	cmd.Flags().String("metrics-addr", "", "enable metrics at address for this run")
	return cmd
}

// NewStopCmd stops the background process.
func NewStopCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop background voice control",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			pid, err := readPID(cfg.Paths.PidPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return errors.New("not running (no pid file)")
				}
				return err
			}
			proc, err := os.FindProcess(pid)
			if err != nil {
				return err
			}
			if err := proc.Signal(syscall.SIGTERM); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "stop signal sent")
			return nil
		},
	}
}

// NewRestartCmd stops then starts.
func NewRestartCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart background voice control",
		RunE: func(cmd *cobra.Command, args []string) error {
			stopCmd := NewStopCmd(cfgPath)
			stopCmd.SetOut(cmd.OutOrStdout())
			_ = stopCmd.RunE(stopCmd, args) // ignore error if not running

			if err := waitForShutdown(*cfgPath, 5*time.Second); err != nil {
				return err
			}

			startCmd := NewStartCmd(cfgPath)
			startCmd.SetOut(cmd.OutOrStdout())
			return startCmd.RunE(startCmd, args)
		},
	}
}

func ensureNotRunning(cfg *config.Config) error {
	pid, err := readPID(cfg.Paths.PidPath)
	if err != nil {
		return nil
	}
	if alive(pid) {
		return fmt.Errorf("already running with pid %d", pid)
	}
	return nil
}

func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, err
	}
	return pid, nil
}

func waitForFile(path string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

func waitForShutdown(cfgPath string, timeout time.Duration) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		pid, err := readPID(cfg.Paths.PidPath)
		if err != nil {
			return nil // pid file gone
		}
		if !alive(pid) {
			_ = os.Remove(cfg.Paths.PidPath)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("restart: voicescroll did not stop within %s", timeout)
}
