// Package hook runs user-configured shell commands bound to trigger phrases.
package hook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"voicescroll/internal/config"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Job represents one command invocation.
type Job struct {
	Text      string // full utterance that triggered the command
	Timestamp time.Time
}

// Runner executes one configured command.
type Runner struct {
	cmd    config.CommandConfig
	argv   []string
	logger *logrus.Logger
}

// NewRunner validates cmd.Run and returns a Runner for it.
func NewRunner(cmd config.CommandConfig, logger *logrus.Logger) (*Runner, error) {
	argv, err := ParseArgs(cmd.Run)
	if err != nil {
		return nil, fmt.Errorf("command %q: parse run: %w", cmd.Phrase, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command %q: run is empty", cmd.Phrase)
	}
	return &Runner{cmd: cmd, argv: argv, logger: logger}, nil
}

// Program returns the executable the runner invokes.
func (r *Runner) Program() string { return r.argv[0] }

// Run executes the command with the utterance exposed as VOICESCROLL_TEXT.
func (r *Runner) Run(ctx context.Context, job Job) error {
	runCtx := ctx
	if r.cmd.TimeoutSec > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(float64(time.Second)*r.cmd.TimeoutSec))
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, r.argv[0], r.argv[1:]...)
	cmd.Env = os.Environ()
	for k, v := range r.cmd.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("VOICESCROLL_TEXT=%s", job.Text),
		fmt.Sprintf("VOICESCROLL_PHRASE=%s", r.cmd.Phrase),
	)

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.logger.Infof("command output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("command %q timed out after %.1fs", r.cmd.Phrase, r.cmd.TimeoutSec)
		}
		return fmt.Errorf("command %q failed: %w", r.cmd.Phrase, err)
	}
	return nil
}

// ParseArgs splits a shell-style command line.
func ParseArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return shlex.Split(raw)
}
