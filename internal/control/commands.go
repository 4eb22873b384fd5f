// Package control holds the cobra subcommands that inspect and exercise the
// pieces of a session without running the voice loop.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"voicescroll/internal/command"
	"voicescroll/internal/config"
	"voicescroll/internal/doctor"
	"voicescroll/internal/input"
	"voicescroll/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewTailLogCmd tails the main log file (simple last N lines).
func NewTailLogCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail-log",
		Short: "Show the last log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetInt("lines")
			return tailFile(cmd.OutOrStdout(), cfg.Paths.LogPath, n)
		},
	}
	cmd.Flags().IntP("lines", "n", 50, "number of lines")
	return cmd
}

func tailFile(w io.Writer, path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			_, _ = fmt.Fprintln(w, l)
		}
	}
	return nil
}

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check microphone, display, speech backend and commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			results := doctor.Run(cmd.Context(), cfg)
			failed := false
			for _, r := range results {
				failed = failed || !r.Pass
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					status := "ok"
					if !r.Pass {
						status = "fail"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-4s %s\n", r.Name, status, r.Detail)
				}
			}
			if failed {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

// NewCommandsCmd lists the command table in matching order.
func NewCommandsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List trigger phrases in matching order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			table, _, err := dryRunTable(cfg, logging.NewTestLogger())
			if err != nil {
				return err
			}
			for i, e := range table.Entries() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-16s %s\n", i+1, e.Phrase, e.Name)
			}
			return nil
		},
	}
}

// NewTestCommandCmd shows which entry some text would trigger.
func NewTestCommandCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-command \"some text\"",
		Short: "Match text against the command table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			dispatch, _ := cmd.Flags().GetBool("dispatch")
			return matchAndReport(cmd.Context(), cmd.OutOrStdout(), cfg, logger, args[0], dispatch)
		},
	}
	cmd.Flags().Bool("dispatch", false, "run the matched action against the dry-run input driver")
	return cmd
}

// dryRunTable builds the configured table on top of a logging-only driver.
func dryRunTable(cfg *config.Config, logger *logrus.Logger) (*command.Table, *input.DryRun, error) {
	drv := input.NewDryRun(logger)
	table, err := command.Build(cfg, drv, command.NewSession(), logger)
	if err != nil {
		return nil, nil, err
	}
	return table, drv, nil
}

func matchAndReport(ctx context.Context, w io.Writer, cfg *config.Config, logger *logrus.Logger, text string, dispatch bool) error {
	table, drv, err := dryRunTable(cfg, logger)
	if err != nil {
		return err
	}
	text = strings.ToLower(strings.TrimSpace(text))
	e, ok := table.Match(text)
	if !ok {
		_, _ = fmt.Fprintf(w, "unknown command: %q\navailable commands: %s\n", text, strings.Join(table.Phrases(), ", "))
		return nil
	}
	_, _ = fmt.Fprintf(w, "matched %q -> %s\n", e.Phrase, e.Name)
	if !dispatch {
		return nil
	}
	if err := e.Action(ctx, text); err != nil {
		return err
	}
	for _, ev := range drv.Events() {
		switch ev.Kind {
		case "scroll":
			_, _ = fmt.Fprintf(w, "  scroll %d\n", ev.Amount)
		case "click":
			_, _ = fmt.Fprintf(w, "  click (%d,%d)\n", ev.X, ev.Y)
		}
	}
	return nil
}
