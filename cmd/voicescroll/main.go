package main

import (
	"fmt"
	"os"
	"strings"

	"voicescroll/internal/control"
	"voicescroll/internal/daemon"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// examples feed both root.Example and the colour help.
var examples = []string{
	"voicescroll listen --dry-run",
	"voicescroll start --metrics-addr 127.0.0.1:9318",
	"voicescroll mic list",
	"voicescroll mic set \"USB Audio\"",
	"voicescroll calibrate --duration 2s",
	"voicescroll test-command \"scroll down\"",
	"voicescroll models download ggml-base.en.bin",
	"voicescroll detect --save",
	"voicescroll detect --region 0,0,1280,720 --json",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "voicescroll",
		Short: "voicescroll: hands-free scrolling by voice",
		Long: `voicescroll calibrates to room noise, listens for short spoken commands, transcribes them,
and scrolls, likes or stops. A screen detector finds video player regions.

Spoken commands:
  scroll | down | scroll down   scroll down
  up | scroll up                scroll up
  like                          double-click the like target
  stop | quit | exit            end the session

Notable flags/env:
  --dry-run                 Log input events instead of performing them
  --metrics-addr <addr>     Enable /metrics (Prometheus text)
  Env overrides: VOICESCROLL_LOG_LEVEL/FORMAT, VOICESCROLL_ASR_BACKEND,
                 VOICESCROLL_ASR_URL, VOICESCROLL_METRICS_ADDR,
                 VOICESCROLL_SCROLL_AMOUNT, OPENAI_API_KEY`,
		Example:               "  " + strings.Join(examples, "\n  "),
		DisableFlagsInUseLine: true,
	}

	root.Version = version
	root.SetVersionTemplate("voicescroll v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML or YAML). Defaults to ~/.config/voicescroll/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(daemon.NewListenCmd(cfgPath))
	root.AddCommand(daemon.NewStartCmd(cfgPath))
	root.AddCommand(daemon.NewStopCmd(cfgPath))
	root.AddCommand(daemon.NewRestartCmd(cfgPath))
	root.AddCommand(control.NewDetectCmd(cfgPath))
	root.AddCommand(control.NewMicCmd(cfgPath))
	root.AddCommand(control.NewCalibrateCmd(cfgPath))
	root.AddCommand(control.NewTranscribeCmd(cfgPath))
	root.AddCommand(control.NewTestCommandCmd(cfgPath))
	root.AddCommand(control.NewCommandsCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewModelsCmd(cfgPath))

	applyColorHelp(root)
	return root
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			// subcommands keep cobra's default help
			_, _ = fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%svoicescroll%s: hands-free scrolling by voice %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sCalibrates, listens, transcribes, and scrolls.%s\n\n", dim, reset)

		write("%sUsage%s\n", bold, reset)
		write("  voicescroll [command] [flags]\n\n")

		write("%sSpoken commands%s\n", bold, reset)
		writeln("  scroll | down | scroll down   scroll down")
		writeln("  up | scroll up                scroll up")
		writeln("  like                          double-click the like target")
		writeln("  stop | quit | exit            end the session")
		writeln("")

		write("%sNotable flags & env%s\n", bold, reset)
		writeln("  --dry-run               log input events instead of performing them")
		writeln("  --metrics-addr <addr>   enable /metrics (Prometheus)")
		writeln("  -c, --config <path>     config file (default ~/.config/voicescroll/config.toml)")
		writeln("  Env: VOICESCROLL_LOG_LEVEL=debug, VOICESCROLL_LOG_FORMAT=json,")
		writeln("       VOICESCROLL_ASR_BACKEND=openai, OPENAI_API_KEY=...")
		writeln("")

		write("%sExamples%s\n", bold, reset)
		for _, ex := range examples {
			writeln("  " + ex)
		}
		writeln("")

		write("%sCommands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
