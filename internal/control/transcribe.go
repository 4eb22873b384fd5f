package control

import (
	"fmt"
	"io"
	"os"

	"voicescroll/internal/asr"
	"voicescroll/internal/config"
	"voicescroll/internal/logging"

	"github.com/spf13/cobra"
)

// NewTranscribeCmd transcribes a WAV file with the configured backend and
// optionally dispatches the matching command in dry-run mode.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <wavfile>",
		Short: "Transcribe a WAV file",
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
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			pcm, rate, err := asr.DecodeWAV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			tr, err := asr.New(cfg, logger)
			if err != nil {
				return err
			}
			if closer, ok := tr.(io.Closer); ok {
				defer func() { _ = closer.Close() }()
			}
			text, err := tr.Transcribe(cmd.Context(), pcm, rate)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)

			if dispatch, _ := cmd.Flags().GetBool("dispatch"); dispatch {
				return matchAndReport(cmd.Context(), cmd.OutOrStdout(), cfg, logger, text, true)
			}
			return nil
		},
	}
	cmd.Flags().Bool("dispatch", false, "match the text and run the action against the dry-run input driver")
	return cmd
}
