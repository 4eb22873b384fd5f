package control

import (
	"fmt"
	"time"

	"voicescroll/internal/audio"
	"voicescroll/internal/config"
	"voicescroll/internal/run"

	"github.com/spf13/cobra"
)

// NewCalibrateCmd measures ambient noise and prints the resulting threshold.
func NewCalibrateCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure ambient noise and show the speech threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			d, _ := cmd.Flags().GetDuration("duration")
			if d <= 0 {
				d = time.Duration(cfg.Listen.CalibrationSec * float64(time.Second))
			}
			mic, err := audio.Open(cfg.Audio.DeviceName, cfg.Audio.SampleRate, cfg.Audio.FrameMS)
			if err != nil {
				return fmt.Errorf("%w: %v", run.ErrCalibration, err)
			}
			defer func() { _ = mic.Close() }()
			lst, err := run.NewListener(cfg, mic)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "calibrating on %q for %s... please stay quiet\n", mic.Name(), d)
			ambient, err := lst.Calibrate(cmd.Context(), d)
			if err != nil {
				return fmt.Errorf("%w: %v", run.ErrCalibration, err)
			}
			_, _ = fmt.Fprintf(out, "ambient rms: %.1f\nthreshold:   %.1f (min_energy %.0f, ratio %.2f)\n",
				ambient, lst.Threshold(), cfg.Listen.MinEnergy, cfg.Listen.DynamicRatio)
			return nil
		},
	}
	cmd.Flags().Duration("duration", 0, "sampling time (default listen.calibration_sec)")
	return cmd
}
