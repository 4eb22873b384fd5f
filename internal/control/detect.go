package control

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicescroll/internal/config"
	"voicescroll/internal/vision"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewDetectCmd captures the screen and reports video-player regions.
func NewDetectCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Find video-player regions on screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var region *vision.Rect
			if s, _ := cmd.Flags().GetString("region"); s != "" {
				r, err := vision.ParseRect(s)
				if err != nil {
					return err
				}
				region = &r
			}
			d := &detectRun{
				det:    vision.NewDetector(vision.ParamsFromConfig(cfg.Detector)),
				region: region,
				fs:     afero.NewOsFs(),
				dir:    cfg.Paths.SnapshotDir,
				out:    cmd.OutOrStdout(),
			}
			d.save, _ = cmd.Flags().GetBool("save")
			d.jsonOut, _ = cmd.Flags().GetBool("json")

			watch, _ := cmd.Flags().GetBool("watch")
			if !watch {
				return d.once(time.Now())
			}
			interval, _ := cmd.Flags().GetDuration("interval")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return d.watch(ctx, interval)
		},
	}
	cmd.Flags().String("region", "", "capture only x,y,w,h (screen coordinates)")
	cmd.Flags().Bool("save", false, "write an annotated video_detection_<unix>.png snapshot")
	cmd.Flags().Bool("watch", false, "repeat until interrupted")
	cmd.Flags().Duration("interval", time.Second, "delay between captures with --watch")
	cmd.Flags().Bool("json", false, "output JSON lines")
	return cmd
}

type detectRun struct {
	det     *vision.Detector
	region  *vision.Rect
	fs      afero.Fs
	dir     string
	out     io.Writer
	save    bool
	jsonOut bool
}

type detection struct {
	Time     time.Time     `json:"time"`
	Regions  []vision.Rect `json:"regions"`
	Snapshot string        `json:"snapshot,omitempty"`
}

func (d *detectRun) once(now time.Time) error {
	img, err := vision.Capture(d.region)
	if err != nil {
		return err
	}
	local := d.det.Detect(img)
	res := detection{Time: now, Regions: make([]vision.Rect, len(local))}
	for i, r := range local {
		if d.region != nil {
			r = r.Offset(d.region.X, d.region.Y)
		}
		res.Regions[i] = r
	}
	if d.save {
		path, err := vision.SaveSnapshot(d.fs, d.dir, vision.Annotate(img, local), now)
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		res.Snapshot = path
	}
	return writeDetection(d.out, res, d.jsonOut)
}

func (d *detectRun) watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := d.once(time.Now()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func writeDetection(w io.Writer, res detection, jsonOut bool) error {
	if jsonOut {
		return json.NewEncoder(w).Encode(res)
	}
	_, _ = fmt.Fprintf(w, "Video Players Detected: %d\n", len(res.Regions))
	for i, r := range res.Regions {
		_, _ = fmt.Fprintf(w, "  [%d] x=%d y=%d w=%d h=%d centre=(%d,%d)\n", i, r.X, r.Y, r.W, r.H, r.X+r.W/2, r.Y+r.H/2)
	}
	if res.Snapshot != "" {
		_, _ = fmt.Fprintf(w, "saved %s\n", res.Snapshot)
	}
	return nil
}
