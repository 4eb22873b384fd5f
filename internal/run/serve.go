package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicescroll/internal/asr"
	"voicescroll/internal/audio"
	"voicescroll/internal/command"
	"voicescroll/internal/config"
	"voicescroll/internal/input"
	"voicescroll/internal/listen"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Serve runs a voice control session until a stop command, SIGINT or SIGTERM.
// dryRun replaces the input driver with one that only logs.
func Serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger, dryRun bool) error {
	if err := config.MustStatePaths(cfg); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Paths.PidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("remove pid file: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr, err := asr.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("asr init: %w", err)
	}
	if closer, ok := tr.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	drv, err := input.New(cfg, logger, dryRun)
	if err != nil {
		return err
	}
	session := command.NewSession()
	table, err := command.Build(cfg, drv, session, logger)
	if err != nil {
		return err
	}

	mic, err := audio.Open(cfg.Audio.DeviceName, cfg.Audio.SampleRate, cfg.Audio.FrameMS)
	if err != nil {
		logger.Errorf("%v: %v", ErrCalibration, err)
		return fmt.Errorf("%w: %v", ErrCalibration, err)
	}
	defer func() {
		if err := mic.Close(); err != nil {
			logger.Warnf("close microphone: %v", err)
		}
	}()
	logger.Infof("using input device %q at %d Hz", mic.Name(), mic.SampleRate())

	lst, err := NewListener(cfg, mic)
	if err != nil {
		return err
	}

	mp, shutdownMetrics, err := newMeterProvider(cfg.Metrics.Enabled)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()
	metrics, err := NewMetrics(mp)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	ctrl := NewController(Options{
		Listener:    lst,
		Transcriber: tr,
		Table:       table,
		Session:     session,
		Logger:      logger,
		Metrics:     metrics,
		SampleRate:  mic.SampleRate(),
		Calibration: seconds(cfg.Listen.CalibrationSec),
		Timeout:     seconds(cfg.Listen.TimeoutSec),
		PhraseLimit: seconds(cfg.Listen.PhraseLimitSec),
	})
	logger.Infof("speech recognition backend: %s", tr.Name())

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancelLoop := context.WithCancel(gctx)
	defer cancelLoop()
	g.Go(func() error {
		defer cancelLoop()
		return ctrl.Run(loopCtx)
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error { return serveMetrics(loopCtx, cfg.Metrics.Addr, logger) })
	}
	return g.Wait()
}

// NewListener builds the utterance listener for src from cfg, adding the
// WebRTC gate when listen.vad is set.
func NewListener(cfg *config.Config, src audio.Source) (*listen.Listener, error) {
	var gate listen.Gate
	if cfg.Listen.VAD {
		frameSamples := src.SampleRate() * cfg.Audio.FrameMS / 1000
		g, err := listen.NewWebRTCGate(cfg.Listen.VADMode, src.SampleRate(), frameSamples)
		if err != nil {
			return nil, err
		}
		gate = g
	}
	return listen.New(src, listen.Options{
		Pause:        seconds(cfg.Listen.PauseSec),
		DynamicRatio: cfg.Listen.DynamicRatio,
		MinEnergy:    cfg.Listen.MinEnergy,
		Preroll:      time.Duration(cfg.Listen.PrerollMS) * time.Millisecond,
	}, gate), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
