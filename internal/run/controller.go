// Package run drives the voice command loop: listen for a phrase, transcribe
// it, dispatch the matching command, repeat until told to stop.
package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voicescroll/internal/asr"
	"voicescroll/internal/command"
	"voicescroll/internal/listen"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ErrCalibration is returned by Run when the microphone could not be
// calibrated; the loop never starts.
var ErrCalibration = errors.New("failed to calibrate microphone")

// errorPause is the back-off after a failed iteration.
var errorPause = time.Second

// Listener captures single utterances.
type Listener interface {
	Calibrate(ctx context.Context, d time.Duration) (float64, error)
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]int16, error)
	Threshold() float64
}

// Options wires a Controller.
type Options struct {
	Listener    Listener
	Transcriber asr.Transcriber
	Table       *command.Table
	Session     *command.Session
	Logger      *logrus.Logger
	Metrics     *Metrics // nil disables metrics

	SampleRate  int
	Calibration time.Duration
	Timeout     time.Duration
	PhraseLimit time.Duration
}

// Controller owns one voice control session.
type Controller struct {
	Options
}

// NewController fills in defaults and returns a Controller.
func NewController(opts Options) *Controller {
	if opts.Session == nil {
		opts.Session = command.NewSession()
	}
	if opts.Metrics == nil {
		opts.Metrics, _ = NewMetrics(noop.NewMeterProvider())
	}
	return &Controller{Options: opts}
}

// Calibrate measures ambient noise. It logs and returns false on failure.
func (c *Controller) Calibrate(ctx context.Context) bool {
	c.Logger.Info("calibrating for ambient noise... please wait")
	ambient, err := c.Listener.Calibrate(ctx, c.Calibration)
	if err != nil {
		c.Logger.Errorf("%v: %v", ErrCalibration, err)
		return false
	}
	c.Logger.WithFields(logrus.Fields{
		"ambient_rms": fmt.Sprintf("%.1f", ambient),
		"threshold":   fmt.Sprintf("%.1f", c.Listener.Threshold()),
	}).Info("calibration complete")
	return true
}

// ListenForCommand waits for one utterance and returns its lowercase text.
// Timeouts and recognition failures are logged and reported as false.
func (c *Controller) ListenForCommand(ctx context.Context) (string, bool) {
	text, err := c.capture(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.Logger.Errorf("listen: %v", err)
		}
		return "", false
	}
	return text, text != ""
}

// ProcessCommand dispatches text and reports whether a command matched.
func (c *Controller) ProcessCommand(ctx context.Context, text string) bool {
	ok, err := c.process(ctx, text)
	if err != nil {
		c.Logger.Errorf("command failed: %v", err)
	}
	return ok
}

// Run calibrates, then loops until a stop command or ctx is cancelled.
// Failed iterations are logged and followed by a short pause.
func (c *Controller) Run(ctx context.Context) error {
	if !c.Calibrate(ctx) {
		return ErrCalibration
	}
	c.Logger.Infof("voice control active; commands: %s", strings.Join(c.Table.Phrases(), ", "))
	defer c.Logger.Info("voice control session ended")

	for c.Session.Running() && ctx.Err() == nil {
		err := c.iterate(ctx)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		c.Logger.Errorf("error: %v", err)
		if !sleepCtx(ctx, errorPause) {
			break
		}
	}
	if ctx.Err() != nil {
		c.Logger.Info("shutting down")
	}
	return nil
}

func (c *Controller) iterate(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	text, err := c.capture(ctx)
	if err != nil || text == "" {
		return err
	}
	_, err = c.process(ctx, text)
	return err
}

// capture returns "" with a nil error for the non-fatal outcomes: no speech,
// unintelligible audio and any other transcription failure.
func (c *Controller) capture(ctx context.Context) (string, error) {
	pcm, err := c.Listener.Listen(ctx, c.Timeout, c.PhraseLimit)
	if err != nil {
		if errors.Is(err, listen.ErrWaitTimeout) {
			return "", nil
		}
		return "", err
	}

	start := time.Now()
	text, err := c.Transcriber.Transcribe(ctx, pcm, c.SampleRate)
	c.Metrics.TranscribeDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("backend", c.Transcriber.Name())))
	switch {
	case err == nil:
	case errors.Is(err, asr.ErrUnintelligible):
		c.failure(ctx, "unintelligible")
		c.Logger.Info("could not understand audio")
		return "", nil
	case ctx.Err() != nil:
		return "", err
	default:
		c.failure(ctx, "service")
		c.Logger.Errorf("could not request results from speech recognition service: %v", err)
		return "", nil
	}

	text = strings.ToLower(strings.TrimSpace(text))
	c.Metrics.Heard.Add(ctx, 1)
	c.Logger.Infof("heard: %q", text)
	return text, nil
}

func (c *Controller) process(ctx context.Context, text string) (bool, error) {
	entry, ok, err := c.Table.Process(ctx, text)
	if !ok {
		c.Metrics.Unknown.Add(ctx, 1)
		c.Logger.Warnf("unknown command: %q", text)
		c.Logger.Infof("available commands: %s", strings.Join(c.Table.Phrases(), ", "))
		return false, nil
	}
	c.Metrics.Matched.Add(ctx, 1, metric.WithAttributes(attribute.String("command", entry.Name)))
	c.Logger.WithField("phrase", entry.Phrase).Infof("executing %s", entry.Name)
	if entry.Name == command.Stop {
		c.Logger.Info("stopping voice control")
	}
	if err != nil {
		return true, fmt.Errorf("%s: %w", entry.Name, err)
	}
	return true, nil
}

func (c *Controller) failure(ctx context.Context, kind string) {
	c.Metrics.Failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
