// Package listen turns a microphone frame stream into single utterances.
//
// A Listener is calibrated once against ambient noise, which sets the energy
// threshold separating speech from silence. Listen then blocks until speech
// starts (or the wait timeout passes), and returns the phrase once a pause is
// heard or the phrase limit is reached. Audio from just before the onset is
// prepended so the first syllable survives.
package listen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicescroll/internal/audio"
)

// ErrWaitTimeout is returned when no speech starts within the wait timeout.
var ErrWaitTimeout = errors.New("listening timed out while waiting for phrase to start")

// ErrEmptyFrame is returned when the source yields a frame with no samples.
var ErrEmptyFrame = errors.New("audio source returned an empty frame")

// Gate is an optional second opinion on whether a frame contains voice.
type Gate interface {
	IsVoice(frame []int16) bool
}

// Options tune phrase segmentation.
type Options struct {
	Pause        time.Duration // trailing silence that ends a phrase
	DynamicRatio float64       // threshold = ambient RMS * ratio
	MinEnergy    float64       // floor for the threshold
	Preroll      time.Duration
}

// Listener segments utterances from an audio.Source. It is not safe for
// concurrent use.
type Listener struct {
	src       audio.Source
	opts      Options
	gate      Gate
	threshold float64
}

// New returns a Listener; gate may be nil.
func New(src audio.Source, opts Options, gate Gate) *Listener {
	if opts.DynamicRatio <= 0 {
		opts.DynamicRatio = 1.5
	}
	if opts.Pause <= 0 {
		opts.Pause = 800 * time.Millisecond
	}
	return &Listener{
		src:       src,
		opts:      opts,
		gate:      gate,
		threshold: opts.MinEnergy,
	}
}

// Threshold returns the current speech energy threshold.
func (l *Listener) Threshold() float64 { return l.threshold }

// Calibrate samples ambient noise for d and sets the energy threshold. It
// returns the measured ambient RMS.
func (l *Listener) Calibrate(ctx context.Context, d time.Duration) (float64, error) {
	var (
		total   float64
		frames  int
		elapsed time.Duration
	)
	for elapsed < d {
		frame, err := l.src.Read(ctx)
		if err == nil && len(frame) == 0 {
			err = ErrEmptyFrame
		}
		if err != nil {
			return 0, fmt.Errorf("calibrate: %w", err)
		}
		total += audio.RMS(frame)
		frames++
		elapsed += l.frameDuration(frame)
	}
	if frames == 0 {
		return 0, nil
	}
	ambient := total / float64(frames)
	l.threshold = max(l.opts.MinEnergy, ambient*l.opts.DynamicRatio)
	return ambient, nil
}

// Listen blocks until one phrase has been captured. timeout bounds the wait
// for speech to begin; phraseLimit bounds the phrase itself. Zero disables
// either bound.
func (l *Listener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]int16, error) {
	pre := newRing(int(l.opts.Preroll.Seconds() * float64(l.src.SampleRate())))

	var (
		waited time.Duration
		onset  time.Duration
		phrase []int16
	)
	for {
		frame, err := l.read(ctx)
		if err != nil {
			return nil, err
		}
		waited += l.frameDuration(frame)
		if l.isSpeech(frame) {
			phrase = append(pre.Read(), frame...)
			onset = l.frameDuration(frame)
			break
		}
		pre.Add(frame)
		if timeout > 0 && waited >= timeout {
			return nil, ErrWaitTimeout
		}
	}

	// the phrase limit counts from onset; pre-roll is extra
	var (
		spoken  = onset
		silence time.Duration
	)
	for phraseLimit <= 0 || spoken < phraseLimit {
		frame, err := l.read(ctx)
		if err != nil {
			return nil, err
		}
		d := l.frameDuration(frame)
		phrase = append(phrase, frame...)
		spoken += d
		if l.isSpeech(frame) {
			silence = 0
			continue
		}
		silence += d
		if silence >= l.opts.Pause {
			break
		}
	}
	return phrase, nil
}

func (l *Listener) read(ctx context.Context) ([]int16, error) {
	frame, err := l.src.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	return frame, nil
}

func (l *Listener) isSpeech(frame []int16) bool {
	if audio.RMS(frame) <= l.threshold {
		return false
	}
	return l.gate == nil || l.gate.IsVoice(frame)
}

func (l *Listener) frameDuration(frame []int16) time.Duration {
	return l.samplesDuration(len(frame))
}

func (l *Listener) samplesDuration(n int) time.Duration {
	rate := l.src.SampleRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(rate)
}
