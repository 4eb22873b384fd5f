// Package audio provides microphone capture as a stream of 16-bit mono PCM frames.
package audio

import (
	"context"
	"errors"
	"math"
)

// ErrNoInputDevice indicates no audio input device was found.
var ErrNoInputDevice = errors.New("no audio input device found")

// Source yields fixed-size PCM frames. Read blocks for at most one frame
// duration and returns ctx.Err() once the context is cancelled.
type Source interface {
	Read(ctx context.Context) ([]int16, error)
	SampleRate() int
	Close() error
}

// Device describes an input device.
type Device struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Channels  int     `json:"channels"`
	LatencyMs float64 `json:"latency_ms"`
	Default   bool    `json:"default"`
}

// RMS returns the root-mean-square energy of a frame in 16-bit PCM units.
func RMS(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
