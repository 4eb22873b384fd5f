//go:build headless

package audio

import (
	"context"
	"errors"
)

var errNoPortAudio = errors.New("portaudio capture not built (built with -tags headless)")

// Microphone is unavailable in headless builds.
type Microphone struct{}

// Open always fails in headless builds.
func Open(deviceName string, sampleRate, frameMS int) (*Microphone, error) {
	return nil, errNoPortAudio
}

// Name returns an empty device name.
func (m *Microphone) Name() string { return "" }

// SampleRate implements Source.
func (m *Microphone) SampleRate() int { return 0 }

// Read implements Source.
func (m *Microphone) Read(ctx context.Context) ([]int16, error) { return nil, errNoPortAudio }

// Close implements Source.
func (m *Microphone) Close() error { return nil }

// Devices always fails in headless builds.
func Devices() ([]Device, error) { return nil, errNoPortAudio }
