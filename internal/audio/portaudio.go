//go:build !headless

package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Microphone reads mono frames from a portaudio input stream.
type Microphone struct {
	stream *portaudio.Stream
	buf    []int16
	rate   int
	name   string
}

// Open initialises portaudio and starts a mono input stream on the device
// whose name contains deviceName, falling back to the default input.
func Open(deviceName string, sampleRate, frameMS int) (*Microphone, error) {
	if sampleRate <= 0 || frameMS <= 0 {
		return nil, fmt.Errorf("invalid audio format: %d Hz, %d ms frames", sampleRate, frameMS)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	dev, err := selectDevice(deviceName)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	frames := sampleRate * frameMS / 1000
	buf := make([]int16, frames)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: frames,
	}, &buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	return &Microphone{stream: stream, buf: buf, rate: sampleRate, name: dev.Name}, nil
}

// Name returns the selected device name.
func (m *Microphone) Name() string { return m.name }

// SampleRate implements Source.
func (m *Microphone) SampleRate() int { return m.rate }

// Read implements Source.
func (m *Microphone) Read(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, fmt.Errorf("stream read: %w", err)
	}
	out := make([]int16, len(m.buf))
	copy(out, m.buf)
	return out, nil
}

// Close stops the stream and releases portaudio.
func (m *Microphone) Close() error {
	stopErr := m.stream.Stop()
	closeErr := m.stream.Close()
	termErr := portaudio.Terminate()
	return errors.Join(stopErr, closeErr, termErr)
}

// Devices lists input-capable devices.
func Devices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultInputDevice()
	out := []Device{}
	for i, d := range devs {
		if d.MaxInputChannels < 1 {
			continue
		}
		out = append(out, Device{
			Index:     i,
			Name:      d.Name,
			Channels:  d.MaxInputChannels,
			LatencyMs: d.DefaultLowInputLatency.Seconds() * 1000,
			Default:   def != nil && d.Name == def.Name,
		})
	}
	return out, nil
}

func selectDevice(preferred string) (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if preferred != "" {
		for _, d := range devs {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(preferred)) {
				return d, nil
			}
		}
	}
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil && def.MaxInputChannels > 0 {
		return def, nil
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, ErrNoInputDevice
}
