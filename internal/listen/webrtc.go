package listen

import (
	"encoding/binary"
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// WebRTCGate asks the WebRTC voice activity detector about each frame.
type WebRTCGate struct {
	vad  *webrtcvad.VAD
	rate int
}

// NewWebRTCGate validates the frame format and creates the detector. mode is
// the aggressiveness, 0 (least) to 3 (most).
func NewWebRTCGate(mode, sampleRate, frameSamples int) (*WebRTCGate, error) {
	if !(*webrtcvad.VAD)(nil).ValidRateAndFrameLength(sampleRate, frameSamples) {
		return nil, fmt.Errorf("vad: invalid frame of %d samples at %d Hz (use 10, 20 or 30 ms at 8/16/32/48 kHz)", frameSamples, sampleRate)
	}
	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("vad: %w", err)
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("vad mode: %w", err)
	}
	return &WebRTCGate{vad: v, rate: sampleRate}, nil
}

// IsVoice implements Gate. Frames the detector rejects count as voice so
// the energy threshold alone decides.
func (g *WebRTCGate) IsVoice(frame []int16) bool {
	buf := make([]byte, len(frame)*2)
	for i, s := range frame {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	active, err := g.vad.Process(g.rate, buf)
	if err != nil {
		return true
	}
	return active
}
