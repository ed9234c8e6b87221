// ABOUTME: Simulated UVC/UAC stream driver
// ABOUTME: Emits synthetic frames and device events so the bridge runs end to end
// Package device provides a simulated USB capture device implementing the
// usb.Driver boundary. It stands in for the real class driver: capability
// lists are configured, video frames are synthetic MJPEG payloads emitted
// at a fixed interval from the driver's own goroutine, and speaker writes
// are fanned out to a host audio backend.
package device

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio/output"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/usb"
)

// Config holds the simulated device description and callback wiring.
type Config struct {
	VideoSizes    []usb.VideoFrameSize
	VideoActive   int
	MicFormats    []usb.AudioFrameSize
	MicActive     int
	SpkFormats    []usb.AudioFrameSize
	SpkActive     int
	FrameInterval time.Duration // video frame cadence

	Output output.Output // speaker realization; nil means discard

	OnVideoFrame usb.VideoFrameFunc
	OnMicFrame   usb.MicFrameFunc
	OnState      usb.StateFunc

	Debug bool
}

func (c Config) withDefaults() Config {
	if len(c.VideoSizes) == 0 {
		c.VideoSizes = []usb.VideoFrameSize{{Width: 480, Height: 320}}
	}
	if len(c.MicFormats) == 0 {
		c.MicFormats = []usb.AudioFrameSize{{Channels: 1, BitDepth: 16, SampleRate: 16000, MinRate: 16000, MaxRate: 16000}}
	}
	if len(c.SpkFormats) == 0 {
		c.SpkFormats = []usb.AudioFrameSize{{Channels: 1, BitDepth: 16, SampleRate: 32000, MinRate: 32000, MaxRate: 32000}}
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = time.Second / 15
	}
	if c.Output == nil {
		c.Output = output.NewNull()
	}
	return c
}

// Simulated is a capture device whose streams are driven by an internal
// goroutine. The speaker starts suspended; the bridge resumes it once
// playback is armed, mirroring real bring-up.
// spkQueueDepth bounds how many speaker writes may be pending on the host
// backend before WriteSpeaker starts timing out.
const spkQueueDepth = 8

type Simulated struct {
	mu       sync.Mutex
	config   Config
	sequence uint32
	spkUp    bool

	jpeg     []byte
	mic      []byte
	spkQueue chan []byte
}

// NewSimulated creates a simulated device.
func NewSimulated(config Config) *Simulated {
	config = config.withDefaults()

	// One mic frame per video frame interval keeps the producer context
	// simple; real drivers interleave much finer.
	micFmt := config.MicFormats[config.MicActive]
	micSamples := int(config.FrameInterval.Seconds() * float64(micFmt.SampleRate))

	return &Simulated{
		config:   config,
		jpeg:     synthesizeJPEG(config.VideoSizes[config.VideoActive]),
		mic:      make([]byte, micSamples*(micFmt.BitDepth/8)),
		spkQueue: make(chan []byte, spkQueueDepth),
	}
}

// Run announces the device and streams frames until the context ends.
// Callbacks are invoked from this goroutine: it is the producer context.
func (s *Simulated) Run(ctx context.Context) error {
	if s.config.OnState != nil {
		s.config.OnState(usb.StateConnected)
	}

	go s.drainSpeaker(ctx)

	ticker := time.NewTicker(s.config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.emitVideoFrame()
			s.emitMicFrame()
		case <-ctx.Done():
			if s.config.OnState != nil {
				s.config.OnState(usb.StateDisconnected)
			}
			return ctx.Err()
		}
	}
}

// Reconnect swaps the speaker capability list and replays the connect
// event, simulating a device swap. The driver contract guarantees connect
// events do not overlap a draining session, so this is called from the
// same goroutine discipline as Run's events in tests and demos.
func (s *Simulated) Reconnect(spkFormats []usb.AudioFrameSize, active int) {
	s.mu.Lock()
	s.config.SpkFormats = spkFormats
	s.config.SpkActive = active
	s.spkUp = false
	s.mu.Unlock()

	if s.config.OnState != nil {
		s.config.OnState(usb.StateDisconnected)
		s.config.OnState(usb.StateConnected)
	}
}

func (s *Simulated) emitVideoFrame() {
	if s.config.OnVideoFrame == nil {
		return
	}

	s.mu.Lock()
	s.sequence++
	seq := s.sequence
	size := s.config.VideoSizes[s.config.VideoActive]
	s.mu.Unlock()

	if s.config.Debug {
		log.Printf("[DEBUG] video frame: seq=%d %dx%d len=%d", seq, size.Width, size.Height, len(s.jpeg))
	}

	// The payload buffer is reused: it is only valid during the callback,
	// like a real transfer buffer.
	s.config.OnVideoFrame(&usb.VideoFrame{
		Format:   usb.FormatMJPEG,
		Sequence: seq,
		Width:    size.Width,
		Height:   size.Height,
		Data:     s.jpeg,
	})
}

func (s *Simulated) emitMicFrame() {
	if s.config.OnMicFrame == nil {
		return
	}

	s.mu.Lock()
	format := s.config.MicFormats[s.config.MicActive]
	s.mu.Unlock()

	s.config.OnMicFrame(&usb.MicFrame{
		BitDepth:   format.BitDepth,
		SampleRate: format.SampleRate,
		Data:       s.mic,
	})
}

// VideoFrameSizes implements usb.Driver.
func (s *Simulated) VideoFrameSizes() ([]usb.VideoFrameSize, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.VideoSizes, s.config.VideoActive
}

// AudioFrameSizes implements usb.Driver.
func (s *Simulated) AudioFrameSizes(stream usb.StreamType) ([]usb.AudioFrameSize, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stream == usb.StreamMic {
		return s.config.MicFormats, s.config.MicActive
	}
	return s.config.SpkFormats, s.config.SpkActive
}

// Resume implements usb.Driver. Resuming the speaker opens the host
// backend with the active negotiated format.
func (s *Simulated) Resume(stream usb.StreamType) error {
	if stream != usb.StreamSpeaker {
		return nil
	}

	s.mu.Lock()
	format := s.config.SpkFormats[s.config.SpkActive]
	s.mu.Unlock()

	if err := s.config.Output.Open(audio.Format{
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
		SampleRate: format.SampleRate,
	}); err != nil {
		return fmt.Errorf("speaker open failed: %w", err)
	}

	s.mu.Lock()
	s.spkUp = true
	s.mu.Unlock()
	return nil
}

// Suspend implements usb.Driver.
func (s *Simulated) Suspend(stream usb.StreamType) error {
	if stream == usb.StreamSpeaker {
		s.mu.Lock()
		s.spkUp = false
		s.mu.Unlock()
	}
	return nil
}

// SetVolume implements usb.Driver.
func (s *Simulated) SetVolume(stream usb.StreamType, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("volume out of range: %d", level)
	}
	if stream == usb.StreamSpeaker {
		s.config.Output.SetVolume(level)
	}
	return nil
}

// WriteSpeaker implements usb.Driver. Writes are queued for the drain
// goroutine so the caller never blocks on backend buffering: maxWait
// bounds the wait for queue space, and zero fails immediately when the
// queue is full. Data is copied because the caller's buffer is borrowed.
func (s *Simulated) WriteSpeaker(data []byte, maxWait time.Duration) error {
	s.mu.Lock()
	up := s.spkUp
	s.mu.Unlock()

	if !up {
		return fmt.Errorf("speaker is suspended")
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	if maxWait <= 0 {
		select {
		case s.spkQueue <- buf:
			return nil
		default:
			return fmt.Errorf("speaker queue full")
		}
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case s.spkQueue <- buf:
		return nil
	case <-timer.C:
		return fmt.Errorf("speaker write timed out after %v", maxWait)
	}
}

// drainSpeaker realizes queued writes on the host backend. Backend
// blocking lands here, off the producer goroutine.
func (s *Simulated) drainSpeaker(ctx context.Context) {
	for {
		select {
		case buf := <-s.spkQueue:
			if err := s.config.Output.Write(buf); err != nil && s.config.Debug {
				log.Printf("Speaker write failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// synthesizeJPEG builds a minimal JPEG envelope carrying a gray block of
// roughly the advertised size. Real image content is not needed; sinks only
// pass the payload through.
func synthesizeJPEG(size usb.VideoFrameSize) []byte {
	payload := make([]byte, 0, size.Width*size.Height/8+4)
	payload = append(payload, 0xFF, 0xD8) // SOI
	payload = append(payload, make([]byte, size.Width*size.Height/8)...)
	payload = append(payload, 0xFF, 0xD9) // EOI
	return payload
}
