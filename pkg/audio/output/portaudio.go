//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using PortAudio
package output

import (
	"fmt"
	"sync"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buffer []int16
	format audio.Format
	volume int
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{volume: 100}
}

// Open initializes PortAudio
func (p *PortAudio) Open(format audio.Format) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), 0, func(out []int16) {
		p.mu.Lock()
		copy(out, p.buffer)
		p.mu.Unlock()
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	p.stream = stream
	p.format = format
	return stream.Start()
}

// Write queues PCM bytes for the callback to drain
func (p *PortAudio) Write(pcm []byte) error {
	if p.stream == nil {
		return fmt.Errorf("output not opened")
	}

	var samples []int16
	if p.format.BitDepth == 8 {
		samples = make([]int16, len(pcm))
		for i, b := range pcm {
			samples[i] = int16(int8(b)) << 8
		}
	} else {
		samples = audio.BytesToSamples(pcm)
	}

	multiplier := float64(p.volume) / 100.0
	for i, s := range samples {
		samples[i] = int16(float64(s) * multiplier)
	}

	p.mu.Lock()
	p.buffer = samples
	p.mu.Unlock()
	return nil
}

// SetVolume sets software volume (0-100)
func (p *PortAudio) SetVolume(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	p.volume = level
}

// Close releases resources
func (p *PortAudio) Close() error {
	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			return err
		}
		if err := p.stream.Close(); err != nil {
			return err
		}
	}
	return portaudio.Terminate()
}
