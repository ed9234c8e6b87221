// ABOUTME: Oto-based audio output implementation
// ABOUTME: Handles PCM playback with software volume control using oto library
package output

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using the oto library.
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	format     audio.Format // format of incoming writes
	ctxFormat  audio.Format // format the context was opened with
	volume     int
	ready      bool
}

// NewOto creates a new Oto output.
func NewOto() Output {
	return &Oto{volume: 100}
}

// Open initializes the output device.
func (o *Oto) Open(format audio.Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if format.BitDepth != 8 && format.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d", format.BitDepth)
	}

	// If already initialized with the same format, reuse the existing
	// context.
	if o.otoCtx != nil && o.format.Equal(format) {
		return nil
	}

	// oto only allows one context per process; on a format change keep the
	// old context. Writes at a different bit depth are converted to the
	// context's depth, a different rate plays slightly off-rate rather
	// than fail the stream.
	if o.otoCtx != nil {
		log.Printf("Warning: format change (%s -> %s) but oto doesn't support reinitialization, continuing", o.format, format)
		o.format = format
		return nil
	}

	sampleFormat := oto.FormatSignedInt16LE
	if format.BitDepth == 8 {
		sampleFormat = oto.FormatUnsignedInt8
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       sampleFormat,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.format = format
	o.ctxFormat = format

	// Persistent player fed through a pipe for continuous streaming.
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
	o.ready = true

	log.Printf("Audio output initialized: %s", format)
	return nil
}

// Write plays raw PCM bytes in the opened format.
func (o *Oto) Write(pcm []byte) error {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return fmt.Errorf("output not initialized")
	}
	writer := o.pipeWriter
	volume := o.volume
	depth := o.format.BitDepth
	ctxDepth := o.ctxFormat.BitDepth
	o.mu.Unlock()

	out := applyVolume(convertDepth(pcm, depth, ctxDepth), ctxDepth, volume)

	if _, err := writer.Write(out); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// SetVolume sets the volume (0-100).
func (o *Oto) SetVolume(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}

	o.mu.Lock()
	o.volume = level
	o.mu.Unlock()

	log.Printf("Volume set to %d", level)
}

// Close releases output resources.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
		o.ready = false
	}
	return nil
}

// convertDepth rewrites signed PCM between 8 and 16-bit, so a stream
// renegotiated to a different depth still matches the open context.
func convertDepth(pcm []byte, from, to int) []byte {
	if from == to {
		return pcm
	}

	if from == 8 && to == 16 {
		out := make([]byte, len(pcm)*2)
		for i, b := range pcm {
			s := int16(int8(b)) << 8
			out[2*i] = byte(s)
			out[2*i+1] = byte(s >> 8)
		}
		return out
	}

	// 16 -> 8: keep the top byte of each sample.
	samples := audio.BytesToSamples(pcm)
	out := make([]byte, len(samples))
	for i, s := range samples {
		out[i] = byte(s >> 8)
	}
	return out
}

// applyVolume scales PCM bytes in place-safe copies. 8-bit audio is
// unsigned on the wire (oto convention): it is centered before scaling.
func applyVolume(pcm []byte, bitDepth, volume int) []byte {
	multiplier := float64(volume) / 100.0

	if bitDepth == 8 {
		// The pipeline emits signed bytes; oto's 8-bit format is unsigned.
		out := make([]byte, len(pcm))
		for i, b := range pcm {
			out[i] = byte(int8(float64(int8(b))*multiplier)) ^ 0x80
		}
		return out
	}

	if volume == 100 {
		return pcm
	}

	samples := audio.BytesToSamples(pcm)
	for i, s := range samples {
		samples[i] = int16(float64(s) * multiplier)
	}
	return audio.SamplesToBytes(samples)
}
