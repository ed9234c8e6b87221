// ABOUTME: Reference waveform loading for speaker playback
// ABOUTME: Dispatches between generated tone, WAV, MP3, and raw PCM sources
// Package source loads the reference waveform the speaker pipeline streams.
// The waveform is mono 16-bit PCM; stereo inputs are downmixed. The default
// source is a generated tone, standing in for the firmware's built-in wave
// array.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
)

// Waveform is a fully loaded reference wave.
type Waveform struct {
	Samples []int16
	Format  audio.Format
}

// Load reads a waveform from path, dispatching on the file extension.
// An empty path yields the default generated tone.
func Load(path string) (Waveform, error) {
	if path == "" {
		return Tone(DefaultToneFrequency, DefaultToneDuration), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return LoadWAV(path)
	case ".mp3":
		return LoadMP3(path)
	case ".pcm", ".raw":
		return LoadPCM(path, audio.Format{Channels: 1, BitDepth: 16, SampleRate: DefaultSampleRate})
	default:
		return Waveform{}, fmt.Errorf("unsupported waveform file: %s", path)
	}
}

// downmix folds interleaved multi-channel samples to mono by averaging.
func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	mono := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			sum += int(samples[i*channels+ch])
		}
		mono[i] = int16(sum / channels)
	}
	return mono
}
