// ABOUTME: Raw PCM waveform source
// ABOUTME: Reads headerless little-endian signed 16-bit sample files
package source

import (
	"fmt"
	"os"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
)

// LoadPCM reads a headerless s16le sample file in the given format.
func LoadPCM(path string, format audio.Format) (Waveform, error) {
	if format.BitDepth != 16 {
		return Waveform{}, fmt.Errorf("raw pcm must be 16-bit, got %d-bit", format.BitDepth)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to read pcm: %w", err)
	}
	if len(data) < 2 {
		return Waveform{}, fmt.Errorf("pcm file too short: %s", path)
	}

	samples := downmix(audio.BytesToSamples(data), format.Channels)
	mono := format
	mono.Channels = 1

	return Waveform{Samples: samples, Format: mono}, nil
}
