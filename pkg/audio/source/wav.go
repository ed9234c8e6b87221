// ABOUTME: WAV waveform source
// ABOUTME: Decodes PCM WAV files via go-audio into mono int16 samples
package source

import (
	"fmt"
	"os"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/go-audio/wav"
)

// LoadWAV reads a PCM WAV file. Only 16-bit sources are accepted; stereo
// content is downmixed to mono.
func LoadWAV(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Waveform{}, fmt.Errorf("not a valid wav file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to decode wav: %w", err)
	}

	if decoder.BitDepth != 16 {
		return Waveform{}, fmt.Errorf("wav must be 16-bit, got %d-bit", decoder.BitDepth)
	}

	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = int16(s)
	}

	channels := int(decoder.NumChans)
	return Waveform{
		Samples: downmix(samples, channels),
		Format: audio.Format{
			Channels:   1,
			BitDepth:   16,
			SampleRate: int(decoder.SampleRate),
		},
	}, nil
}
