// ABOUTME: MP3 waveform source
// ABOUTME: Decodes MP3 files via go-mp3 into mono int16 samples
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// LoadMP3 decodes an MP3 file. go-mp3 always emits 16-bit stereo at the
// stream's sample rate; the result is downmixed to mono.
func LoadMP3(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to open mp3: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return Waveform{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	stereo := audio.BytesToSamples(pcm)
	return Waveform{
		Samples: downmix(stereo, 2),
		Format: audio.Format{
			Channels:   1,
			BitDepth:   16,
			SampleRate: decoder.SampleRate(),
		},
	}, nil
}
