// ABOUTME: Generated tone waveform source
// ABOUTME: Produces a sine wave standing in for the built-in wave array
package source

import (
	"math"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
)

const (
	// DefaultSampleRate and DefaultBitDepth match the fixed source wave
	// format the decimation pipeline is specified against.
	DefaultSampleRate = 32000
	DefaultBitDepth   = 16

	DefaultToneFrequency = 440.0 // A4 note
	DefaultToneDuration  = 2 * time.Second
)

// Tone generates a mono sine wave at the default source format.
func Tone(frequency float64, duration time.Duration) Waveform {
	numSamples := int(duration.Seconds() * DefaultSampleRate)
	samples := make([]int16, numSamples)

	for i := range samples {
		t := float64(i) / float64(DefaultSampleRate)
		samples[i] = int16(math.Sin(2*math.Pi*frequency*t) * 32767.0 * 0.5) // 50% volume
	}

	return Waveform{
		Samples: samples,
		Format:  audio.Format{Channels: 1, BitDepth: DefaultBitDepth, SampleRate: DefaultSampleRate},
	}
}
