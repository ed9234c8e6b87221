// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats and sample packing helpers
package audio

import (
	"encoding/binary"
	"fmt"
)

// Format describes a linear PCM stream.
type Format struct {
	Channels   int
	BitDepth   int
	SampleRate int
}

// IsZero reports whether the format has never been negotiated.
// A zero sample rate is the marker the negotiator relies on.
func (f Format) IsZero() bool {
	return f.SampleRate == 0
}

// Equal reports whether two formats match field by field.
func (f Format) Equal(other Format) bool {
	return f.Channels == other.Channels &&
		f.BitDepth == other.BitDepth &&
		f.SampleRate == other.SampleRate
}

// BytesPerSample returns the byte width of one sample.
func (f Format) BytesPerSample() int {
	return f.BitDepth / 8
}

func (f Format) String() string {
	return fmt.Sprintf("%dch/%dbit/%dHz", f.Channels, f.BitDepth, f.SampleRate)
}

// SamplesToBytes packs int16 samples as little-endian PCM bytes.
func SamplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToSamples unpacks little-endian 16-bit PCM bytes into samples.
// A trailing odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
