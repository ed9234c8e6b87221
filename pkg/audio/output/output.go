// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for host playback backends
// Package output provides host audio playback backends for the simulated
// speaker device.
package output

import "github.com/UVC-Bridge/uvcbridge-go/pkg/audio"

// Output represents a host audio playback device.
type Output interface {
	// Open initializes the device for the given PCM format.
	Open(format audio.Format) error

	// Write plays raw PCM bytes in the opened format (blocks until queued).
	Write(pcm []byte) error

	// SetVolume sets software volume (0-100).
	SetVolume(level int)

	// Close releases device resources.
	Close() error
}
