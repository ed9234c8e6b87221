// ABOUTME: Null audio output implementation
// ABOUTME: Discards PCM for headless operation and tests
package output

import "github.com/UVC-Bridge/uvcbridge-go/pkg/audio"

// Null discards all audio.
type Null struct{}

// NewNull creates a discarding output.
func NewNull() Output {
	return &Null{}
}

func (n *Null) Open(format audio.Format) error { return nil }
func (n *Null) Write(pcm []byte) error         { return nil }
func (n *Null) SetVolume(level int)            {}
func (n *Null) Close() error                   { return nil }
