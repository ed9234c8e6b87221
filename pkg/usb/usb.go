// ABOUTME: USB stream driver boundary definitions
// ABOUTME: Stream enums, frame structs, callbacks, and the Driver interface
package usb

import (
	"fmt"
	"time"
)

// StreamType identifies one of the driver's logical streams.
type StreamType int

const (
	StreamVideo StreamType = iota
	StreamMic
	StreamSpeaker
)

func (t StreamType) String() string {
	switch t {
	case StreamVideo:
		return "video"
	case StreamMic:
		return "mic"
	case StreamSpeaker:
		return "speaker"
	default:
		return fmt.Sprintf("stream(%d)", int(t))
	}
}

// StreamState is a device lifecycle event delivered to the state callback.
type StreamState int

const (
	StateConnected StreamState = iota
	StateDisconnected
)

func (s StreamState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FrameFormat tags the payload encoding of a video frame.
type FrameFormat int

const (
	FormatUnknown FrameFormat = iota
	FormatMJPEG
	FormatUncompressed
)

func (f FrameFormat) String() string {
	switch f {
	case FormatMJPEG:
		return "mjpeg"
	case FormatUncompressed:
		return "uncompressed"
	default:
		return "unknown"
	}
}

// VideoFrameSize is one entry of the video capability list.
type VideoFrameSize struct {
	Width  int
	Height int
}

// AudioFrameSize is one entry of a mic or speaker capability list.
type AudioFrameSize struct {
	Channels   int
	BitDepth   int
	SampleRate int
	MinRate    int
	MaxRate    int
}

// VideoFrame is one compressed video image delivered by the driver.
// Data is borrowed: it aliases a driver-owned transfer buffer and is only
// valid until the frame callback returns.
type VideoFrame struct {
	Format   FrameFormat
	Sequence uint32
	Width    int
	Height   int
	Data     []byte
}

// MicFrame is one chunk of PCM microphone audio. Data is borrowed like
// VideoFrame.Data.
type MicFrame struct {
	BitDepth   int
	SampleRate int
	Data       []byte
}

// VideoFrameFunc is invoked once per captured video frame.
type VideoFrameFunc func(frame *VideoFrame)

// MicFrameFunc is invoked once per captured microphone frame. It must
// never block.
type MicFrameFunc func(frame *MicFrame)

// StateFunc is invoked on device connect and disconnect.
type StateFunc func(state StreamState)

// Driver is the contract a UVC/UAC stream driver implementation satisfies.
type Driver interface {
	// VideoFrameSizes returns the supported frame sizes and the index of
	// the currently active one. An empty list means the device offers no
	// video stream (or is absent).
	VideoFrameSizes() (sizes []VideoFrameSize, active int)

	// AudioFrameSizes returns the supported formats for the mic or speaker
	// stream and the index of the currently active one.
	AudioFrameSizes(stream StreamType) (formats []AudioFrameSize, active int)

	// Resume re-enables a suspended stream.
	Resume(stream StreamType) error

	// Suspend pauses a stream.
	Suspend(stream StreamType) error

	// SetVolume sets the output level of the mic or speaker stream on a
	// 0-100 scale.
	SetVolume(stream StreamType, level int) error

	// WriteSpeaker queues PCM bytes for speaker playback, blocking at most
	// maxWait. A timeout is reported as an error, but callers may treat it
	// as a degraded write rather than a failure.
	WriteSpeaker(data []byte, maxWait time.Duration) error
}
