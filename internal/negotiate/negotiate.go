// ABOUTME: Device capability negotiation on connect events
// ABOUTME: Selects active formats and arms the speaker lifecycle signals
package negotiate

import (
	"log"
	"sync"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/bridge"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/usb"
)

// Session owns the negotiated format state and the speaker lifecycle
// signals. Formats are written only by the Negotiator (connect-event
// context) and read by the playback side, which observes a signal edge
// before reading, so no partial update is ever visible.
type Session struct {
	mu      sync.RWMutex
	mic     audio.Format
	speaker audio.Format

	// SpeakerStart is raised on every connect once a speaker format is
	// negotiated; playback (re)arms on it. SpeakerReset is raised when a
	// reconnect changed the speaker format mid-flight.
	SpeakerStart *bridge.Signal
	SpeakerReset *bridge.Signal
}

// NewSession creates an empty session with cleared signals.
func NewSession() *Session {
	return &Session{
		SpeakerStart: bridge.NewSignal(),
		SpeakerReset: bridge.NewSignal(),
	}
}

// MicFormat returns the last negotiated microphone format.
func (s *Session) MicFormat() audio.Format {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mic
}

// SpeakerFormat returns the last negotiated speaker format.
func (s *Session) SpeakerFormat() audio.Format {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speaker
}

func (s *Session) setMicFormat(f audio.Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mic = f
}

func (s *Session) setSpeakerFormat(f audio.Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaker = f
}

// Negotiator reacts to device connect events by querying the driver's
// capability lists and updating the session. Disconnects are informational
// only: the last known formats stay in place.
type Negotiator struct {
	driver  usb.Driver
	session *Session
}

// New creates a negotiator bound to a driver and session.
func New(driver usb.Driver, session *Session) *Negotiator {
	return &Negotiator{driver: driver, session: session}
}

// HandleState is the driver's state callback.
func (n *Negotiator) HandleState(state usb.StreamState) {
	switch state {
	case usb.StateConnected:
		n.negotiateVideo()
		n.negotiateMic()
		n.negotiateSpeaker()
		log.Printf("Device connected")
	case usb.StateDisconnected:
		log.Printf("Device disconnected")
	default:
		log.Printf("Unknown stream state: %v", state)
	}
}

// negotiateVideo only logs the capability list; the video consumer reads
// resolution per-frame from the descriptor, so nothing is recorded.
func (n *Negotiator) negotiateVideo() {
	sizes, active := n.driver.VideoFrameSizes()
	if len(sizes) == 0 {
		log.Printf("Warning: video: empty frame size list")
		return
	}

	log.Printf("Video: %d frame sizes, active index %d", len(sizes), active)
	for i, s := range sizes {
		log.Printf("\tframe[%d] = %dx%d", i, s.Width, s.Height)
	}
}

// negotiateMic unconditionally overwrites the remembered mic format. The
// mic has no stateful downstream buffer shaped to a previous format, so no
// reconfiguration protocol is needed.
func (n *Negotiator) negotiateMic() {
	formats, active := n.driver.AudioFrameSizes(usb.StreamMic)
	if len(formats) == 0 {
		log.Printf("Warning: mic: empty format list")
		return
	}

	logFormats("mic", formats, active)

	picked := toFormat(formats[active])
	n.session.setMicFormat(picked)
	if picked.Channels != 1 {
		log.Printf("Warning: mic: only single-channel audio is supported, got %d channels", picked.Channels)
	}
	log.Printf("Mic: using frame[%d] %s", active, picked)
}

// negotiateSpeaker compares the freshly negotiated format against the
// remembered one. A change after a format was already established raises
// SpeakerReset before the overwrite; SpeakerStart is always raised after
// the update so a reconnect re-arms playback either way.
func (n *Negotiator) negotiateSpeaker() {
	formats, active := n.driver.AudioFrameSizes(usb.StreamSpeaker)
	if len(formats) == 0 {
		log.Printf("Warning: speaker: empty format list")
		return
	}

	logFormats("speaker", formats, active)

	picked := toFormat(formats[active])
	previous := n.session.SpeakerFormat()
	if !previous.Equal(picked) {
		if !previous.IsZero() {
			n.session.SpeakerReset.Set()
		}
		n.session.setSpeakerFormat(picked)
	}
	n.session.SpeakerStart.Set()

	if picked.Channels != 1 {
		log.Printf("Warning: speaker: only single-channel audio is supported, got %d channels", picked.Channels)
	}
	log.Printf("Speaker: using frame[%d] %s", active, picked)
}

func toFormat(f usb.AudioFrameSize) audio.Format {
	return audio.Format{
		Channels:   f.Channels,
		BitDepth:   f.BitDepth,
		SampleRate: f.SampleRate,
	}
}

func logFormats(name string, formats []usb.AudioFrameSize, active int) {
	log.Printf("%s: %d formats, active index %d", name, len(formats), active)
	for i, f := range formats {
		log.Printf("\t[%d] channels = %d, bits = %d, rate = %d, min = %d, max = %d",
			i, f.Channels, f.BitDepth, f.SampleRate, f.MinRate, f.MaxRate)
	}
}
