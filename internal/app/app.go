// ABOUTME: Main bridge application orchestration
// ABOUTME: Coordinates device, negotiation, playback, and HTTP sink
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/internal/config"
	"github.com/UVC-Bridge/uvcbridge-go/internal/device"
	"github.com/UVC-Bridge/uvcbridge-go/internal/discovery"
	"github.com/UVC-Bridge/uvcbridge-go/internal/httpd"
	"github.com/UVC-Bridge/uvcbridge-go/internal/negotiate"
	"github.com/UVC-Bridge/uvcbridge-go/internal/speaker"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio/output"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio/source"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/bridge"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/usb"
)

// deviceName identifies the simulated capture device in logs and status.
const deviceName = "simulated-uvc"

// offerTimeout bounds how long a producer frame may wait for a stalled
// consumer before the handoff is abandoned.
const offerTimeout = 3 * time.Second

// Stats is a point-in-time snapshot of bridge counters for the UI.
type Stats struct {
	Connected bool
	VideoSize usb.VideoFrameSize
	Delivered int64
	Dropped   int64
	Chunks    int64
	Restarts  int64
	Clients   int64
	MicFrames int64
	MicFormat audio.Format
	SpkFormat audio.Format
}

// Bridge wires the simulated device to the speaker pipeline and the HTTP
// video sink.
type Bridge struct {
	config config.Config
	wave   source.Waveform
	source string

	session    *negotiate.Session
	relay      *bridge.FrameRelay
	device     *device.Simulated
	negotiator *negotiate.Negotiator
	speaker    *speaker.Player
	httpd      *httpd.Server
	discovery  *discovery.Manager

	ctx       context.Context
	connected atomic.Bool
	micFrames atomic.Uint64
}

// New builds the bridge from resolved configuration.
func New(cfg config.Config) (*Bridge, error) {
	b := &Bridge{
		config:  cfg,
		session: negotiate.NewSession(),
		relay:   bridge.NewFrameRelay(),
	}

	// Reference waveform: a file if configured, a generated tone otherwise.
	if cfg.WaveFile != "" {
		wave, err := source.Load(cfg.WaveFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load wave file: %w", err)
		}
		b.wave = wave
		b.source = cfg.WaveFile
	} else {
		b.wave = source.Tone(cfg.ToneFrequency, source.DefaultToneDuration)
		b.source = fmt.Sprintf("Test Tone (%.0fHz)", cfg.ToneFrequency)
	}

	b.device = device.NewSimulated(device.Config{
		Output:       output.NewOto(),
		OnState:      b.handleState,
		OnVideoFrame: b.handleVideoFrame,
		OnMicFrame:   b.handleMicFrame,
		Debug:        cfg.Debug,
	})
	b.negotiator = negotiate.New(b.device, b.session)

	b.speaker = speaker.New(b.device, b.session, b.wave.Samples, b.wave.Format, speaker.Config{
		ChunkDuration: cfg.ChunkDuration(),
		SilenceGap:    cfg.SilenceGap(),
		Volume:        cfg.Volume,
		Debug:         cfg.Debug,
	})

	b.httpd = httpd.NewServer(httpd.Config{
		Port: cfg.Port,
		Name: cfg.Name,
	}, b.relay)

	if cfg.EnableMDNS {
		b.discovery = discovery.NewManager(discovery.Config{
			ServiceName: cfg.Name,
			Port:        cfg.Port,
		})
	}

	return b, nil
}

// Run starts every component and blocks until the context ends.
func (b *Bridge) Run(ctx context.Context) error {
	b.ctx = ctx

	if err := b.httpd.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if b.discovery != nil {
		if err := b.discovery.Advertise(); err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
		}
	}

	go func() {
		if err := b.speaker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Speaker loop error: %v", err)
		}
	}()

	// The device loop owns the frame cadence; it returns when ctx ends.
	err := b.device.Run(ctx)

	if b.discovery != nil {
		b.discovery.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if serr := b.httpd.Stop(shutdownCtx); serr != nil {
		log.Printf("HTTP shutdown error: %v", serr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// handleState forwards device lifecycle events to the negotiator.
func (b *Bridge) handleState(state usb.StreamState) {
	log.Printf("Device %s: %s", deviceName, state)
	b.connected.Store(state == usb.StateConnected)
	b.negotiator.HandleState(state)
}

// handleVideoFrame offers each captured frame to the rendezvous relay.
// The callback runs on the device goroutine and blocks while a consumer
// holds the borrowed buffer.
func (b *Bridge) handleVideoFrame(frame *usb.VideoFrame) {
	ctx, cancel := context.WithTimeout(b.ctx, offerTimeout)
	defer cancel()

	delivered, err := b.relay.Offer(ctx, frame)
	if err != nil {
		if errors.Is(err, bridge.ErrUnsupportedFormat) {
			log.Fatalf("Video frame rejected: %v", err)
		}
		// A stalled or departed consumer looks like a timeout here. The
		// buffer is reclaimed either way.
		if b.config.Debug {
			log.Printf("Frame %d handoff abandoned: %v", frame.Sequence, err)
		}
		return
	}
	if b.config.Debug && delivered {
		log.Printf("Frame %d delivered (%dx%d, %d bytes)",
			frame.Sequence, frame.Width, frame.Height, len(frame.Data))
	}
}

// handleMicFrame consumes captured microphone audio. With loopback enabled
// the samples are echoed straight back to the speaker.
func (b *Bridge) handleMicFrame(frame *usb.MicFrame) {
	b.micFrames.Add(1)
	if b.config.Debug {
		log.Printf("Mic frame: %d bytes @ %dHz/%dbit",
			len(frame.Data), frame.SampleRate, frame.BitDepth)
	}

	if b.config.Loopback {
		if err := b.device.WriteSpeaker(frame.Data, 0); err != nil && b.config.Debug {
			log.Printf("Loopback write failed: %v", err)
		}
	}
}

// SetVolume applies a UI-driven volume change to the speaker stream.
func (b *Bridge) SetVolume(level int) {
	if err := b.device.SetVolume(usb.StreamSpeaker, level); err != nil {
		log.Printf("Volume change failed: %v", err)
	}
}

// Reconnect replays a device disconnect/connect cycle with the speaker
// capability list replaced, exercising the renegotiation path.
func (b *Bridge) Reconnect(spkFormats []usb.AudioFrameSize, active int) {
	b.device.Reconnect(spkFormats, active)
}

// Stats snapshots the bridge counters.
func (b *Bridge) Stats() Stats {
	sizes, active := b.device.VideoFrameSizes()
	var videoSize usb.VideoFrameSize
	if active >= 0 && active < len(sizes) {
		videoSize = sizes[active]
	}

	return Stats{
		Connected: b.connected.Load(),
		VideoSize: videoSize,
		Delivered: int64(b.relay.Delivered()),
		Dropped:   int64(b.relay.Dropped()),
		Chunks:    int64(b.speaker.Chunks()),
		Restarts:  int64(b.speaker.Restarts()),
		Clients:   b.httpd.Clients(),
		MicFrames: int64(b.micFrames.Load()),
		MicFormat: b.session.MicFormat(),
		SpkFormat: b.session.SpeakerFormat(),
	}
}

// Source describes the configured waveform for status display.
func (b *Bridge) Source() string {
	return b.source
}

// Formats returns the negotiated mic and speaker formats.
func (b *Bridge) Formats() (mic, spk audio.Format) {
	return b.session.MicFormat(), b.session.SpeakerFormat()
}
