// ABOUTME: Speaker lifecycle state machine and playback loop
// ABOUTME: Streams the reference waveform in chunks, restarting on format changes
package speaker

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/internal/negotiate"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio/decimate"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/usb"
)

// Config holds playback configuration.
type Config struct {
	ChunkDuration time.Duration // duration of one output chunk
	SilenceGap    time.Duration // pause inserted at waveform loop boundaries
	WriteTimeout  time.Duration // bound on one speaker write
	Volume        int           // default level applied on every start, 0-100
	Debug         bool
}

// withDefaults fills in the demo defaults.
func (c Config) withDefaults() Config {
	if c.ChunkDuration == 0 {
		c.ChunkDuration = 400 * time.Millisecond
	}
	if c.SilenceGap == 0 {
		c.SilenceGap = time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = time.Second
	}
	if c.Volume == 0 {
		c.Volume = 80
	}
	return c
}

// Player drives the speaker through its Idle → Starting → Playing
// lifecycle. The device starts suspended; every SpeakerStart edge resumes
// it, applies the default volume, and begins a fresh playback pass over the
// reference waveform. A SpeakerReset (or a pending SpeakerStart) observed
// after a chunk aborts the pass so the next one derives fresh conversion
// parameters.
type Player struct {
	driver     usb.Driver
	session    *negotiate.Session
	wave       []int16
	waveFormat audio.Format
	config     Config

	chunks   atomic.Uint64
	restarts atomic.Uint64
}

// New creates a player streaming wave (in waveFormat) to the driver's
// speaker under the session's negotiated format.
func New(driver usb.Driver, session *negotiate.Session, wave []int16, waveFormat audio.Format, config Config) *Player {
	return &Player{
		driver:     driver,
		session:    session,
		wave:       wave,
		waveFormat: waveFormat,
		config:     config.withDefaults(),
	}
}

// Run blocks until the context ends, looping through the speaker lifecycle.
// The loop is Idle until the first SpeakerStart edge arrives.
func (p *Player) Run(ctx context.Context) error {
	for {
		if err := p.session.SpeakerStart.Wait(ctx); err != nil {
			return err
		}
		p.restarts.Add(1)

		if err := p.start(); err != nil {
			return err
		}

		if err := p.play(ctx); err != nil {
			return err
		}
	}
}

// start resumes the suspended speaker and applies the default volume to
// both outputs. Volume failures are degraded mode, not fatal: the device
// may reject controls it does not support.
func (p *Player) start() error {
	if err := p.driver.Resume(usb.StreamSpeaker); err != nil {
		return fmt.Errorf("speaker resume failed: %w", err)
	}
	if err := p.driver.SetVolume(usb.StreamSpeaker, p.config.Volume); err != nil {
		log.Printf("Warning: speaker volume: %v", err)
	}
	if err := p.driver.SetVolume(usb.StreamMic, p.config.Volume); err != nil {
		log.Printf("Warning: mic volume: %v", err)
	}
	log.Printf("Speaker resumed")
	return nil
}

// play streams chunks until a reset or start edge interrupts the pass.
// It returns nil on interruption (back to the outer loop) and an error only
// when the context ends.
func (p *Player) play(ctx context.Context) error {
	format := p.session.SpeakerFormat()

	sess, err := decimate.NewSession(p.wave, p.waveFormat, format, p.config.ChunkDuration)
	if err != nil {
		// Invalid negotiated formats (unarmed rate, zero step) never reach
		// the pipeline; wait for the next negotiation instead.
		log.Printf("Error: cannot play at %s: %v", format, err)
		return nil
	}

	params := sess.Params()
	log.Printf("Playing waveform at %s (step=%d, shift=%d, chunk=%d bytes)",
		format, params.Step, params.Shift, sess.ChunkBytes())

	for {
		chunk, ok := sess.NextChunk()
		if !ok {
			// Loop boundary: rest for the silence gap instead of clicking
			// straight back to the start.
			select {
			case <-time.After(p.config.SilenceGap):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			if err := p.driver.WriteSpeaker(chunk, p.config.WriteTimeout); err != nil {
				// A timed-out write is a degraded chunk, not a failure.
				if p.config.Debug {
					log.Printf("[DEBUG] speaker write: %v", err)
				}
			}
			p.chunks.Add(1)
		}

		if p.session.SpeakerReset.TryConsume() || p.session.SpeakerStart.IsSet() {
			log.Printf("Speaker reconfiguration requested, restarting playback")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Chunks returns the number of chunks written so far.
func (p *Player) Chunks() uint64 {
	return p.chunks.Load()
}

// Restarts returns the number of Starting transitions taken.
func (p *Player) Restarts() uint64 {
	return p.restarts.Load()
}
