// ABOUTME: Single-slot frame rendezvous between producer callback and consumer
// ABOUTME: Implements request/ready/consumed handshake with borrowed buffers
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/usb"
)

// ErrUnsupportedFormat means a frame format other than MJPEG reached the
// relay. Negotiation is supposed to prevent this, so callers treat it as an
// unrecoverable contract violation, not a retryable error.
var ErrUnsupportedFormat = errors.New("unsupported frame format")

// Frame is the descriptor handed to the consumer for one rendezvous. Data
// aliases a producer-owned buffer and must not be retained past Release.
type Frame struct {
	Sequence  uint32
	Width     int
	Height    int
	Timestamp time.Time
	Data      []byte
}

// FrameRelay synchronizes a non-blocking producer callback with a blocking
// pull-style consumer. It holds at most one frame in flight; see the
// package documentation for the protocol.
//
// The relay supports one consumer at a time. Concurrent pullers must
// serialize their Acquire/Release pairs.
type FrameRelay struct {
	requested *Signal
	ready     *Signal
	consumed  *Signal

	mu   sync.Mutex
	slot Frame

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewFrameRelay creates an empty relay.
func NewFrameRelay() *FrameRelay {
	return &FrameRelay{
		requested: NewSignal(),
		ready:     NewSignal(),
		consumed:  NewSignal(),
	}
}

// Offer hands a captured frame to a waiting consumer. It is called from the
// producer callback context.
//
// If no consumer has requested a frame, the frame is dropped silently and
// Offer returns immediately: this is the backpressure mechanism, not an
// error. Otherwise Offer publishes the descriptor, raises ready, and blocks
// until the consumer releases the buffer: the underlying data is only
// valid until the callback returns. The context bounds that wait; an
// expired context surfaces as a delivery error rather than a hang.
func (r *FrameRelay) Offer(ctx context.Context, frame *usb.VideoFrame) (bool, error) {
	if !r.requested.TryConsume() {
		r.dropped.Add(1)
		return false, nil
	}

	if frame.Format != usb.FormatMJPEG {
		return false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, frame.Format)
	}

	r.mu.Lock()
	r.slot = Frame{
		Sequence:  frame.Sequence,
		Width:     frame.Width,
		Height:    frame.Height,
		Timestamp: time.Unix(int64(frame.Sequence), 0),
		Data:      frame.Data,
	}
	r.mu.Unlock()

	r.ready.Set()

	if err := r.consumed.Wait(ctx); err != nil {
		return false, fmt.Errorf("consumer never released frame %d: %w", frame.Sequence, err)
	}

	r.delivered.Add(1)
	return true, nil
}

// Acquire requests the next frame and blocks until the producer delivers
// one. The returned frame's Data is valid until Release.
func (r *FrameRelay) Acquire(ctx context.Context) (Frame, error) {
	r.requested.Set()

	if err := r.ready.Wait(ctx); err != nil {
		r.abandon()
		return Frame{}, err
	}

	r.mu.Lock()
	frame := r.slot
	r.mu.Unlock()

	return frame, nil
}

// Release signals that the consumer is done with the frame buffer, letting
// the producer return from its callback.
func (r *FrameRelay) Release() {
	r.consumed.Set()
}

// abandon withdraws a request after a failed wait. If the producer already
// claimed the request it will publish and block on consumed, so complete
// the handshake on its behalf; the frame is lost but the producer thread is
// not.
func (r *FrameRelay) abandon() {
	if r.requested.TryConsume() {
		return
	}

	grace, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if r.ready.Wait(grace) == nil {
		r.consumed.Set()
	}
}

// Delivered returns the number of frames handed to a consumer.
func (r *FrameRelay) Delivered() uint64 {
	return r.delivered.Load()
}

// Dropped returns the number of frames discarded because no consumer was
// pulling.
func (r *FrameRelay) Dropped() uint64 {
	return r.dropped.Load()
}
