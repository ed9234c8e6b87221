// ABOUTME: Cross-context synchronization primitives for the capture bridge
// ABOUTME: Binary signals and the single-slot frame rendezvous channel
// Package bridge glues the driver's non-blocking callback context to the
// bridge's blocking, pull-based consumers.
//
// Signal is a named binary flag with single-consumer semantics: one side
// sets it, the other observes it, and observation clears it (either
// explicitly via TryConsume or automatically on Wait wake-up). Signals are
// edge-triggered notifications, not state.
//
// FrameRelay is a single-slot rendezvous between a producer callback that
// must return promptly and a consumer that pulls frames synchronously. At
// most one frame is ever in flight; a frame arriving while no consumer is
// waiting is dropped, which bounds memory and backpressures the capture
// path instead of queueing. The frame buffer is borrowed from the producer:
// the producer blocks inside Offer until the consumer calls Release, because
// the buffer is only valid while the callback holds it.
package bridge
