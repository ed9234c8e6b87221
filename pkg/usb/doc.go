// ABOUTME: Boundary types for the USB stream driver collaborator
// ABOUTME: Defines streams, capability lists, frames, and the Driver contract
// Package usb defines the boundary the bridge shares with a UVC/UAC stream
// driver. The driver itself (transfer scheduling, descriptor parsing, DMA)
// is an external collaborator; this package only fixes the shapes the core
// consumes: connect/disconnect state events, capability list queries with a
// currently-active index, per-frame callbacks, and imperative stream
// controls.
//
// Frame callbacks are invoked on the driver's own context. Callbacks must
// return promptly; video frame data is only valid until the callback
// returns.
package usb
