// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and PCM sample packing helpers
// Package audio provides fundamental audio types shared across the bridge.
//
// This package defines the core types used throughout the uvcbridge library:
//   - Format: Describes a PCM stream (channels, bit depth, sample rate)
//
// It also provides utilities for packing samples into wire bytes:
//   - int16 samples ↔ little-endian byte buffers
//
// Example:
//
//	format := audio.Format{
//	    Channels:   1,
//	    BitDepth:   16,
//	    SampleRate: 32000,
//	}
package audio
