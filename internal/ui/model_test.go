// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, message handling, and state transitions
package ui

import (
	"testing"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil, 80) // Control is optional for testing

	if model.connected {
		t.Error("expected connected to be false initially")
	}

	if model.volume != 80 {
		t.Errorf("expected volume 80, got %d", model.volume)
	}

	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
}

func TestStatusMsgConnected(t *testing.T) {
	model := NewModel(nil, 80)

	connected := true
	msg := StatusMsg{
		Connected: &connected,
		Device:    "simulated-uvc",
	}

	model.applyStatus(msg)

	if !model.connected {
		t.Error("expected connected to be true after status update")
	}

	if model.device != "simulated-uvc" {
		t.Errorf("expected device 'simulated-uvc', got '%s'", model.device)
	}
}

func TestStatusMsgDisconnected(t *testing.T) {
	model := NewModel(nil, 80)

	connected := true
	model.applyStatus(StatusMsg{Connected: &connected})

	disconnected := false
	model.applyStatus(StatusMsg{Connected: &disconnected})

	if model.connected {
		t.Error("expected connected to be false after disconnect")
	}
}

func TestStatusMsgStreamFormats(t *testing.T) {
	model := NewModel(nil, 80)

	msg := StatusMsg{
		VideoWidth:  480,
		VideoHeight: 320,
		MicFormat:   audio.Format{Channels: 1, BitDepth: 16, SampleRate: 16000},
		SpkFormat:   audio.Format{Channels: 1, BitDepth: 16, SampleRate: 32000},
	}

	model.applyStatus(msg)

	if model.videoWidth != 480 || model.videoHeight != 320 {
		t.Errorf("expected 480x320, got %dx%d", model.videoWidth, model.videoHeight)
	}

	if model.micFormat.SampleRate != 16000 {
		t.Errorf("expected mic rate 16000, got %d", model.micFormat.SampleRate)
	}

	if model.spkFormat.SampleRate != 32000 {
		t.Errorf("expected speaker rate 32000, got %d", model.spkFormat.SampleRate)
	}
}

func TestStatusMsgVolume(t *testing.T) {
	model := NewModel(nil, 80)

	model.applyStatus(StatusMsg{Volume: 75})

	if model.volume != 75 {
		t.Errorf("expected volume 75, got %d", model.volume)
	}
}

func TestStatusMsgStats(t *testing.T) {
	model := NewModel(nil, 80)

	msg := StatusMsg{
		Delivered: 1000,
		Dropped:   50,
		Chunks:    200,
		Restarts:  2,
		Clients:   3,
	}

	model.applyStatus(msg)

	if model.delivered != 1000 {
		t.Errorf("expected delivered 1000, got %d", model.delivered)
	}

	if model.dropped != 50 {
		t.Errorf("expected dropped 50, got %d", model.dropped)
	}

	if model.chunks != 200 {
		t.Errorf("expected chunks 200, got %d", model.chunks)
	}

	if model.clients != 3 {
		t.Errorf("expected clients 3, got %d", model.clients)
	}
}

func TestMultipleStatusUpdates(t *testing.T) {
	model := NewModel(nil, 80)

	connected := true
	model.applyStatus(StatusMsg{
		Connected:   &connected,
		VideoWidth:  480,
		VideoHeight: 320,
	})

	// Partial update retains previous values
	model.applyStatus(StatusMsg{
		MicFormat: audio.Format{Channels: 1, BitDepth: 16, SampleRate: 16000},
	})

	if model.videoWidth != 480 {
		t.Error("previous video size was lost")
	}

	if model.micFormat.IsZero() {
		t.Error("new mic format not applied")
	}
}

func TestStatusMsgZeroValues(t *testing.T) {
	model := NewModel(nil, 80)

	model.applyStatus(StatusMsg{
		Volume:    75,
		Delivered: 100,
	})

	model.applyStatus(StatusMsg{
		Volume:    0,
		Delivered: 0,
	})

	// Volume should NOT be updated to 0 (0 is special case)
	if model.volume == 0 {
		t.Error("volume should not be updated to 0")
	}

	// Stats should be updated (0 is valid)
	if model.delivered != 0 {
		t.Error("delivered stats should be updated to 0")
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}
