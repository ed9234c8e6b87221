// ABOUTME: Tests for waveform sources
// ABOUTME: Covers tone generation, raw PCM loading, WAV round-trip, and downmix
package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestToneFormat(t *testing.T) {
	w := Tone(DefaultToneFrequency, time.Second)

	want := audio.Format{Channels: 1, BitDepth: 16, SampleRate: 32000}
	if !w.Format.Equal(want) {
		t.Errorf("expected %s, got %s", want, w.Format)
	}
	if len(w.Samples) != 32000 {
		t.Errorf("expected 32000 samples for 1s, got %d", len(w.Samples))
	}
	if w.Samples[0] != 0 {
		t.Errorf("sine must start at zero, got %d", w.Samples[0])
	}

	allZero := true
	for _, s := range w.Samples {
		if s != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Error("tone contains only zeros")
	}
}

func TestLoadDefaultsToTone(t *testing.T) {
	w, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Format.SampleRate != DefaultSampleRate {
		t.Errorf("expected default rate, got %d", w.Format.SampleRate)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	if _, err := Load("wave.ogg"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.pcm")
	samples := []int16{1, -2, 3, -4}
	if err := os.WriteFile(path, audio.SamplesToBytes(samples), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadPCM(path, audio.Format{Channels: 1, BitDepth: 16, SampleRate: 32000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Samples) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(w.Samples))
	}
	for i, s := range samples {
		if w.Samples[i] != s {
			t.Errorf("sample %d: expected %d, got %d", i, s, w.Samples[i])
		}
	}
}

func TestLoadWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := wav.NewEncoder(f, 32000, 16, 1, 1)
	src := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 32000},
		SourceBitDepth: 16,
		Data:           []int{0, 100, -100, 32000},
	}
	if err := enc.Write(src); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	w, err := LoadWAV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := audio.Format{Channels: 1, BitDepth: 16, SampleRate: 32000}
	if !w.Format.Equal(want) {
		t.Errorf("expected %s, got %s", want, w.Format)
	}
	expected := []int16{0, 100, -100, 32000}
	if len(w.Samples) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(w.Samples))
	}
	for i, s := range expected {
		if w.Samples[i] != s {
			t.Errorf("sample %d: expected %d, got %d", i, s, w.Samples[i])
		}
	}
}

func TestLoadWAVCarriesSampleRate(t *testing.T) {
	// File sources are not pinned to 32 kHz: the decoded rate flows into
	// the waveform and the decimation step is derived from it.
	path := filepath.Join(t.TempDir(), "wave44k.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	src := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 44100},
		SourceBitDepth: 16,
		Data:           []int{1, 2, 3},
	}
	if err := enc.Write(src); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	w, err := LoadWAV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Format.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", w.Format.SampleRate)
	}
}

func TestDownmixAverages(t *testing.T) {
	stereo := []int16{10, 20, -10, -20}
	mono := downmix(stereo, 2)

	if len(mono) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(mono))
	}
	if mono[0] != 15 || mono[1] != -15 {
		t.Errorf("expected averaged samples {15, -15}, got %v", mono)
	}
}
