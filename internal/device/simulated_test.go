// ABOUTME: Tests for the simulated capture device
// ABOUTME: Covers capability lists, frame emission, and speaker lifecycle
package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
	"github.com/UVC-Bridge/uvcbridge-go/pkg/usb"
)

func TestDefaultCapabilities(t *testing.T) {
	d := NewSimulated(Config{})

	sizes, active := d.VideoFrameSizes()
	if len(sizes) != 1 || active != 0 {
		t.Fatalf("unexpected video list: %v, %d", sizes, active)
	}
	if sizes[0].Width != 480 || sizes[0].Height != 320 {
		t.Errorf("unexpected default size: %+v", sizes[0])
	}

	spk, _ := d.AudioFrameSizes(usb.StreamSpeaker)
	if spk[0].SampleRate != 32000 || spk[0].BitDepth != 16 || spk[0].Channels != 1 {
		t.Errorf("unexpected default speaker format: %+v", spk[0])
	}

	mic, _ := d.AudioFrameSizes(usb.StreamMic)
	if mic[0].SampleRate != 16000 {
		t.Errorf("unexpected default mic format: %+v", mic[0])
	}
}

func TestRunEmitsStateAndFrames(t *testing.T) {
	var mu sync.Mutex
	var states []usb.StreamState
	frames := 0
	micFrames := 0

	d := NewSimulated(Config{
		FrameInterval: 5 * time.Millisecond,
		OnState: func(s usb.StreamState) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		},
		OnVideoFrame: func(f *usb.VideoFrame) {
			mu.Lock()
			frames++
			mu.Unlock()
			if f.Format != usb.FormatMJPEG {
				t.Errorf("expected mjpeg, got %v", f.Format)
			}
			if len(f.Data) < 4 || f.Data[0] != 0xFF || f.Data[1] != 0xD8 {
				t.Error("expected JPEG SOI marker")
			}
		},
		OnMicFrame: func(f *usb.MicFrame) {
			mu.Lock()
			micFrames++
			mu.Unlock()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		enough := frames >= 3 && micFrames >= 3
		mu.Unlock()
		if enough {
			break
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if frames < 3 {
		t.Errorf("expected at least 3 video frames, got %d", frames)
	}
	if len(states) < 2 || states[0] != usb.StateConnected || states[len(states)-1] != usb.StateDisconnected {
		t.Errorf("unexpected state sequence: %v", states)
	}
}

func TestFrameSequenceIncrements(t *testing.T) {
	var mu sync.Mutex
	var seqs []uint32

	d := NewSimulated(Config{
		FrameInterval: 2 * time.Millisecond,
		OnVideoFrame: func(f *usb.VideoFrame) {
			mu.Lock()
			seqs = append(seqs, f.Sequence)
			mu.Unlock()
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	d.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(seqs) < 2 {
		t.Fatalf("expected multiple frames, got %d", len(seqs))
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] != seqs[i-1]+1 {
			t.Fatalf("sequence gap: %d -> %d", seqs[i-1], seqs[i])
		}
	}
}

func TestSpeakerSuspendedUntilResume(t *testing.T) {
	d := NewSimulated(Config{})

	if err := d.WriteSpeaker([]byte{0, 0}, time.Second); err == nil {
		t.Error("expected write to fail while suspended")
	}

	if err := d.Resume(usb.StreamSpeaker); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if err := d.WriteSpeaker([]byte{0, 0}, time.Second); err != nil {
		t.Errorf("expected write to succeed after resume: %v", err)
	}

	if err := d.Suspend(usb.StreamSpeaker); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if err := d.WriteSpeaker([]byte{0, 0}, time.Second); err == nil {
		t.Error("expected write to fail after suspend")
	}
}

// blockedOutput never completes a write until released, standing in for a
// saturated host backend.
type blockedOutput struct {
	release chan struct{}
}

func (b *blockedOutput) Open(format audio.Format) error { return nil }
func (b *blockedOutput) Write(pcm []byte) error         { <-b.release; return nil }
func (b *blockedOutput) SetVolume(level int)            {}
func (b *blockedOutput) Close() error                   { return nil }

func TestWriteSpeakerZeroWaitNeverBlocks(t *testing.T) {
	out := &blockedOutput{release: make(chan struct{})}
	defer close(out.release)

	d := NewSimulated(Config{Output: out})
	if err := d.Resume(usb.StreamSpeaker); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	// The drain goroutine is not running, so the queue alone absorbs
	// writes. Every call must return immediately, full queue included.
	start := time.Now()
	var failed bool
	for i := 0; i < spkQueueDepth+2; i++ {
		if err := d.WriteSpeaker([]byte{0, 0}, 0); err != nil {
			failed = true
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero-wait writes took %v, expected immediate return", elapsed)
	}
	if !failed {
		t.Error("expected a queue-full error once capacity was exceeded")
	}
}

func TestWriteSpeakerBoundedWait(t *testing.T) {
	out := &blockedOutput{release: make(chan struct{})}
	defer close(out.release)

	d := NewSimulated(Config{Output: out})
	if err := d.Resume(usb.StreamSpeaker); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	for i := 0; i < spkQueueDepth; i++ {
		if err := d.WriteSpeaker([]byte{0, 0}, 0); err != nil {
			t.Fatalf("write %d failed before queue was full: %v", i, err)
		}
	}

	start := time.Now()
	err := d.WriteSpeaker([]byte{0, 0}, 50*time.Millisecond)
	elapsed := time.Since(start)

	if err == nil {
		t.Error("expected timeout error on full queue")
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("write returned after %v, before maxWait", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("write took %v, far past maxWait", elapsed)
	}
}

func TestReconnectSwapsSpeakerList(t *testing.T) {
	var mu sync.Mutex
	var states []usb.StreamState

	d := NewSimulated(Config{
		OnState: func(s usb.StreamState) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		},
	})

	newList := []usb.AudioFrameSize{{Channels: 1, BitDepth: 8, SampleRate: 16000}}
	d.Reconnect(newList, 0)

	spk, active := d.AudioFrameSizes(usb.StreamSpeaker)
	if active != 0 || spk[0].BitDepth != 8 || spk[0].SampleRate != 16000 {
		t.Errorf("unexpected speaker list after reconnect: %+v", spk)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 || states[0] != usb.StateDisconnected || states[1] != usb.StateConnected {
		t.Errorf("expected disconnect+connect, got %v", states)
	}
}

func TestVolumeRange(t *testing.T) {
	d := NewSimulated(Config{})

	if err := d.SetVolume(usb.StreamSpeaker, 80); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := d.SetVolume(usb.StreamSpeaker, 101); err == nil {
		t.Error("expected error for out-of-range volume")
	}
}
