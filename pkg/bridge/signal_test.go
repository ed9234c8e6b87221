// ABOUTME: Tests for the binary signal primitive
// ABOUTME: Tests set/clear/consume semantics and bounded waits
package bridge

import (
	"context"
	"testing"
	"time"
)

func TestSignalSetAndConsume(t *testing.T) {
	s := NewSignal()

	if s.IsSet() {
		t.Error("new signal should be cleared")
	}
	if s.TryConsume() {
		t.Error("consuming a cleared signal should fail")
	}

	s.Set()
	if !s.IsSet() {
		t.Error("expected signal to be set")
	}

	if !s.TryConsume() {
		t.Error("expected consume to succeed")
	}
	if s.IsSet() {
		t.Error("consume should clear the signal")
	}
}

func TestSignalSetIsIdempotent(t *testing.T) {
	s := NewSignal()
	s.Set()
	s.Set()

	if !s.TryConsume() {
		t.Fatal("expected first consume to succeed")
	}
	if s.TryConsume() {
		t.Error("edges must collapse: second consume should fail")
	}
}

func TestSignalClear(t *testing.T) {
	s := NewSignal()
	s.Set()
	s.Clear()

	if s.IsSet() {
		t.Error("expected cleared signal")
	}
}

func TestSignalWaitConsumesOnWake(t *testing.T) {
	s := NewSignal()
	s.Set()

	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsSet() {
		t.Error("wait should auto-clear the signal")
	}
}

func TestSignalWaitBlocksUntilSet(t *testing.T) {
	s := NewSignal()
	done := make(chan error, 1)

	go func() {
		done <- s.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("wait returned before the signal was set")
	case <-time.After(20 * time.Millisecond):
	}

	s.Set()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("wait did not wake after set")
	}
}

func TestSignalWaitHonorsContext(t *testing.T) {
	s := NewSignal()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := s.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestSignalWaitAfterReset(t *testing.T) {
	s := NewSignal()
	s.Set()
	if !s.TryConsume() {
		t.Fatal("expected consume to succeed")
	}

	// The signal must be reusable after a consume.
	done := make(chan error, 1)
	go func() {
		done <- s.Wait(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	s.Set()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("wait did not wake on the second edge")
	}
}
