package runner

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"
)

func TestIdleWatchdog_Disabled(t *testing.T) {
	var cancelled atomic.Bool
	w := newIdleWatchdog(0, func() { cancelled.Store(true) })
	defer w.Stop()

	var buf bytes.Buffer
	if _, err := w.Wrap(&buf).Write([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if buf.String() != "hello" {
		t.Errorf("passthrough: got %q, want %q", buf.String(), "hello")
	}
	if w.Idled() || cancelled.Load() {
		t.Fatal("disabled watchdog must never fire")
	}
}

func TestIdleWatchdog_ResetsOnWrite(t *testing.T) {
	var cancelled atomic.Bool
	w := newIdleWatchdog(200*time.Millisecond, func() { cancelled.Store(true) })
	defer w.Stop()

	var out, errOut bytes.Buffer
	stdout, stderr := w.Wrap(&out), w.Wrap(&errOut)

	// alternate streams; either one keeps the process alive
	for i := 0; i < 5; i++ {
		time.Sleep(80 * time.Millisecond)
		if i%2 == 0 {
			_, _ = stdout.Write([]byte("x"))
		} else {
			_, _ = stderr.Write([]byte("y"))
		}
	}

	if w.Idled() {
		t.Fatal("should not be idled while output is flowing")
	}
	if cancelled.Load() {
		t.Fatal("cancel should not have been called")
	}
}

func TestIdleWatchdog_FiresOnSilence(t *testing.T) {
	fired := make(chan struct{})
	w := newIdleWatchdog(50*time.Millisecond, func() { close(fired) })
	defer w.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not fire")
	}
	if !w.Idled() {
		t.Error("Idled: got false, want true")
	}
}

func TestIdleWatchdog_Stop(t *testing.T) {
	var cancelled atomic.Bool
	w := newIdleWatchdog(50*time.Millisecond, func() { cancelled.Store(true) })
	w.Stop()

	time.Sleep(120 * time.Millisecond)
	if cancelled.Load() {
		t.Fatal("stopped watchdog fired")
	}
}

func TestIdleWatchdog_FireAfterStopIgnored(t *testing.T) {
	var cancelled atomic.Bool
	w := newIdleWatchdog(time.Hour, func() { cancelled.Store(true) })
	w.Stop()

	// a timer callback that was already dispatched when Stop ran
	w.fire()

	if w.Idled() {
		t.Error("Idled: got true after Stop, want false")
	}
	if cancelled.Load() {
		t.Error("cancel called after Stop")
	}
}
