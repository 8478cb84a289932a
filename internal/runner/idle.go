package runner

import (
	"io"
	"sync"
	"time"
)

// idleWatchdog calls cancel when none of the writers it wraps has seen
// output for the configured timeout. A zero timeout disables it.
type idleWatchdog struct {
	timer   *time.Timer
	timeout time.Duration
	cancel  func()
	idled   bool
	stopped bool
	mu      sync.Mutex
}

func newIdleWatchdog(timeout time.Duration, cancel func()) *idleWatchdog {
	w := &idleWatchdog{timeout: timeout, cancel: cancel}
	if timeout > 0 {
		w.timer = time.AfterFunc(timeout, w.fire)
	}
	return w
}

func (w *idleWatchdog) fire() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.idled = true
	w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
}

// touch records activity.
func (w *idleWatchdog) touch() {
	if w.timer != nil {
		w.timer.Reset(w.timeout)
	}
}

// Wrap returns a writer that forwards to dst and counts as activity.
func (w *idleWatchdog) Wrap(dst io.Writer) io.Writer {
	return &activityWriter{dst: dst, dog: w}
}

// Idled reports whether the timeout fired.
func (w *idleWatchdog) Idled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.idled
}

// Stop disarms the timer. A callback already in flight after Stop returns
// does not mark the watchdog idled.
func (w *idleWatchdog) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

type activityWriter struct {
	dst io.Writer
	dog *idleWatchdog
}

func (a *activityWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		a.dog.touch()
	}
	return a.dst.Write(p)
}
