package testutils

import (
	"runtime"
	"time"
)

// GoroutineTracker records the goroutine count at creation to detect
// goroutines left running by a test.
type GoroutineTracker struct {
	name    string
	initial int
}

// TestingInterface defines the interface needed for leak checking
type TestingInterface interface {
	Helper()
	Errorf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

// NewGoroutineTracker captures the baseline.
func NewGoroutineTracker(name string) *GoroutineTracker {
	runtime.GC()
	return &GoroutineTracker{name: name, initial: runtime.NumGoroutine()}
}

// CheckLeaks fails t when, after waiting up to timeout, more than
// maxIncrease goroutines remain above the baseline.
func (gt *GoroutineTracker) CheckLeaks(t TestingInterface, maxIncrease int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	current := runtime.NumGoroutine()
	for current-gt.initial > maxIncrease && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		current = runtime.NumGoroutine()
	}

	if diff := current - gt.initial; diff > maxIncrease {
		t.Errorf("%s: goroutine leak detected: %d initial, %d current (+%d, limit: +%d)",
			gt.name, gt.initial, current, diff, maxIncrease)
		t.Logf("Goroutine stack trace:\n%s", stackTrace())
	}
}

func stackTrace() string {
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, true)
	return string(buf[:n])
}
