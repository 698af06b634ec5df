package session

import (
	"sync/atomic"
	"testing"
	"time"
)

// fastTimer returns a timer whose ticks fire every few milliseconds so tests
// exercise the real tick path without real-time waits.
func fastTimer(durationSeconds int) *Timer {
	t := NewTimer(time.Duration(durationSeconds) * time.Second)
	t.interval = 2 * time.Millisecond
	return t
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestTimerExpiresExactlyOnce(t *testing.T) {
	tm := fastTimer(3)

	var fired int32
	tm.OnExpire(func() { atomic.AddInt32(&fired, 1) })
	tm.Start()

	waitFor(t, func() bool { return tm.State() == TimerExpired }, "timer never expired")

	// Give any stray second callback a chance to fire.
	time.Sleep(20 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("expiry callbacks = %d, want 1", n)
	}
	if tm.Remaining() != 0 {
		t.Fatalf("Remaining after expiry = %d, want 0", tm.Remaining())
	}
}

func TestTimerNeverNegative(t *testing.T) {
	tm := fastTimer(2)
	tm.Start()

	waitFor(t, func() bool { return tm.State() == TimerExpired }, "timer never expired")
	time.Sleep(20 * time.Millisecond)
	if r := tm.Remaining(); r < 0 {
		t.Fatalf("Remaining = %d, must never be negative", r)
	}
}

func TestStopIsIdempotentAndSafeAfterExpiry(t *testing.T) {
	tm := fastTimer(1)
	tm.Start()
	waitFor(t, func() bool { return tm.State() == TimerExpired }, "timer never expired")

	tm.Stop()
	tm.Stop()
	if tm.State() != TimerExpired {
		t.Fatalf("Stop after expiry must not change state, got %s", tm.State())
	}

	tm2 := fastTimer(3600)
	tm2.Start()
	tm2.Stop()
	tm2.Stop()
	if tm2.State() != TimerStopped {
		t.Fatalf("state = %s, want STOPPED", tm2.State())
	}
}

func TestStartWhileRunningRestartsSingleStream(t *testing.T) {
	tm := fastTimer(3600)

	var ticks int32
	tm.OnTick(func(int) { atomic.AddInt32(&ticks, 1) })

	tm.Start()
	tm.Start() // must stop the first run before starting again

	waitFor(t, func() bool { return atomic.LoadInt32(&ticks) >= 5 }, "no ticks observed")

	// With a single stream remaining decreases one per tick; two concurrent
	// streams would decrement roughly twice per observed tick.
	elapsed := tm.duration - tm.Remaining()
	observed := int(atomic.LoadInt32(&ticks))
	if elapsed > observed+1 {
		t.Fatalf("remaining dropped by %d over %d ticks: concurrent tick streams", elapsed, observed)
	}
	tm.Stop()
}

func TestStopPreservesRemaining(t *testing.T) {
	tm := fastTimer(3600)
	tm.Start()

	waitFor(t, func() bool { return tm.Remaining() < 3600 }, "no ticks observed")
	tm.Stop()

	r := tm.Remaining()
	time.Sleep(20 * time.Millisecond)
	if tm.Remaining() != r {
		t.Fatalf("Remaining changed after Stop: %d → %d", r, tm.Remaining())
	}
}

func TestUrgentThreshold(t *testing.T) {
	tm := NewTimer(time.Duration(UrgentThresholdSeconds) * time.Second)
	if tm.Urgent() {
		t.Fatal("exactly 300s remaining is not yet urgent")
	}
	tm2 := NewTimer((UrgentThresholdSeconds - 1) * time.Second)
	if !tm2.Urgent() {
		t.Fatal("299s remaining must be urgent")
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{3600, "60:00"},
		{299, "4:59"},
		{61, "1:01"},
		{9, "0:09"},
		{0, "0:00"},
		{-5, "0:00"},
	}
	for _, tc := range cases {
		if got := FormatRemaining(tc.in); got != tc.want {
			t.Errorf("FormatRemaining(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
