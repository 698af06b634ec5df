package session

import (
	"fmt"
	"sync"
	"time"
)

// UrgentThresholdSeconds is the remaining-time boundary below which the UI
// should render the countdown in an urgent state.
const UrgentThresholdSeconds = 300

// TimerState enumerates countdown lifecycle states.
type TimerState string

const (
	TimerIdle    TimerState = "IDLE"
	TimerRunning TimerState = "RUNNING"
	TimerExpired TimerState = "EXPIRED"
	TimerStopped TimerState = "STOPPED"
)

// Timer is a one-second-resolution countdown owned by a session.
//
// Idle → Running → {Expired, Stopped}. Start while Running implicitly stops
// the previous run first — there is never more than one tick stream. Stop is
// idempotent and safe after expiry. The expiry callback fires exactly once
// per countdown run, and remaining time never goes below zero.
type Timer struct {
	mu        sync.Mutex
	duration  int // seconds
	remaining int
	state     TimerState
	interval  time.Duration
	stopCh    chan struct{}
	onExpire  func()
	onTick    func(remaining int)
}

// NewTimer creates an idle Timer counting down from duration.
func NewTimer(duration time.Duration) *Timer {
	secs := int(duration / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &Timer{
		duration:  secs,
		remaining: secs,
		state:     TimerIdle,
		interval:  time.Second,
	}
}

// OnExpire registers the callback invoked when the countdown reaches zero.
// Must be set before Start.
func (t *Timer) OnExpire(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = fn
}

// OnTick registers an optional per-second observer of the remaining time.
func (t *Timer) OnTick(fn func(remaining int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = fn
}

// Start begins (or restarts) the countdown from the full duration.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.state == TimerRunning {
		t.stopLocked()
	}
	t.remaining = t.duration
	t.state = TimerRunning
	stop := make(chan struct{})
	t.stopCh = stop
	interval := t.interval
	t.mu.Unlock()

	go t.run(stop, interval)
}

func (t *Timer) run(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.state != TimerRunning {
				t.mu.Unlock()
				return
			}
			if t.remaining > 0 {
				t.remaining--
			}
			remaining := t.remaining
			expired := remaining == 0
			if expired {
				t.state = TimerExpired
			}
			onTick := t.onTick
			onExpire := t.onExpire
			t.mu.Unlock()

			if onTick != nil {
				onTick(remaining)
			}
			if expired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}

// Stop halts the countdown. Idempotent; a no-op once Expired or Stopped.
// The remaining time at the moment of stopping is preserved.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		return
	}
	t.stopLocked()
	t.state = TimerStopped
}

// stopLocked tears down the active tick goroutine. Caller holds t.mu.
func (t *Timer) stopLocked() {
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
}

// Remaining returns the remaining whole seconds, never negative.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// State returns the current lifecycle state.
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Running reports whether the countdown is active.
func (t *Timer) Running() bool {
	return t.State() == TimerRunning
}

// Urgent reports whether the remaining time is under the urgency threshold.
func (t *Timer) Urgent() bool {
	return t.Remaining() < UrgentThresholdSeconds
}

// FormatRemaining renders seconds as m:ss with zero-padded seconds,
// e.g. 3600 → "60:00", 59 → "0:59".
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
