package workshop

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TimerMode tells which way a timer counts.
type TimerMode string

const (
	ModeIdle      TimerMode = ""
	ModeCountdown TimerMode = "countdown"
	ModeStopwatch TimerMode = "stopwatch"
)

// Ticker is the per-second clock driving a timer run.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// TimerState is a snapshot of a timer.
type TimerState struct {
	Mode    TimerMode
	Seconds int
	Running bool
}

// Timer is a countdown or stopwatch ticking once per second.
// At most one run is active; starting a new one cancels the previous run.
type Timer struct {
	mu        sync.Mutex
	state     TimerState
	cancel    context.CancelFunc
	run       uint64
	newTicker func() Ticker
	onDone    func()
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithTicker replaces the wall clock, mainly for tests.
func WithTicker(f func() Ticker) TimerOption {
	return func(t *Timer) { t.newTicker = f }
}

// WithOnDone registers a callback fired once when a countdown reaches zero.
func WithOnDone(f func()) TimerOption {
	return func(t *Timer) { t.onDone = f }
}

func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{
		newTicker: func() Ticker { return stdTicker{time.NewTicker(time.Second)} },
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// StartCountdown counts down from minutes*60 seconds.
func (t *Timer) StartCountdown(minutes int) {
	if minutes < 0 {
		minutes = 0
	}
	t.start(TimerState{Mode: ModeCountdown, Seconds: minutes * 60, Running: true})
}

// StartStopwatch counts up from zero.
func (t *Timer) StartStopwatch() {
	t.start(TimerState{Mode: ModeStopwatch, Running: true})
}

func (t *Timer) start(s TimerState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.state = s
	t.launchLocked()
}

// Pause keeps the current reading and stops ticking.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Running {
		return
	}
	t.stopLocked()
	t.state.Running = false
}

// Resume continues a paused run. It is a no-op when idle, running or when a countdown is already at zero.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Running || t.state.Mode == ModeIdle {
		return
	}
	if t.state.Mode == ModeCountdown && t.state.Seconds == 0 {
		return
	}
	t.state.Running = true
	t.launchLocked()
}

// Reset stops any run and clears the timer.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.state = TimerState{}
}

// State returns a snapshot.
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Display renders the reading as MM:SS, or --:-- when idle.
func (t *Timer) Display() string {
	return FormatSeconds(t.State())
}

// FormatSeconds renders a timer state the same way Display does.
func FormatSeconds(s TimerState) string {
	if s.Mode == ModeIdle {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", s.Seconds/60, s.Seconds%60)
}

// tick advances whatever run is active by one second.
func (t *Timer) tick() {
	t.advance(0)
}

// advance moves run forward one second; run 0 matches any run. It reports
// whether the caller's clock should stop: the run was superseded or has finished.
func (t *Timer) advance(run uint64) bool {
	t.mu.Lock()
	if run != 0 && t.run != run {
		t.mu.Unlock()
		return true
	}
	done := t.tickLocked()
	onDone := t.onDone
	t.mu.Unlock()
	if done && onDone != nil {
		onDone()
	}
	return done
}

func (t *Timer) tickLocked() bool {
	if !t.state.Running {
		return false
	}
	switch t.state.Mode {
	case ModeStopwatch:
		t.state.Seconds++
	case ModeCountdown:
		if t.state.Seconds <= 1 {
			t.state.Seconds = 0
			t.state.Running = false
			t.stopLocked()
			return true
		}
		t.state.Seconds--
	}
	return false
}

func (t *Timer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.run++
}

func (t *Timer) launchLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.run++
	run := t.run
	ticker := t.newTicker()
	go t.loop(ctx, run, ticker)
}

func (t *Timer) loop(ctx context.Context, run uint64, ticker Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if t.advance(run) {
				return
			}
		}
	}
}
