package dashboard

import (
	"fmt"
	"sync"
	"time"
)

// State is the auto-refresh controller state.
type State int

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Action is one timer side effect of a transition.
type Action int

const (
	StopRefresh Action = iota
	StopCountdown
	StartRefresh
	StartCountdown
	ClearCountdown
)

// Transition returns the state entered when the checkbox is set to enable
// and the timer actions to apply, in order. Both states stop any running
// timers first, so re-entering Enabled never leaves a duplicate behind.
func Transition(enable bool) (State, []Action) {
	if enable {
		return Enabled, []Action{StopRefresh, StopCountdown, StartRefresh, StartCountdown}
	}
	return Disabled, []Action{StopRefresh, StopCountdown, ClearCountdown}
}

// Ticker is a repeating timer.
type Ticker interface {
	Stop()
}

// Clock schedules repeating callbacks and tells the time.
type Clock interface {
	Now() time.Time
	Every(d time.Duration, fn func()) Ticker
}

// RealClock runs callbacks from a time.Ticker goroutine.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Every(d time.Duration, fn func()) Ticker {
	t := &realTicker{t: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.t.C:
				fn()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type realTicker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (t *realTicker) Stop() {
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
	})
}

// AutoRefresh reloads the dashboard on a fixed interval while enabled and
// counts down to the next reload on a second, finer timer. The two timers
// share only the interval; the display may drift by one tick.
type AutoRefresh struct {
	clock    Clock
	interval time.Duration
	tick     time.Duration
	reload   func()
	display  func(text string)

	mu        sync.Mutex
	state     State
	seconds   int
	gen       int
	refresh   Ticker
	countdown Ticker
}

// NewAutoRefresh builds a disabled controller. reload runs on every refresh
// tick; display receives the countdown text.
func NewAutoRefresh(clock Clock, interval, tick time.Duration, reload func(), display func(string)) *AutoRefresh {
	if tick <= 0 {
		tick = time.Second
	}
	if interval < tick {
		interval = tick
	}
	return &AutoRefresh{
		clock:    clock,
		interval: interval,
		tick:     tick,
		reload:   reload,
		display:  display,
	}
}

func (a *AutoRefresh) full() int {
	return int(a.interval / a.tick)
}

// Set moves the controller to Enabled or Disabled.
func (a *AutoRefresh) Set(enable bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next, actions := Transition(enable)
	a.gen++
	gen := a.gen
	for _, act := range actions {
		switch act {
		case StopRefresh:
			if a.refresh != nil {
				a.refresh.Stop()
				a.refresh = nil
			}
		case StopCountdown:
			if a.countdown != nil {
				a.countdown.Stop()
				a.countdown = nil
			}
		case StartRefresh:
			a.refresh = a.clock.Every(a.interval, func() { a.onRefresh(gen) })
		case StartCountdown:
			a.seconds = a.full()
			a.countdown = a.clock.Every(a.tick, func() { a.onCountdown(gen) })
		case ClearCountdown:
			a.display("")
		}
	}
	a.state = next
}

// State returns the current state.
func (a *AutoRefresh) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Countdown returns the seconds left before the next reload.
func (a *AutoRefresh) Countdown() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seconds
}

// Callbacks from a timer stopped by a later Set carry a stale generation
// and do nothing.
func (a *AutoRefresh) onRefresh(gen int) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.seconds = a.full()
	a.mu.Unlock()
	a.reload()
}

func (a *AutoRefresh) onCountdown(gen int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return
	}
	a.seconds--
	a.display(fmt.Sprintf("(%ds)", a.seconds))
	if a.seconds <= 0 {
		a.seconds = a.full()
	}
}
