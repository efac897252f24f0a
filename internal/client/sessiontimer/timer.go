// Package sessiontimer enforces an idle timeout with an advance warning.
//
// A Timer moves between three states:
//
//	INACTIVE --authenticated--> ARMED --warning event--> WARNING
//	   ^                          ^                         |
//	   |                          +---activity/dismiss------+
//	   +----------- countdown reaches zero / hard timeout ---+
//
// While ARMED two events are scheduled from the most recent reset: the
// warning at Timeout-Warning and the hard timeout at Timeout. Entering
// WARNING starts a one-second countdown from Warning. Whichever of the
// countdown reaching zero and the hard timeout comes first invokes
// OnTimeout, exactly once per idle episode. Deauthentication cancels
// everything from any state.
//
// Every reset bumps a generation counter; callbacks scheduled under an older
// generation are no-ops, so nothing scheduled before a reset can fire after
// it.
package sessiontimer

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dmitrijs2005/freightdesk/internal/client/throttle"
)

var ErrInvalidConfig = errors.New("invalid session timer config")

type State int

const (
	Inactive State = iota
	Armed
	Warning
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "INACTIVE"
	case Armed:
		return "ARMED"
	case Warning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is what a warning surface renders.
type Snapshot struct {
	State       State
	ShowWarning bool
	// TimeLeft is the countdown in whole seconds; zero outside WARNING.
	TimeLeft int
}

type Config struct {
	Timeout time.Duration
	Warning time.Duration

	// ActivityThrottle bounds how often Activity resets the schedule.
	// Zero lets every activity through.
	ActivityThrottle time.Duration

	// OnTimeout is called on its own goroutine after the timer is back in
	// INACTIVE.
	OnTimeout func()

	// OnChange receives a snapshot on every state change and countdown tick.
	// It is called without the timer's lock held and must not block for long.
	OnChange func(Snapshot)

	// Clock defaults to the wall clock.
	Clock clock.Clock
}

func validate(timeout, warning time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout %s must be positive", ErrInvalidConfig, timeout)
	}
	if warning <= 0 || warning >= timeout {
		return fmt.Errorf("%w: warning %s must be positive and shorter than timeout %s", ErrInvalidConfig, warning, timeout)
	}
	return nil
}

type Timer struct {
	clock     clock.Clock
	throttle  *throttle.Throttle
	onTimeout func()
	onChange  func(Snapshot)

	mu            sync.Mutex
	timeout       time.Duration
	warning       time.Duration
	authenticated bool
	state         State
	secondsLeft   int
	lastActivity  time.Time
	gen           uint64

	warnTimer *clock.Timer
	hardTimer *clock.Timer
	tickTimer *clock.Timer
}

func New(cfg Config) (*Timer, error) {
	if err := validate(cfg.Timeout, cfg.Warning); err != nil {
		return nil, err
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	return &Timer{
		clock:     c,
		throttle:  throttle.New(cfg.ActivityThrottle, c),
		onTimeout: cfg.OnTimeout,
		onChange:  cfg.OnChange,
		timeout:   cfg.Timeout,
		warning:   cfg.Warning,
	}, nil
}

func (t *Timer) warningSeconds() int {
	return int(math.Ceil(t.warning.Seconds()))
}

func (t *Timer) snapshotLocked() Snapshot {
	s := Snapshot{State: t.state}
	if t.state == Warning {
		s.ShowWarning = true
		s.TimeLeft = t.secondsLeft
	}
	return s
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Deadline is when the hard timeout fires if no activity intervenes. It is
// zero while INACTIVE.
func (t *Timer) Deadline() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Inactive {
		return time.Time{}
	}
	return t.lastActivity.Add(t.timeout)
}

func (t *Timer) Timeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeout
}

func (t *Timer) notify(s Snapshot) {
	if t.onChange != nil {
		t.onChange(s)
	}
}

// stopLocked cancels every pending schedule and invalidates callbacks that
// are already running.
func (t *Timer) stopLocked() {
	t.gen++
	for _, tm := range []*clock.Timer{t.warnTimer, t.hardTimer, t.tickTimer} {
		if tm != nil {
			tm.Stop()
		}
	}
	t.warnTimer, t.hardTimer, t.tickTimer = nil, nil, nil
	t.secondsLeft = 0
}

// armLocked reschedules both events from now.
func (t *Timer) armLocked() {
	t.stopLocked()
	gen := t.gen
	t.state = Armed
	t.lastActivity = t.clock.Now()
	t.warnTimer = t.clock.AfterFunc(t.timeout-t.warning, func() { t.onWarningEvent(gen) })
	t.hardTimer = t.clock.AfterFunc(t.timeout, func() { t.onHardTimeout(gen) })
}

func (t *Timer) disarmLocked() bool {
	changed := t.state != Inactive
	t.stopLocked()
	t.state = Inactive
	return changed
}

// SetAuthenticated arms the timer when authentication starts and cancels
// everything when it ends. Repeating the current value changes nothing.
func (t *Timer) SetAuthenticated(authenticated bool) {
	t.mu.Lock()
	if authenticated == t.authenticated {
		t.mu.Unlock()
		return
	}
	t.authenticated = authenticated
	changed := true
	if authenticated {
		t.throttle.Reset()
		t.armLocked()
	} else {
		changed = t.disarmLocked()
	}
	s := t.snapshotLocked()
	t.mu.Unlock()

	if changed {
		t.notify(s)
	}
}

// SetTimeout changes the idle window. A running schedule restarts from now.
func (t *Timer) SetTimeout(timeout, warning time.Duration) error {
	if err := validate(timeout, warning); err != nil {
		return err
	}
	t.mu.Lock()
	t.timeout, t.warning = timeout, warning
	rearmed := t.state != Inactive
	if rearmed {
		t.armLocked()
	}
	s := t.snapshotLocked()
	t.mu.Unlock()

	if rearmed {
		t.notify(s)
	}
	return nil
}

// Activity records qualifying user input. It restarts the window unless the
// timer is INACTIVE or the activity is throttled, and reports whether it did.
func (t *Timer) Activity() bool {
	t.mu.Lock()
	if t.state == Inactive || !t.throttle.Allow() {
		t.mu.Unlock()
		return false
	}
	wasWarning := t.state == Warning
	t.armLocked()
	s := t.snapshotLocked()
	t.mu.Unlock()

	if wasWarning {
		t.notify(s)
	}
	return true
}

// Dismiss is the user confirming presence. It acts as unthrottled activity.
func (t *Timer) Dismiss() {
	t.mu.Lock()
	if t.state == Inactive {
		t.mu.Unlock()
		return
	}
	wasWarning := t.state == Warning
	t.armLocked()
	s := t.snapshotLocked()
	t.mu.Unlock()

	if wasWarning {
		t.notify(s)
	}
}

// Stop tears the timer down. Nothing fires afterwards until it is
// authenticated again.
func (t *Timer) Stop() {
	t.SetAuthenticated(false)
}

func (t *Timer) onWarningEvent(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != Armed {
		t.mu.Unlock()
		return
	}
	t.state = Warning
	t.secondsLeft = t.warningSeconds()
	t.warnTimer = nil
	t.tickTimer = t.clock.AfterFunc(time.Second, func() { t.onTick(gen) })
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(s)
}

func (t *Timer) onTick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != Warning {
		t.mu.Unlock()
		return
	}
	t.secondsLeft--
	if t.secondsLeft <= 0 {
		t.fireLocked()
		return
	}
	t.tickTimer = t.clock.AfterFunc(time.Second, func() { t.onTick(gen) })
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(s)
}

func (t *Timer) onHardTimeout(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state == Inactive {
		t.mu.Unlock()
		return
	}
	t.fireLocked()
}

// fireLocked ends the idle episode. It releases the lock before running the
// callbacks.
func (t *Timer) fireLocked() {
	t.disarmLocked()
	s := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(s)
	if t.onTimeout != nil {
		t.onTimeout()
	}
}
