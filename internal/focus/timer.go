// Package focus implements the pomodoro countdown.
//
// A Timer is either Idle or Running in one of two modes, Focus or Break. It
// never reads the wall clock: the owner calls Tick once per second from
// whatever cadence it has (a bubbletea tick, a cron pulse, a test loop).
// Stopping is a give-up, not a pause; progress is discarded.
package focus

import (
	"errors"
	"fmt"
)

var ErrInvalidDuration = errors.New("durations must be positive")

type Mode int

const (
	Focus Mode = iota
	Break
)

func (m Mode) String() string {
	if m == Break {
		return "break"
	}
	return "focus"
}

// Config holds the full length of each mode in seconds.
type Config struct {
	FocusSeconds int
	BreakSeconds int
}

// FromMinutes builds a Config from minute values.
func FromMinutes(focus, brk int) Config {
	return Config{FocusSeconds: focus * 60, BreakSeconds: brk * 60}
}

func (c Config) Validate() error {
	if c.FocusSeconds <= 0 || c.BreakSeconds <= 0 {
		return fmt.Errorf("focus %ds, break %ds: %w", c.FocusSeconds, c.BreakSeconds, ErrInvalidDuration)
	}
	return nil
}

func (c Config) duration(m Mode) int {
	if m == Break {
		return c.BreakSeconds
	}
	return c.FocusSeconds
}

// FocusMinutes is the credit a finished focus session earns.
func (c Config) FocusMinutes() int {
	return c.FocusSeconds / 60
}

// CompletionHook receives the minutes earned by a finished focus session.
type CompletionHook func(taskID int64, minutes int)

// Notifier is the surface completion messages are sent to.
type Notifier interface {
	Notify(title, body string)
}

// State is a read-only view of the timer.
type State struct {
	Mode      Mode
	Remaining int
	Running   bool
	TaskID    int64
	HasTask   bool
}

type Timer struct {
	cfg     Config
	pending *Config

	mode      Mode
	remaining int
	running   bool
	closed    bool

	taskID  int64
	hasTask bool
	label   string

	onFocusDone CompletionHook
	notifier    Notifier
}

type Option func(*Timer)

// WithTask associates the countdown with a task. label is used in the
// completion message.
func WithTask(id int64, label string) Option {
	return func(t *Timer) {
		t.taskID = id
		t.hasTask = true
		t.label = label
	}
}

func WithCompletionHook(h CompletionHook) Option {
	return func(t *Timer) { t.onFocusDone = h }
}

func WithNotifier(n Notifier) Option {
	return func(t *Timer) { t.notifier = n }
}

// New returns an idle timer in Focus mode with a full countdown.
func New(cfg Config, opts ...Option) (*Timer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Timer{cfg: cfg, mode: Focus, remaining: cfg.FocusSeconds}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Timer) State() State {
	return State{
		Mode:      t.mode,
		Remaining: t.remaining,
		Running:   t.running,
		TaskID:    t.taskID,
		HasTask:   t.hasTask,
	}
}

// Config returns the durations the current countdown runs with.
func (t *Timer) Config() Config {
	return t.cfg
}

// Pending returns a reconfiguration waiting for the timer to go idle.
func (t *Timer) Pending() (Config, bool) {
	if t.pending == nil {
		return Config{}, false
	}
	return *t.pending, true
}

// Label returns the text of the associated task.
func (t *Timer) Label() string {
	return t.label
}

// Start begins counting down. It reports false when already running or closed.
func (t *Timer) Start() bool {
	if t.running || t.closed {
		return false
	}
	t.running = true
	return true
}

// Stop abandons the countdown and refills the current mode.
func (t *Timer) Stop() {
	t.idle()
}

// Reset has the same effect as Stop.
func (t *Timer) Reset() {
	t.idle()
}

// SwitchMode flips between Focus and Break, stopping any countdown.
func (t *Timer) SwitchMode() {
	if t.mode == Focus {
		t.mode = Break
	} else {
		t.mode = Focus
	}
	t.idle()
}

func (t *Timer) idle() {
	t.running = false
	if t.pending != nil {
		t.cfg = *t.pending
		t.pending = nil
	}
	t.remaining = t.cfg.duration(t.mode)
}

// Reconfigure changes the mode durations. While idle the change applies at
// once; while running it is held until the timer next goes idle. It reports
// whether the change took effect immediately.
func (t *Timer) Reconfigure(cfg Config) (bool, error) {
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	if t.running {
		t.pending = &cfg
		return false, nil
	}
	t.pending = &cfg
	t.idle()
	return true, nil
}

// Tick advances a running countdown by one second. It reports whether this
// tick finished the countdown.
func (t *Timer) Tick() bool {
	if !t.running {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		return false
	}

	finished := t.mode
	earned := t.cfg.FocusMinutes()
	t.idle()
	if finished == Focus && t.hasTask && t.onFocusDone != nil {
		t.onFocusDone(t.taskID, earned)
	}
	if t.notifier != nil {
		title, body := CompletionMessage(finished, t.label)
		t.notifier.Notify(title, body)
	}
	return true
}

// Progress returns the elapsed fraction of the current mode in [0, 1].
func (t *Timer) Progress() float64 {
	full := t.cfg.duration(t.mode)
	if full <= 0 {
		return 0
	}
	p := float64(full-t.remaining) / float64(full)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Close stops the countdown for good. Later Start calls are refused and ticks
// are ignored.
func (t *Timer) Close() {
	t.idle()
	t.closed = true
}

func (t *Timer) Closed() bool {
	return t.closed
}

// CompletionMessage returns the notification text for a finished mode.
func CompletionMessage(m Mode, label string) (title, body string) {
	if m == Break {
		return "Break over", "Ready for the next focus session?"
	}
	if label == "" {
		return "Focus complete", "Nice work. Time for a break."
	}
	return "Focus complete", fmt.Sprintf("Finished a focus session on %q. Time for a break.", label)
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
