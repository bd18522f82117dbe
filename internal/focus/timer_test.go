package focus

import (
	"errors"
	"testing"
)

type credit struct {
	taskID  int64
	minutes int
}

type recorder struct {
	credits []credit
	notes   [][2]string
}

func (r *recorder) hook(id int64, minutes int) {
	r.credits = append(r.credits, credit{id, minutes})
}

func (r *recorder) Notify(title, body string) {
	r.notes = append(r.notes, [2]string{title, body})
}

func newTimer(t *testing.T, cfg Config, rec *recorder, opts ...Option) *Timer {
	t.Helper()
	opts = append(opts, WithCompletionHook(rec.hook), WithNotifier(rec))
	tm, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tm
}

func TestNewRejectsNonPositive(t *testing.T) {
	for _, cfg := range []Config{{0, 300}, {1500, 0}, {-1, 5}} {
		if _, err := New(cfg); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("New(%+v) err = %v", cfg, err)
		}
	}
}

func TestFullFocusSessionCreditsOnce(t *testing.T) {
	rec := &recorder{}
	tm := newTimer(t, Config{FocusSeconds: 1500, BreakSeconds: 300}, rec, WithTask(7, "write report"))

	if !tm.Start() {
		t.Fatal("Start returned false")
	}
	finished := 0
	for i := 0; i < 1500; i++ {
		if tm.Tick() {
			finished++
		}
	}

	st := tm.State()
	if st.Running || st.Mode != Focus || st.Remaining != 1500 {
		t.Errorf("state after session = %+v", st)
	}
	if finished != 1 {
		t.Errorf("finished %d times", finished)
	}
	if len(rec.credits) != 1 || rec.credits[0] != (credit{7, 25}) {
		t.Errorf("credits = %+v", rec.credits)
	}
	if len(rec.notes) != 1 || rec.notes[0][0] != "Focus complete" {
		t.Errorf("notes = %+v", rec.notes)
	}

	if tm.Tick() {
		t.Error("idle tick finished a session")
	}
	if len(rec.credits) != 1 {
		t.Error("idle tick credited minutes")
	}
}

func TestBreakCompletionDoesNotCredit(t *testing.T) {
	rec := &recorder{}
	tm := newTimer(t, Config{FocusSeconds: 120, BreakSeconds: 60}, rec, WithTask(1, "x"))
	tm.SwitchMode()
	tm.Start()
	for i := 0; i < 60; i++ {
		tm.Tick()
	}
	if len(rec.credits) != 0 {
		t.Errorf("break credited %+v", rec.credits)
	}
	if len(rec.notes) != 1 || rec.notes[0][0] != "Break over" {
		t.Errorf("notes = %+v", rec.notes)
	}
	if st := tm.State(); st.Mode != Break || st.Remaining != 60 || st.Running {
		t.Errorf("state = %+v", st)
	}
}

func TestFocusWithoutTaskOnlyNotifies(t *testing.T) {
	rec := &recorder{}
	tm := newTimer(t, Config{FocusSeconds: 2, BreakSeconds: 1}, rec)
	tm.Start()
	tm.Tick()
	tm.Tick()
	if len(rec.credits) != 0 || len(rec.notes) != 1 {
		t.Errorf("credits %+v notes %+v", rec.credits, rec.notes)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	tm, _ := New(Config{FocusSeconds: 10, BreakSeconds: 5})
	if !tm.Start() {
		t.Fatal("first start refused")
	}
	if tm.Start() {
		t.Error("second start accepted")
	}
}

func TestStopAndResetDiscardProgress(t *testing.T) {
	for name, op := range map[string]func(*Timer){"stop": (*Timer).Stop, "reset": (*Timer).Reset} {
		t.Run(name, func(t *testing.T) {
			tm, _ := New(Config{FocusSeconds: 10, BreakSeconds: 5})
			tm.Start()
			tm.Tick()
			tm.Tick()
			op(tm)
			if st := tm.State(); st.Running || st.Remaining != 10 || st.Mode != Focus {
				t.Errorf("state = %+v", st)
			}
		})
	}
}

func TestSwitchModeWhileRunning(t *testing.T) {
	tm, _ := New(Config{FocusSeconds: 10, BreakSeconds: 5})
	tm.Start()
	tm.Tick()
	tm.SwitchMode()

	st := tm.State()
	if st.Running || st.Mode != Break || st.Remaining != 5 {
		t.Errorf("state = %+v", st)
	}
	if tm.Tick() || tm.State().Remaining != 5 {
		t.Error("tick after switch changed the countdown")
	}
	tm.SwitchMode()
	if st := tm.State(); st.Mode != Focus || st.Remaining != 10 {
		t.Errorf("state = %+v", st)
	}
}

func TestReconfigureIdleAppliesNow(t *testing.T) {
	tm, _ := New(Config{FocusSeconds: 10, BreakSeconds: 5})
	applied, err := tm.Reconfigure(Config{FocusSeconds: 20, BreakSeconds: 8})
	if err != nil || !applied {
		t.Fatalf("Reconfigure = %v, %v", applied, err)
	}
	if st := tm.State(); st.Remaining != 20 {
		t.Errorf("remaining = %d", st.Remaining)
	}
	if _, ok := tm.Pending(); ok {
		t.Error("pending left behind")
	}
}

func TestReconfigureRunningIsDeferred(t *testing.T) {
	rec := &recorder{}
	tm := newTimer(t, Config{FocusSeconds: 120, BreakSeconds: 60}, rec, WithTask(3, "x"))
	tm.Start()
	for i := 0; i < 30; i++ {
		tm.Tick()
	}

	applied, err := tm.Reconfigure(Config{FocusSeconds: 600, BreakSeconds: 60})
	if err != nil || applied {
		t.Fatalf("Reconfigure = %v, %v", applied, err)
	}
	if st := tm.State(); st.Remaining != 90 || !st.Running {
		t.Errorf("running countdown disturbed: %+v", st)
	}
	if cfg, ok := tm.Pending(); !ok || cfg.FocusSeconds != 600 {
		t.Errorf("pending = %+v, %v", cfg, ok)
	}

	for i := 0; i < 90; i++ {
		tm.Tick()
	}
	if len(rec.credits) != 1 || rec.credits[0].minutes != 2 {
		t.Errorf("credit should use the old duration: %+v", rec.credits)
	}
	if st := tm.State(); st.Remaining != 600 || st.Running {
		t.Errorf("new duration not applied on idle: %+v", st)
	}
	if tm.Config().FocusSeconds != 600 {
		t.Errorf("config = %+v", tm.Config())
	}
}

func TestReconfigureAppliedOnStop(t *testing.T) {
	tm, _ := New(Config{FocusSeconds: 120, BreakSeconds: 60})
	tm.Start()
	tm.Tick()
	tm.Reconfigure(Config{FocusSeconds: 300, BreakSeconds: 60})
	tm.Stop()
	if st := tm.State(); st.Remaining != 300 {
		t.Errorf("remaining = %d", st.Remaining)
	}
}

func TestReconfigureRejectsInvalid(t *testing.T) {
	tm, _ := New(Config{FocusSeconds: 120, BreakSeconds: 60})
	if _, err := tm.Reconfigure(Config{FocusSeconds: 0, BreakSeconds: 60}); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("err = %v", err)
	}
	if tm.Config().FocusSeconds != 120 {
		t.Error("invalid config applied")
	}
}

func TestProgress(t *testing.T) {
	tm, _ := New(Config{FocusSeconds: 4, BreakSeconds: 2})
	if p := tm.Progress(); p != 0 {
		t.Errorf("idle progress = %v", p)
	}
	tm.Start()
	tm.Tick()
	if p := tm.Progress(); p != 0.25 {
		t.Errorf("progress = %v", p)
	}
	tm.Tick()
	tm.Tick()
	if p := tm.Progress(); p != 0.75 {
		t.Errorf("progress = %v", p)
	}
}

func TestCloseRefusesStart(t *testing.T) {
	tm, _ := New(Config{FocusSeconds: 4, BreakSeconds: 2})
	tm.Start()
	tm.Tick()
	tm.Close()
	if st := tm.State(); st.Running || st.Remaining != 4 {
		t.Errorf("state = %+v", st)
	}
	if tm.Start() {
		t.Error("closed timer started")
	}
	if tm.Tick() {
		t.Error("closed timer ticked")
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[int]string{0: "00:00", 59: "00:59", 1500: "25:00", 61: "01:01", -3: "00:00"}
	for in, want := range tests {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestCompletionMessage(t *testing.T) {
	if title, body := CompletionMessage(Focus, "report"); title != "Focus complete" || body == "" {
		t.Errorf("focus message = %q %q", title, body)
	}
	ft, _ := CompletionMessage(Focus, "")
	bt, _ := CompletionMessage(Break, "")
	if ft == bt {
		t.Error("focus and break messages should differ")
	}
}
