package focus

import (
	"testing"

	"pgregory.net/rapid"
)

func TestProperty_SessionCompletesExactlyOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := Config{
			FocusSeconds: rapid.IntRange(1, 600).Draw(rt, "focus"),
			BreakSeconds: rapid.IntRange(1, 600).Draw(rt, "break"),
		}
		rec := &recorder{}
		tm, err := New(cfg, WithTask(99, "t"), WithCompletionHook(rec.hook), WithNotifier(rec))
		if err != nil {
			rt.Fatalf("New: %v", err)
		}
		if rapid.Bool().Draw(rt, "break mode") {
			tm.SwitchMode()
		}
		mode := tm.State().Mode
		full := tm.State().Remaining

		tm.Start()
		finished := 0
		for i := 0; i < full; i++ {
			if tm.Tick() {
				finished++
			}
			if p := tm.Progress(); p < 0 || p > 1 {
				rt.Fatalf("progress %v out of range", p)
			}
		}

		st := tm.State()
		if st.Running || st.Mode != mode || st.Remaining != full {
			rt.Fatalf("state after %d ticks = %+v", full, st)
		}
		if finished != 1 || len(rec.notes) != 1 {
			rt.Fatalf("finished %d, notes %d", finished, len(rec.notes))
		}
		wantCredits := 0
		if mode == Focus {
			wantCredits = 1
		}
		if len(rec.credits) != wantCredits {
			rt.Fatalf("credits = %+v", rec.credits)
		}
	})
}
