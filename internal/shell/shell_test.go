package shell

import "testing"

func TestFunc(t *testing.T) {
	var got []Signal
	var ch Channel = Func(func(s Signal) { got = append(got, s) })
	ch.Send(EnterCompactMode)
	ch.Send(LeaveCompactMode)
	if len(got) != 2 || got[0] != EnterCompactMode || got[1] != LeaveCompactMode {
		t.Errorf("signals = %v", got)
	}
	Discard.Send(Close)
}

func TestSignalNames(t *testing.T) {
	tests := map[Signal]string{
		Minimize:         "minimize",
		Maximize:         "maximize",
		Close:            "close",
		EnterCompactMode: "enter-compact-mode",
		LeaveCompactMode: "leave-compact-mode",
	}
	for sig, want := range tests {
		if string(sig) != want {
			t.Errorf("%v = %q, want %q", sig, string(sig), want)
		}
	}
}
