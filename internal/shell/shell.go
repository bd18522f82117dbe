// Package shell carries window-control signals from the tracker to the host
// that presents it. Signals are fire-and-forget; senders never wait for a
// reply.
package shell

type Signal string

const (
	Minimize         Signal = "minimize"
	Maximize         Signal = "maximize"
	Close            Signal = "close"
	EnterCompactMode Signal = "enter-compact-mode"
	LeaveCompactMode Signal = "leave-compact-mode"
)

// Channel is the host side of the control channel.
type Channel interface {
	Send(Signal)
}

// Func adapts a function to Channel.
type Func func(Signal)

func (f Func) Send(s Signal) { f(s) }

// Discard drops every signal.
var Discard Channel = Func(func(Signal) {})
