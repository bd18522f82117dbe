// Package notify delivers focus and break completion messages.
package notify

import (
	"github.com/charmbracelet/log"
)

// Notifier receives a title and body. Delivery is fire-and-forget.
type Notifier interface {
	Notify(title, body string)
}

// Func adapts a plain function to Notifier.
type Func func(title, body string)

func (f Func) Notify(title, body string) { f(title, body) }

// Log writes notifications to a logger.
type Log struct {
	Logger *log.Logger
}

func (l Log) Notify(title, body string) {
	l.Logger.Info(title, "body", body)
}

// Multi fans a notification out to every non-nil notifier in order.
type Multi []Notifier

func (m Multi) Notify(title, body string) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, body)
		}
	}
}
