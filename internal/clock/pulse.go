// Package clock provides the one-per-second cadence that drives a focus timer
// outside the TUI.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pulse emits on C once per interval until stopped. Beats are dropped, not
// queued, when the receiver falls behind.
type Pulse struct {
	C <-chan time.Time

	cron *cron.Cron
	ch   chan time.Time
	once sync.Once
}

// NewPulse schedules a pulse every interval, rounded down to whole seconds
// with a floor of one second.
func NewPulse(interval time.Duration) (*Pulse, error) {
	seconds := int(interval / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	ch := make(chan time.Time, 1)
	p := &Pulse{C: ch, ch: ch, cron: cron.New(cron.WithSeconds())}
	if _, err := p.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), p.beat); err != nil {
		return nil, fmt.Errorf("schedule pulse: %w", err)
	}
	return p, nil
}

func (p *Pulse) beat() {
	select {
	case p.ch <- time.Now():
	default:
	}
}

func (p *Pulse) Start() {
	p.cron.Start()
}

// Stop halts the schedule, waits for a running beat to finish and closes C.
// It is safe to call more than once.
func (p *Pulse) Stop() {
	p.once.Do(func() {
		ctx := p.cron.Stop()
		<-ctx.Done()
		close(p.ch)
	})
}
