package task

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Urgency is a derived label for how close a deadline is. It is never stored.
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyNormal
	UrgencySoon
	UrgencyUrgent
	UrgencyOverdue
)

func (u Urgency) String() string {
	switch u {
	case UrgencyNormal:
		return "normal"
	case UrgencySoon:
		return "soon"
	case UrgencyUrgent:
		return "urgent"
	case UrgencyOverdue:
		return "overdue"
	default:
		return ""
	}
}

// Classify labels a deadline relative to now. Completed and undated tasks
// carry no urgency.
func Classify(now time.Time, deadline *time.Time, completed bool) Urgency {
	if completed || deadline == nil {
		return UrgencyNone
	}
	left := deadline.Sub(now)
	switch {
	case left < 0:
		return UrgencyOverdue
	case left < day:
		return UrgencyUrgent
	case left < 3*day:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

// Urgency classifies r against now.
func (r Record) Urgency(now time.Time) Urgency {
	return Classify(now, r.Deadline, r.Completed)
}

// DeadlineLabel renders a deadline as "01-02 15:04" in now's zone with a
// relative hint for the coming week.
func DeadlineLabel(now, deadline time.Time) string {
	stamp := deadline.In(now.Location()).Format("01-02 15:04")
	days := int(deadline.Sub(now) / day)
	if deadline.Before(now) && deadline.Sub(now)%day != 0 {
		days--
	}
	switch {
	case days == 0:
		return stamp + " (today)"
	case days == 1:
		return stamp + " (tomorrow)"
	case days > 1 && days < 7:
		return fmt.Sprintf("%s (in %d days)", stamp, days)
	default:
		return stamp
	}
}
