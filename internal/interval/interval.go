// Package interval holds the time-window algebra used by availability and
// bookings. All values are naive local timestamps: the wall clock is kept and
// the location is always UTC, so values read back from a
// "timestamp without time zone" column compare equal to the ones written.
package interval

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidRange = errors.New("end must be after start")
	ErrOutsideSlot  = errors.New("booking window is outside the slot")
)

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether a and b share time. Touching endpoints do not count.
func Overlaps(a, b Interval) bool {
	return !(!a.End.After(b.Start) || !a.Start.Before(b.End))
}

func Contains(outer, inner Interval) bool {
	return !inner.Start.Before(outer.Start) && !inner.End.After(outer.End)
}

// TouchesOrOverlaps expects a to start no later than b. Adjacent intervals
// (b.Start == a.End) are mergeable.
func TouchesOrOverlaps(a, b Interval) bool {
	return !b.Start.After(a.End)
}

// Naive drops the location of t and keeps its wall clock, truncated to the
// microsecond precision PostgreSQL stores.
func Naive(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).Truncate(time.Microsecond)
}

// Day returns midnight of the day t falls on.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Run is one coalesced interval produced by Merge. First is the index, in the
// input slice, of the earliest element of the run; its note wins.
type Run struct {
	Interval
	First int
}

// Merge coalesces overlapping or touching intervals. The input does not need
// to be sorted; ties on start keep input order.
func Merge(in []Interval) []Run {
	if len(in) == 0 {
		return nil
	}

	order := make([]int, len(in))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return in[order[a]].Start.Before(in[order[b]].Start)
	})

	runs := make([]Run, 0, len(in))
	current := Run{Interval: in[order[0]], First: order[0]}
	for _, idx := range order[1:] {
		next := in[idx]
		if TouchesOrOverlaps(current.Interval, next) {
			if next.End.After(current.End) {
				current.End = next.End
			}
			continue
		}
		runs = append(runs, current)
		current = Run{Interval: next, First: idx}
	}
	return append(runs, current)
}

type Action int

const (
	// Remove deletes the slot: the booking covers it exactly.
	Remove Action = iota
	// ShrinkStart moves the slot start to the booking end.
	ShrinkStart
	// ShrinkEnd moves the slot end to the booking start.
	ShrinkEnd
	// Split shrinks the slot to the part before the booking and adds the part after it.
	Split
)

func (a Action) String() string {
	switch a {
	case Remove:
		return "remove"
	case ShrinkStart:
		return "shrink_start"
	case ShrinkEnd:
		return "shrink_end"
	case Split:
		return "split"
	default:
		return "unknown"
	}
}

// Plan describes what is left of a slot once a booking is carved out of it.
// Keep holds the remaining pieces in start order.
type Plan struct {
	Action Action
	Keep   []Interval
}

func Consume(slot, booking Interval) (Plan, error) {
	if !booking.Valid() {
		return Plan{}, ErrInvalidRange
	}
	if !Contains(slot, booking) {
		return Plan{}, ErrOutsideSlot
	}

	startsAtSlot := booking.Start.Equal(slot.Start)
	endsAtSlot := booking.End.Equal(slot.End)

	switch {
	case startsAtSlot && endsAtSlot:
		return Plan{Action: Remove}, nil
	case startsAtSlot:
		return Plan{Action: ShrinkStart, Keep: []Interval{{Start: booking.End, End: slot.End}}}, nil
	case endsAtSlot:
		return Plan{Action: ShrinkEnd, Keep: []Interval{{Start: slot.Start, End: booking.Start}}}, nil
	default:
		return Plan{Action: Split, Keep: []Interval{
			{Start: slot.Start, End: booking.Start},
			{Start: booking.End, End: slot.End},
		}}, nil
	}
}
