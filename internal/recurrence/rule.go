package recurrence

import (
	"fmt"
	"time"
)

// Kind identifies one of the supported recurrence patterns. The set is
// closed: rules carrying any other value are rejected at validation time.
type Kind string

const (
	KindOnce     Kind = "once"
	KindDaily    Kind = "daily"
	KindWeekly   Kind = "weekly"
	KindMonthly  Kind = "monthly"
	KindMonthEnd Kind = "month_end"
	KindYearly   Kind = "yearly"
	KindYearEnd  Kind = "year_end"
)

// Kinds lists every supported recurrence kind.
func Kinds() []Kind {
	return []Kind{KindOnce, KindDaily, KindWeekly, KindMonthly, KindMonthEnd, KindYearly, KindYearEnd}
}

// Rule is an immutable snapshot of a reminder's schedule configuration.
// The owning entity is mutable (the consumer writes LastFired back after
// acting on an occurrence); the engine only ever sees a copy, so concurrent
// reads need no locking here.
//
// Start anchors the sequence: it is both the first occurrence and the source
// of the canonical day-of-period that every later occurrence is re-aligned
// to. End, when set, bounds the sequence exclusively: occurrences strictly
// before End are produced, nothing on or after it.
type Rule struct {
	Kind      Kind
	Start     time.Time
	End       *time.Time
	Increment int
	Enabled   bool
	LastFired *time.Time
}

// Validate checks the rule's configuration. Invalid configuration is always
// surfaced here (or from NewIterator, which calls this), never deferred into
// iteration.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindOnce, KindDaily, KindWeekly, KindMonthly, KindMonthEnd, KindYearly, KindYearEnd:
	default:
		return fmt.Errorf("unknown recurrence kind: %q", r.Kind)
	}
	if r.Increment < 1 {
		return fmt.Errorf("increment must be at least 1, got %d", r.Increment)
	}
	if r.Start.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if r.End != nil && Before(*r.End, r.Start) {
		return fmt.Errorf("end date %s is before start date %s",
			r.End.Format("2006-01-02"), r.Start.Format("2006-01-02"))
	}
	return nil
}

// normalized returns a copy of the rule with all dates reduced to midnight
// UTC calendar dates.
func (r Rule) normalized() Rule {
	out := r
	out.Start = DateOf(r.Start)
	if r.End != nil {
		end := DateOf(*r.End)
		out.End = &end
	}
	if r.LastFired != nil {
		last := DateOf(*r.LastFired)
		out.LastFired = &last
	}
	return out
}
