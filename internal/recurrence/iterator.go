package recurrence

import "time"

// State is the iterator's position in its lifecycle.
type State int

const (
	// Seeded is the initial state: the cursor is primed but nothing has
	// been produced yet.
	Seeded State = iota
	// Advanced means at least one occurrence has been returned.
	Advanced
	// Exhausted is terminal and sticky: once the rule is disabled or a
	// candidate reaches the end date, every further Next returns nothing.
	Exhausted
)

// Iterator walks the occurrence sequence of a single rule. It owns only the
// transient cursor; the rule snapshot it was built from never changes
// underneath it. Construct a fresh iterator whenever the rule's Start or
// LastFired changes.
type Iterator struct {
	rule  Rule
	base  time.Time
	state State
}

// NewIterator validates the rule and seeds the cursor.
//
// When the rule has fired before, the cursor starts at the last fired date
// re-anchored to the rule's canonical day-of-period. The re-anchoring is
// what lets a user move a monthly bill from the 5th to the 10th after some
// occurrences have fired: the elapsed-period count comes from LastFired, the
// day within the period comes from Start, independently.
//
// When the rule has never fired, the cursor starts one increment before
// Start so the first Next reproduces Start itself.
func NewIterator(rule Rule) (*Iterator, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	it := &Iterator{rule: rule.normalized()}
	if it.rule.LastFired != nil {
		it.base = it.anchor(*it.rule.LastFired)
	} else {
		it.base = it.retreat(it.rule.Start)
	}
	return it, nil
}

// State returns the iterator's current lifecycle state.
func (it *Iterator) State() State {
	return it.state
}

// Next returns the next valid occurrence and advances the cursor, or returns
// false when the sequence is over. Running out of occurrences is a normal
// result, not an error; configuration problems were already rejected by
// NewIterator.
func (it *Iterator) Next() (time.Time, bool) {
	if it.state == Exhausted {
		return time.Time{}, false
	}
	if !it.rule.Enabled {
		it.state = Exhausted
		return time.Time{}, false
	}

	var candidate time.Time
	if it.rule.Kind == KindOnce {
		// A one-shot rule produces its start date exactly once, and only
		// if it has not already fired.
		if it.rule.LastFired != nil || it.state == Advanced {
			it.state = Exhausted
			return time.Time{}, false
		}
		candidate = it.rule.Start
	} else {
		candidate = it.anchor(it.advance(it.base))
	}

	if it.rule.End != nil && !Before(candidate, *it.rule.End) {
		it.state = Exhausted
		return time.Time{}, false
	}

	it.base = candidate
	it.state = Advanced
	return candidate, true
}

// advance moves the cursor forward by one increment of the rule's period.
func (it *Iterator) advance(t time.Time) time.Time {
	n := it.rule.Increment
	switch it.rule.Kind {
	case KindDaily:
		return t.AddDate(0, 0, n)
	case KindWeekly:
		return t.AddDate(0, 0, 7*n)
	case KindMonthly, KindMonthEnd:
		return addMonths(t, n)
	case KindYearly, KindYearEnd:
		return addYears(t, n)
	}
	return t
}

// retreat moves backward by one increment, used only for seeding a rule that
// has never fired.
func (it *Iterator) retreat(t time.Time) time.Time {
	n := it.rule.Increment
	switch it.rule.Kind {
	case KindDaily:
		return t.AddDate(0, 0, -n)
	case KindWeekly:
		return t.AddDate(0, 0, -7*n)
	case KindMonthly, KindMonthEnd:
		return addMonths(t, -n)
	case KindYearly, KindYearEnd:
		return addYears(t, -n)
	}
	return t
}

// anchor re-aligns t to the rule's canonical day within its period.
//
// Month and year periods vary in length, so a rule whose start date is the
// last day of its period tracks "last day" semantics rather than a fixed
// number: a monthly rule started on Jan 31 fires on Feb 28, Mar 31, Apr 30.
// Otherwise the numeric day of the start date wins, clamped to the target
// period. Days and weeks have uniform length and no natural "last day", so
// those kinds advance by fixed strides and anchor is the identity.
func (it *Iterator) anchor(t time.Time) time.Time {
	start := it.rule.Start
	switch it.rule.Kind {
	case KindMonthEnd:
		return WithDayOfMonth(t, DaysInMonth(t))
	case KindMonthly:
		if IsLastDayOfMonth(start) {
			return WithDayOfMonth(t, DaysInMonth(t))
		}
		return WithDayOfMonth(t, start.Day())
	case KindYearEnd:
		return WithDayOfYear(t, LengthOfYear(t))
	case KindYearly:
		if IsLastDayOfYear(start) {
			return WithDayOfYear(t, LengthOfYear(t))
		}
		return WithDayOfYear(t, DayOfYear(start))
	}
	return t
}
