package recurrence

import "time"

// Query helpers over the iterator. Each call builds a fresh iterator from
// the rule snapshot it is given, so results always reflect the rule's
// current fields and calls are independently restartable.

// NextOccurrence returns the next valid occurrence of the rule, or false if
// the rule is disabled or its sequence is over. The error is reserved for
// invalid rule configuration.
func NextOccurrence(rule Rule) (time.Time, bool, error) {
	it, err := NewIterator(rule)
	if err != nil {
		return time.Time{}, false, err
	}
	next, ok := it.Next()
	return next, ok, nil
}

// OccurrencesUntil returns every occurrence of the rule strictly before
// horizon, in ascending order. Unbounded rules are finite here by
// construction: the horizon is the caller's bound.
func OccurrencesUntil(rule Rule, horizon time.Time) ([]time.Time, error) {
	it, err := NewIterator(rule)
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for {
		next, ok := it.Next()
		if !ok || !Before(next, horizon) {
			return dates, nil
		}
		dates = append(dates, next)
	}
}

// NextOccurrences returns up to n upcoming occurrences of the rule.
func NextOccurrences(rule Rule, n int) ([]time.Time, error) {
	it, err := NewIterator(rule)
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for len(dates) < n {
		next, ok := it.Next()
		if !ok {
			break
		}
		dates = append(dates, next)
	}
	return dates, nil
}

// IsDue reports whether the rule's next occurrence falls on or before asOf.
func IsDue(rule Rule, asOf time.Time) (bool, error) {
	next, ok, err := NextOccurrence(rule)
	if err != nil {
		return false, err
	}
	return ok && !next.After(DateOf(asOf)), nil
}
