package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(t time.Time) *time.Time {
	return &t
}

// collect drains up to n occurrences from a fresh iterator for the rule.
func collect(t *testing.T, rule Rule, n int) []time.Time {
	t.Helper()
	it, err := NewIterator(rule)
	require.NoError(t, err)
	var dates []time.Time
	for len(dates) < n {
		next, ok := it.Next()
		if !ok {
			break
		}
		dates = append(dates, next)
	}
	return dates
}

func TestNewIteratorRejectsInvalidRules(t *testing.T) {
	valid := Rule{Kind: KindDaily, Start: Date(2021, time.January, 1), Increment: 1, Enabled: true}

	t.Run("unknown kind", func(t *testing.T) {
		rule := valid
		rule.Kind = "fortnightly"
		_, err := NewIterator(rule)
		assert.Error(t, err)
	})

	t.Run("non-positive increment", func(t *testing.T) {
		rule := valid
		rule.Increment = 0
		_, err := NewIterator(rule)
		assert.Error(t, err)

		rule.Increment = -3
		_, err = NewIterator(rule)
		assert.Error(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		rule := valid
		rule.End = datePtr(Date(2020, time.December, 31))
		_, err := NewIterator(rule)
		assert.Error(t, err)
	})

	t.Run("end equal to start is allowed but empty", func(t *testing.T) {
		rule := valid
		rule.End = datePtr(rule.Start)
		it, err := NewIterator(rule)
		require.NoError(t, err)
		_, ok := it.Next()
		assert.False(t, ok)
	})
}

func TestIteratorStates(t *testing.T) {
	rule := Rule{
		Kind:      KindDaily,
		Start:     Date(2021, time.January, 1),
		End:       datePtr(Date(2021, time.January, 3)),
		Increment: 1,
		Enabled:   true,
	}
	it, err := NewIterator(rule)
	require.NoError(t, err)
	assert.Equal(t, Seeded, it.State())

	_, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, Advanced, it.State())

	_, ok = it.Next()
	require.True(t, ok)

	// Jan 3 is on the end date, so the sequence is over.
	_, ok = it.Next()
	assert.False(t, ok)
	assert.Equal(t, Exhausted, it.State())

	// Exhaustion is sticky.
	_, ok = it.Next()
	assert.False(t, ok)
	assert.Equal(t, Exhausted, it.State())
}

func TestDisabledRuleProducesNothing(t *testing.T) {
	rule := Rule{Kind: KindWeekly, Start: Date(2021, time.January, 4), Increment: 1, Enabled: false}
	it, err := NewIterator(rule)
	require.NoError(t, err)
	_, ok := it.Next()
	assert.False(t, ok)
	assert.Equal(t, Exhausted, it.State())
}

func TestDailyIterator(t *testing.T) {
	t.Run("first occurrence is the start date", func(t *testing.T) {
		rule := Rule{Kind: KindDaily, Start: Date(2021, time.June, 5), Increment: 10, Enabled: true}
		dates := collect(t, rule, 3)
		assert.Equal(t, []time.Time{
			Date(2021, time.June, 5),
			Date(2021, time.June, 15),
			Date(2021, time.June, 25),
		}, dates)
	})

	t.Run("resumes after last fired date", func(t *testing.T) {
		rule := Rule{
			Kind:      KindDaily,
			Start:     Date(2021, time.June, 5),
			Increment: 10,
			Enabled:   true,
			LastFired: datePtr(Date(2021, time.June, 25)),
		}
		dates := collect(t, rule, 2)
		assert.Equal(t, []time.Time{
			Date(2021, time.July, 5),
			Date(2021, time.July, 15),
		}, dates)
	})
}

func TestWeeklyIterator(t *testing.T) {
	// 2023-06-01 is a Thursday.
	start := Date(2023, time.June, 1)

	t.Run("biweekly first occurrence reproduces start", func(t *testing.T) {
		rule := Rule{Kind: KindWeekly, Start: start, Increment: 2, Enabled: true}
		dates := collect(t, rule, 1)
		require.Len(t, dates, 1)
		assert.Equal(t, start, dates[0])
		assert.Equal(t, time.Thursday, dates[0].Weekday())
	})

	t.Run("biweekly after firing", func(t *testing.T) {
		rule := Rule{Kind: KindWeekly, Start: start, Increment: 2, Enabled: true, LastFired: datePtr(start)}
		dates := collect(t, rule, 2)
		assert.Equal(t, []time.Time{
			Date(2023, time.June, 15),
			Date(2023, time.June, 29),
		}, dates)
	})

	t.Run("weekly never re-anchors across month ends", func(t *testing.T) {
		rule := Rule{Kind: KindWeekly, Start: Date(2021, time.January, 31), Increment: 1, Enabled: true}
		dates := collect(t, rule, 3)
		assert.Equal(t, []time.Time{
			Date(2021, time.January, 31),
			Date(2021, time.February, 7),
			Date(2021, time.February, 14),
		}, dates)
	})
}

func TestMonthlyIterator(t *testing.T) {
	t.Run("fixed day anchor", func(t *testing.T) {
		rule := Rule{Kind: KindMonthly, Start: Date(2021, time.March, 5), Increment: 1, Enabled: true}
		dates := collect(t, rule, 3)
		assert.Equal(t, []time.Time{
			Date(2021, time.March, 5),
			Date(2021, time.April, 5),
			Date(2021, time.May, 5),
		}, dates)
	})

	t.Run("day clamps in short months and recovers", func(t *testing.T) {
		rule := Rule{
			Kind:      KindMonthly,
			Start:     Date(2021, time.January, 30),
			Increment: 1,
			Enabled:   true,
			LastFired: datePtr(Date(2021, time.January, 30)),
		}
		dates := collect(t, rule, 3)
		assert.Equal(t, []time.Time{
			Date(2021, time.February, 28),
			Date(2021, time.March, 30),
			Date(2021, time.April, 30),
		}, dates)
	})

	t.Run("start on last day of month tracks month ends", func(t *testing.T) {
		rule := Rule{
			Kind:      KindMonthly,
			Start:     Date(2021, time.January, 31),
			Increment: 1,
			Enabled:   true,
			LastFired: datePtr(Date(2021, time.January, 31)),
		}
		dates := collect(t, rule, 3)
		assert.Equal(t, []time.Time{
			Date(2021, time.February, 28),
			Date(2021, time.March, 31),
			Date(2021, time.April, 30),
		}, dates)
	})

	t.Run("editing the start day re-anchors subsequent occurrences", func(t *testing.T) {
		// Fired on the 5th for months, then the user moves the bill to
		// the 10th. The elapsed periods come from the last fired date,
		// the day comes from the edited start date.
		rule := Rule{
			Kind:      KindMonthly,
			Start:     Date(2023, time.January, 10),
			Increment: 1,
			Enabled:   true,
			LastFired: datePtr(Date(2023, time.March, 5)),
		}
		dates := collect(t, rule, 2)
		assert.Equal(t, []time.Time{
			Date(2023, time.April, 10),
			Date(2023, time.May, 10),
		}, dates)
	})

	t.Run("quarterly increment", func(t *testing.T) {
		rule := Rule{Kind: KindMonthly, Start: Date(2021, time.February, 15), Increment: 3, Enabled: true}
		dates := collect(t, rule, 4)
		assert.Equal(t, []time.Time{
			Date(2021, time.February, 15),
			Date(2021, time.May, 15),
			Date(2021, time.August, 15),
			Date(2021, time.November, 15),
		}, dates)
	})
}

func TestMonthEndIterator(t *testing.T) {
	rule := Rule{
		Kind:      KindMonthEnd,
		Start:     Date(2021, time.January, 31),
		Increment: 1,
		Enabled:   true,
		LastFired: datePtr(Date(2021, time.January, 31)),
	}
	dates := collect(t, rule, 4)
	assert.Equal(t, []time.Time{
		Date(2021, time.February, 28),
		Date(2021, time.March, 31),
		Date(2021, time.April, 30),
		Date(2021, time.May, 31),
	}, dates)

	t.Run("anchors to month end regardless of start day", func(t *testing.T) {
		rule := Rule{Kind: KindMonthEnd, Start: Date(2021, time.January, 15), Increment: 1, Enabled: true}
		dates := collect(t, rule, 2)
		assert.Equal(t, []time.Time{
			Date(2021, time.January, 31),
			Date(2021, time.February, 28),
		}, dates)
	})

	t.Run("leap february", func(t *testing.T) {
		rule := Rule{Kind: KindMonthEnd, Start: Date(2020, time.January, 31), Increment: 1, Enabled: true,
			LastFired: datePtr(Date(2020, time.January, 31))}
		dates := collect(t, rule, 1)
		assert.Equal(t, []time.Time{Date(2020, time.February, 29)}, dates)
	})
}

func TestYearlyIterator(t *testing.T) {
	t.Run("leap day start lands on March 1 in common years", func(t *testing.T) {
		// Feb 29 is day 60 but not the last day of 2020, so the rule
		// anchors to day-of-year 60, which is March 1 in common years
		// and Feb 29 again when a leap year comes around.
		rule := Rule{
			Kind:      KindYearly,
			Start:     Date(2020, time.February, 29),
			Increment: 1,
			Enabled:   true,
			LastFired: datePtr(Date(2020, time.February, 29)),
		}
		dates := collect(t, rule, 4)
		assert.Equal(t, []time.Time{
			Date(2021, time.March, 1),
			Date(2022, time.March, 1),
			Date(2023, time.March, 1),
			Date(2024, time.February, 29),
		}, dates)
	})

	t.Run("start on Dec 31 tracks year ends across leap years", func(t *testing.T) {
		rule := Rule{
			Kind:      KindYearly,
			Start:     Date(2019, time.December, 31),
			Increment: 1,
			Enabled:   true,
			LastFired: datePtr(Date(2019, time.December, 31)),
		}
		dates := collect(t, rule, 2)
		assert.Equal(t, []time.Time{
			Date(2020, time.December, 31),
			Date(2021, time.December, 31),
		}, dates)
	})

	t.Run("anchor is day-of-year, so leap years shift later dates", func(t *testing.T) {
		// Jul 4 2018 is day 185; in a leap year day 185 is Jul 3.
		rule := Rule{Kind: KindYearly, Start: Date(2018, time.July, 4), Increment: 2, Enabled: true}
		dates := collect(t, rule, 3)
		assert.Equal(t, []time.Time{
			Date(2018, time.July, 4),
			Date(2020, time.July, 3),
			Date(2022, time.July, 4),
		}, dates)
	})
}

func TestYearEndIterator(t *testing.T) {
	rule := Rule{Kind: KindYearEnd, Start: Date(2019, time.June, 10), Increment: 1, Enabled: true}
	dates := collect(t, rule, 3)
	assert.Equal(t, []time.Time{
		Date(2019, time.December, 31),
		Date(2020, time.December, 31),
		Date(2021, time.December, 31),
	}, dates)
}

func TestOnceIterator(t *testing.T) {
	start := Date(2021, time.September, 1)

	t.Run("fires exactly once", func(t *testing.T) {
		rule := Rule{Kind: KindOnce, Start: start, Increment: 1, Enabled: true}
		it, err := NewIterator(rule)
		require.NoError(t, err)

		next, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, start, next)

		_, ok = it.Next()
		assert.False(t, ok)
	})

	t.Run("already fired", func(t *testing.T) {
		rule := Rule{Kind: KindOnce, Start: start, Increment: 1, Enabled: true, LastFired: datePtr(start)}
		it, err := NewIterator(rule)
		require.NoError(t, err)
		_, ok := it.Next()
		assert.False(t, ok)
	})
}

func TestEndDateClipsSequence(t *testing.T) {
	rule := Rule{
		Kind:      KindDaily,
		Start:     Date(2021, time.January, 1),
		End:       datePtr(Date(2021, time.January, 5)),
		Increment: 1,
		Enabled:   true,
	}
	dates := collect(t, rule, 10)
	// Strictly before the end date: Jan 5 itself is never produced.
	assert.Equal(t, []time.Time{
		Date(2021, time.January, 1),
		Date(2021, time.January, 2),
		Date(2021, time.January, 3),
		Date(2021, time.January, 4),
	}, dates)
}

func TestIteratorNormalizesTimeOfDay(t *testing.T) {
	start := time.Date(2021, time.March, 5, 14, 30, 0, 0, time.UTC)
	rule := Rule{Kind: KindMonthly, Start: start, Increment: 1, Enabled: true}
	dates := collect(t, rule, 1)
	require.Len(t, dates, 1)
	assert.Equal(t, Date(2021, time.March, 5), dates[0])
}
