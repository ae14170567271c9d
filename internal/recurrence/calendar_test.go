package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLengthOfYear(t *testing.T) {
	assert.Equal(t, 366, LengthOfYear(Date(2020, time.March, 15)))
	assert.Equal(t, 365, LengthOfYear(Date(2021, time.March, 15)))
	assert.Equal(t, 365, LengthOfYear(Date(1900, time.June, 1))) // century, not leap
	assert.Equal(t, 366, LengthOfYear(Date(2000, time.June, 1))) // 400-year rule
}

func TestDayOfYear(t *testing.T) {
	assert.Equal(t, 1, DayOfYear(Date(2021, time.January, 1)))
	assert.Equal(t, 60, DayOfYear(Date(2020, time.February, 29)))
	assert.Equal(t, 60, DayOfYear(Date(2021, time.March, 1)))
	assert.Equal(t, 365, DayOfYear(Date(2021, time.December, 31)))
	assert.Equal(t, 366, DayOfYear(Date(2020, time.December, 31)))
}

func TestIsLastDayOfYear(t *testing.T) {
	assert.True(t, IsLastDayOfYear(Date(2021, time.December, 31)))
	assert.True(t, IsLastDayOfYear(Date(2020, time.December, 31)))
	assert.False(t, IsLastDayOfYear(Date(2020, time.February, 29)))
	assert.False(t, IsLastDayOfYear(Date(2021, time.December, 30)))
}

func TestIsLastDayOfMonth(t *testing.T) {
	assert.True(t, IsLastDayOfMonth(Date(2021, time.January, 31)))
	assert.True(t, IsLastDayOfMonth(Date(2021, time.February, 28)))
	assert.True(t, IsLastDayOfMonth(Date(2020, time.February, 29)))
	assert.False(t, IsLastDayOfMonth(Date(2020, time.February, 28)))
	assert.False(t, IsLastDayOfMonth(Date(2021, time.April, 1)))
}

func TestWithDayOfYear(t *testing.T) {
	assert.Equal(t, Date(2020, time.February, 29), WithDayOfYear(Date(2020, time.July, 4), 60))
	assert.Equal(t, Date(2021, time.March, 1), WithDayOfYear(Date(2021, time.July, 4), 60))
	// Day 366 clamps in a non-leap year.
	assert.Equal(t, Date(2021, time.December, 31), WithDayOfYear(Date(2021, time.July, 4), 366))
}

func TestWithDayOfMonth(t *testing.T) {
	assert.Equal(t, Date(2021, time.April, 10), WithDayOfMonth(Date(2021, time.April, 25), 10))
	// Clamped to the month length.
	assert.Equal(t, Date(2021, time.February, 28), WithDayOfMonth(Date(2021, time.February, 3), 31))
	assert.Equal(t, Date(2020, time.February, 29), WithDayOfMonth(Date(2020, time.February, 3), 31))
}

func TestBefore(t *testing.T) {
	assert.True(t, Before(Date(2021, time.January, 1), Date(2021, time.January, 2)))
	assert.False(t, Before(Date(2021, time.January, 2), Date(2021, time.January, 1)))
	assert.False(t, Before(Date(2021, time.January, 1), Date(2021, time.January, 1)))
	// Time-of-day is ignored.
	a := time.Date(2021, time.January, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2021, time.January, 1, 1, 0, 0, 0, time.UTC)
	assert.False(t, Before(a, b))
	assert.False(t, Before(b, a))
}

func TestAddMonths(t *testing.T) {
	// Never spills into an adjacent month the way time.AddDate does.
	assert.Equal(t, Date(2021, time.February, 28), addMonths(Date(2021, time.January, 31), 1))
	assert.Equal(t, Date(2020, time.February, 29), addMonths(Date(2020, time.January, 31), 1))
	assert.Equal(t, Date(2021, time.February, 28), addMonths(Date(2021, time.March, 31), -1))
	assert.Equal(t, Date(2020, time.December, 31), addMonths(Date(2021, time.January, 31), -1))
	assert.Equal(t, Date(2022, time.March, 15), addMonths(Date(2021, time.December, 15), 3))
}

func TestAddYears(t *testing.T) {
	assert.Equal(t, Date(2021, time.February, 28), addYears(Date(2020, time.February, 29), 1))
	assert.Equal(t, Date(2024, time.February, 29), addYears(Date(2020, time.February, 29), 4))
	assert.Equal(t, Date(2019, time.June, 12), addYears(Date(2021, time.June, 12), -2))
}

func TestDateOf(t *testing.T) {
	in := time.Date(2021, time.June, 5, 17, 45, 12, 999, time.UTC)
	assert.Equal(t, Date(2021, time.June, 5), DateOf(in))
}
