package sequencer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// March 2nd 2026 is a Monday.
var monday = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

func TestSequenceIsDeterministic(t *testing.T) {
	start := monday.AddDate(0, 0, 3)

	first, shortFirst := Sequence(start, monday, 14, Daily())
	second, shortSecond := Sequence(start, monday, 14, Daily())

	assert.Equal(t, first, second)
	assert.Equal(t, shortFirst, shortSecond)
}

func TestSequenceClampsStartToTomorrow(t *testing.T) {
	yesterday := monday.AddDate(0, 0, -1)

	dates, short := Sequence(yesterday, monday, 5, Daily())

	require.Len(t, dates, 5)
	assert.False(t, short)

	tomorrow := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, tomorrow, dates[0])
}

func TestSequenceKeepsFutureStart(t *testing.T) {
	start := monday.AddDate(0, 0, 10)

	dates, _ := Sequence(start, monday, 3, Daily())

	require.Len(t, dates, 3)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), dates[0])
}

func TestSequenceDailyThirtyDays(t *testing.T) {
	dates, short := Sequence(monday, monday, 30, Daily())

	require.Len(t, dates, 30)
	assert.False(t, short)

	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i], "dates must be consecutive")
	}
}

func TestSequenceWeekdaysSkipsWeekends(t *testing.T) {
	// The 5-day window starting Friday March 6th runs through Tuesday the
	// 10th: the weekend days inside it thin the sequence out rather than
	// stretching the window.
	friday := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)

	dates, short := Sequence(friday, monday, 5, Weekdays())

	require.Len(t, dates, 3)
	assert.True(t, short)
	for _, d := range dates {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
	// Fri 6th, Mon 9th, Tue 10th.
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), dates[2])
}

func TestSequenceSparsePolicyStaysInWindow(t *testing.T) {
	// A 7-day window holds each weekday exactly once, so a Mon/Wed/Fri plan
	// yields exactly three dates and reports the shortfall.
	dates, short := Sequence(monday, monday, 7, Custom(time.Monday, time.Wednesday, time.Friday))

	require.Len(t, dates, 3)
	assert.True(t, short)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), dates[2])
}

func TestSequenceDatesAreAscending(t *testing.T) {
	dates, _ := Sequence(monday, monday, 20, Custom(time.Monday, time.Wednesday, time.Friday))

	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
	}
}

func TestSequenceShortWhenPolicyTooSparse(t *testing.T) {
	// A 60-day window starting Tuesday March 3rd contains eight Mondays.
	dates, short := Sequence(monday, monday, 60, Custom(time.Monday))

	assert.True(t, short)
	assert.Len(t, dates, 8)
	for _, d := range dates {
		assert.Equal(t, time.Monday, d.Weekday())
	}
}

func TestSequenceZeroDuration(t *testing.T) {
	dates, short := Sequence(monday, monday, 0, Daily())

	assert.Empty(t, dates)
	assert.False(t, short)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		wantErr bool
	}{
		{"daily", "daily", false},
		{"", "daily", false},
		{"  Daily ", "daily", false},
		{"weekdays", "weekdays", false},
		{"custom:mon,wed,fri", "custom:mon,wed,fri", false},
		{"custom:funday", "", true},
		{"custom:", "", true},
		{"hourly", "", true},
	}

	for _, tt := range tests {
		policy, err := ParsePolicy(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.name, policy.Name())
	}
}

func TestCustomPolicyAllows(t *testing.T) {
	policy := Custom(time.Monday, time.Thursday)

	assert.True(t, policy.Allows(time.Monday))
	assert.True(t, policy.Allows(time.Thursday))
	assert.False(t, policy.Allows(time.Sunday))
	assert.False(t, policy.Allows(time.Friday))
}
