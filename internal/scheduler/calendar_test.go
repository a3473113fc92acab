package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar_AvailableHours(t *testing.T) {
	t.Parallel()

	cal := DefaultCalendar()

	tests := []struct {
		name  string
		date  string
		count int
		first string
		last  string
	}{
		{name: "monday storage format", date: "2025-06-02", count: 13, first: "08:00", last: "20:00"},
		{name: "friday display format", date: "06-06-2025", count: 13, first: "08:00", last: "20:00"},
		{name: "saturday", date: "2025-06-07", count: 5, first: "08:00", last: "12:00"},
		{name: "sunday", date: "2025-06-01", count: 0},
		{name: "garbage", date: "not-a-date", count: 0},
		{name: "empty", date: "", count: 0},
		{name: "impossible day", date: "2025-02-30", count: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			hours := cal.AvailableHours(tc.date)
			require.NotNil(t, hours)
			require.Len(t, hours, tc.count)
			if tc.count > 0 {
				assert.Equal(t, tc.first, hours[0])
				assert.Equal(t, tc.last, hours[len(hours)-1])
			}
		})
	}
}

func TestCalendar_EveryWeekdayOfAWeek(t *testing.T) {
	t.Parallel()

	cal := DefaultCalendar()
	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	want := map[time.Weekday]int{
		time.Monday: 13, time.Tuesday: 13, time.Wednesday: 13, time.Thursday: 13,
		time.Friday: 13, time.Saturday: 5, time.Sunday: 0,
	}
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		got := cal.AvailableHours(day.Format("2006-01-02"))
		assert.Len(t, got, want[day.Weekday()], day.Weekday().String())
		assert.Equal(t, want[day.Weekday()] > 0, cal.IsWorkingDay(day.Format("02-01-2006")))
	}
}

func TestCalendar_HoursForRejectsBadDates(t *testing.T) {
	t.Parallel()

	_, err := DefaultCalendar().HoursFor("31/12/2025")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestCalendar_IsWithinHours(t *testing.T) {
	t.Parallel()

	cal := DefaultCalendar()
	assert.True(t, cal.IsWithinHours("2025-06-02", "09:00"))
	assert.True(t, cal.IsWithinHours("2025-06-02", "9:00"))
	assert.False(t, cal.IsWithinHours("2025-06-02", "07:00"))
	assert.False(t, cal.IsWithinHours("2025-06-02", "21:00"))
	assert.False(t, cal.IsWithinHours("2025-06-02", "09:30"))
	assert.False(t, cal.IsWithinHours("2025-06-07", "13:00"))
	assert.False(t, cal.IsWithinHours("2025-06-01", "09:00"))
}

func TestNewCalendar_DropsEmptyRanges(t *testing.T) {
	t.Parallel()

	cal := NewCalendar(map[time.Weekday]OpeningHours{
		time.Monday:  {Open: 10, Close: 12},
		time.Tuesday: {Open: 12, Close: 12},
	})
	assert.Equal(t, []string{"10:00", "11:00"}, cal.AvailableHours("2025-06-02"))
	assert.False(t, cal.IsWorkingDay("2025-06-03"))
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	got, err := NormalizeDate("02-06-2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", got)

	got, err = NormalizeDate(" 2025-06-02 ")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", got)

	for _, unpadded := range []string{"2-6-2025", "02-6-2025", "2025-6-2"} {
		got, err = NormalizeDate(unpadded)
		require.NoError(t, err, unpadded)
		assert.Equal(t, "2025-06-02", got, unpadded)
	}

	for _, bad := range []string{"2025/06/02", "32-06-2025", "2-13-2025", "2-6-25"} {
		_, err = NormalizeDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestAvailableHours_UnpaddedDisplayDate(t *testing.T) {
	t.Parallel()

	cal := DefaultCalendar()
	assert.Len(t, cal.AvailableHours("2-6-2025"), 13)
	assert.Equal(t, cal.AvailableHours("02-06-2025"), cal.AvailableHours("2-6-2025"))
	assert.Len(t, cal.AvailableHours("7-6-2025"), 5)
}

func TestNormalizeTime(t *testing.T) {
	t.Parallel()

	got, err := NormalizeTime("8:00")
	require.NoError(t, err)
	assert.Equal(t, "08:00", got)

	_, err = NormalizeTime("8am")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestFreeSlots(t *testing.T) {
	t.Parallel()

	hours := DefaultCalendar().AvailableHours("2025-06-07")
	free := FreeSlots(hours, []string{"09:00", "11:00", "18:00"})
	assert.Equal(t, []string{"08:00", "10:00", "12:00"}, free)

	assert.Empty(t, FreeSlots(nil, []string{"09:00"}))
	assert.Equal(t, hours, FreeSlots(hours, nil))
}
