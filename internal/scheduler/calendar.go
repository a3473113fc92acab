// Package scheduler turns calendar dates into bookable hourly slots.
package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/salon-scheduler/internal/domain"
)

// ErrInvalidDate is returned when a date string matches none of the accepted layouts.
var ErrInvalidDate = errors.New("scheduler: invalid date")

// ErrInvalidTime is returned when a time string is not HH:MM.
var ErrInvalidTime = errors.New("scheduler: invalid time")

// acceptedDateLayouts are tried in order; day-month-year first. The single
// digit day and month fields also match zero padded input, so "2-6-2025"
// and "02-06-2025" parse alike.
var acceptedDateLayouts = []string{"2-1-2006", "2006-1-2"}

// OpeningHours is a half-open hour range [Open, Close). Slots start on the hour.
type OpeningHours struct {
	Open  int
	Close int
}

// Calendar maps each weekday to its opening hours. Weekdays without an entry
// are closed.
type Calendar struct {
	week map[time.Weekday]OpeningHours
}

// NewCalendar builds a calendar from the supplied weekly table. Entries with
// Close <= Open are treated as closed days.
func NewCalendar(week map[time.Weekday]OpeningHours) Calendar {
	table := make(map[time.Weekday]OpeningHours, len(week))
	for day, hours := range week {
		if hours.Close > hours.Open {
			table[day] = hours
		}
	}
	return Calendar{week: table}
}

// DefaultCalendar is the salon's fixed week: 08:00-20:00 on weekdays,
// 08:00-12:00 on Saturday, closed Sunday.
func DefaultCalendar() Calendar {
	weekday := OpeningHours{Open: 8, Close: 21}
	return NewCalendar(map[time.Weekday]OpeningHours{
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
		time.Saturday:  {Open: 8, Close: 13},
	})
}

// AvailableHours lists the slot start times for date in ascending order. An
// unparseable date or a closed day yields an empty slice.
func (c Calendar) AvailableHours(date string) []string {
	hours, err := c.HoursFor(date)
	if err != nil {
		return []string{}
	}
	return hours
}

// HoursFor is the strict form of AvailableHours: it reports ErrInvalidDate
// instead of collapsing a bad date into a closed day.
func (c Calendar) HoursFor(date string) ([]string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return c.hoursOn(day.Weekday()), nil
}

// IsWorkingDay reports whether the salon opens on date.
func (c Calendar) IsWorkingDay(date string) bool {
	day, err := ParseDate(date)
	if err != nil {
		return false
	}
	_, ok := c.week[day.Weekday()]
	return ok
}

// IsWithinHours reports whether clock is one of the slots offered on date.
func (c Calendar) IsWithinHours(date, clock string) bool {
	normalized, err := NormalizeTime(clock)
	if err != nil {
		return false
	}
	for _, slot := range c.AvailableHours(date) {
		if slot == normalized {
			return true
		}
	}
	return false
}

func (c Calendar) hoursOn(day time.Weekday) []string {
	hours, ok := c.week[day]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, hours.Close-hours.Open)
	for h := hours.Open; h < hours.Close; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h))
	}
	return out
}

// ParseDate accepts DD-MM-YYYY and YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range acceptedDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// NormalizeDate rewrites any accepted date into the storage layout.
func NormalizeDate(value string) (string, error) {
	parsed, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return parsed.Format(domain.DateFormat), nil
}

// NormalizeTime rewrites H:MM or HH:MM into zero padded HH:MM.
func NormalizeTime(value string) (string, error) {
	parsed, err := time.Parse(domain.TimeFormat, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return parsed.Format(domain.TimeFormat), nil
}

// FreeSlots removes booked times from hours, keeping the order of hours.
func FreeSlots(hours, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	free := make([]string, 0, len(hours))
	for _, h := range hours {
		if _, ok := taken[h]; !ok {
			free = append(free, h)
		}
	}
	return free
}
