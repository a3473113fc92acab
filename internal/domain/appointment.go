package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appointment is a booked slot. Customer and service details are denormalised
// onto the record so the receipt and history survive catalog changes.
type Appointment struct {
	ID           int64
	FirstName    string
	LastName     string
	PhoneNumber  string
	Date         string // DateFormat
	Time         string // TimeFormat
	ServiceName  string
	ServicePrice decimal.Decimal
	CreatedAt    time.Time
}

// SlotKey returns the business key that must be unique across appointments.
func (a Appointment) SlotKey() SlotKey {
	return SlotKey{Date: a.Date, Time: a.Time}
}

// BelongsTo reports whether the appointment was booked under the given
// customer identity.
func (a Appointment) BelongsTo(firstName, lastName, phone string) bool {
	return a.FirstName == firstName && a.LastName == lastName && a.PhoneNumber == phone
}

// SlotKey identifies a (date, time) pair.
type SlotKey struct {
	Date string
	Time string
}
