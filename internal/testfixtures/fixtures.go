package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/salon-scheduler/internal/domain"
)

var (
	customerCounter    uint64
	employeeCounter    uint64
	serviceCounter     uint64
	appointmentCounter uint64
)

// referenceTime falls on a Monday so fixtures default to a working day.
var referenceTime = time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns ReferenceTime in storage date format.
func ReferenceDate() string {
	return referenceTime.Format(domain.DateFormat)
}

// --------------------------- Customer fixtures ---------------------------

// CustomerFixture is a deterministic customer account.
type CustomerFixture struct {
	FirstName    string
	LastName     string
	PhoneNumber  string
	Username     string
	Password     string
	PasswordHash string
	CreatedAt    time.Time
}

// CustomerOption configures the generated customer fixture.
type CustomerOption func(*CustomerFixture)

// NewCustomerFixture returns a customer with a unique username.
func NewCustomerFixture(opts ...CustomerOption) CustomerFixture {
	idx := atomic.AddUint64(&customerCounter, 1)
	fixture := CustomerFixture{
		FirstName:    "Ana",
		LastName:     fmt.Sprintf("Babic%03d", idx),
		PhoneNumber:  fmt.Sprintf("091%07d", idx),
		Username:     fmt.Sprintf("customer%03d", idx),
		Password:     "Secret#123",
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCustomerName overrides the first and last name.
func WithCustomerName(first, last string) CustomerOption {
	return func(f *CustomerFixture) {
		f.FirstName = first
		f.LastName = last
	}
}

// WithCustomerPhone overrides the phone number.
func WithCustomerPhone(phone string) CustomerOption {
	return func(f *CustomerFixture) {
		f.PhoneNumber = phone
	}
}

// WithCustomerUsername overrides the username.
func WithCustomerUsername(username string) CustomerOption {
	return func(f *CustomerFixture) {
		f.Username = username
	}
}

// WithCustomerPassword sets the clear-text password used by registration tests.
func WithCustomerPassword(password string) CustomerOption {
	return func(f *CustomerFixture) {
		f.Password = password
	}
}

// Domain returns the fixture as a domain.User.
func (f CustomerFixture) Domain() domain.User {
	return domain.User{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		PhoneNumber:  f.PhoneNumber,
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
	}
}

// --------------------------- Employee fixtures ---------------------------

// EmployeeFixture is a deterministic staff account.
type EmployeeFixture struct {
	FirstName    string
	LastName     string
	Position     domain.Position
	PhoneNumber  string
	Username     string
	Password     string
	PasswordHash string
	CreatedAt    time.Time
}

// EmployeeOption configures the generated employee fixture.
type EmployeeOption func(*EmployeeFixture)

// NewEmployeeFixture returns a manicurist with a unique username.
func NewEmployeeFixture(opts ...EmployeeOption) EmployeeFixture {
	idx := atomic.AddUint64(&employeeCounter, 1)
	fixture := EmployeeFixture{
		FirstName:    "Marko",
		LastName:     fmt.Sprintf("Horvat%03d", idx),
		Position:     domain.PositionManicurist,
		PhoneNumber:  fmt.Sprintf("098%07d", idx),
		Username:     fmt.Sprintf("employee%03d", idx),
		Password:     "Staff#1234",
		PasswordHash: fmt.Sprintf("hash-emp-%03d", idx),
		CreatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEmployeePosition overrides the job title.
func WithEmployeePosition(position domain.Position) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Position = position
	}
}

// WithEmployeeUsername overrides the username.
func WithEmployeeUsername(username string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Username = username
	}
}

// Domain returns the fixture as a domain.Employee.
func (f EmployeeFixture) Domain() domain.Employee {
	return domain.Employee{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Position:     f.Position,
		PhoneNumber:  f.PhoneNumber,
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
	}
}

// --------------------------- Service fixtures ----------------------------

// NewServiceFixture returns a catalog entry whose name does not clash with
// the seeded catalog.
func NewServiceFixture(price string) domain.Service {
	idx := atomic.AddUint64(&serviceCounter, 1)
	return domain.Service{
		Name:  fmt.Sprintf("Treatment %03d", idx),
		Price: decimal.RequireFromString(price),
	}
}

// ------------------------- Appointment fixtures --------------------------

// AppointmentFixture is a deterministic booking on a working day.
type AppointmentFixture struct {
	FirstName    string
	LastName     string
	PhoneNumber  string
	Date         string
	Time         string
	ServiceName  string
	ServicePrice decimal.Decimal
	CreatedAt    time.Time
}

// AppointmentOption configures the generated appointment fixture.
type AppointmentOption func(*AppointmentFixture)

// NewAppointmentFixture returns the Ana Babic Monday manicure booking. Each
// call shifts the customer's phone so fixtures do not share an identity.
func NewAppointmentFixture(opts ...AppointmentOption) AppointmentFixture {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	fixture := AppointmentFixture{
		FirstName:    "Ana",
		LastName:     "Babic",
		PhoneNumber:  fmt.Sprintf("095%07d", idx),
		Date:         ReferenceDate(),
		Time:         "09:00",
		ServiceName:  "Manicure",
		ServicePrice: decimal.NewFromInt(20),
		CreatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAppointmentSlot overrides the date and time.
func WithAppointmentSlot(date, clock string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Date = date
		f.Time = clock
	}
}

// WithAppointmentCustomer overrides the customer identity.
func WithAppointmentCustomer(first, last, phone string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.FirstName = first
		f.LastName = last
		f.PhoneNumber = phone
	}
}

// WithAppointmentService overrides the service name and price.
func WithAppointmentService(name string, price decimal.Decimal) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.ServiceName = name
		f.ServicePrice = price
	}
}

// Domain returns the fixture as a domain.Appointment.
func (f AppointmentFixture) Domain() domain.Appointment {
	return domain.Appointment{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		PhoneNumber:  f.PhoneNumber,
		Date:         f.Date,
		Time:         f.Time,
		ServiceName:  f.ServiceName,
		ServicePrice: f.ServicePrice,
		CreatedAt:    f.CreatedAt,
	}
}
