package persistence

import (
	"context"

	"github.com/example/salon-scheduler/internal/domain"
)

// Repository is the capability set every entity store offers. Create assigns
// the identifier and returns the stored record. Delete reports whether a
// record was removed; an unknown id is not an error.
type Repository[T any] interface {
	Create(ctx context.Context, entity T) (T, error)
	GetByID(ctx context.Context, id int64) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// AppointmentRepository stores booked slots. Create and Update return
// ErrDuplicate when the (date, time) pair is already taken.
type AppointmentRepository interface {
	Repository[domain.Appointment]
	GetByCustomer(ctx context.Context, firstName, lastName, phone string) ([]domain.Appointment, error)
	GetByDate(ctx context.Context, date string) ([]domain.Appointment, error)
	GetByDateAndTime(ctx context.Context, date, clock string) (domain.Appointment, error)
	IsTimeSlotAvailable(ctx context.Context, date, clock string) (bool, error)
}

// UsernameChecker reports whether a username is taken in any account table.
type UsernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// UserRepository stores customer accounts. Create returns ErrDuplicate when
// the username is taken by a customer or an employee.
type UserRepository interface {
	Repository[domain.User]
	UsernameChecker
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

// EmployeeRepository stores staff accounts with the same username rule as
// UserRepository.
type EmployeeRepository interface {
	Repository[domain.Employee]
	UsernameChecker
	GetByUsername(ctx context.Context, username string) (domain.Employee, error)
	GetByPosition(ctx context.Context, position domain.Position) ([]domain.Employee, error)
}

// ServiceRepository stores the price list.
type ServiceRepository interface {
	Repository[domain.Service]
	GetByName(ctx context.Context, name string) (domain.Service, error)
}

// Store bundles the repositories that share one backing database.
type Store interface {
	Appointments() AppointmentRepository
	Users() UserRepository
	Employees() EmployeeRepository
	Services() ServiceRepository
	// Seed inserts the default catalog when the services table is empty.
	Seed(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
