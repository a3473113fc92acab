package sqlstore

import (
	"github.com/shopspring/decimal"

	"github.com/example/salon-scheduler/internal/domain"
)

// Row shapes for each table. Timestamps go through the timestamp scanner so
// both dialects decode to time.Time.

var appointmentColumns = []string{
	"appointment_id", "first_name", "last_name", "phone_number",
	"date", "time", "service_name", "service_price", "created_at",
}

type appointmentRecord struct {
	ID           int64
	FirstName    string
	LastName     string
	PhoneNumber  string
	Date         string
	Time         string
	ServiceName  string
	ServicePrice decimal.Decimal
	CreatedAt    timestamp
}

func toAppointmentRecord(a domain.Appointment) appointmentRecord {
	return appointmentRecord{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		PhoneNumber:  a.PhoneNumber,
		Date:         a.Date,
		Time:         a.Time,
		ServiceName:  a.ServiceName,
		ServicePrice: a.ServicePrice,
		CreatedAt:    timestamp(a.CreatedAt),
	}
}

func (r appointmentRecord) toDomain() domain.Appointment {
	return domain.Appointment{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PhoneNumber:  r.PhoneNumber,
		Date:         r.Date,
		Time:         r.Time,
		ServiceName:  r.ServiceName,
		ServicePrice: r.ServicePrice,
		CreatedAt:    r.CreatedAt.Time(),
	}
}

func scanAppointment(row rowScanner) (domain.Appointment, error) {
	var r appointmentRecord
	err := row.Scan(&r.ID, &r.FirstName, &r.LastName, &r.PhoneNumber,
		&r.Date, &r.Time, &r.ServiceName, &r.ServicePrice, &r.CreatedAt)
	if err != nil {
		return domain.Appointment{}, err
	}
	return r.toDomain(), nil
}

var userColumns = []string{
	"user_id", "first_name", "last_name", "phone_number", "username", "password_hash", "created_at",
}

type userRecord struct {
	ID           int64
	FirstName    string
	LastName     string
	PhoneNumber  string
	Username     string
	PasswordHash string
	CreatedAt    timestamp
}

func toUserRecord(u domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PhoneNumber:  u.PhoneNumber,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    timestamp(u.CreatedAt),
	}
}

func (r userRecord) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PhoneNumber:  r.PhoneNumber,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time(),
	}
}

func scanUser(row rowScanner) (domain.User, error) {
	var r userRecord
	if err := row.Scan(&r.ID, &r.FirstName, &r.LastName, &r.PhoneNumber, &r.Username, &r.PasswordHash, &r.CreatedAt); err != nil {
		return domain.User{}, err
	}
	return r.toDomain(), nil
}

var employeeColumns = []string{
	"employee_id", "first_name", "last_name", "position", "phone_number", "username", "password_hash", "created_at",
}

type employeeRecord struct {
	ID           int64
	FirstName    string
	LastName     string
	Position     string
	PhoneNumber  string
	Username     string
	PasswordHash string
	CreatedAt    timestamp
}

func toEmployeeRecord(e domain.Employee) employeeRecord {
	return employeeRecord{
		ID:           e.ID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Position:     string(e.Position),
		PhoneNumber:  e.PhoneNumber,
		Username:     e.Username,
		PasswordHash: e.PasswordHash,
		CreatedAt:    timestamp(e.CreatedAt),
	}
}

func (r employeeRecord) toDomain() domain.Employee {
	return domain.Employee{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Position:     domain.Position(r.Position),
		PhoneNumber:  r.PhoneNumber,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time(),
	}
}

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var r employeeRecord
	err := row.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Position,
		&r.PhoneNumber, &r.Username, &r.PasswordHash, &r.CreatedAt)
	if err != nil {
		return domain.Employee{}, err
	}
	return r.toDomain(), nil
}

var serviceColumns = []string{"service_id", "name", "price"}

type serviceRecord struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

func toServiceRecord(s domain.Service) serviceRecord {
	return serviceRecord{ID: s.ID, Name: s.Name, Price: s.Price}
}

func (r serviceRecord) toDomain() domain.Service {
	return domain.Service{ID: r.ID, Name: r.Name, Price: r.Price}
}

func scanService(row rowScanner) (domain.Service, error) {
	var r serviceRecord
	if err := row.Scan(&r.ID, &r.Name, &r.Price); err != nil {
		return domain.Service{}, err
	}
	return r.toDomain(), nil
}
