package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the kind of principal acting on the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}

// Position is the job title of a salon employee.
type Position string

const (
	PositionPedicurist      Position = "Pedicurist"
	PositionPhysiotherapist Position = "Physiotherapist"
	PositionFacialBodyCare  Position = "Facial/Body Care"
	PositionDepilation      Position = "Depilation/Laser"
	PositionManicurist      Position = "Manicurist"
)

// Positions returns every known position in display order.
func Positions() []Position {
	return []Position{
		PositionPedicurist,
		PositionPhysiotherapist,
		PositionFacialBodyCare,
		PositionDepilation,
		PositionManicurist,
	}
}

// ParsePosition matches value against the known positions ignoring case and
// surrounding whitespace.
func ParsePosition(value string) (Position, error) {
	trimmed := strings.TrimSpace(value)
	for _, p := range Positions() {
		if strings.EqualFold(string(p), trimmed) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown position %q", value)
}

// User is a registered customer account.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	PhoneNumber  string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Employee is a staff account managed by the administrator.
type Employee struct {
	ID           int64
	FirstName    string
	LastName     string
	Position     Position
	PhoneNumber  string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
