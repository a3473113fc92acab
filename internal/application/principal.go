package application

import "github.com/example/salon-scheduler/internal/domain"

// Principal is the authenticated actor on whose behalf a use case runs.
// Customers carry their identity fields because appointments are matched
// to customers by name and phone.
type Principal struct {
	Role        domain.Role
	AccountID   int64
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// IsAdmin reports whether the principal is the administrator.
func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// IsStaff reports whether the principal may see every appointment.
func (p Principal) IsStaff() bool {
	return p.Role == domain.RoleAdmin || p.Role == domain.RoleEmployee
}

// CanAccess reports whether the principal may read or cancel appt.
func (p Principal) CanAccess(appt domain.Appointment) bool {
	if p.IsStaff() {
		return true
	}
	return p.Role == domain.RoleCustomer && appt.BelongsTo(p.FirstName, p.LastName, p.PhoneNumber)
}

// AdminPrincipal returns the administrator principal for username.
func AdminPrincipal(username string) Principal {
	return Principal{Role: domain.RoleAdmin, Username: username}
}

// CustomerPrincipal builds the principal for a logged in customer.
func CustomerPrincipal(u domain.User) Principal {
	return Principal{
		Role:        domain.RoleCustomer,
		AccountID:   u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
	}
}

// EmployeePrincipal builds the principal for a logged in employee.
func EmployeePrincipal(e domain.Employee) Principal {
	return Principal{
		Role:        domain.RoleEmployee,
		AccountID:   e.ID,
		Username:    e.Username,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		PhoneNumber: e.PhoneNumber,
	}
}
