package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

// EmployeeStore is the slice of the employee repository used by EmployeeService.
type EmployeeStore interface {
	Create(ctx context.Context, emp domain.Employee) (domain.Employee, error)
	GetAll(ctx context.Context) ([]domain.Employee, error)
	GetByPosition(ctx context.Context, position domain.Position) ([]domain.Employee, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// AddEmployeeParams carries the administrator's new staff account.
type AddEmployeeParams struct {
	FirstName   string
	LastName    string
	Position    string
	PhoneNumber string
	Username    string
	Password    string
}

// EmployeeService manages staff accounts. Every operation requires the administrator.
type EmployeeService struct {
	employees EmployeeStore
	hasher    PasswordHasher
	policy    PasswordPolicy
	logger    *slog.Logger
}

// NewEmployeeService constructs an EmployeeService with the default logger.
func NewEmployeeService(employees EmployeeStore) *EmployeeService {
	return NewEmployeeServiceWithLogger(employees, nil, DefaultPasswordPolicy(), nil)
}

// NewEmployeeServiceWithLogger constructs an EmployeeService. A nil hasher selects Argon2id.
func NewEmployeeServiceWithLogger(employees EmployeeStore, hasher PasswordHasher, policy PasswordPolicy, logger *slog.Logger) *EmployeeService {
	if hasher == nil {
		hasher = NewArgon2Hasher()
	}
	if policy.MinLength == 0 {
		policy = DefaultPasswordPolicy()
	}
	return &EmployeeService{employees: employees, hasher: hasher, policy: policy, logger: defaultLogger(logger)}
}

func (s *EmployeeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EmployeeService", operation, attrs...)
}

// AddEmployee validates and stores a staff account.
func (s *EmployeeService) AddEmployee(ctx context.Context, principal Principal, params AddEmployeeParams) (emp domain.Employee, err error) {
	logger := s.loggerWith(ctx, "AddEmployee", "username", strings.TrimSpace(params.Username))
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "employee not added", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "employee added", "employee_id", emp.ID, "position", emp.Position)
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	fields := map[string]string{
		"first_name":   strings.TrimSpace(params.FirstName),
		"last_name":    strings.TrimSpace(params.LastName),
		"phone_number": strings.TrimSpace(params.PhoneNumber),
		"username":     strings.TrimSpace(params.Username),
		"password":     params.Password,
	}
	for field, value := range fields {
		if value == "" {
			vErr.add(field, "is required")
		}
	}
	position, posErr := domain.ParsePosition(params.Position)
	if posErr != nil {
		vErr.add("position", "must be one of "+positionList())
	}
	if params.Password != "" {
		var pErr *ValidationError
		if errors.As(s.policy.Validate(params.Password), &pErr) {
			vErr.merge(pErr)
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hash, hashErr := s.hasher.Hash(params.Password)
	if hashErr != nil {
		err = fmt.Errorf("hash password: %w", hashErr)
		return
	}

	emp, err = s.employees.Create(ctx, domain.Employee{
		FirstName:    fields["first_name"],
		LastName:     fields["last_name"],
		Position:     position,
		PhoneNumber:  fields["phone_number"],
		Username:     fields["username"],
		PasswordHash: hash,
	})
	switch {
	case errors.Is(err, persistence.ErrDuplicate):
		err = usernameConflict(fields["username"])
	case err != nil:
		err = storageError("create employee", err)
	}
	return
}

func positionList() string {
	names := make([]string, 0, len(domain.Positions()))
	for _, p := range domain.Positions() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// RemoveEmployee deletes a staff account.
func (s *EmployeeService) RemoveEmployee(ctx context.Context, principal Principal, id int64) error {
	logger := s.loggerWith(ctx, "RemoveEmployee", "employee_id", id)
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	removed, err := s.employees.Delete(ctx, id)
	if err != nil {
		err = storageError("delete employee", err)
		logger.ErrorContext(ctx, "failed to remove employee", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if !removed {
		return &NotFoundError{Resource: "employee", ID: id}
	}
	logger.InfoContext(ctx, "employee removed")
	return nil
}

// ListEmployees returns every staff account ordered by id.
func (s *EmployeeService) ListEmployees(ctx context.Context, principal Principal) ([]domain.Employee, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	emps, err := s.employees.GetAll(ctx)
	if err != nil {
		return nil, storageError("list employees", err)
	}
	return emps, nil
}

// ListByPosition returns the staff holding position.
func (s *EmployeeService) ListByPosition(ctx context.Context, principal Principal, position string) ([]domain.Employee, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	p, err := domain.ParsePosition(position)
	if err != nil {
		return nil, newValidationError("position", "must be one of "+positionList())
	}
	emps, err := s.employees.GetByPosition(ctx, p)
	if err != nil {
		return nil, storageError("list employees by position", err)
	}
	return emps, nil
}
