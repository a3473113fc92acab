package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

// CustomerAccounts exposes the customer account operations used by the auth service.
type CustomerAccounts interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// StaffAccounts exposes employee lookup.
type StaffAccounts interface {
	GetByID(ctx context.Context, id int64) (domain.Employee, error)
	GetByUsername(ctx context.Context, username string) (domain.Employee, error)
}

// AdminCredentials is the configured administrator login.
type AdminCredentials struct {
	Username string
	Password string
}

// Configured reports whether an administrator login is available.
func (c AdminCredentials) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// RegisterCustomerParams carries a self-service registration request.
type RegisterCustomerParams struct {
	FirstName       string
	LastName        string
	PhoneNumber     string
	Username        string
	Password        string
	ConfirmPassword string
}

// LoginResult is the outcome of Login. Principal is set only on success.
type LoginResult struct {
	Success   bool
	Principal Principal
	Message   string
	Err       error
}

// AuthService handles customer registration and login for every role.
type AuthService struct {
	admin     AdminCredentials
	customers CustomerAccounts
	staff     StaffAccounts
	hasher    PasswordHasher
	policy    PasswordPolicy
	logger    *slog.Logger
}

// NewAuthService constructs an AuthService with the default logger.
func NewAuthService(admin AdminCredentials, customers CustomerAccounts, staff StaffAccounts) *AuthService {
	return NewAuthServiceWithLogger(admin, customers, staff, nil, DefaultPasswordPolicy(), nil)
}

// NewAuthServiceWithLogger constructs an AuthService. A nil hasher selects Argon2id.
func NewAuthServiceWithLogger(admin AdminCredentials, customers CustomerAccounts, staff StaffAccounts, hasher PasswordHasher, policy PasswordPolicy, logger *slog.Logger) *AuthService {
	if hasher == nil {
		hasher = NewArgon2Hasher()
	}
	if policy.MinLength == 0 {
		policy = DefaultPasswordPolicy()
	}
	return &AuthService{
		admin:     admin,
		customers: customers,
		staff:     staff,
		hasher:    hasher,
		policy:    policy,
		logger:    defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// RegisterCustomer validates and stores a new customer account. Usernames
// are unique across customers and employees.
func (s *AuthService) RegisterCustomer(ctx context.Context, params RegisterCustomerParams) (user domain.User, err error) {
	if s == nil || s.customers == nil {
		err = fmt.Errorf("customer accounts not configured")
		return
	}

	in := RegisterCustomerParams{
		FirstName:       strings.TrimSpace(params.FirstName),
		LastName:        strings.TrimSpace(params.LastName),
		PhoneNumber:     strings.TrimSpace(params.PhoneNumber),
		Username:        strings.TrimSpace(params.Username),
		Password:        params.Password,
		ConfirmPassword: params.ConfirmPassword,
	}

	logger := s.loggerWith(ctx, "RegisterCustomer", "username", in.Username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "registration rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "customer registered", "user_id", user.ID)
	}()

	vErr := &ValidationError{}
	for _, f := range []struct{ field, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone_number", in.PhoneNumber},
		{"username", in.Username},
		{"password", in.Password},
	} {
		if f.value == "" {
			vErr.add(f.field, "is required")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if in.Password != in.ConfirmPassword {
		err = newValidationError("confirm_password", "Passwords do not match")
		return
	}
	if err = s.policy.Validate(in.Password); err != nil {
		return
	}

	taken, lookupErr := s.customers.UsernameExists(ctx, in.Username)
	if lookupErr != nil {
		err = storageError("check username", lookupErr)
		return
	}
	if taken {
		err = usernameConflict(in.Username)
		return
	}

	hash, hashErr := s.hasher.Hash(in.Password)
	if hashErr != nil {
		err = fmt.Errorf("hash password: %w", hashErr)
		return
	}

	user, err = s.customers.Create(ctx, domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Username:     in.Username,
		PasswordHash: hash,
	})
	switch {
	case errors.Is(err, persistence.ErrDuplicate):
		err = usernameConflict(in.Username)
	case err != nil:
		err = storageError("create customer", err)
	}
	return
}

func usernameConflict(username string) error {
	return &ConflictError{Resource: "username", Key: fmt.Sprintf("'%s'", username)}
}

// Login checks the administrator credentials first, then customers, then
// employees. Unknown usernames and wrong passwords look the same to callers.
func (s *AuthService) Login(ctx context.Context, username, password string) (result LoginResult) {
	username = strings.TrimSpace(username)
	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if !result.Success {
			logger.WarnContext(ctx, "login failed", "error", result.Err, "error_kind", ErrorKind(result.Err))
			return
		}
		logger.InfoContext(ctx, "login succeeded", "role", result.Principal.Role)
	}()

	fail := func(err error) LoginResult {
		if errors.Is(err, ErrInvalidCredentials) {
			return LoginResult{Message: "Invalid username or password", Err: err}
		}
		return LoginResult{Message: "Login failed, try again later", Err: err}
	}

	if username == "" || password == "" {
		return fail(ErrInvalidCredentials)
	}

	if s.admin.Configured() && username == s.admin.Username {
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1 {
			return LoginResult{Success: true, Principal: AdminPrincipal(username), Message: "Welcome, administrator"}
		}
		return fail(ErrInvalidCredentials)
	}

	if s.customers != nil {
		user, err := s.customers.GetByUsername(ctx, username)
		switch {
		case err == nil:
			if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
				return fail(ErrInvalidCredentials)
			}
			return LoginResult{Success: true, Principal: CustomerPrincipal(user), Message: "Welcome, " + user.FirstName}
		case !errors.Is(err, persistence.ErrNotFound):
			return fail(storageError("find customer", err))
		}
	}

	if s.staff != nil {
		emp, err := s.staff.GetByUsername(ctx, username)
		switch {
		case err == nil:
			if err := s.hasher.Verify(emp.PasswordHash, password); err != nil {
				return fail(ErrInvalidCredentials)
			}
			return LoginResult{Success: true, Principal: EmployeePrincipal(emp), Message: "Welcome, " + emp.FirstName}
		case !errors.Is(err, persistence.ErrNotFound):
			return fail(storageError("find employee", err))
		}
	}

	return fail(ErrInvalidCredentials)
}

// CurrentPrincipal re-reads the account behind a token principal. Removed
// customers and employees, and an administrator whose login is no longer
// configured, get ErrAccountRevoked.
func (s *AuthService) CurrentPrincipal(ctx context.Context, principal Principal) (Principal, error) {
	switch principal.Role {
	case domain.RoleAdmin:
		if s.admin.Configured() && principal.Username == s.admin.Username {
			return principal, nil
		}
	case domain.RoleCustomer:
		if s.customers == nil {
			break
		}
		user, err := s.customers.GetByID(ctx, principal.AccountID)
		if errors.Is(err, persistence.ErrNotFound) {
			break
		}
		if err != nil {
			return Principal{}, storageError("find customer", err)
		}
		if user.Username == principal.Username {
			return CustomerPrincipal(user), nil
		}
	case domain.RoleEmployee:
		if s.staff == nil {
			break
		}
		emp, err := s.staff.GetByID(ctx, principal.AccountID)
		if errors.Is(err, persistence.ErrNotFound) {
			break
		}
		if err != nil {
			return Principal{}, storageError("find employee", err)
		}
		if emp.Username == principal.Username {
			return EmployeePrincipal(emp), nil
		}
	}

	s.loggerWith(ctx, "CurrentPrincipal", "username", principal.Username, "role", principal.Role).
		WarnContext(ctx, "token names an account that no longer exists")
	return Principal{}, ErrAccountRevoked
}
