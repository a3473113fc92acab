package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence/memory"
)

// plainHasher keeps tests fast; Argon2 is covered separately.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Verify(hash, password string) error {
	if hash != "plain:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

var testAdmin = AdminCredentials{Username: "admin", Password: "Admin#2025"}

func newAuthService(store *memory.Storage) *AuthService {
	return NewAuthServiceWithLogger(testAdmin, store.Users(), store.Employees(), plainHasher{}, DefaultPasswordPolicy(), nil)
}

func registration() RegisterCustomerParams {
	return RegisterCustomerParams{
		FirstName:       "Ana",
		LastName:        "Babic",
		PhoneNumber:     "0911234567",
		Username:        "ana",
		Password:        "Secret#123",
		ConfirmPassword: "Secret#123",
	}
}

func TestAuthService_RegisterCustomer(t *testing.T) {
	t.Parallel()

	t.Run("stores a hashed customer", func(t *testing.T) {
		t.Parallel()

		store := memory.Open()
		svc := newAuthService(store)
		params := registration()
		params.FirstName = "  Ana "

		user, err := svc.RegisterCustomer(context.Background(), params)
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "Ana", user.FirstName)
		assert.Equal(t, "plain:Secret#123", user.PasswordHash)

		stored, err := store.Users().GetByUsername(context.Background(), "ana")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
	})

	tests := []struct {
		name   string
		mutate func(*RegisterCustomerParams)
		field  string
	}{
		{name: "missing phone", mutate: func(p *RegisterCustomerParams) { p.PhoneNumber = "" }, field: "phone_number"},
		{name: "confirmation mismatch", mutate: func(p *RegisterCustomerParams) { p.ConfirmPassword = "Secret#124" }, field: "confirm_password"},
		{name: "too short", mutate: func(p *RegisterCustomerParams) { p.Password, p.ConfirmPassword = "Se#1", "Se#1" }, field: "password"},
		{name: "no uppercase", mutate: func(p *RegisterCustomerParams) { p.Password, p.ConfirmPassword = "secret#123", "secret#123" }, field: "password"},
		{name: "no digit", mutate: func(p *RegisterCustomerParams) { p.Password, p.ConfirmPassword = "Secret#abc", "Secret#abc" }, field: "password"},
		{name: "no special character", mutate: func(p *RegisterCustomerParams) { p.Password, p.ConfirmPassword = "Secret1234", "Secret1234" }, field: "password"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newAuthService(memory.Open())
			params := registration()
			tc.mutate(&params)

			_, err := svc.RegisterCustomer(context.Background(), params)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.FieldErrors, tc.field)
		})
	}

	t.Run("confirmation mismatch message", func(t *testing.T) {
		t.Parallel()

		params := registration()
		params.ConfirmPassword = "other"
		_, err := newAuthService(memory.Open()).RegisterCustomer(context.Background(), params)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Passwords do not match", vErr.FieldErrors["confirm_password"])
	})

	t.Run("username taken by an employee", func(t *testing.T) {
		t.Parallel()

		store := memory.Open()
		_, err := store.Employees().Create(context.Background(), domain.Employee{
			FirstName: "Marko", LastName: "Horvat", Position: domain.PositionManicurist, Username: "ana",
		})
		require.NoError(t, err)

		_, err = newAuthService(store).RegisterCustomer(context.Background(), registration())
		require.ErrorIs(t, err, ErrAlreadyExists)
		assert.Equal(t, "username 'ana' already exists", err.Error())
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	store := memory.Open()
	svc := newAuthService(store)
	ctx := context.Background()

	_, err := svc.RegisterCustomer(ctx, registration())
	require.NoError(t, err)
	_, err = store.Employees().Create(ctx, domain.Employee{
		FirstName: "Marko", LastName: "Horvat", Position: domain.PositionPedicurist,
		PhoneNumber: "0980000000", Username: "marko", PasswordHash: "plain:Staff#1234",
	})
	require.NoError(t, err)

	t.Run("administrator", func(t *testing.T) {
		result := svc.Login(ctx, "admin", "Admin#2025")
		require.True(t, result.Success)
		assert.True(t, result.Principal.IsAdmin())
	})

	t.Run("administrator with wrong password does not fall through", func(t *testing.T) {
		result := svc.Login(ctx, "admin", "Secret#123")
		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Err, ErrInvalidCredentials)
	})

	t.Run("customer", func(t *testing.T) {
		result := svc.Login(ctx, " ana ", "Secret#123")
		require.True(t, result.Success)
		assert.Equal(t, domain.RoleCustomer, result.Principal.Role)
		assert.Equal(t, "0911234567", result.Principal.PhoneNumber)
	})

	t.Run("employee", func(t *testing.T) {
		result := svc.Login(ctx, "marko", "Staff#1234")
		require.True(t, result.Success)
		assert.Equal(t, domain.RoleEmployee, result.Principal.Role)
		assert.True(t, result.Principal.IsStaff())
	})

	for _, tc := range []struct{ username, password string }{
		{"ana", "wrong"},
		{"marko", "Secret#123"},
		{"nobody", "Secret#123"},
		{"", ""},
	} {
		t.Run("rejects "+tc.username, func(t *testing.T) {
			result := svc.Login(ctx, tc.username, tc.password)
			assert.False(t, result.Success)
			assert.Equal(t, "Invalid username or password", result.Message)
			assert.ErrorIs(t, result.Err, ErrInvalidCredentials)
		})
	}

	t.Run("no administrator configured", func(t *testing.T) {
		svc := NewAuthServiceWithLogger(AdminCredentials{}, store.Users(), store.Employees(), plainHasher{}, PasswordPolicy{}, nil)
		assert.False(t, svc.Login(ctx, "admin", "").Success)
	})
}

type brokenAccounts struct{ CustomerAccounts }

func (brokenAccounts) GetByUsername(context.Context, string) (domain.User, error) {
	return domain.User{}, errors.New("connection reset")
}

func TestAuthService_LoginStorageFailure(t *testing.T) {
	t.Parallel()

	svc := NewAuthServiceWithLogger(testAdmin, brokenAccounts{}, nil, plainHasher{}, DefaultPasswordPolicy(), nil)
	result := svc.Login(context.Background(), "ana", "Secret#123")
	assert.False(t, result.Success)
	assert.Equal(t, "storage", ErrorKind(result.Err))
}

func TestAuthService_CurrentPrincipal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.Open()
	svc := newAuthService(store)

	user, err := svc.RegisterCustomer(ctx, registration())
	require.NoError(t, err)
	emp, err := store.Employees().Create(ctx, domain.Employee{
		FirstName:    "Ivana",
		LastName:     "Horvat",
		Position:     domain.PositionManicurist,
		PhoneNumber:  "0981112222",
		Username:     "ivana",
		PasswordHash: "plain:Staff#2025",
	})
	require.NoError(t, err)

	staff := EmployeePrincipal(emp)
	current, err := svc.CurrentPrincipal(ctx, staff)
	require.NoError(t, err)
	assert.Equal(t, staff, current)

	current, err = svc.CurrentPrincipal(ctx, CustomerPrincipal(user))
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.AccountID)

	_, err = svc.CurrentPrincipal(ctx, AdminPrincipal(testAdmin.Username))
	require.NoError(t, err)

	removed, err := store.Employees().Delete(ctx, emp.ID)
	require.NoError(t, err)
	require.True(t, removed)

	tests := []struct {
		name      string
		principal Principal
	}{
		{"removed employee", staff},
		{"unknown customer id", Principal{Role: domain.RoleCustomer, AccountID: 999, Username: "ana"}},
		{"customer id with other username", Principal{Role: domain.RoleCustomer, AccountID: user.ID, Username: "mallory"}},
		{"stale administrator name", AdminPrincipal("former-admin")},
		{"unknown role", Principal{Role: "guest", Username: "x"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CurrentPrincipal(ctx, tt.principal)
			assert.ErrorIs(t, err, ErrAccountRevoked)
			assert.Equal(t, "account_revoked", ErrorKind(err))
		})
	}
}

func TestArgon2Hasher(t *testing.T) {
	t.Parallel()

	hasher := Argon2Hasher{Params: Argon2idParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}}
	hash, err := hasher.Hash("Secret#123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.NoError(t, hasher.Verify(hash, "Secret#123"))
	assert.ErrorIs(t, hasher.Verify(hash, "Secret#124"), ErrInvalidCredentials)
	assert.ErrorIs(t, hasher.Verify("not-a-hash", "Secret#123"), ErrInvalidPasswordHash)
}
