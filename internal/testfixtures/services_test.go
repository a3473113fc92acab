package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/domain"
)

func TestServiceFactory_RegisterLoginAndBook(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory()
	services, _ := factory.NewMemoryServices(t)
	ctx := context.Background()

	customer := NewCustomerFixture()
	user, err := services.Auth.RegisterCustomer(ctx, application.RegisterCustomerParams{
		FirstName:       customer.FirstName,
		LastName:        customer.LastName,
		PhoneNumber:     customer.PhoneNumber,
		Username:        customer.Username,
		Password:        customer.Password,
		ConfirmPassword: customer.Password,
	})
	require.NoError(t, err)
	assert.True(t, user.CreatedAt.Equal(ReferenceTime()), "store should stamp the factory clock")

	login := services.Auth.Login(ctx, customer.Username, customer.Password)
	require.True(t, login.Success, login.Message)
	assert.Equal(t, domain.RoleCustomer, login.Principal.Role)

	manicure, err := services.Catalog.ServiceByName(ctx, "Manicure")
	require.NoError(t, err)

	result := services.Booking.CreateAppointment(ctx, application.CreateAppointmentParams{
		FirstName:    login.Principal.FirstName,
		LastName:     login.Principal.LastName,
		PhoneNumber:  login.Principal.PhoneNumber,
		Date:         factory.Clock.Date(),
		Time:         "09:00",
		ServiceName:  manicure.Name,
		ServicePrice: manicure.Price,
	})
	require.True(t, result.Success, result.Message)
	assert.True(t, result.Appointment.ServicePrice.Equal(decimal.NewFromInt(20)))

	mine, err := services.Booking.ListAppointments(ctx, login.Principal)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestServiceFactory_AdminLogin(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory(WithAdmin(application.AdminCredentials{Username: "owner", Password: "Owner#2025"}))
	services, _ := factory.NewMemoryServices(t)

	result := services.Auth.Login(context.Background(), "owner", "Owner#2025")
	require.True(t, result.Success)
	assert.True(t, result.Principal.IsAdmin())

	rejected := services.Auth.Login(context.Background(), DefaultAdmin.Username, DefaultAdmin.Password)
	assert.False(t, rejected.Success)
}

func TestServiceFactory_WithClock(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Date(2025, time.June, 7, 10, 0, 0, 0, time.UTC))
	factory := NewServiceFactory(WithClock(clock))
	services, _ := factory.NewMemoryServices(t)

	slots, err := services.Booking.AvailableSlots(context.Background(), clock.Date())
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "09:00", "10:00", "11:00", "12:00"}, slots)
}

func TestServiceFactory_SQLiteStore(t *testing.T) {
	t.Parallel()

	harness := NewSQLiteHarness(t)
	services := NewServiceFactory().NewServices(harness.Store)

	catalog, err := services.Catalog.ListServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog, len(domain.DefaultCatalog()))
}
