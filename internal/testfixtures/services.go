package testfixtures

import (
	"log/slog"
	"testing"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/persistence"
	"github.com/example/salon-scheduler/internal/scheduler"
)

// FastArgon2Params keep password hashing cheap in tests while still running
// the real Argon2id code path.
var FastArgon2Params = application.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// DefaultAdmin is the administrator login configured by the factory.
var DefaultAdmin = application.AdminCredentials{Username: "admin", Password: "Admin#2025"}

// ServiceFactory assists tests with constructing application services
// over a store using deterministic clocks and request identifiers.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Admin       application.AdminCredentials
	Hasher      application.PasswordHasher
	Observer    application.BookingObserver
	Receipts    application.ReceiptWriter
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(referenceTime),
		IDGenerator: NewIDGenerator("req"),
		Admin:       DefaultAdmin,
		Hasher:      application.Argon2Hasher{Params: FastArgon2Params},
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(referenceTime)
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("req")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the request identifier generator.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithAdmin overrides the administrator credentials.
func WithAdmin(admin application.AdminCredentials) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Admin = admin
	}
}

// WithObserver attaches a booking observer such as the metrics collector.
func WithObserver(observer application.BookingObserver) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Observer = observer
	}
}

// WithReceipts attaches a receipt writer to the booking service.
func WithReceipts(receipts application.ReceiptWriter) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Receipts = receipts
	}
}

// WithLogger sets the base logger of every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Services bundles every use case wired over one store.
type Services struct {
	Auth      *application.AuthService
	Booking   *application.BookingService
	Catalog   *application.CatalogService
	Employees *application.EmployeeService
}

// NewServices builds the application services over store.
func (f *ServiceFactory) NewServices(store persistence.Store) Services {
	policy := application.DefaultPasswordPolicy()
	catalog := application.NewCatalogService(store.Services(), f.Logger)
	return Services{
		Auth: application.NewAuthServiceWithLogger(
			f.Admin, store.Users(), store.Employees(), f.Hasher, policy, f.Logger,
		),
		Booking: application.NewBookingServiceWithLogger(
			store.Appointments(), scheduler.DefaultCalendar(), f.Observer, f.Receipts, f.Logger,
		).WithPriceList(catalog),
		Catalog:   catalog,
		Employees: application.NewEmployeeServiceWithLogger(store.Employees(), f.Hasher, policy, f.Logger),
	}
}

// NewMemoryServices is NewServices over a seeded in-memory store whose
// timestamps follow the factory clock.
func (f *ServiceFactory) NewMemoryServices(tb testing.TB) (Services, persistence.Store) {
	tb.Helper()
	store := NewMemoryStore(tb).WithClock(f.Clock.NowFunc())
	return f.NewServices(store), store
}
