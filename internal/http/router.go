package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// APIPrefix is the path every JSON endpoint is mounted under.
const APIPrefix = "/api/v1"

type RouterConfig struct {
	Sessions     *SessionHandler
	Customers    *CustomerHandler
	Catalog      *CatalogHandler
	Appointments *AppointmentHandler
	Employees    *EmployeeHandler
	Health       *HealthHandler

	// Verifier authenticates bearer tokens. Without it every request is anonymous.
	Verifier TokenVerifier
	// Accounts re-checks that a token's account still exists when set.
	Accounts AccountResolver
	// Observer receives per-route request metrics when set.
	Observer HTTPObserver
	// MetricsHandler is served on MetricsPath when both are set.
	MetricsHandler http.Handler
	MetricsPath    string

	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	authed := RequireAuth(logger)

	root := mux.NewRouter()
	root.Use(Instrument(cfg.Observer))

	if cfg.Health != nil {
		root.HandleFunc("/healthz", cfg.Health.Check).Methods(http.MethodGet)
	}
	if cfg.MetricsHandler != nil && cfg.MetricsPath != "" {
		root.Handle(cfg.MetricsPath, cfg.MetricsHandler).Methods(http.MethodGet)
	}

	api := root.PathPrefix(APIPrefix).Subrouter()
	api.Use(Authenticate(cfg.Verifier, cfg.Accounts, logger))

	if cfg.Sessions != nil {
		api.HandleFunc("/sessions", cfg.Sessions.Create).Methods(http.MethodPost)
	}

	if cfg.Customers != nil {
		api.HandleFunc("/customers", cfg.Customers.Register).Methods(http.MethodPost)
	}

	if cfg.Catalog != nil {
		api.HandleFunc("/services", cfg.Catalog.List).Methods(http.MethodGet)
		api.HandleFunc("/services", authed(cfg.Catalog.Create)).Methods(http.MethodPost)
		api.HandleFunc("/services/{id:[0-9]+}", authed(cfg.Catalog.Update)).Methods(http.MethodPut)
		api.HandleFunc("/services/{id:[0-9]+}", authed(cfg.Catalog.Delete)).Methods(http.MethodDelete)
	}

	if cfg.Appointments != nil {
		api.HandleFunc("/slots", cfg.Appointments.Slots).Methods(http.MethodGet)
		api.HandleFunc("/appointments", authed(cfg.Appointments.List)).Methods(http.MethodGet)
		api.HandleFunc("/appointments", authed(cfg.Appointments.Create)).Methods(http.MethodPost)
		api.HandleFunc("/appointments/{id:[0-9]+}", authed(cfg.Appointments.Get)).Methods(http.MethodGet)
		api.HandleFunc("/appointments/{id:[0-9]+}", authed(cfg.Appointments.Cancel)).Methods(http.MethodDelete)
		api.HandleFunc("/appointments/{id:[0-9]+}/receipt", authed(cfg.Appointments.Receipt)).Methods(http.MethodGet)
	}

	if cfg.Employees != nil {
		api.HandleFunc("/employees", authed(cfg.Employees.List)).Methods(http.MethodGet)
		api.HandleFunc("/employees", authed(cfg.Employees.Create)).Methods(http.MethodPost)
		api.HandleFunc("/employees/{id:[0-9]+}", authed(cfg.Employees.Delete)).Methods(http.MethodDelete)
	}

	var handler http.Handler = root
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return RequestLogger(logger)(handler)
}
