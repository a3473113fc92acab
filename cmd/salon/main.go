package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/config"
	httptransport "github.com/example/salon-scheduler/internal/http"
	"github.com/example/salon-scheduler/internal/logging"
	"github.com/example/salon-scheduler/internal/metrics"
	"github.com/example/salon-scheduler/internal/persistence"
	"github.com/example/salon-scheduler/internal/persistence/memory"
	"github.com/example/salon-scheduler/internal/persistence/sqlstore"
	"github.com/example/salon-scheduler/internal/receipt"
	"github.com/example/salon-scheduler/internal/scheduler"
	"github.com/example/salon-scheduler/internal/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("salon", flag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("SALON_CONFIG"), "path to a TOML configuration file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("salon API listening", "addr", server.Addr, "database", cfg.Database.Driver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

// app is the fully wired service. Close releases the store.
type app struct {
	Handler http.Handler
	Store   persistence.Store
	logger  *slog.Logger
}

func (a *app) Close() {
	if a == nil || a.Store == nil {
		return
	}
	if err := a.Store.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
}

// newApp constructs every component in dependency order.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	store, err := openStore(ctx, cfg.Database, logger, m)
	if err != nil {
		return nil, err
	}

	var receipts application.ReceiptWriter
	if cfg.Receipts.Dir != "" {
		receipts = receipt.NewWriter(cfg.Receipts.Dir, logger)
	}

	var (
		observer     application.BookingObserver
		httpObserver httptransport.HTTPObserver
		scrape       http.Handler
	)
	if m != nil {
		observer = m
		httpObserver = m
		scrape = m.Handler()
	}

	admin := application.AdminCredentials{Username: cfg.Admin.Username, Password: cfg.Admin.Password}
	if !admin.Configured() {
		logger.Warn("administrator login disabled, set SALON_ADMIN_USERNAME and SALON_ADMIN_PASSWORD to enable it")
	}

	policy := application.DefaultPasswordPolicy()
	hasher := application.NewArgon2Hasher()

	authService := application.NewAuthServiceWithLogger(admin, store.Users(), store.Employees(), hasher, policy, logger)
	bookingService := application.NewBookingServiceWithLogger(store.Appointments(), scheduler.DefaultCalendar(), observer, receipts, logger)
	catalogService := application.NewCatalogService(store.Services(), logger)
	bookingService.WithPriceList(catalogService)
	employeeService := application.NewEmployeeServiceWithLogger(store.Employees(), hasher, policy, logger)

	tokens, err := token.NewManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:       httptransport.NewSessionHandler(authService, tokens, logger),
		Customers:      httptransport.NewCustomerHandler(authService, logger),
		Catalog:        httptransport.NewCatalogHandler(catalogService, logger),
		Appointments:   httptransport.NewAppointmentHandler(bookingService, logger),
		Employees:      httptransport.NewEmployeeHandler(employeeService, logger),
		Health:         httptransport.NewHealthHandler(store, logger),
		Verifier:       tokens,
		Accounts:       authService,
		Observer:       httpObserver,
		MetricsHandler: scrape,
		MetricsPath:    cfg.Metrics.Path,
		Logger:         logger,
	})

	return &app{Handler: handler, Store: store, logger: logger}, nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger, m *metrics.Metrics) (persistence.Store, error) {
	if cfg.Driver == "memory" {
		store := memory.Open()
		if cfg.Seed {
			if err := store.Seed(ctx); err != nil {
				return nil, err
			}
		}
		logger.Warn("using in-memory storage, data is lost on restart")
		return store, nil
	}

	dbCfg := sqlstore.DefaultConfig(cfg.DSN)
	dbCfg.Driver = cfg.Driver
	dbCfg.BusyTimeout = cfg.BusyTimeout
	dbCfg.ConnMaxLifetime = cfg.ConnMaxLifetime
	if cfg.MaxOpenConns > 0 {
		dbCfg.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		dbCfg.MaxIdleConns = cfg.MaxIdleConns
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := sqlstore.Open(openCtx, dbCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if cfg.Migrate {
		if err := store.Migrate(openCtx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	if cfg.Seed {
		if err := store.Seed(openCtx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	if m != nil {
		if err := m.RegisterDB(store.DB(), "salon"); err != nil {
			logger.Warn("failed to register database metrics", "error", err)
		}
	}
	return store, nil
}
