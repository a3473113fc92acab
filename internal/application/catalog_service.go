package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

// CatalogService manages the price list. Reads are public; writes require
// the administrator.
type CatalogService struct {
	services persistence.ServiceRepository
	logger   *slog.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(services persistence.ServiceRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{services: services, logger: defaultLogger(logger)}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// ListServices returns the catalog ordered by id.
func (s *CatalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	svcs, err := s.services.GetAll(ctx)
	if err != nil {
		return nil, storageError("list services", err)
	}
	return svcs, nil
}

// ServiceByName looks a catalog entry up by its exact name.
func (s *CatalogService) ServiceByName(ctx context.Context, name string) (domain.Service, error) {
	svc, err := s.services.GetByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, persistence.ErrNotFound) {
		return domain.Service{}, newValidationError("service_name", "unknown service")
	}
	if err != nil {
		return domain.Service{}, storageError("find service", err)
	}
	return svc, nil
}

func validateService(name string, price decimal.Decimal) error {
	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "is required")
	}
	if price.IsNegative() {
		vErr.add("price", "must not be negative")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// AddService stores a new catalog entry.
func (s *CatalogService) AddService(ctx context.Context, principal Principal, name string, price decimal.Decimal) (svc domain.Service, err error) {
	name = strings.TrimSpace(name)
	logger := s.loggerWith(ctx, "AddService", "name", name)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "service not added", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "service added", "service_id", svc.ID)
	}()

	if !principal.IsAdmin() {
		return domain.Service{}, ErrUnauthorized
	}
	if err = validateService(name, price); err != nil {
		return domain.Service{}, err
	}
	svc, err = s.services.Create(ctx, domain.Service{Name: name, Price: price})
	return svc, s.mapWriteError("create service", name, 0, err)
}

// UpdateService renames or reprices an entry. Existing appointments keep the
// name and price they were booked with.
func (s *CatalogService) UpdateService(ctx context.Context, principal Principal, id int64, name string, price decimal.Decimal) (svc domain.Service, err error) {
	name = strings.TrimSpace(name)
	logger := s.loggerWith(ctx, "UpdateService", "service_id", id)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "service not updated", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "service updated")
	}()

	if !principal.IsAdmin() {
		return domain.Service{}, ErrUnauthorized
	}
	if err = validateService(name, price); err != nil {
		return domain.Service{}, err
	}
	svc, err = s.services.Update(ctx, domain.Service{ID: id, Name: name, Price: price})
	return svc, s.mapWriteError("update service", name, id, err)
}

// RemoveService deletes a catalog entry.
func (s *CatalogService) RemoveService(ctx context.Context, principal Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	removed, err := s.services.Delete(ctx, id)
	if err != nil {
		return storageError("delete service", err)
	}
	if !removed {
		return &NotFoundError{Resource: "service", ID: id}
	}
	s.loggerWith(ctx, "RemoveService", "service_id", id).InfoContext(ctx, "service removed")
	return nil
}

func (s *CatalogService) mapWriteError(op, name string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrDuplicate):
		return &ConflictError{Resource: "service", Key: name}
	case errors.Is(err, persistence.ErrNotFound):
		return &NotFoundError{Resource: "service", ID: id}
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("price", "must not be negative")
	default:
		return storageError(op, err)
	}
}
