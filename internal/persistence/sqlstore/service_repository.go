package sqlstore

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

// ServiceRepository implements persistence.ServiceRepository.
type ServiceRepository struct {
	*base
}

var _ persistence.ServiceRepository = (*ServiceRepository)(nil)

func (r *ServiceRepository) selectServices() squirrel.SelectBuilder {
	return r.sb.Select(serviceColumns...).From("services")
}

// Create inserts a catalog entry. Names are unique.
func (r *ServiceRepository) Create(ctx context.Context, svc domain.Service) (domain.Service, error) {
	rec := toServiceRecord(svc)
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		id, err := insertReturningID(ctx, tx, r.sb.Insert("services").
			Columns(serviceColumns[1:]...).
			Values(rec.Name, rec.Price), "service_id")
		svc.ID = id
		return err
	})
	if err != nil {
		return domain.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (domain.Service, error) {
	return r.one(ctx, squirrel.Eq{"service_id": id})
}

// GetByName matches the name exactly.
func (r *ServiceRepository) GetByName(ctx context.Context, name string) (domain.Service, error) {
	return r.one(ctx, squirrel.Eq{"name": name})
}

func (r *ServiceRepository) one(ctx context.Context, where squirrel.Eq) (domain.Service, error) {
	var svc domain.Service
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		svc, err = queryOne(ctx, tx, r.selectServices().Where(where), scanService)
		return err
	})
	return svc, err
}

func (r *ServiceRepository) GetAll(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = queryMany(ctx, tx, r.selectServices().OrderBy("service_id ASC"), scanService)
		return err
	})
	return out, err
}

func (r *ServiceRepository) Update(ctx context.Context, svc domain.Service) (domain.Service, error) {
	rec := toServiceRecord(svc)
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		affected, err := execAffected(ctx, tx, r.sb.Update("services").
			Set("name", rec.Name).
			Set("price", rec.Price).
			Where(squirrel.Eq{"service_id": rec.ID}))
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "services", "service_id", id)
}
