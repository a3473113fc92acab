package sqlstore

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

// UserRepository implements persistence.UserRepository.
type UserRepository struct {
	*base
}

var _ persistence.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) selectUsers() squirrel.SelectBuilder {
	return r.sb.Select(userColumns...).From("users")
}

// Create inserts a customer. The username must be free in both account tables.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	rec := toUserRecord(user)

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := r.claimUsername(ctx, tx, rec.Username)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrDuplicate
		}
		id, err := insertReturningID(ctx, tx, r.sb.Insert("users").
			Columns(userColumns[1:]...).
			Values(rec.FirstName, rec.LastName, rec.PhoneNumber, rec.Username, rec.PasswordHash,
				r.dialect.encodeTime(user.CreatedAt)), "user_id")
		user.ID = id
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return r.one(ctx, squirrel.Eq{"user_id": id})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.one(ctx, squirrel.Eq{"username": username})
}

func (r *UserRepository) one(ctx context.Context, where squirrel.Eq) (domain.User, error) {
	var user domain.User
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = queryOne(ctx, tx, r.selectUsers().Where(where), scanUser)
		return err
	})
	return user, err
}

func (r *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		users, err = queryMany(ctx, tx, r.selectUsers().OrderBy("user_id ASC"), scanUser)
		return err
	})
	return users, err
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	rec := toUserRecord(user)
	var stored domain.User

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		current, err := queryOne(ctx, tx, r.selectUsers().Where(squirrel.Eq{"user_id": rec.ID}), scanUser)
		if err != nil {
			return err
		}
		if current.Username != rec.Username {
			taken, err := r.claimUsername(ctx, tx, rec.Username)
			if err != nil {
				return err
			}
			if taken {
				return persistence.ErrDuplicate
			}
		}
		if _, err := execAffected(ctx, tx, r.sb.Update("users").
			SetMap(map[string]any{
				"first_name":    rec.FirstName,
				"last_name":     rec.LastName,
				"phone_number":  rec.PhoneNumber,
				"username":      rec.Username,
				"password_hash": rec.PasswordHash,
			}).
			Where(squirrel.Eq{"user_id": rec.ID})); err != nil {
			return err
		}
		user.CreatedAt = current.CreatedAt
		stored = user
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return stored, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "users", "user_id", id)
}

// UsernameExists checks customers and employees.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.usernameExists(ctx, username)
}

// EmployeeRepository implements persistence.EmployeeRepository.
type EmployeeRepository struct {
	*base
}

var _ persistence.EmployeeRepository = (*EmployeeRepository)(nil)

func (r *EmployeeRepository) selectEmployees() squirrel.SelectBuilder {
	return r.sb.Select(employeeColumns...).From("employees")
}

// Create inserts a staff account under the same username rule as customers.
func (r *EmployeeRepository) Create(ctx context.Context, emp domain.Employee) (domain.Employee, error) {
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = r.now()
	}
	rec := toEmployeeRecord(emp)

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := r.claimUsername(ctx, tx, rec.Username)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrDuplicate
		}
		id, err := insertReturningID(ctx, tx, r.sb.Insert("employees").
			Columns(employeeColumns[1:]...).
			Values(rec.FirstName, rec.LastName, rec.Position, rec.PhoneNumber, rec.Username,
				rec.PasswordHash, r.dialect.encodeTime(emp.CreatedAt)), "employee_id")
		emp.ID = id
		return err
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return emp, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (domain.Employee, error) {
	return r.one(ctx, squirrel.Eq{"employee_id": id})
}

func (r *EmployeeRepository) GetByUsername(ctx context.Context, username string) (domain.Employee, error) {
	return r.one(ctx, squirrel.Eq{"username": username})
}

func (r *EmployeeRepository) one(ctx context.Context, where squirrel.Eq) (domain.Employee, error) {
	var emp domain.Employee
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		emp, err = queryOne(ctx, tx, r.selectEmployees().Where(where), scanEmployee)
		return err
	})
	return emp, err
}

func (r *EmployeeRepository) GetAll(ctx context.Context) ([]domain.Employee, error) {
	return r.list(ctx, r.selectEmployees())
}

// GetByPosition lists the employees holding one job title.
func (r *EmployeeRepository) GetByPosition(ctx context.Context, position domain.Position) ([]domain.Employee, error) {
	return r.list(ctx, r.selectEmployees().Where(squirrel.Eq{"position": string(position)}))
}

func (r *EmployeeRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]domain.Employee, error) {
	var out []domain.Employee
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = queryMany(ctx, tx, q.OrderBy("employee_id ASC"), scanEmployee)
		return err
	})
	return out, err
}

func (r *EmployeeRepository) Update(ctx context.Context, emp domain.Employee) (domain.Employee, error) {
	rec := toEmployeeRecord(emp)
	var stored domain.Employee

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		current, err := queryOne(ctx, tx, r.selectEmployees().Where(squirrel.Eq{"employee_id": rec.ID}), scanEmployee)
		if err != nil {
			return err
		}
		if current.Username != rec.Username {
			taken, err := r.claimUsername(ctx, tx, rec.Username)
			if err != nil {
				return err
			}
			if taken {
				return persistence.ErrDuplicate
			}
		}
		if _, err := execAffected(ctx, tx, r.sb.Update("employees").
			SetMap(map[string]any{
				"first_name":    rec.FirstName,
				"last_name":     rec.LastName,
				"position":      rec.Position,
				"phone_number":  rec.PhoneNumber,
				"username":      rec.Username,
				"password_hash": rec.PasswordHash,
			}).
			Where(squirrel.Eq{"employee_id": rec.ID})); err != nil {
			return err
		}
		emp.CreatedAt = current.CreatedAt
		stored = emp
		return nil
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return stored, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "employees", "employee_id", id)
}

// UsernameExists checks customers and employees.
func (r *EmployeeRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.usernameExists(ctx, username)
}
