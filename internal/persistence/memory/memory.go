// Package memory provides a mutex guarded in-process implementation of the
// persistence repositories. It enforces the same unique keys as the SQL store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

// Storage holds every table in maps keyed by id.
type Storage struct {
	mu           sync.RWMutex
	appointments map[int64]domain.Appointment
	users        map[int64]domain.User
	employees    map[int64]domain.Employee
	services     map[int64]domain.Service
	lastID       map[string]int64
	now          func() time.Time
}

var _ persistence.Store = (*Storage)(nil)

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{
		appointments: make(map[int64]domain.Appointment),
		users:        make(map[int64]domain.User),
		employees:    make(map[int64]domain.Employee),
		services:     make(map[int64]domain.Service),
		lastID:       make(map[string]int64),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source used for CreatedAt.
func (s *Storage) WithClock(now func() time.Time) *Storage {
	if now != nil {
		s.now = now
	}
	return s
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error { return nil }

// Seed inserts the default catalog when no services exist.
func (s *Storage) Seed(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.services) > 0 {
		return nil
	}
	for _, svc := range domain.DefaultCatalog() {
		svc.ID = s.nextIDLocked("services")
		s.services[svc.ID] = svc
	}
	return nil
}

func (s *Storage) Appointments() persistence.AppointmentRepository { return appointmentStore{s} }
func (s *Storage) Users() persistence.UserRepository               { return userStore{s} }
func (s *Storage) Employees() persistence.EmployeeRepository       { return employeeStore{s} }
func (s *Storage) Services() persistence.ServiceRepository         { return serviceStore{s} }

func (s *Storage) nextIDLocked(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

func (s *Storage) usernameTakenLocked(username string) bool {
	for _, u := range s.users {
		if u.Username == username {
			return true
		}
	}
	for _, e := range s.employees {
		if e.Username == username {
			return true
		}
	}
	return false
}

func sortedValues[T any](m map[int64]T, less func(a, b T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// --- appointments ---

type appointmentStore struct{ s *Storage }

func appointmentLess(a, b domain.Appointment) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.ID < b.ID
}

func (r appointmentStore) Create(_ context.Context, appt domain.Appointment) (domain.Appointment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.slotTakenLocked(appt.Date, appt.Time, 0) {
		return domain.Appointment{}, persistence.ErrDuplicate
	}
	appt.ID = s.nextIDLocked("appointments")
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = s.now()
	}
	s.appointments[appt.ID] = appt
	return appt, nil
}

func (r appointmentStore) GetByID(_ context.Context, id int64) (domain.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	appt, ok := r.s.appointments[id]
	if !ok {
		return domain.Appointment{}, persistence.ErrNotFound
	}
	return appt, nil
}

func (r appointmentStore) GetAll(_ context.Context) ([]domain.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.appointments, appointmentLess), nil
}

func (r appointmentStore) Update(_ context.Context, appt domain.Appointment) (domain.Appointment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.appointments[appt.ID]
	if !ok {
		return domain.Appointment{}, persistence.ErrNotFound
	}
	if r.slotTakenLocked(appt.Date, appt.Time, appt.ID) {
		return domain.Appointment{}, persistence.ErrDuplicate
	}
	appt.CreatedAt = existing.CreatedAt
	s.appointments[appt.ID] = appt
	return appt, nil
}

func (r appointmentStore) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appointments[id]; !ok {
		return false, nil
	}
	delete(r.s.appointments, id)
	return true, nil
}

func (r appointmentStore) GetByCustomer(_ context.Context, firstName, lastName, phone string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return a.BelongsTo(firstName, lastName, phone) }), nil
}

func (r appointmentStore) GetByDate(_ context.Context, date string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return a.Date == date }), nil
}

func (r appointmentStore) GetByDateAndTime(_ context.Context, date, clock string) (domain.Appointment, error) {
	matches := r.filter(func(a domain.Appointment) bool { return a.Date == date && a.Time == clock })
	if len(matches) == 0 {
		return domain.Appointment{}, persistence.ErrNotFound
	}
	return matches[0], nil
}

func (r appointmentStore) IsTimeSlotAvailable(_ context.Context, date, clock string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return !r.slotTakenLocked(date, clock, 0), nil
}

func (r appointmentStore) filter(keep func(domain.Appointment) bool) []domain.Appointment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Appointment, 0)
	for _, a := range sortedValues(r.s.appointments, appointmentLess) {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r appointmentStore) slotTakenLocked(date, clock string, except int64) bool {
	for id, a := range r.s.appointments {
		if id != except && a.Date == date && a.Time == clock {
			return true
		}
	}
	return false
}

// --- users ---

type userStore struct{ s *Storage }

func (r userStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTakenLocked(user.Username) {
		return domain.User{}, persistence.ErrDuplicate
	}
	user.ID = s.nextIDLocked("users")
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users[user.ID] = user
	return user, nil
}

func (r userStore) GetByID(_ context.Context, id int64) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return domain.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (r userStore) GetAll(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.users, func(a, b domain.User) bool { return a.ID < b.ID }), nil
}

func (r userStore) Update(_ context.Context, user domain.User) (domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return domain.User{}, persistence.ErrNotFound
	}
	if existing.Username != user.Username && s.usernameTakenLocked(user.Username) {
		return domain.User{}, persistence.ErrDuplicate
	}
	user.CreatedAt = existing.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

func (r userStore) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)
	return true, nil
}

func (r userStore) GetByUsername(_ context.Context, username string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, persistence.ErrNotFound
}

func (r userStore) UsernameExists(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.usernameTakenLocked(username), nil
}

// --- employees ---

type employeeStore struct{ s *Storage }

func (r employeeStore) Create(_ context.Context, emp domain.Employee) (domain.Employee, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTakenLocked(emp.Username) {
		return domain.Employee{}, persistence.ErrDuplicate
	}
	emp.ID = s.nextIDLocked("employees")
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = s.now()
	}
	s.employees[emp.ID] = emp
	return emp, nil
}

func (r employeeStore) GetByID(_ context.Context, id int64) (domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	emp, ok := r.s.employees[id]
	if !ok {
		return domain.Employee{}, persistence.ErrNotFound
	}
	return emp, nil
}

func (r employeeStore) GetAll(_ context.Context) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.employees, func(a, b domain.Employee) bool { return a.ID < b.ID }), nil
}

func (r employeeStore) Update(_ context.Context, emp domain.Employee) (domain.Employee, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.employees[emp.ID]
	if !ok {
		return domain.Employee{}, persistence.ErrNotFound
	}
	if existing.Username != emp.Username && s.usernameTakenLocked(emp.Username) {
		return domain.Employee{}, persistence.ErrDuplicate
	}
	emp.CreatedAt = existing.CreatedAt
	s.employees[emp.ID] = emp
	return emp, nil
}

func (r employeeStore) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.employees[id]; !ok {
		return false, nil
	}
	delete(r.s.employees, id)
	return true, nil
}

func (r employeeStore) GetByUsername(_ context.Context, username string) (domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, e := range r.s.employees {
		if e.Username == username {
			return e, nil
		}
	}
	return domain.Employee{}, persistence.ErrNotFound
}

func (r employeeStore) UsernameExists(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.usernameTakenLocked(username), nil
}

func (r employeeStore) GetByPosition(ctx context.Context, position domain.Position) ([]domain.Employee, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Employee, 0, len(all))
	for _, e := range all {
		if e.Position == position {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- services ---

type serviceStore struct{ s *Storage }

func (r serviceStore) nameTakenLocked(name string, except int64) bool {
	for id, svc := range r.s.services {
		if id != except && svc.Name == name {
			return true
		}
	}
	return false
}

func (r serviceStore) Create(_ context.Context, svc domain.Service) (domain.Service, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.nameTakenLocked(svc.Name, 0) {
		return domain.Service{}, persistence.ErrDuplicate
	}
	svc.ID = s.nextIDLocked("services")
	s.services[svc.ID] = svc
	return svc, nil
}

func (r serviceStore) GetByID(_ context.Context, id int64) (domain.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	svc, ok := r.s.services[id]
	if !ok {
		return domain.Service{}, persistence.ErrNotFound
	}
	return svc, nil
}

func (r serviceStore) GetAll(_ context.Context) ([]domain.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.services, func(a, b domain.Service) bool { return a.ID < b.ID }), nil
}

func (r serviceStore) Update(_ context.Context, svc domain.Service) (domain.Service, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[svc.ID]; !ok {
		return domain.Service{}, persistence.ErrNotFound
	}
	if r.nameTakenLocked(svc.Name, svc.ID) {
		return domain.Service{}, persistence.ErrDuplicate
	}
	s.services[svc.ID] = svc
	return svc, nil
}

func (r serviceStore) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.services[id]; !ok {
		return false, nil
	}
	delete(r.s.services, id)
	return true, nil
}

func (r serviceStore) GetByName(_ context.Context, name string) (domain.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, svc := range r.s.services {
		if svc.Name == name {
			return svc, nil
		}
	}
	return domain.Service{}, persistence.ErrNotFound
}
