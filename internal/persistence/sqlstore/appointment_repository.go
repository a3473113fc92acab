package sqlstore

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
)

// AppointmentRepository implements persistence.AppointmentRepository.
type AppointmentRepository struct {
	*base
}

var _ persistence.AppointmentRepository = (*AppointmentRepository)(nil)

func (r *AppointmentRepository) selectAppointments() squirrel.SelectBuilder {
	return r.sb.Select(appointmentColumns...).From("appointments")
}

func (r *AppointmentRepository) slotTaken(ctx context.Context, tx *sql.Tx, date, clock string, except int64) (bool, error) {
	q := r.sb.Select("1").From("appointments").Where(squirrel.Eq{"date": date, "time": clock})
	if except != 0 {
		q = q.Where(squirrel.NotEq{"appointment_id": except})
	}
	return exists(ctx, tx, q)
}

// Create inserts a booking. The slot is re-checked inside the transaction and
// the UNIQUE(date, time) constraint settles any remaining race.
func (r *AppointmentRepository) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = r.now()
	}
	rec := toAppointmentRecord(appt)

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := r.slotTaken(ctx, tx, rec.Date, rec.Time, 0)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrDuplicate
		}

		insert := r.sb.Insert("appointments").
			Columns(appointmentColumns[1:]...).
			Values(rec.FirstName, rec.LastName, rec.PhoneNumber, rec.Date, rec.Time,
				rec.ServiceName, rec.ServicePrice, r.dialect.encodeTime(appt.CreatedAt))
		id, err := insertReturningID(ctx, tx, insert, "appointment_id")
		if err != nil {
			return err
		}
		appt.ID = id
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

// GetByID returns persistence.ErrNotFound for unknown ids.
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		appt, err = queryOne(ctx, tx, r.selectAppointments().Where(squirrel.Eq{"appointment_id": id}), scanAppointment)
		return err
	})
	return appt, err
}

// GetAll returns every appointment ordered by date and time.
func (r *AppointmentRepository) GetAll(ctx context.Context) ([]domain.Appointment, error) {
	return r.list(ctx, r.selectAppointments())
}

// GetByCustomer returns the bookings made under one customer identity.
func (r *AppointmentRepository) GetByCustomer(ctx context.Context, firstName, lastName, phone string) ([]domain.Appointment, error) {
	return r.list(ctx, r.selectAppointments().Where(squirrel.Eq{
		"first_name":   firstName,
		"last_name":    lastName,
		"phone_number": phone,
	}))
}

// GetByDate returns one day's bookings ordered by time.
func (r *AppointmentRepository) GetByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	return r.list(ctx, r.selectAppointments().Where(squirrel.Eq{"date": date}))
}

func (r *AppointmentRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = queryMany(ctx, tx, q.OrderBy("date ASC", "time ASC", "appointment_id ASC"), scanAppointment)
		return err
	})
	return out, err
}

// GetByDateAndTime returns the booking holding a slot.
func (r *AppointmentRepository) GetByDateAndTime(ctx context.Context, date, clock string) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		appt, err = queryOne(ctx, tx, r.selectAppointments().Where(squirrel.Eq{"date": date, "time": clock}), scanAppointment)
		return err
	})
	return appt, err
}

// IsTimeSlotAvailable reports whether no booking holds the slot.
func (r *AppointmentRepository) IsTimeSlotAvailable(ctx context.Context, date, clock string) (bool, error) {
	var taken bool
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		taken, err = r.slotTaken(ctx, tx, date, clock, 0)
		return err
	})
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// Update rewrites a booking. created_at is never changed.
func (r *AppointmentRepository) Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	rec := toAppointmentRecord(appt)
	var stored domain.Appointment

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := r.slotTaken(ctx, tx, rec.Date, rec.Time, rec.ID)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrDuplicate
		}

		affected, err := execAffected(ctx, tx, r.sb.Update("appointments").
			SetMap(map[string]any{
				"first_name":    rec.FirstName,
				"last_name":     rec.LastName,
				"phone_number":  rec.PhoneNumber,
				"date":          rec.Date,
				"time":          rec.Time,
				"service_name":  rec.ServiceName,
				"service_price": rec.ServicePrice,
			}).
			Where(squirrel.Eq{"appointment_id": rec.ID}))
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		stored, err = queryOne(ctx, tx, r.selectAppointments().Where(squirrel.Eq{"appointment_id": rec.ID}), scanAppointment)
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return stored, nil
}

// Delete reports whether a row was removed.
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.deleteByID(ctx, "appointments", "appointment_id", id)
}
