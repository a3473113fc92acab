package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
	"github.com/example/salon-scheduler/internal/scheduler"
)

// AppointmentStore is the slice of the appointment repository used by bookings.
type AppointmentStore interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (domain.Appointment, error)
	GetAll(ctx context.Context) ([]domain.Appointment, error)
	GetByCustomer(ctx context.Context, firstName, lastName, phone string) ([]domain.Appointment, error)
	GetByDate(ctx context.Context, date string) ([]domain.Appointment, error)
	IsTimeSlotAvailable(ctx context.Context, date, clock string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// WorkingHours answers calendar questions for a date.
type WorkingHours interface {
	AvailableHours(date string) []string
	HoursFor(date string) ([]string, error)
	IsWorkingDay(date string) bool
}

// BookingObserver is notified of every booking and cancellation outcome.
type BookingObserver interface {
	BookingAttempted(reason BookingFailure)
	CancellationAttempted(outcome CancelOutcome)
}

// PriceList resolves a service name to its catalog entry.
type PriceList interface {
	ServiceByName(ctx context.Context, name string) (domain.Service, error)
}

// ReceiptWriter persists a receipt for a completed booking.
type ReceiptWriter interface {
	Write(appt domain.Appointment) (string, error)
}

type nopObserver struct{}

func (nopObserver) BookingAttempted(BookingFailure)     {}
func (nopObserver) CancellationAttempted(CancelOutcome) {}

// BookingFailure names why CreateAppointment refused a booking. The empty
// value means success.
type BookingFailure string

const (
	BookingSucceeded     BookingFailure = ""
	ReasonMissingFields  BookingFailure = "missing_fields"
	ReasonInvalidPrice   BookingFailure = "invalid_price"
	ReasonInvalidDate    BookingFailure = "invalid_date"
	ReasonSalonClosed    BookingFailure = "salon_closed"
	ReasonOutsideHours   BookingFailure = "outside_hours"
	ReasonUnknownService BookingFailure = "unknown_service"
	ReasonSlotTaken      BookingFailure = "slot_taken"
	ReasonStorageError   BookingFailure = "storage_error"
)

// Label returns the reason as a metrics/logging label.
func (r BookingFailure) Label() string {
	if r == BookingSucceeded {
		return "created"
	}
	return string(r)
}

// CreateAppointmentParams carries the booking request.
type CreateAppointmentParams struct {
	FirstName    string
	LastName     string
	PhoneNumber  string
	Date         string
	Time         string
	ServiceName  string
	ServicePrice decimal.Decimal

	// PriceFromCatalog replaces ServicePrice with the catalog price of
	// ServiceName once the date and time checks have passed.
	PriceFromCatalog bool
}

// CreateAppointmentResult is the outcome of CreateAppointment. Err holds the
// typed error for Reason and is nil on success.
type CreateAppointmentResult struct {
	Success     bool
	Appointment domain.Appointment
	Reason      BookingFailure
	Message     string
	Err         error
}

// CancelOutcome is the result of a cancellation attempt.
type CancelOutcome string

const (
	CancelCancelled CancelOutcome = "cancelled"
	CancelNotFound  CancelOutcome = "not_found"
	CancelForbidden CancelOutcome = "forbidden"
	CancelFailed    CancelOutcome = "failed"
)

// CancelAppointmentResult is the outcome of a cancellation.
type CancelAppointmentResult struct {
	Outcome CancelOutcome
	Message string
	Err     error
}

// BookingService holds the appointment use cases.
type BookingService struct {
	appointments AppointmentStore
	calendar     WorkingHours
	observer     BookingObserver
	receipts     ReceiptWriter
	prices       PriceList
	logger       *slog.Logger
}

// NewBookingService constructs a BookingService with the default logger.
func NewBookingService(appointments AppointmentStore, calendar WorkingHours) *BookingService {
	return NewBookingServiceWithLogger(appointments, calendar, nil, nil, nil)
}

// NewBookingServiceWithLogger constructs a BookingService. observer and
// receipts are optional.
func NewBookingServiceWithLogger(appointments AppointmentStore, calendar WorkingHours, observer BookingObserver, receipts ReceiptWriter, logger *slog.Logger) *BookingService {
	if calendar == nil {
		calendar = scheduler.DefaultCalendar()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &BookingService{
		appointments: appointments,
		calendar:     calendar,
		observer:     observer,
		receipts:     receipts,
		logger:       defaultLogger(logger),
	}
}

// WithPriceList sets the catalog used for PriceFromCatalog bookings.
func (s *BookingService) WithPriceList(prices PriceList) *BookingService {
	s.prices = prices
	return s
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func refuse(reason BookingFailure, message string, err error) CreateAppointmentResult {
	return CreateAppointmentResult{Reason: reason, Message: message, Err: err}
}

// CreateAppointment validates and books a slot. Checks run in a fixed order
// and the first failure is returned; nothing is written unless all pass.
func (s *BookingService) CreateAppointment(ctx context.Context, params CreateAppointmentParams) (result CreateAppointmentResult) {
	if s == nil || s.appointments == nil {
		return refuse(ReasonStorageError, "Failed to create appointment: booking service not configured",
			storageError("create appointment", errors.New("appointment store not configured")))
	}

	in := trimBooking(params)
	logger := s.loggerWith(ctx, "CreateAppointment",
		"date", in.Date,
		"time", in.Time,
		"service", in.ServiceName,
	)
	defer func() {
		s.observer.BookingAttempted(result.Reason)
		if !result.Success {
			level := slog.LevelWarn
			if result.Reason == ReasonStorageError {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "appointment rejected",
				"reason", result.Reason.Label(), "error", result.Err, "error_kind", ErrorKind(result.Err))
			return
		}
		logger.InfoContext(ctx, "appointment created", "appointment_id", result.Appointment.ID)
	}()

	if missing := missingBookingFields(in); missing.HasErrors() {
		return refuse(ReasonMissingFields, "All fields are required", missing)
	}
	if in.ServicePrice.IsNegative() {
		return refuse(ReasonInvalidPrice, "Service price cannot be negative",
			newValidationError("service_price", "must not be negative"))
	}

	date, err := scheduler.NormalizeDate(in.Date)
	if err != nil {
		return refuse(ReasonInvalidDate, "Date is not valid, use DD-MM-YYYY or YYYY-MM-DD",
			newValidationError("date", "must be DD-MM-YYYY or YYYY-MM-DD"))
	}
	if !s.calendar.IsWorkingDay(date) {
		return refuse(ReasonSalonClosed, "Salon is closed on selected date",
			newValidationError("date", "salon is closed on this day"))
	}

	clock, err := scheduler.NormalizeTime(in.Time)
	if err != nil || !containsSlot(s.calendar.AvailableHours(date), clock) {
		return refuse(ReasonOutsideHours, "Selected time is outside working hours",
			newValidationError("time", "outside working hours"))
	}

	if in.PriceFromCatalog {
		if s.prices == nil {
			return refuse(ReasonStorageError, "Failed to create appointment: price list not configured",
				storageError("find service", errors.New("price list not configured")))
		}
		svc, err := s.prices.ServiceByName(ctx, in.ServiceName)
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			return refuse(ReasonUnknownService, "Selected service does not exist", vErr)
		case err != nil:
			return refuse(ReasonStorageError, fmt.Sprintf("Failed to create appointment: %v", err),
				storageError("find service", err))
		}
		in.ServiceName = svc.Name
		in.ServicePrice = svc.Price
	}

	available, err := s.appointments.IsTimeSlotAvailable(ctx, date, clock)
	if err != nil {
		return refuse(ReasonStorageError, fmt.Sprintf("Failed to create appointment: %v", err),
			storageError("check slot availability", err))
	}
	if !available {
		return refuse(ReasonSlotTaken, "Time slot is already booked",
			&ConflictError{Resource: "appointment", Key: date + " " + clock})
	}

	created, err := s.appointments.Create(ctx, domain.Appointment{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Date:         date,
		Time:         clock,
		ServiceName:  in.ServiceName,
		ServicePrice: in.ServicePrice,
	})
	switch {
	case errors.Is(err, persistence.ErrDuplicate):
		return refuse(ReasonSlotTaken, "Time slot is already booked",
			&ConflictError{Resource: "appointment", Key: date + " " + clock})
	case err != nil:
		return refuse(ReasonStorageError, fmt.Sprintf("Failed to create appointment: %v", err),
			storageError("create appointment", err))
	}

	if s.receipts != nil {
		if path, err := s.receipts.Write(created); err != nil {
			logger.WarnContext(ctx, "failed to write receipt", "appointment_id", created.ID, "error", err)
		} else {
			logger.DebugContext(ctx, "receipt written", "path", path)
		}
	}

	return CreateAppointmentResult{
		Success:     true,
		Appointment: created,
		Message:     "Appointment created successfully",
	}
}

func trimBooking(p CreateAppointmentParams) CreateAppointmentParams {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.Date = strings.TrimSpace(p.Date)
	p.Time = strings.TrimSpace(p.Time)
	p.ServiceName = strings.TrimSpace(p.ServiceName)
	return p
}

func missingBookingFields(p CreateAppointmentParams) *ValidationError {
	v := &ValidationError{}
	required := []struct{ field, value string }{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"phone_number", p.PhoneNumber},
		{"date", p.Date},
		{"time", p.Time},
		{"service_name", p.ServiceName},
	}
	for _, r := range required {
		if r.value == "" {
			v.add(r.field, "is required")
		}
	}
	return v
}

func containsSlot(hours []string, clock string) bool {
	for _, h := range hours {
		if h == clock {
			return true
		}
	}
	return false
}

// CancelAppointment deletes a booking. Cancelling the same id twice yields
// Cancelled then NotFound.
func (s *BookingService) CancelAppointment(ctx context.Context, id int64) (result CancelAppointmentResult) {
	logger := s.loggerWith(ctx, "CancelAppointment", "appointment_id", id)
	defer func() {
		s.observer.CancellationAttempted(result.Outcome)
		if result.Err != nil {
			logger.WarnContext(ctx, "appointment not cancelled",
				"outcome", result.Outcome, "error", result.Err, "error_kind", ErrorKind(result.Err))
			return
		}
		logger.InfoContext(ctx, "appointment cancelled")
	}()

	removed, err := s.appointments.Delete(ctx, id)
	if err != nil {
		return CancelAppointmentResult{
			Outcome: CancelFailed,
			Message: fmt.Sprintf("Failed to cancel appointment: %v", err),
			Err:     storageError("cancel appointment", err),
		}
	}
	if !removed {
		return CancelAppointmentResult{
			Outcome: CancelNotFound,
			Message: "Appointment not found",
			Err:     &NotFoundError{Resource: "appointment", ID: id},
		}
	}
	return CancelAppointmentResult{Outcome: CancelCancelled, Message: "Appointment cancelled successfully"}
}

// CancelAppointmentFor cancels on behalf of principal. Customers may only
// cancel their own bookings.
func (s *BookingService) CancelAppointmentFor(ctx context.Context, principal Principal, id int64) CancelAppointmentResult {
	if !principal.IsStaff() {
		if _, err := s.GetAppointment(ctx, principal, id); err != nil {
			outcome := CancelFailed
			switch {
			case errors.Is(err, ErrUnauthorized):
				outcome = CancelForbidden
			case errors.Is(err, ErrNotFound):
				outcome = CancelNotFound
			}
			s.observer.CancellationAttempted(outcome)
			return CancelAppointmentResult{Outcome: outcome, Message: err.Error(), Err: err}
		}
	}
	return s.CancelAppointment(ctx, id)
}

// GetAppointment returns one booking if principal may see it.
func (s *BookingService) GetAppointment(ctx context.Context, principal Principal, id int64) (domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if errors.Is(err, persistence.ErrNotFound) {
		return domain.Appointment{}, &NotFoundError{Resource: "appointment", ID: id}
	}
	if err != nil {
		return domain.Appointment{}, storageError("get appointment", err)
	}
	if !principal.CanAccess(appt) {
		// hide other customers' bookings
		return domain.Appointment{}, fmt.Errorf("%w: appointment %d", ErrUnauthorized, id)
	}
	return appt, nil
}

// ListAppointments returns the bookings visible to principal ordered by date
// and time: everything for staff, own bookings for customers, nothing otherwise.
func (s *BookingService) ListAppointments(ctx context.Context, principal Principal) (appts []domain.Appointment, err error) {
	logger := s.loggerWith(ctx, "ListAppointments", "role", principal.Role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list appointments", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "appointments listed", "count", len(appts))
	}()

	switch {
	case principal.IsStaff():
		appts, err = s.appointments.GetAll(ctx)
	case principal.Role == domain.RoleCustomer:
		appts, err = s.appointments.GetByCustomer(ctx, principal.FirstName, principal.LastName, principal.PhoneNumber)
	default:
		return []domain.Appointment{}, nil
	}
	if err != nil {
		return nil, storageError("list appointments", err)
	}
	return appts, nil
}

// AppointmentsOnDate is the staff view of one day's bookings.
func (s *BookingService) AppointmentsOnDate(ctx context.Context, principal Principal, date string) ([]domain.Appointment, error) {
	if !principal.IsStaff() {
		return nil, ErrUnauthorized
	}
	normalized, err := scheduler.NormalizeDate(date)
	if err != nil {
		return nil, newValidationError("date", "must be DD-MM-YYYY or YYYY-MM-DD")
	}
	appts, err := s.appointments.GetByDate(ctx, normalized)
	if err != nil {
		return nil, storageError("list appointments by date", err)
	}
	return appts, nil
}

// AvailableSlots returns the free slot start times on date in calendar
// order. Closed days and unparseable dates yield an empty list.
func (s *BookingService) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	hours := s.calendar.AvailableHours(date)
	if len(hours) == 0 {
		return []string{}, nil
	}
	normalized, err := scheduler.NormalizeDate(date)
	if err != nil {
		return []string{}, nil
	}

	booked, err := s.appointments.GetByDate(ctx, normalized)
	if err != nil {
		s.loggerWith(ctx, "AvailableSlots", "date", normalized).
			ErrorContext(ctx, "failed to load bookings", "error", err)
		return []string{}, storageError("available slots", err)
	}
	times := make([]string, len(booked))
	for i, appt := range booked {
		times[i] = appt.Time
	}
	return scheduler.FreeSlots(hours, times), nil
}
