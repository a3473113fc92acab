package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/receipt"
)

type bookingService interface {
	CreateAppointment(ctx context.Context, params application.CreateAppointmentParams) application.CreateAppointmentResult
	CancelAppointmentFor(ctx context.Context, principal application.Principal, id int64) application.CancelAppointmentResult
	GetAppointment(ctx context.Context, principal application.Principal, id int64) (domain.Appointment, error)
	ListAppointments(ctx context.Context, principal application.Principal) ([]domain.Appointment, error)
	AppointmentsOnDate(ctx context.Context, principal application.Principal, date string) ([]domain.Appointment, error)
	AvailableSlots(ctx context.Context, date string) ([]string, error)
}

type AppointmentHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
	now       func() time.Time
}

func NewAppointmentHandler(service bookingService, logger *slog.Logger) *AppointmentHandler {
	base := defaultLogger(logger)
	return &AppointmentHandler{
		service:   service,
		responder: newResponder(base),
		logger:    base,
		now:       time.Now,
	}
}

// WithClock replaces the clock stamped on generated receipts.
func (h *AppointmentHandler) WithClock(now func() time.Time) *AppointmentHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *AppointmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AppointmentHandler", operation, attrs...)
}

// Slots lists the free start times on ?date=.
func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDateParm)
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), date)
	if err != nil {
		h.log(r.Context(), "Slots", "date", date).ErrorContext(r.Context(), "slot lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotsResponse{Date: date, Slots: slots})
}

// List returns the caller's visible bookings, or with ?date= the staff day view.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	logger := h.log(r.Context(), "List", "role", principal.Role, "date", date)

	var (
		appts []domain.Appointment
		err   error
	)
	if date != "" {
		appts, err = h.service.AppointmentsOnDate(r.Context(), principal, date)
	} else {
		appts, err = h.service.ListAppointments(r.Context(), principal)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "appointment listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]appointmentDTO, 0, len(appts))
	for _, appt := range appts {
		dtos = append(dtos, toAppointmentDTO(appt))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentListResponse{Appointments: dtos})
}

// Create books a slot. Customers always book under their own identity;
// staff may book on behalf of anyone.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req appointmentRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	params := application.CreateAppointmentParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Date:        req.Date,
		Time:        req.Time,
		ServiceName: req.ServiceName,

		// The price always comes from the catalog, never from the caller.
		PriceFromCatalog: true,
	}
	if principal.Role == domain.RoleCustomer {
		params.FirstName = principal.FirstName
		params.LastName = principal.LastName
		params.PhoneNumber = principal.PhoneNumber
	}

	logger := h.log(r.Context(), "Create", "role", principal.Role, "date", req.Date, "time", req.Time)

	result := h.service.CreateAppointment(r.Context(), params)
	if !result.Success {
		logger.WarnContext(r.Context(), "booking refused", "reason", result.Reason, "error_kind", application.ErrorKind(result.Err))
		body := errorResponse{ErrorCode: string(result.Reason), Message: result.Message}
		var vErr *application.ValidationError
		if errors.As(result.Err, &vErr) {
			body.Errors = vErr.FieldErrors
		}
		h.responder.writeJSON(r.Context(), w, bookingStatus(result.Reason), body)
		return
	}

	logger.With("appointment_id", result.Appointment.ID).InfoContext(r.Context(), "appointment booked")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, appointmentResponse{
		Appointment: toAppointmentDTO(result.Appointment),
		Message:     result.Message,
	})
}

func bookingStatus(reason application.BookingFailure) int {
	switch reason {
	case application.ReasonSlotTaken:
		return http.StatusConflict
	case application.ReasonStorageError:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	appt, err := h.service.GetAppointment(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", "appointment_id", id).WarnContext(r.Context(), "appointment lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentResponse{Appointment: toAppointmentDTO(appt)})
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "appointment_id", id, "role", principal.Role)

	result := h.service.CancelAppointmentFor(r.Context(), principal, id)
	switch result.Outcome {
	case application.CancelCancelled:
		logger.InfoContext(r.Context(), "appointment cancelled")
		h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: result.Message})
	case application.CancelNotFound:
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{ErrorCode: "not_found", Message: "Appointment not found"})
	case application.CancelForbidden:
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{ErrorCode: "forbidden", Message: "You are not allowed to perform this action"})
	default:
		logger.ErrorContext(r.Context(), "cancellation failed", "error", result.Err, "error_kind", application.ErrorKind(result.Err))
		h.responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{ErrorCode: "storage_error", Message: result.Message})
	}
}

// Receipt renders the booking receipt as text, or as a PDF with ?format=pdf.
func (h *AppointmentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	logger := h.log(r.Context(), "Receipt", "appointment_id", id, "format", format)

	appt, err := h.service.GetAppointment(r.Context(), principal, id)
	if err != nil {
		logger.WarnContext(r.Context(), "receipt lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	generatedAt := h.now()
	switch format {
	case "", "txt", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(receipt.FileName(appt, "txt")))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(receipt.Text(appt, generatedAt)))
	case "pdf":
		var buf bytes.Buffer
		if err := receipt.PDF(&buf, appt, generatedAt); err != nil {
			logger.ErrorContext(r.Context(), "pdf rendering failed", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", attachment(receipt.FileName(appt, "pdf")))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("Unsupported receipt format %q", format))
	}
}

// attachment builds a Content-Disposition value. Non-ASCII names are
// carried in the RFC 2231 filename* form.
func attachment(name string) string {
	if value := mime.FormatMediaType("attachment", map[string]string{"filename": name}); value != "" {
		return value
	}
	return "attachment"
}

type appointmentRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ServiceName string `json:"service_name"`
}

type appointmentDTO struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	ServiceName  string    `json:"service_name"`
	ServicePrice string    `json:"service_price"`
	CreatedAt    time.Time `json:"created_at"`
}

type appointmentResponse struct {
	Appointment appointmentDTO `json:"appointment"`
	Message     string         `json:"message,omitempty"`
}

type appointmentListResponse struct {
	Appointments []appointmentDTO `json:"appointments"`
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func toAppointmentDTO(a domain.Appointment) appointmentDTO {
	return appointmentDTO{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		PhoneNumber:  a.PhoneNumber,
		Date:         a.Date,
		Time:         a.Time,
		ServiceName:  a.ServiceName,
		ServicePrice: a.ServicePrice.StringFixed(2),
		CreatedAt:    a.CreatedAt,
	}
}
