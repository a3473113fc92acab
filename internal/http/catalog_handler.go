package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/domain"
)

type catalogService interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	AddService(ctx context.Context, principal application.Principal, name string, price decimal.Decimal) (domain.Service, error)
	UpdateService(ctx context.Context, principal application.Principal, id int64, name string, price decimal.Decimal) (domain.Service, error)
	RemoveService(ctx context.Context, principal application.Principal, id int64) error
}

type CatalogHandler struct {
	service   catalogService
	responder responder
	logger    *slog.Logger
}

func NewCatalogHandler(service catalogService, logger *slog.Logger) *CatalogHandler {
	base := defaultLogger(logger)
	return &CatalogHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CatalogHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CatalogHandler", operation, attrs...)
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	svcs, err := h.service.ListServices(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "service listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]serviceDTO, 0, len(svcs))
	for _, svc := range svcs {
		dtos = append(dtos, toServiceDTO(svc))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, serviceListResponse{Services: dtos})
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req serviceRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Create", "name", req.Name)
	svc, err := h.service.AddService(r.Context(), principal, req.Name, req.Price)
	if err != nil {
		logger.ErrorContext(r.Context(), "service creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("service_id", svc.ID).InfoContext(r.Context(), "service created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, serviceResponse{Service: toServiceDTO(svc)})
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req serviceRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Update", "service_id", id)
	svc, err := h.service.UpdateService(r.Context(), principal, id, req.Name, req.Price)
	if err != nil {
		logger.ErrorContext(r.Context(), "service update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "service updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, serviceResponse{Service: toServiceDTO(svc)})
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	logger := h.log(r.Context(), "Delete", "service_id", id)
	if err := h.service.RemoveService(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "service delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "service deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// pathID reads the {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type serviceRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

type serviceDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type serviceResponse struct {
	Service serviceDTO `json:"service"`
}

type serviceListResponse struct {
	Services []serviceDTO `json:"services"`
}

func toServiceDTO(svc domain.Service) serviceDTO {
	return serviceDTO{ID: svc.ID, Name: svc.Name, Price: svc.Price.StringFixed(2)}
}
