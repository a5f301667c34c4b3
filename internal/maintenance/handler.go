package maintenance

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/platform/httpx"
	"github.com/rentfolio/rentfolio/internal/shared"
)

// Handler wires HTTP endpoints for the maintenance module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New(), now: time.Now}
}

// MountRoutes registers maintenance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny("maintenance.read"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny("maintenance.update", "maintenance.write"))
		r.Put("/{id}/status", h.setStatus)
		r.Put("/{id}/assign", h.assign)
	})
}

// requestView decorates a request with its derived overdue flag.
type requestView struct {
	Request
	Overdue bool `json:"overdue"`
}

func (h *Handler) view(req Request) requestView {
	return requestView{Request: req, Overdue: req.Overdue(h.now())}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := shared.PageFromRequest(r)
	filter := ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		Page:   page,
		Limit:  limit,
	}
	if raw := r.URL.Query().Get("propertyId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "invalid property id")
			return
		}
		filter.PropertyID = &id
	}

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list maintenance requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]requestView, 0, len(items))
	for _, item := range items {
		views = append(views, h.view(item))
	}
	p := shared.NewPagination(page, limit, total)
	httpx.OKPage(w, views, httpx.Pagination{Page: p.Page, Pages: p.Pages, Total: p.Total, Limit: p.Limit})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request id")
		return
	}
	request, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "", h.view(*request))
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "status is required")
		return
	}
	request, err := h.service.SetStatus(r.Context(), id, Status(req.Status), req.Notes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "maintenance status updated", h.view(*request))
}

type assignRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required,uuid"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "assignedTo must be a technician id")
		return
	}
	technicianID, _ := uuid.Parse(req.AssignedTo)
	request, err := h.service.Assign(r.Context(), id, technicianID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "technician assigned", h.view(*request))
}
