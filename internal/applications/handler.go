package applications

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/platform/httpx"
	"github.com/rentfolio/rentfolio/internal/shared"
)

// Handler wires HTTP endpoints for the applications module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers application routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny("applications.read"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny("applications.update", "applications.write"))
		r.Put("/{id}/status", h.setStatus)
	})
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
		h.logger.Error("list applications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	p := shared.NewPagination(page, limit, total)
	httpx.OKPage(w, items, httpx.Pagination{Page: p.Page, Pages: p.Pages, Total: p.Total, Limit: p.Limit})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid application id")
		return
	}
	application, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "", application)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid application id")
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
	application, err := h.service.SetStatus(r.Context(), id, Status(req.Status), req.Notes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "application status updated", application)
}
