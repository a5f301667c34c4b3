package properties

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

// Handler wires HTTP endpoints for the properties module.
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

// MountRoutes registers property routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny("properties.read"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny("properties.create", "properties.write"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny("properties.update", "properties.write"))
		r.Put("/{id}/approve", h.approve)
		r.Put("/{id}/reject", h.reject)
		r.Put("/{id}/status", h.setStatus)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := shared.PageFromRequest(r)
	filter := ListFilter{
		ApprovalStatus: ApprovalStatus(r.URL.Query().Get("approvalStatus")),
		Page:           page,
		Limit:          limit,
	}
	// Landlords only ever see their own listings.
	principal := authz.PrincipalFromContext(r.Context())
	if principal != nil && principal.Role == authz.RoleLandlord && principal.AdminRole == "" {
		filter.LandlordID = &principal.ID
	}

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list properties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	p := shared.NewPagination(page, limit, total)
	httpx.OKPage(w, items, httpx.Pagination{Page: p.Page, Pages: p.Pages, Total: p.Total, Limit: p.Limit})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid property id")
		return
	}
	property, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "", property)
}

type createRequest struct {
	Title       string  `json:"title" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	MonthlyRent float64 `json:"monthlyRent" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "title and address are required")
		return
	}
	property, err := h.service.Create(r.Context(), CreateInput{
		LandlordID:  principal.ID,
		Title:       req.Title,
		Address:     req.Address,
		MonthlyRent: req.MonthlyRent,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, httpx.Envelope{Success: true, Data: property})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	property, err := h.service.Approve(r.Context(), principal.ID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "property approved", property)
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "rejection reason is required")
		return
	}
	property, err := h.service.Reject(r.Context(), principal.ID, id, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "property rejected", property)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	_, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.service.SetOccupancy(r.Context(), id, OccupancyStatus(req.Status)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "property status updated", nil)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*authz.Principal, uuid.UUID, bool) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid property id")
		return nil, uuid.Nil, false
	}
	return principal, id, true
}
