package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/platform/httpx"
	"github.com/rentfolio/rentfolio/internal/shared"
)

// Handler wires the auth endpoints for one console.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	console   authz.Console
	validator *validator.Validate
}

// NewHandler constructs a Handler bound to a console.
func NewHandler(logger *slog.Logger, service *Service, console authz.Console) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		console:   console,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Get("/profile", h.handleProfile)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authPayload is the wire shape of auth responses: user and token sit at the
// top level, not inside a data field.
type authPayload struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	User    *authz.Principal `json:"user,omitempty"`
	Token   string           `json:"token,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, authPayload{Message: "malformed request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, authPayload{Message: "email and password are required"})
		return
	}

	user, token, err := h.service.Login(r.Context(), h.console, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.JSON(w, http.StatusUnauthorized, authPayload{Message: "invalid email or password"})
		case errors.Is(err, ErrAccessDenied):
			httpx.JSON(w, http.StatusForbidden, authPayload{Message: "access denied"})
		default:
			h.logger.Error("login", slog.Any("error", err))
			httpx.JSON(w, http.StatusInternalServerError, authPayload{Message: "login failed"})
		}
		return
	}

	httpx.JSON(w, http.StatusOK, authPayload{
		Success: true,
		User:    h.service.Principal(user),
		Token:   token,
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.JSON(w, http.StatusUnauthorized, authPayload{Message: "authentication required"})
		return
	}
	httpx.JSON(w, http.StatusOK, authPayload{Success: true, User: principal})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	if token == "" {
		httpx.JSON(w, http.StatusUnauthorized, authPayload{Message: "authentication required"})
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		h.logger.Warn("logout", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, authPayload{Success: true})
}
