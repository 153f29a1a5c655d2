package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/newsdesk-cms/newsdesk/internal/accounts"
	"github.com/newsdesk-cms/newsdesk/internal/platform/httpx"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers unauthenticated auth routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

// MountProtectedRoutes registers routes behind the token middleware.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

type registerRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	RoleID   int64  `json:"roleId"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "fullName, email, and password are required"))
		return
	}
	err := h.service.Register(r.Context(), RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		RoleID:   req.RoleID,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, "Register successful", nil)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *accounts.Account `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "email and password are required"))
		return
	}
	token, account, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("login rejected", slog.String("email", req.Email))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Login successful", loginResponse{Token: token, User: account})
}

// logout is a stateless acknowledgement. Tokens are time-bounded and not
// tracked server-side; the client discards its copy.
func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	httpx.OK(w, "Logged out successfully", nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	if id == nil {
		httpx.Error(w, shared.ErrUnauthenticated)
		return
	}
	account, err := h.service.Account(r.Context(), id.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", account)
}
