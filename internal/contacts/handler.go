package contacts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/newsdesk-cms/newsdesk/internal/platform/httpx"
	"github.com/newsdesk-cms/newsdesk/internal/rbac"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Handler manages contact endpoints, public submit plus admin review.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbac}
}

// MountPublicRoutes registers the unauthenticated submit route.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

// MountAdminRoutes registers the guarded review routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("contacts", "read"))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("contacts", "update"))
		r.Patch("/{id}/read", h.markRead)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("contacts", "delete"))
		r.Delete("/{id}", h.delete)
	})
}

type submitRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Body    string `json:"message" validate:"required"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "name, email, and message are required"))
		return
	}
	m, err := h.service.Submit(r.Context(), Message{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, "Message sent successfully", m)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list contacts", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", list)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid message id"))
		return
	}
	if err := h.service.MarkRead(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Message marked as read", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid message id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Message deleted successfully", nil)
}
