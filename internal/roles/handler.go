package roles

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

// Handler manages role administration endpoints.
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

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("roles", "read"))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("roles", "create"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("roles", "update"))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("roles", "delete"))
		r.Delete("/{id}", h.delete)
	})
}

type roleRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Permissions []int64 `json:"permissions"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", list)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid role id"))
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "title is required"))
		return
	}
	role, err := h.service.Create(r.Context(), CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		PermissionIDs: req.Permissions,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, "Role created successfully", role)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid role id"))
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	role, err := h.service.Update(r.Context(), id, UpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		PermissionIDs: req.Permissions,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Role updated successfully", role)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid role id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Role deleted successfully", nil)
}
