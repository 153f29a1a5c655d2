package permissions

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

// Handler manages permission administration endpoints.
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

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("permissions", ActionRead))
		r.Get("/", h.list)
		r.Get("/resources", h.resources)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("permissions", ActionCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("permissions", ActionUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("permissions", ActionDelete))
		r.Delete("/{id}", h.delete)
	})
}

type permissionRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Resource    string   `json:"resource" validate:"required"`
	Actions     []string `json:"actions" validate:"required,min=1"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", perms)
}

func (h *Handler) resources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.service.Resources(r.Context())
	if err != nil {
		h.logger.Error("list resources", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", resources)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid permission id"))
		return
	}
	perm, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", perm)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "name, resource, and actions are required"))
		return
	}
	perm, err := h.service.Create(r.Context(), CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Resource:    req.Resource,
		Actions:     req.Actions,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, "Permission created successfully", perm)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid permission id"))
		return
	}
	var req permissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	perm, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Resource:    req.Resource,
		Actions:     req.Actions,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Permission updated successfully", perm)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid permission id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Permission deleted successfully", nil)
}
