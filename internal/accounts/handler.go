package accounts

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

// Handler manages account administration endpoints.
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

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("users", "read"))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("users", "create"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("users", "update"))
		r.Put("/{id}", h.update)
		r.Patch("/{id}/status", h.changeStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("users", "delete"))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	list, pagination, err := h.service.List(r.Context(), ListQuery{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.Paginated(w, "", list, pagination)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", a)
}

type createAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	RoleID   int64  `json:"roleId" validate:"required"`
	Status   string `json:"status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "fullName, email, password, and roleId are required"))
		return
	}
	a, err := h.service.Create(r.Context(), CreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		RoleID:   req.RoleID,
		Status:   req.Status,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, "User created successfully", a)
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	RoleID   int64  `json:"roleId"`
	Status   string `json:"status"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req updateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid email"))
		return
	}
	a, err := h.service.Update(r.Context(), id, UpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		RoleID:   req.RoleID,
		Status:   req.Status,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "User updated successfully", a)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid request body"))
		return
	}
	actor := shared.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Error(w, shared.ErrUnauthenticated)
		return
	}
	if err := h.service.ChangeStatus(r.Context(), actor.ID, id, req.Status); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "User status updated successfully", map[string]string{"status": req.Status})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	actor := shared.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Error(w, shared.ErrUnauthenticated)
		return
	}
	if err := h.service.Delete(r.Context(), actor.ID, id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "User deleted successfully", nil)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, shared.Wrap(shared.ErrValidation, "invalid id")
	}
	return id, nil
}
