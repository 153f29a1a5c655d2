package news

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/newsdesk-cms/newsdesk/internal/platform/httpx"
	"github.com/newsdesk-cms/newsdesk/internal/rbac"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

const maxThumbnailBytes = 5 << 20

// Handler manages article endpoints, admin and public.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	uploadDir string
}

// NewHandler builds Handler instance. uploadDir receives thumbnail files.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, uploadDir string) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, uploadDir: uploadDir}
}

// MountAdminRoutes registers the guarded admin routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("news", "read"))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("news", "create"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("news", "update"))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("news", "delete"))
		r.Delete("/{id}", h.delete)
	})
}

// MountPublicRoutes registers the unauthenticated client routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.listPublished)
	r.Get("/{slug}", h.read)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	list, pagination, err := h.service.List(r.Context(), ListFilter{
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("list news", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.Paginated(w, "", list, pagination)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid article id"))
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", a)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseArticleForm(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	a, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, "Article created successfully", a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid article id"))
		return
	}
	in, err := h.parseArticleForm(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	a, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Article updated successfully", a)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, shared.Wrap(shared.ErrValidation, "invalid article id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "Article deleted successfully", nil)
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	list, pagination, err := h.service.ListPublished(r.Context(), q.Get("category"), page, limit)
	if err != nil {
		h.logger.Error("list published news", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.Paginated(w, "", list, pagination)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Read(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, "", a)
}

// parseArticleForm reads the multipart form the admin UI submits,
// including an optional thumbnail upload.
func (h *Handler) parseArticleForm(r *http.Request) (Input, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxThumbnailBytes+1<<20)
	if err := r.ParseMultipartForm(maxThumbnailBytes); err != nil {
		return Input{}, shared.Wrap(shared.ErrValidation, "invalid form data")
	}
	in := Input{
		Title:       r.FormValue("title"),
		ContentHTML: r.FormValue("contentHtml"),
		Excerpt:     r.FormValue("excerpt"),
		Author:      r.FormValue("author"),
		Category:    r.FormValue("category"),
		Status:      r.FormValue("status"),
		Featured:    r.FormValue("featured") == "true",
	}
	if raw := r.FormValue("publishAt"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Input{}, shared.Wrap(shared.ErrValidation, "publishAt must be RFC3339")
		}
		in.PublishAt = &t
	}
	thumbnail, err := h.saveThumbnail(r)
	if err != nil {
		return Input{}, err
	}
	in.Thumbnail = thumbnail
	return in, nil
}

func (h *Handler) saveThumbnail(r *http.Request) (string, error) {
	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", shared.Wrap(shared.ErrValidation, "invalid thumbnail upload")
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return "", shared.Wrap(shared.ErrValidation, "only image uploads are allowed")
	}
	if header.Size > maxThumbnailBytes {
		return "", shared.Wrap(shared.ErrValidation, "thumbnail exceeds 5MB limit")
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
