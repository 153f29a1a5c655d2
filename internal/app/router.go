package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/newsdesk-cms/newsdesk/internal/accounts"
	"github.com/newsdesk-cms/newsdesk/internal/auth"
	"github.com/newsdesk-cms/newsdesk/internal/contacts"
	"github.com/newsdesk-cms/newsdesk/internal/dashboard"
	"github.com/newsdesk-cms/newsdesk/internal/news"
	"github.com/newsdesk-cms/newsdesk/internal/permissions"
	"github.com/newsdesk-cms/newsdesk/internal/roles"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthMiddleware     auth.Middleware
	AuthHandler        *auth.Handler
	AccountsHandler    *accounts.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	NewsHandler        *news.Handler
	ContactsHandler    *contacts.Handler
	DashboardHandler   *dashboard.Handler
}

// NewRouter constructs the chi.Router with newsdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: params.Logger, Config: params.Config}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public client API.
	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.Authenticate)
			params.AuthHandler.MountProtectedRoutes(r)
		})
	})
	r.Route("/news", params.NewsHandler.MountPublicRoutes)
	r.Route("/contacts", params.ContactsHandler.MountPublicRoutes)

	// Uploaded thumbnails.
	if params.Config != nil && params.Config.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(params.Config.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	// Admin API: every route verifies the token and re-resolves the
	// identity before the per-resource permission guards run.
	r.Route("/admin", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)
		r.Route("/users", params.AccountsHandler.MountRoutes)
		r.Route("/roles", params.RolesHandler.MountRoutes)
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		r.Route("/news", params.NewsHandler.MountAdminRoutes)
		r.Route("/contacts", params.ContactsHandler.MountAdminRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	})

	return r
}
