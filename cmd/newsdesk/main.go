package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/newsdesk-cms/newsdesk/internal/accounts"
	"github.com/newsdesk-cms/newsdesk/internal/app"
	"github.com/newsdesk-cms/newsdesk/internal/auth"
	"github.com/newsdesk-cms/newsdesk/internal/contacts"
	"github.com/newsdesk-cms/newsdesk/internal/dashboard"
	"github.com/newsdesk-cms/newsdesk/internal/news"
	"github.com/newsdesk-cms/newsdesk/internal/permissions"
	"github.com/newsdesk-cms/newsdesk/internal/platform/cache"
	"github.com/newsdesk-cms/newsdesk/internal/platform/db"
	"github.com/newsdesk-cms/newsdesk/internal/rbac"
	"github.com/newsdesk-cms/newsdesk/internal/roles"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The dashboard cache is optional; the API serves without it.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("create upload dir", slog.Any("error", err))
		os.Exit(1)
	}

	permissionRepo := permissions.NewRepository(pool)
	permissionService := permissions.NewService(permissionRepo)
	roleRepo := roles.NewRepository(pool)
	roleService := roles.NewService(roleRepo, permissionService)
	accountRepo := accounts.NewRepository(pool, roleRepo)
	accountService := accounts.NewService(accountRepo, roleRepo, cfg.BcryptCost)
	newsRepo := news.NewRepository(pool)
	newsService := news.NewService(newsRepo)
	contactRepo := contacts.NewRepository(pool)
	contactService := contacts.NewService(contactRepo)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(accountRepo, roleRepo, issuer, cfg.BcryptCost)
	authMiddleware := auth.Middleware{Logger: logger, Service: authService}
	gate := rbac.Middleware{Logger: logger}

	dashboardService := dashboard.NewService(logger, redisClient, accountRepo, newsRepo, contactRepo, roleRepo, permissionRepo)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthMiddleware:     authMiddleware,
		AuthHandler:        auth.NewHandler(logger, authService),
		AccountsHandler:    accounts.NewHandler(logger, accountService, gate),
		RolesHandler:       roles.NewHandler(logger, roleService, gate),
		PermissionsHandler: permissions.NewHandler(logger, permissionService, gate),
		NewsHandler:        news.NewHandler(logger, newsService, gate, cfg.UploadDir),
		ContactsHandler:    contacts.NewHandler(logger, contactService, gate),
		DashboardHandler:   dashboard.NewHandler(logger, dashboardService, gate),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
