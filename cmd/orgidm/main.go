package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/tendant/orgidm/pkg/auth"
	"github.com/tendant/orgidm/pkg/config"
	"github.com/tendant/orgidm/pkg/impersonate"
	impersonateapi "github.com/tendant/orgidm/pkg/impersonate/api"
	"github.com/tendant/orgidm/pkg/member"
	"github.com/tendant/orgidm/pkg/notification"
	"github.com/tendant/orgidm/pkg/organization"
	organizationapi "github.com/tendant/orgidm/pkg/organization/api"
	"github.com/tendant/orgidm/pkg/rbac"
	rbacapi "github.com/tendant/orgidm/pkg/rbac/api"
	"github.com/tendant/orgidm/pkg/sessions"
	sessionsapi "github.com/tendant/orgidm/pkg/sessions/api"
)

type Config struct {
	Server       config.ServerConfig
	Database     config.DatabaseConfig
	Email        config.EmailConfig
	EmailEnabled bool          `env:"EMAIL_ENABLED" env-default:"false"`
	SweepEvery   time.Duration `env:"SESSION_SWEEP_INTERVAL" env-default:"10m"`
}

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: slog.LevelInfo,
	})))

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment")
	}

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed to create database pool", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Failed to reach database", "host", cfg.Database.Host, "err", err)
		os.Exit(1)
	}

	// Repositories
	sessionRepository := sessions.NewPostgresRepository(pool)
	memberRepository := member.NewPostgresRepository(pool)
	rbacRepository := rbac.NewPostgresRepository(pool)
	organizationRepository := organization.NewPostgresRepository(pool)
	userRepository := auth.NewPostgresUserRepository(pool)

	// Seed the system roles and permission catalogue. Safe to run on every
	// start; existing custom grants are left alone.
	if err := rbac.Seed(ctx, rbacRepository); err != nil {
		slog.Error("Failed to seed RBAC data", "err", err)
		os.Exit(1)
	}

	var notifier notification.Notifier
	if cfg.EmailEnabled {
		emailNotifier, err := notification.NewEmailNotifier(notification.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			TLS:      cfg.Email.TLS,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
		if err != nil {
			slog.Error("Failed to create email notifier", "err", err)
			os.Exit(1)
		}
		notifier = emailNotifier
	}

	// Services
	sessionService := sessions.NewService(sessionRepository)
	memberService := member.NewMemberService(memberRepository)
	roleService := rbac.NewRoleService(rbacRepository)
	organizationService := organization.NewOrganizationService(organizationRepository)
	impersonateService := impersonate.NewService(memberService, sessionRepository, userRepository, notifier)

	authMiddleware := auth.NewMiddleware(sessionService, userRepository, memberService)

	handles := routeHandles{
		auth:         authMiddleware,
		impersonate:  impersonateapi.NewHandle(impersonateService, memberService),
		organization: organizationapi.NewHandle(organizationService),
		rbac:         rbacapi.NewHandle(roleService),
		sessions:     sessionsapi.NewHandle(sessionService),
	}

	logger := httplog.NewLogger("orgidm", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	registerAPIRoutes(r, handles)

	// Expired delegated sessions linger until swept
	go func() {
		ticker := time.NewTicker(cfg.SweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessionService.SweepExpired(ctx)
			}
		}
	}()

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "err", err)
	}
}
