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

	"github.com/hbapte/portfolio-api/config"
	"github.com/hbapte/portfolio-api/env"
	"github.com/hbapte/portfolio-api/internal/bootstrap"
	"github.com/hbapte/portfolio-api/internal/events"
	"github.com/hbapte/portfolio-api/internal/handlers"
	"github.com/hbapte/portfolio-api/internal/mailer"
	"github.com/hbapte/portfolio-api/internal/ratelimit"
	"github.com/hbapte/portfolio-api/internal/repositories"
	"github.com/hbapte/portfolio-api/internal/security"
	"github.com/hbapte/portfolio-api/internal/services"
	"github.com/hbapte/portfolio-api/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := bootstrap.InitLogger(bootstrap.LoggerOptions{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})

	store, err := storage.NewRedisStore(storage.RedisStoreOptions{URL: cfg.RedisURL})
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	bus := events.NewGoChannelBus(logger)
	defer bus.Close()

	hasher := security.NewArgon2PasswordHasher()
	signer := security.NewHMACSigner(cfg.SessionSecret)

	staffRepo := repositories.NewStaffRepository(store, hasher)
	sessionRepo := repositories.NewSessionRepository(store)
	twoFactorRepo := repositories.NewTwoFactorTokenRepository(store)
	subscriberRepo := repositories.NewSubscriberRepository(store)
	newsletterRepo := repositories.NewNewsletterRepository(store)
	auditLogRepo := repositories.NewAuditLogRepository(store)
	notificationRepo := repositories.NewNotificationRepository(store)

	if err := seedAdmin(context.Background(), staffRepo, logger); err != nil {
		logger.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	notifier := services.NewNotifier(auditLogRepo, notificationRepo, buildMailer(logger, cfg), cfg.Email, logger)
	if err := notifier.Register(bus); err != nil {
		logger.Error("failed to register event subscribers", "error", err)
		os.Exit(1)
	}

	authService := services.NewAuthService(
		staffRepo, sessionRepo, twoFactorRepo,
		hasher, signer, bus, logger, cfg.Auth,
	)

	loginLimiter := ratelimit.NewLimiter(store, cfg.RateLimit.Login)

	router := handlers.NewRouter(handlers.Deps{
		Auth:          handlers.NewAuthHandler(authService, loginLimiter, cfg, logger),
		AuditLogs:     handlers.NewAuditLogHandler(auditLogRepo, logger),
		Subscribers:   handlers.NewSubscriberHandler(subscriberRepo, bus, logger),
		Newsletters:   handlers.NewNewsletterHandler(newsletterRepo, bus, logger),
		Notifications: handlers.NewNotificationHandler(notificationRepo, logger),
		AuthService:   authService,
		CookieName:    cfg.Auth.CookieName,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// seedAdmin creates the initial staff account from SEED_ADMIN_* when the
// email is not yet taken. Without it a fresh deployment has no account that
// can log in.
func seedAdmin(ctx context.Context, staff *repositories.StaffRepository, logger *slog.Logger) error {
	email := os.Getenv(env.EnvSeedAdminEmail)
	password := os.Getenv(env.EnvSeedAdminPassword)
	if email == "" || password == "" {
		return nil
	}

	name := os.Getenv(env.EnvSeedAdminName)
	if name == "" {
		name = "Admin"
	}

	created, err := staff.EnsureExists(ctx, repositories.CreateStaffInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Info("seeded initial admin account", "email", email)
	}
	return nil
}

// buildMailer assembles the composite email service from whichever providers
// the environment configures. Resend is primary, SMTP the fallback; with
// neither configured, notification emails are disabled.
func buildMailer(logger *slog.Logger, cfg *config.Config) mailer.Mailer {
	var primary, fallback mailer.Mailer

	if resend, err := mailer.NewResendProvider(logger, cfg.Email.FromAddress); err == nil {
		primary = resend
	} else {
		logger.Debug("resend provider unavailable", "reason", err)
	}

	if smtp, err := mailer.NewSMTPProvider(logger, cfg.Email.FromAddress); err == nil {
		if primary == nil {
			primary = smtp
		} else {
			fallback = smtp
		}
	} else {
		logger.Debug("smtp provider unavailable", "reason", err)
	}

	if primary == nil {
		logger.Warn("no email provider configured; notification emails disabled")
		return nil
	}

	return mailer.NewService(logger, primary, fallback)
}
