package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	"github.com/schoolgate/identity/internal/auth"
	"github.com/schoolgate/identity/internal/config"
	"github.com/schoolgate/identity/internal/database"
	"github.com/schoolgate/identity/internal/handler"
	"github.com/schoolgate/identity/internal/repository"
	"github.com/schoolgate/identity/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("IDENTITY_CONFIG_PATH"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lgr := newLogger(cfg)
	logger := lgr.GetLogger("server")
	logger.Info("starting identity service",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(ctx, cfg.Database)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	pool := repository.NewPool(cfg.Database.WorkerPoolSize, cfg.Database.WorkerQueueDepth)
	defer pool.Shutdown()

	manager := store.NewManager(db, pool)

	tokenService, err := auth.NewTokenService(
		cfg.JWT.SigningSecret,
		cfg.JWT.SigningAlgorithm,
		cfg.JWT.Issuer,
	)
	if err != nil {
		return err
	}

	auther := auth.NewAuthenticator(
		manager.Users(),
		manager.Roles(),
		manager.RefreshTokens(),
		tokenService,
	).
		WithTokenTTLs(cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL).
		WithLockoutPolicy(cfg.Security.MaxFailedAttempts, cfg.Security.LockoutDuration).
		WithLogger(lgr.GetLogger("auth"))

	app := fiber.New(fiber.Config{
		AppName:      "identity",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: handler.ErrorHandler(lgr.GetLogger("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	handler.RegisterRoutes(app, handler.Dependencies{
		Store:        manager,
		Auther:       auther,
		TokenService: tokenService,
		Cookies: handler.CookieSettings{
			Secure:   cfg.Security.CookieSecure,
			SameSite: cfg.CookieSameSite(),
		},
		Logger: lgr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "server stopped unexpectedly")
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}

	return nil
}

func newLogger(cfg *config.Config) *glog.BaseLogger {
	opts := []glog.Option{
		glog.WithName("identity"),
		glog.WithLevel(logLevel(cfg.Logging.Level)),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	}
	if !cfg.IsProduction() {
		opts = append(opts, glog.WithLoggerTypePretty())
	}
	return glog.NewLogger(opts...)
}

func logLevel(level string) string {
	switch strings.ToLower(level) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "warn":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return glog.Info
	}
}
