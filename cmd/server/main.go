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

	"passvault/internal/app/config"
	"passvault/internal/app/di"
	"passvault/internal/app/router"
	authhandler "passvault/internal/feature/auth/transport/handler"
	authusecase "passvault/internal/feature/auth/usecase"
	vaulthandler "passvault/internal/feature/vault/transport/handler"
	vaultusecase "passvault/internal/feature/vault/usecase"
	"passvault/internal/platform/hasher"
	"passvault/internal/platform/http/handler"
	jwtmw "passvault/internal/platform/jwt"
	"passvault/internal/platform/logging"
	"passvault/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Store
	stores, err := di.NewStores(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	// Mail, avatars, rate limiting
	mailer, closeMail, err := di.NewMailService(cfg.Mail)
	if err != nil {
		return err
	}
	avatars, err := di.NewAvatarStore(ctx, cfg.Avatar)
	if err != nil {
		return err
	}
	limiter, rdb := di.NewLimiter(ctx, cfg.Redis, cfg.RateLimit)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Usecase
	pwHasher := hasher.NewBcryptHasher(hasher.DefaultCost)
	authUC := authusecase.NewAuthUsecase(stores.Users, pwHasher, jwtmw.NewGenerator(cfg.Auth.JWTSecret, jwtmw.TokenTTL))
	profileUC := authusecase.NewProfileUsecase(stores.Users, pwHasher, avatars, cfg.Avatar.MaxBytes)
	resetUC := authusecase.NewResetUsecase(stores.Users, pwHasher, mailer, cfg.FrontendURL, cfg.Auth.ResetTokenTTL)
	vaultUC := vaultusecase.NewVaultUsecase(stores.Credentials)

	// Health checks
	checks := map[string]handler.CheckFunc{"store": stores.Ping}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var uploadDir string
	if cfg.Avatar.Storage == config.AvatarDisk {
		uploadDir = cfg.Avatar.UploadDir
	}

	r := router.NewRouter(router.Deps{
		Auth:           authhandler.NewAuthHandler(authUC, resetUC),
		Profile:        authhandler.NewProfileHandler(profileUC, cfg.Avatar.MaxBytes),
		Vault:          vaulthandler.NewVaultHandler(vaultUC),
		Gate:           jwtmw.AuthRequired(jwtmw.NewVerifier(cfg.Auth.JWTSecret), authUC),
		Limiter:        limiter,
		Health:         checks,
		Metrics:        metrics.New(),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      uploadDir,
		UploadsPrefix:  di.UploadsPrefix,
		MaxUploadBytes: cfg.Avatar.MaxBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "store", cfg.Store.Driver, "avatar_storage", cfg.Avatar.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := closeMail(shutdownCtx); err != nil {
		slog.Error("mail queue not drained", "error", err)
	}
	return nil
}
