package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/m7011e/platform/internal/auth"
	"github.com/m7011e/platform/internal/config"
	"github.com/m7011e/platform/internal/middleware"
	"github.com/m7011e/platform/internal/observability"
	"github.com/m7011e/platform/internal/server"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	keys := auth.NewKeySet(auth.KeySetConfig{
		URL:         cfg.Keycloak.JWKSURL(),
		HTTPTimeout: cfg.Keycloak.HTTPTimeout,
		RefreshTTL:  cfg.Keycloak.JWKSRefreshTTL,
		Logger:      logger,
	})
	verifier := auth.NewVerifier(auth.VerifierConfig{
		Issuer:   cfg.Keycloak.IssuerURL(),
		Audience: cfg.Keycloak.Audience,
		Keys:     keys,
		Logger:   logger,
	})
	gate := auth.NewGate(cfg.Keycloak.ClientID)

	deps := &server.Dependencies{
		Config: cfg,
		Logger: logger,
		Auth:   middleware.NewAuthMiddleware(verifier, gate, logger),
		Keys:   keys,
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      server.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("api-gateway listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("issuer", cfg.Keycloak.IssuerURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
